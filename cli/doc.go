// Package cli routes a command line to one of several independently defined commands.
//
// Each command owns its flag set and entry point. Commands are collected in a [Registry], which
// generates the root command; [Parse] selects a command and parses only the flags of the selected
// command chain, and [Run] hands the parsed [State] to the selected command's Exec function.
package cli
