package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/miracl/miracl/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := app.Main(ctx, os.Args[1:], &app.Options{ConfigFile: os.Getenv("MIRACL_CONFIG")})
	stop()
	os.Exit(code)
}
