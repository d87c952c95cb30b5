package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/android-password-store/Android-Password-Store-sub001/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}
