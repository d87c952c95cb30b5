// Command demoserver serves fixture sign-in pages for autofill-inspect.
// Usage: go run ./cmd/demoserver [port]
// Default port: 9999
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/android-password-store/Android-Password-Store-sub001/internal/demoserver"
	"github.com/android-password-store/Android-Password-Store-sub001/internal/logging"
)

func main() {
	cfg := demoserver.DefaultConfig()

	// Optional: custom port from command line
	if len(os.Args) > 1 {
		port, err := strconv.Atoi(os.Args[1])
		if err != nil || port < 1 || port > 65535 {
			log.Fatalf("Invalid port: %s", os.Args[1])
		}
		cfg.Port = port
	}

	logger := logging.NewStdoutLogger("demoserver")
	server, err := demoserver.NewDemoServer(cfg, logger)
	if err != nil {
		log.Fatalf("demo server: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	logger.Info("try: autofill-inspect inspect http://127.0.0.1:" + strconv.Itoa(cfg.Port) + "/login")
	if err := server.Start(ctx); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
