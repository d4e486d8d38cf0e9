// Package main is the entry point for the dlive API server
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/shedworth/companion-module-allenheath-dlive/pkg/api"
	"github.com/shedworth/companion-module-allenheath-dlive/pkg/app"
)

func main() {
	configFile := flag.String("config", "", "Config file path")
	port := flag.Int("port", 0, "Server port (overrides server.port)")
	dryRun := flag.Bool("dry-run", false, "Log encoded MIDI instead of sending it")
	flag.Parse()

	a, err := app.New(app.Options{ConfigFile: *configFile, DryRun: *dryRun, LogWriter: os.Stdout})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Startup error: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	gin.SetMode(a.Config.Server.Mode)
	if *port > 0 {
		a.Config.Server.Port = *port
	}

	fmt.Printf("Starting dlive API server on %s...\n", a.Config.ServerAddr())
	fmt.Printf("Swagger docs available at http://localhost:%d/swagger/index.html\n", a.Config.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := api.NewServer(a.Dispatcher, a.Logger).Run(ctx, a.Config.ServerAddr()); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
