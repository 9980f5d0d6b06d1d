package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/MSSkowron/userregistry/internal/app"
)

func main() {
	configPath := flag.String("config", "config.env", "path to the .env configuration file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx, *configPath); err != nil {
		log.Fatalln(err)
	}
}
