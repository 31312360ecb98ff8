package main

import (
	"context"
	"log"

	"github.com/dmitrijs2005/learnportal/internal/server"
	"github.com/dmitrijs2005/learnportal/internal/server/config"
)

func main() {
	cfg := config.LoadConfig()

	app, err := server.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(context.Background()); err != nil {
		log.Fatalf("%v", err)
	}
}
