package main

import (
	"log"

	"github.com/ict4events/eventsite/internal/config"
	"github.com/ict4events/eventsite/internal/styles"
)

func main() {
	cfg, err := config.LoadConfig(config.DefaultPath())
	if err != nil {
		log.Fatal("Could not load config file: ", err)
	}
	styles.InitAccent(cfg.Style.Accent)

	app := NewApp(cfg)
	app.Run()
}
