package main

import (
	"context"
	"fmt"
	"os"

	"github.com/ict4events/eventsite/internal/spinner"
	"github.com/ict4events/eventsite/internal/styles"
)

func (a *App) handleCheck() {
	err := spinner.Run(os.Stderr, "Pinging "+a.config.Database.Type(), func() error {
		return a.ping(context.Background())
	})
	if err != nil {
		printError("Could not communicate with the database: %s, %v", a.config.Database.Type(), err)
	}
	fmt.Println(styles.Success.Render("✓ Database reachable:"), styles.Title.Render(a.config.Database.Type()))
}
