package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/ict4events/eventsite/internal/editor"
	"github.com/ict4events/eventsite/internal/params"
	"github.com/ict4events/eventsite/internal/styles"
)

// handleDefine stores a procedure body in the SQLite catalogue. Without a
// body the current one is opened in the inline editor, or in $EDITOR with
// --external.
func (a *App) handleDefine() {
	if len(os.Args) < 3 {
		printError("Usage: eventsite define <procedure> [sql | --external]")
	}

	name := os.Args[2]
	body := strings.Join(os.Args[3:], " ")

	if body == "" || body == "--external" {
		current := a.config.Database.Procedures[name]
		var (
			saved = true
			err   error
		)
		if body == "--external" {
			body, err = editor.EditExternal(name, current)
		} else {
			body, saved, err = editor.EditBody(name, current)
		}
		if err != nil {
			printError("Could not edit procedure %s: %v", name, err)
		}
		if !saved || body == "" {
			fmt.Println(styles.Faint.Render("Procedure not saved"))
			return
		}
	}

	if err := a.config.SetProcedure(name, body); err != nil {
		printError("Could not save procedure %s: %v", name, err)
	}

	fmt.Println(styles.Success.Render("✓ Procedure saved:"), styles.Title.Render(name))
	if names := params.ExtractPlaceholders(body); len(names) > 0 {
		fmt.Println(styles.Faint.Render("  parameters: " + strings.Join(names, ", ")))
	}
}
