package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"slices"

	"github.com/ict4events/eventsite/internal/config"
	"github.com/ict4events/eventsite/internal/db"
	"github.com/ict4events/eventsite/internal/initui"
	"github.com/ict4events/eventsite/internal/styles"
)

func (a *App) handleInit() {
	var (
		database config.Database
		err      error
	)
	if len(os.Args) < 3 {
		var addr string
		database.DBType, database.ConnString, addr, err = initui.CollectInitParameters(
			a.config.Database.DBType, a.config.Database.ConnString, a.config.Server.Addr)
		if err != nil {
			printError("%v", err)
		}
		if addr != "" {
			a.config.Server.Addr = addr
		}
		if database.DBType == "" {
			printError("No database type selected")
		}
	} else {
		database, err = initDatabase(os.Args[2:])
		if err != nil {
			printError("%v", err)
		}
	}

	previous := a.config.Database
	a.config.Database.DBType = database.DBType
	a.config.Database.ConnString = database.ConnString

	if err := a.ping(context.Background()); err != nil {
		a.config.Database = previous
		printError("Could not communicate with the database: %s, %v", database.DBType, err)
	}

	if a.config.Session.Secret == "" {
		secret, err := newSecret()
		if err != nil {
			printError("Could not generate session secret: %v", err)
		}
		a.config.Session.Secret = secret
	}

	if err := a.config.Save(); err != nil {
		printError("Could not save configuration file: %v", err)
	}

	fmt.Println(styles.Success.Render("✓ Database configured:"), styles.Title.Render(database.DBType))
	fmt.Println(styles.Faint.Render("  saved to " + a.config.Path()))
}

// initDatabase reads "<db-type> <conn>" or "<conn>" with the type inferred.
func initDatabase(args []string) (config.Database, error) {
	var d config.Database
	switch len(args) {
	case 1:
		d.ConnString = args[0]
		d.DBType = db.InferDBType(d.ConnString)
		if d.DBType == "" {
			return d, fmt.Errorf("cannot infer database type from %q, pass it explicitly", d.ConnString)
		}
	case 2:
		d.DBType, d.ConnString = args[0], args[1]
		if !slices.Contains(db.GetSupportedDBTypes(), d.DBType) {
			return d, fmt.Errorf("unsupported database type %q, expected one of %v", d.DBType, db.GetSupportedDBTypes())
		}
	default:
		return d, fmt.Errorf("expected [db-type] <connection-string>, got %d arguments", len(args))
	}
	return d, nil
}

func newSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
