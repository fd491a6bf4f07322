package main

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/ict4events/eventsite/internal/config"
	"github.com/ict4events/eventsite/internal/db"
	"github.com/ict4events/eventsite/internal/logging"
	"github.com/ict4events/eventsite/internal/styles"
)

type App struct {
	config *config.Config
	out    io.Writer
}

func NewApp(cfg *config.Config) *App {
	return &App{
		config: cfg,
		out:    os.Stdout,
	}
}

func (a *App) Run() {
	if len(os.Args) < 2 {
		a.printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	switch command {
	case "serve":
		a.handleServe()
	case "call", "exec":
		a.handleCall()
	case "check", "ping":
		a.handleCheck()
	case "init":
		a.handleInit()
	case "define":
		a.handleDefine()
	case "status":
		a.handleStatus()
	case "help", "-h", "--help":
		a.handleHelp()
	default:
		printError("Unknown command: %s", command)
	}
}

func (a *App) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("eventsite serve")
	fmt.Println("eventsite call <procedure> [name=value ...] [--dict|--scalar|--nonquery] [--copy]")
	fmt.Println("eventsite init [db-type] <connection-string>")
	fmt.Println("eventsite check")
}

// openStore builds a Store for one-shot CLI commands. Logging goes to the
// console at warn level unless the config asks for debug.
func (a *App) openStore() (*db.Store, *zap.Logger, error) {
	if err := a.config.ValidateDatabase(); err != nil {
		return nil, nil, err
	}

	logCfg := a.config.Logging
	logCfg.Format = "console"
	if logCfg.Level != "debug" {
		logCfg.Level = "warn"
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, nil, err
	}

	connector, err := a.config.Database.Connector()
	if err != nil {
		return nil, nil, err
	}
	return db.NewStore(connector, logger), logger, nil
}

func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, styles.Error.Render("✗ Error:"), msg)
	os.Exit(1)
}
