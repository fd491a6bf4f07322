package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ict4events/eventsite/internal/spinner"
	"github.com/ict4events/eventsite/internal/styles"
)

func (a *App) handleStatus() {
	if a.config.Database.ConnString == "" {
		fmt.Println(styles.Faint.Render("No database configured, run eventsite init"))
		return
	}

	dbInfo := fmt.Sprintf("%s %s", a.config.Database.Type(), redact(a.config.Database.ConnString))

	done := make(chan struct{})
	reachable := make(chan bool)

	go func() {
		reachable <- a.ping(context.Background()) == nil
	}()

	go spinner.Wait(os.Stdout, "Using "+dbInfo, done)

	isReachable := <-reachable
	close(done)
	time.Sleep(10 * time.Millisecond)
	fmt.Print("\r\033[2K")

	circleIcon := "●"
	statusText := "reachable"
	if !isReachable {
		circleIcon = "○"
		statusText = "unreachable"
	}

	fmt.Printf("%s Using %s\n", styles.Success.Render(circleIcon), styles.Title.Render(dbInfo))
	fmt.Printf("  %s\n", styles.Faint.Render(statusText))
	fmt.Printf("  serving on %s, locale %s, %d catalogued procedures\n",
		a.config.Server.Addr, a.config.Locale, len(a.config.Database.Procedures))
	fmt.Printf("  config %s\n", styles.Faint.Render(a.config.Path()))
}

// ping opens a store, pings it with a short timeout and closes it again.
func (a *App) ping(ctx context.Context) error {
	store, logger, err := a.openStore()
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer store.Close()

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return store.Ping(ctx)
}

// redact hides the password in URL-style connection strings.
func redact(connString string) string {
	if !strings.Contains(connString, "://") {
		return connString
	}
	u, err := url.Parse(connString)
	if err != nil || u.User == nil {
		return connString
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
