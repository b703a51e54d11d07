// cmd/cli/main.go runs the command layer in a terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/keshon/switchboard/internal/command/core"
	"github.com/keshon/switchboard/internal/config"
	"github.com/keshon/switchboard/internal/console"
	"github.com/keshon/switchboard/internal/dispatch"
	"github.com/keshon/switchboard/internal/logging"
	"github.com/keshon/switchboard/internal/middleware"
	"github.com/keshon/switchboard/internal/resolver"
	"github.com/keshon/switchboard/internal/storage"
	v "github.com/keshon/switchboard/internal/version"
	"github.com/keshon/switchboard/pkg/cmd"

	"github.com/peterh/liner"
)

// consoleUser is the author id of console input. It is a developer when
// listed in DEVELOPER_IDS.
const consoleUser = "0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, _, err := config.Load()
	if err != nil {
		return err
	}

	log, closeLog, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer store.Close()

	reg := cmd.NewRegistry()
	for _, c := range config.Categories {
		reg.DefineCategory(c.Name, c.Hidden)
	}
	res := resolver.New(reg, cfg.IsDeveloper)

	err = core.Register(core.Deps{
		Resolver: res,
		Prefix:   cfg.Prefix,
		Log:      log,
		Users: func(_ context.Context, id string) (*cmd.User, error) {
			return &cmd.User{ID: id, Username: "user" + id}, nil
		},
		History: store,
	}, middleware.WithCommandLogger(store, nil, log))
	if err != nil {
		return err
	}

	d := dispatch.New(res, cfg.Prefix, dispatch.WithFallback("help"), dispatch.WithLogger(log))
	c := console.New(d, os.Stdout, consoleUser)

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyFile := filepath.Join(os.TempDir(), "switchboard_history")
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.OpenFile(historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Printf("%s console. Commands start with %q. Ctrl+D to exit.\n", v.AppName, cfg.Prefix)

	ctx := context.Background()
	for {
		input, err := line.Prompt("> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Println()
				return nil
			}
			return err
		}
		if strings.TrimSpace(input) == "" {
			continue
		}
		line.AppendHistory(input)
		c.Handle(ctx, input)
	}
}
