// Command keybase-chat-tui is a terminal chat client for Keybase. All
// backend traffic goes through the keybase binary: one subprocess per
// request command, plus one persistent listener subprocess for incoming
// messages.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/nbrendler/keybase-chat-tui/internal/appinfo"
	"github.com/nbrendler/keybase-chat-tui/internal/chatlog"
	"github.com/nbrendler/keybase-chat-tui/internal/client"
	"github.com/nbrendler/keybase-chat-tui/internal/config"
	"github.com/nbrendler/keybase-chat-tui/internal/controller"
	"github.com/nbrendler/keybase-chat-tui/internal/gateway"
	"github.com/nbrendler/keybase-chat-tui/internal/state"
	"github.com/nbrendler/keybase-chat-tui/internal/ui"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet(appinfo.Name, flag.ExitOnError)
	configPath := fs.String("config", config.DefaultPath(), "path to config.yaml")
	gatewayBin := fs.String("gateway", "", "override the gateway binary")
	logPath := fs.String("log", "", "override the log file path")
	debug := fs.Bool("debug", false, "log debug detail")
	showVersion := fs.Bool("version", false, "print version and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *showVersion {
		fmt.Println(appinfo.Display())
		return nil
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *gatewayBin != "" {
		cfg.Gateway.Command = *gatewayBin
	}
	if *logPath != "" {
		cfg.Log.File = *logPath
	}
	if *debug {
		cfg.Log.Debug = true
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("stdout is not a TTY")
	}

	var logFile *os.File
	if cfg.Log.File != "" {
		logFile, err = os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
	}
	logger := chatlog.New(chatlog.Options{File: logFile, Debug: cfg.Log.Debug})
	defer logger.Close()
	logger.Infof("starting %s", appinfo.Display())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	gw := gateway.New(cfg.Gateway.Command, cfg.Gateway.APIArgs, logger)
	listener, err := gateway.StartListener(cfg.Gateway.Command, cfg.Gateway.ListenArgs, logger)
	if err != nil {
		return err
	}

	cl := client.New(gw, listener, logger)
	defer cl.Close()

	events, err := cl.Subscribe()
	if err != nil {
		return err
	}

	st := state.New(logger)
	ctrl := controller.New(cl, st, events, logger, controller.Options{
		FetchCount: cfg.Fetch.PageSize,
	})

	model := ui.NewModel(ui.Options{
		Commands: ctrl.Commands(),
		Theme: ui.Theme{
			Accent: cfg.Theme.Accent,
			Unread: cfg.Theme.Unread,
			Dim:    cfg.Theme.Dim,
		},
		Log: logger,
	})
	st.RegisterObserver(model.Observer())

	prog := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	initErr := make(chan error, 1)
	go func() {
		if err := ctrl.Init(ctx); err != nil {
			logger.Errorf("init: %v", err)
			initErr <- err
			prog.Quit()
			return
		}
		ctrl.Run(ctx)
	}()

	_, runErr := prog.Run()
	cancel()

	select {
	case err := <-initErr:
		return err
	default:
	}
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return runErr
	}
	logger.Infof("shutting down")
	return nil
}
