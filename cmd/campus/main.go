// Command campus is the terminal client of the Info Campus dashboard.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/infocampus/campus/authz"
	"github.com/infocampus/campus/chat"
	"github.com/infocampus/campus/client"
	"github.com/infocampus/campus/config"
	"github.com/infocampus/campus/internal/observability"
	"github.com/infocampus/campus/services/academic"
	"github.com/infocampus/campus/session"
)

func main() {
	cli, cleanup, err := setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "campus: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = cli.run(ctx, os.Args)
	stop()
	if err != nil {
		if !errors.Is(err, errHelp) {
			fmt.Fprintf(os.Stderr, "error: %s\n", client.UserMessage(err))
		}
		cleanup()
		os.Exit(1)
	}
}

func setup() (*commandLine, func(), error) {
	cfg, err := config.New()
	if err != nil {
		return nil, nil, err
	}
	// warnings only unless LOG_LEVEL asks for more; stdout belongs to the views
	if os.Getenv("LOG_LEVEL") == "" {
		cfg.Observability.LogLevel = "warn"
	}
	if os.Getenv("LOG_FORMAT") == "" {
		cfg.Observability.LogFormat = "text"
	}
	logger, err := observability.NewLogger(cfg.Observability)
	if err != nil {
		return nil, nil, err
	}
	logger = logger.With(zap.String("service", "campus"))

	format, err := session.ParseLoginFormat(cfg.Client.LoginFormat)
	if err != nil {
		return nil, nil, err
	}

	store := session.NewStore(session.NewFileStorage(cfg.Client.SessionFile()), logger)
	if err := store.Hydrate(); err != nil {
		logger.Warn("failed to read session", zap.Error(err))
	}

	nav := &terminalNavigator{w: os.Stderr}
	api := client.New(cfg.Client, store, nav, &terminalNotifier{w: os.Stderr}, logger)

	cli := &commandLine{
		out:    os.Stdout,
		in:     bufio.NewReader(os.Stdin),
		store:  store,
		svc:    academic.NewService(api, format, logger),
		gate:   authz.NewGate(),
		sender: chat.NewFunctionClient(cfg.Client.ChatFunctionURL, store, cfg.Client.Timeout),
		chatOpts: chat.Options{
			HistoryWindow: cfg.Chat.HistoryWindow,
			MaxInput:      cfg.Chat.MaxInputLen,
		},
		logger: logger,
	}
	return cli, func() { _ = logger.Sync() }, nil
}
