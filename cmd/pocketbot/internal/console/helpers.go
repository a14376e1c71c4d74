package console

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/tinyland-inc/pocketbot/cmd/pocketbot/internal"
	"github.com/tinyland-inc/pocketbot/pkg/bus"
	"github.com/tinyland-inc/pocketbot/pkg/channels"
	"github.com/tinyland-inc/pocketbot/pkg/config"
	"github.com/tinyland-inc/pocketbot/pkg/logger"
	"github.com/tinyland-inc/pocketbot/pkg/router"
)

const localUserID = "local"

func consoleCmd(debug bool, outputDir string) error {
	cfg, err := internal.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if debug {
		logger.SetLevel(logger.DEBUG)
	}

	gen, err := internal.CreateGenerator(cfg)
	if err != nil {
		return fmt.Errorf("error creating provider: %w", err)
	}

	sender := cfg.Telegram.AuthorizedUserID.String()
	if sender == "" {
		sender = localUserID
		cfg.Telegram.AuthorizedUserID = config.FlexibleString(sender)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rt *router.Router
	dispatcher := bus.NewDispatcher(context.Background(), func(ctx context.Context, ev bus.InboundEvent) {
		rt.Route(ctx, ev)
	})

	home, _ := os.UserHomeDir()
	ch := channels.NewConsoleChannel(channels.ConsoleConfig{
		SenderID:    sender,
		SenderName:  os.Getenv("USER"),
		OutputDir:   outputDir,
		HistoryFile: filepath.Join(home, ".pocketbot", "console_history"),
	}, dispatcher)

	rt, err = internal.NewRouter(cfg, gen, ch)
	if err != nil {
		return err
	}

	fmt.Printf("%s Console mode. Type /start to begin, exit to quit.\n\n", internal.Logo)
	if err := ch.Start(ctx); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
	case <-ch.Done():
	}

	shutdownCtx, cancel := internal.ShutdownContext()
	defer cancel()
	_ = ch.Stop(shutdownCtx)
	if err := dispatcher.Close(shutdownCtx); err != nil {
		logger.WarnCF("console", "Abandoned in-flight events", map[string]any{"error": err.Error()})
	}
	fmt.Println("Goodbye!")
	return nil
}
