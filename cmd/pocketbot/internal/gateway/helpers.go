package gateway

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tinyland-inc/pocketbot/cmd/pocketbot/internal"
	"github.com/tinyland-inc/pocketbot/pkg/bus"
	"github.com/tinyland-inc/pocketbot/pkg/channels"
	"github.com/tinyland-inc/pocketbot/pkg/logger"
	"github.com/tinyland-inc/pocketbot/pkg/router"
)

func gatewayCmd(debug bool) error {
	cfg, err := internal.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	if debug {
		logger.SetLevel(logger.DEBUG)
		fmt.Println("Debug mode enabled")
	}

	if cfg.Telegram.Token == "" {
		return errors.New("telegram.token is not configured")
	}
	if cfg.Telegram.AuthorizedUserID == "" {
		return errors.New("telegram.authorized_user_id is not configured")
	}

	gen, err := internal.CreateGenerator(cfg)
	if err != nil {
		return fmt.Errorf("error creating provider: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var rt *router.Router
	dispatcher := bus.NewDispatcher(context.Background(), func(ctx context.Context, ev bus.InboundEvent) {
		rt.Route(ctx, ev)
	})

	telegram, err := channels.NewTelegramChannel(cfg.Telegram, dispatcher)
	if err != nil {
		return err
	}
	rt, err = internal.NewRouter(cfg, gen, telegram)
	if err != nil {
		return err
	}

	if err := telegram.Start(ctx); err != nil {
		return fmt.Errorf("error starting telegram: %w", err)
	}
	logger.InfoCF("gateway", "Gateway started", map[string]any{
		"provider": cfg.Provider.Kind,
		"models":   len(cfg.Models.Catalog),
	})
	fmt.Printf("%s pocketbot is running. Press Ctrl+C to stop\n", internal.Logo)

	<-ctx.Done()
	fmt.Println("\nShutting down...")

	shutdownCtx, cancel := internal.ShutdownContext()
	defer cancel()

	if err := telegram.Stop(shutdownCtx); err != nil {
		logger.WarnCF("gateway", "Telegram did not stop cleanly", map[string]any{"error": err.Error()})
	}
	if err := dispatcher.Close(shutdownCtx); err != nil {
		logger.WarnCF("gateway", "Abandoned in-flight events", map[string]any{
			"lanes": dispatcher.Pending(),
			"error": err.Error(),
		})
	}
	fmt.Println("Gateway stopped")
	return nil
}
