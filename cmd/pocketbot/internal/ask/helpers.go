package ask

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tinyland-inc/pocketbot/cmd/pocketbot/internal"
	"github.com/tinyland-inc/pocketbot/pkg/config"
	"github.com/tinyland-inc/pocketbot/pkg/presenter"
	"github.com/tinyland-inc/pocketbot/pkg/providers"
	"github.com/tinyland-inc/pocketbot/pkg/router"
)

func askCmd(ctx context.Context, out io.Writer, input, model string, weather bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := internal.LoadConfig()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	gen, err := internal.CreateGenerator(cfg)
	if err != nil {
		return fmt.Errorf("error creating provider: %w", err)
	}

	return ask(ctx, out, gen, cfg, input, model, weather)
}

func ask(ctx context.Context, out io.Writer, gen providers.Generator, cfg *config.Config, input, model string, weather bool) error {
	modelID := resolveModel(cfg.Catalog(), cfg.Models.Default, model)

	prompt := router.GeneralPrompt(input)
	if weather {
		prompt = router.WeatherPrompt(strings.TrimSpace(input))
	}

	answer, err := gen.Generate(ctx, modelID, prompt)
	if err != nil {
		return errors.New(presenter.GatewayErrorText(err))
	}
	fmt.Fprintln(out, answer)
	return nil
}

// resolveModel accepts either a catalog label or a raw model id.
func resolveModel(catalog config.ModelCatalog, fallback, requested string) string {
	if requested == "" {
		return fallback
	}
	if id, ok := catalog.Lookup(requested); ok {
		return id
	}
	return requested
}
