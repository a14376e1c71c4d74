package onboard

import (
	"fmt"
	"io"
	"os"

	"github.com/tinyland-inc/pocketbot/cmd/pocketbot/internal"
	"github.com/tinyland-inc/pocketbot/pkg/config"
)

func onboardCmd(out io.Writer, force bool) error {
	return writeDefaultConfig(out, internal.GetConfigPath(), force)
}

func writeDefaultConfig(out io.Writer, path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
	}

	if err := config.SaveConfig(path, config.DefaultConfig()); err != nil {
		return fmt.Errorf("error saving config: %w", err)
	}

	fmt.Fprintf(out, "%s Config written to %s\n\n", internal.Logo, path)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintln(out, "  1. Set telegram.token (from @BotFather) and telegram.authorized_user_id")
	fmt.Fprintln(out, "  2. Set provider.api_key (OpenRouter by default)")
	fmt.Fprintln(out, "  3. Run: pocketbot gateway")
	return nil
}
