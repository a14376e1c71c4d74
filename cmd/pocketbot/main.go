// Pocketbot - single-user Telegram assistant: weather, document conversion, AI chat
// License: MIT
//
// Copyright (c) 2026 Pocketbot contributors

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tinyland-inc/pocketbot/cmd/pocketbot/internal"
	"github.com/tinyland-inc/pocketbot/cmd/pocketbot/internal/ask"
	"github.com/tinyland-inc/pocketbot/cmd/pocketbot/internal/console"
	"github.com/tinyland-inc/pocketbot/cmd/pocketbot/internal/convert"
	"github.com/tinyland-inc/pocketbot/cmd/pocketbot/internal/gateway"
	"github.com/tinyland-inc/pocketbot/cmd/pocketbot/internal/onboard"
	"github.com/tinyland-inc/pocketbot/cmd/pocketbot/internal/version"
)

func NewPocketbotCommand() *cobra.Command {
	short := fmt.Sprintf("%s pocketbot - Personal Telegram Assistant v%s\n\n", internal.Logo, internal.GetVersion())

	cmd := &cobra.Command{
		Use:     "pocketbot",
		Short:   short,
		Example: "pocketbot gateway",
	}

	cmd.AddCommand(
		onboard.NewOnboardCommand(),
		gateway.NewGatewayCommand(),
		console.NewConsoleCommand(),
		ask.NewAskCommand(),
		convert.NewConvertCommand(),
		version.NewVersionCommand(),
	)

	return cmd
}

func main() {
	cmd := NewPocketbotCommand()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
