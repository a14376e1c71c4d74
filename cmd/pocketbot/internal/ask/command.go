package ask

import (
	"strings"

	"github.com/spf13/cobra"
)

func NewAskCommand() *cobra.Command {
	var (
		model   string
		weather bool
	)

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Send one question to the AI backend",
		Example: `pocketbot ask "why is the sky blue?"
pocketbot ask --model Mistral "explain TCP slow start"
pocketbot ask --weather Lisbon`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return askCmd(cmd.Context(), cmd.OutOrStdout(), strings.Join(args, " "), model, weather)
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "Catalog label or model id (default: models.default)")
	cmd.Flags().BoolVarP(&weather, "weather", "w", false, "Treat the argument as a city and ask for its weather")

	return cmd
}
