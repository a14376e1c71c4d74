package console

import (
	"github.com/spf13/cobra"
)

func NewConsoleCommand() *cobra.Command {
	var (
		debug     bool
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Chat with the bot from the terminal",
		Long: `Runs the same menus and handlers as the Telegram gateway on a local terminal.
Menu labels are typed as text. Use "/loc <lat> <lon>" to share a location and
"/file <path>" to upload a document.`,
		Example: "pocketbot console --output ./converted",
		Args:    cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return consoleCmd(debug, outputDir)
		},
	}

	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	cmd.Flags().StringVarP(&outputDir, "output", "o", ".", "Directory that receives converted files")

	return cmd
}
