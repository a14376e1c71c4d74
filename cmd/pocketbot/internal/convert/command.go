package convert

import (
	"github.com/spf13/cobra"
)

func NewConvertCommand() *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:     "convert <file>",
		Short:   "Convert a local document (.docx/.doc/.odt to PDF, .pdf to DOCX)",
		Example: "pocketbot convert report.docx --output ./out",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return convertCmd(cmd.Context(), cmd.OutOrStdout(), args[0], outputDir)
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", ".", "Directory for the converted file")

	return cmd
}
