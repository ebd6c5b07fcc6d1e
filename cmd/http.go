package cmd

import (
	"fmt"
	"os"

	"github.com/rpull/rpull/internal/output"
	"github.com/rpull/rpull/internal/remote"
	"github.com/spf13/cobra"
)

func newHTTPCmd() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "http [URL] [--output OUTPUT_PATH]",
		Short: "Download a file via HTTP/HTTPS",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			target, err := remote.NewHTTPTarget(args[0], globalHTTPConfig)
			if err != nil {
				output.PrintError(fmt.Sprintf("Invalid target: %v", err))
				os.Exit(1)
			}
			runTransfer(target, resolveOutputPath(outputPath, target))
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path")
	return cmd
}
