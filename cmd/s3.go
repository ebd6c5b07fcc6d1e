package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rpull/rpull/internal/output"
	"github.com/rpull/rpull/internal/remote"
	"github.com/spf13/cobra"
)

func newS3Cmd() *cobra.Command {
	var outputPath string
	var profile string

	cmd := &cobra.Command{
		Use:   "s3 [s3://BUCKET/KEY]",
		Short: "Download an object from AWS S3",
		Long: `Download a single object from AWS S3.

Examples:
  rpull s3 s3://mybucket/path/to/file.zip
  rpull s3 mybucket/file.zip --profile myprofile -c auto`,
		Args: cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			target, err := remote.NewS3Target(context.Background(), args[0], profile)
			if err != nil {
				output.PrintError(fmt.Sprintf("Invalid target: %v", err))
				os.Exit(1)
			}
			runTransfer(target, resolveOutputPath(outputPath, target))
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path")
	cmd.Flags().StringVar(&profile, "profile", "default", "AWS profile to use")
	return cmd
}
