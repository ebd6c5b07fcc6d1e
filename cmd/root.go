package cmd

import (
	"context"
	"fmt"
	u "net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rpull/rpull/internal/config"
	"github.com/rpull/rpull/internal/output"
	"github.com/rpull/rpull/internal/remote"
	"github.com/rpull/rpull/internal/transfer"
	"github.com/rpull/rpull/internal/utils"
	"github.com/spf13/cobra"
)

var (
	connections   string
	chunkSize     string
	timeout       time.Duration
	kaTimeout     time.Duration
	userAgent     string
	proxyURL      string
	proxyUsername string
	proxyPassword string
	headers       []string
	debug         bool
	quiet         bool
	noResume      bool

	transferOpts     transfer.Options
	globalHTTPConfig utils.HTTPClientConfig
)

var RpullVersion = "dev"

var rootCmd = &cobra.Command{
	Use:     "rpull",
	Short:   "rpull resumes and parallelizes large single-object downloads",
	Version: RpullVersion,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		// Flags override config file and environment
		if cmd.Flags().Changed("debug") {
			cfg.Debug = debug
		}
		utils.InitLogger(cfg.Debug)
		if cmd.Flags().Changed("connections") {
			cfg.Connections = connections
		}
		if cmd.Flags().Changed("chunk-size") {
			cfg.ChunkSize = chunkSize
		}
		if cmd.Flags().Changed("timeout") {
			cfg.Timeout = timeout
		}
		if cmd.Flags().Changed("keep-alive-timeout") {
			cfg.KATimeout = kaTimeout
		}
		if cmd.Flags().Changed("user-agent") {
			cfg.UserAgent = userAgent
		}
		if cmd.Flags().Changed("proxy") {
			cfg.ProxyURL = proxyURL
		}
		if cfg.UserAgent == "randomize" {
			cfg.UserAgent = utils.GetRandomUserAgent()
		}

		numConnections, err := cfg.ResolveConnections()
		if err != nil {
			return err
		}
		parsedChunkSize, err := utils.ParseSize(cfg.ChunkSize)
		if err != nil {
			return fmt.Errorf("invalid chunk size: %w", err)
		}
		transferOpts = transfer.Options{
			Connections: numConnections,
			ChunkSize:   parsedChunkSize,
			Quiet:       quiet,
		}

		// Move proxy URL credentials into the client config
		if parsedProxy, err := u.Parse(cfg.ProxyURL); err == nil && parsedProxy.User != nil && proxyUsername == "" {
			proxyUsername = parsedProxy.User.Username()
			if password, set := parsedProxy.User.Password(); set {
				proxyPassword = password
			}
			parsedProxy.User = nil
			cfg.ProxyURL = parsedProxy.String()
		}
		globalHTTPConfig = utils.HTTPClientConfig{
			Timeout:       cfg.Timeout,
			KATimeout:     cfg.KATimeout,
			ProxyURL:      cfg.ProxyURL,
			ProxyUsername: proxyUsername,
			ProxyPassword: proxyPassword,
			UserAgent:     cfg.UserAgent,
			Headers:       utils.ParseHeaderArgs(headers),
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runTransfer(target remote.Target, outputPath string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := transfer.Run(ctx, target, outputPath, transferOpts); err != nil {
		output.PrintError(fmt.Sprintf("Download failed: %v", err))
		os.Exit(1)
	}
	output.PrintSuccess(fmt.Sprintf("Downloaded %s", outputPath))
}

// resolveOutputPath infers a file name from the target when -o is not
// given. With --no-resume, an existing file is kept untouched and the
// transfer writes to the next free "name-(N).ext" variant instead.
func resolveOutputPath(outputPath string, target remote.Target) string {
	if outputPath == "" {
		if named, ok := target.(interface{ SuggestedName() string }); ok {
			outputPath = named.SuggestedName()
		}
		if outputPath == "" {
			outputPath = "download"
		}
	}
	if noResume {
		if _, err := os.Stat(outputPath); err == nil {
			renewed := utils.RenewOutputPath(outputPath)
			output.PrintInfo(fmt.Sprintf("Keeping %s, saving to %s", outputPath, renewed))
			outputPath = renewed
		}
	}
	return outputPath
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&connections, "connections", "c", "1", "Concurrent chunk downloads per transfer ('auto' derives from CPU count, capped at 8)")
	rootCmd.PersistentFlags().StringVar(&chunkSize, "chunk-size", "8M", "Chunk size for ranged reads (eg. 512K, 8M, 1G)")
	rootCmd.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 3*time.Minute, "Connection timeout (eg. 5s, 10m)")
	rootCmd.PersistentFlags().DurationVarP(&kaTimeout, "keep-alive-timeout", "k", 90*time.Second, "Keep-alive timeout for client (eg. 10s, 1m, 80s)")
	rootCmd.PersistentFlags().StringVarP(&userAgent, "user-agent", "a", utils.ToolUserAgent, "User agent ('randomize' picks a browser UA)")
	rootCmd.PersistentFlags().StringVarP(&proxyURL, "proxy", "p", "", "HTTP/HTTPS proxy URL (e.g., proxy.example.com:8080)")
	rootCmd.PersistentFlags().StringVar(&proxyUsername, "proxy-username", "", "Proxy username (if not provided in proxy URL)")
	rootCmd.PersistentFlags().StringVar(&proxyPassword, "proxy-password", "", "Proxy password (if not provided in proxy URL)")
	rootCmd.PersistentFlags().StringArrayVarP(&headers, "header", "H", []string{}, "Custom headers (like 'Authorization: Basic dXNlcjpwYXNz'); can be specified multiple times")
	rootCmd.PersistentFlags().BoolVar(&noResume, "no-resume", false, "Keep an existing output file and download to a renewed name instead of resuming")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Disable the live progress line")

	rootCmd.AddCommand(newHTTPCmd())
	rootCmd.AddCommand(newS3Cmd())
}
