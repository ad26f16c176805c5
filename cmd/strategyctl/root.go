package main

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"strategymap/infrastructure/config"
)

type rootOptions struct {
	logLevel string
	baseURL  string
	timeout  time.Duration
	debounce time.Duration
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	// Flag defaults follow the environment
	defaults := &config.Config{
		LogLevel:      "warn",
		RemoteBaseURL: "http://localhost:8080/api",
		RemoteTimeout: 10 * time.Second,
		SyncDebounce:  2 * time.Second,
	}
	if env, err := config.LoadConfig(); err == nil {
		defaults.RemoteBaseURL = env.RemoteBaseURL
		defaults.RemoteTimeout = env.RemoteTimeout
		defaults.SyncDebounce = env.SyncDebounce
	}

	cmd := &cobra.Command{
		Use:   "strategyctl",
		Short: "Offline tooling for strategy maps",
		Long: `strategyctl drives the strategy map editor without a browser.
It can replay recorded sessions against a running service, check stored
node collections against the hierarchy rules and preview the layout.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", defaults.LogLevel, "log level (debug, info, warn, error)")
	cmd.PersistentFlags().StringVar(&opts.baseURL, "base-url", defaults.RemoteBaseURL, "strategy service base URL")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", defaults.RemoteTimeout, "remote request timeout")
	cmd.PersistentFlags().DurationVar(&opts.debounce, "debounce", defaults.SyncDebounce, "save debounce window")

	cmd.AddCommand(
		newReplayCmd(opts),
		newValidateCmd(opts),
		newLayoutCmd(opts),
	)
	return cmd
}

func (o *rootOptions) logger() (*zap.Logger, error) {
	cfg := &config.Config{LogLevel: o.logLevel}
	logger, _, err := cfg.NewLogger()
	return logger, err
}

func readInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
