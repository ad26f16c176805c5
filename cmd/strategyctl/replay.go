package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"strategymap/application/editor"
	"strategymap/application/syncer"
	"strategymap/domain/config"
	"strategymap/domain/core/aggregates"
	"strategymap/domain/geometry"
	"strategymap/infrastructure/remote"
	"strategymap/interfaces/cli"
)

func newReplayCmd(opts *rootOptions) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "replay <script.json>",
		Short: "Replay a recorded editor session",
		Long: `Replay loads the client's map from the service, feeds the recorded
pointer and keyboard steps into a headless editor and flushes the resulting
map back. Use "-" to read the script from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			logger, err := opts.logger()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			in, err := readInput(args[0])
			if err != nil {
				return err
			}
			script, err := cli.ParseScript(in)
			in.Close()
			if err != nil {
				return err
			}

			dc := config.DefaultDomainConfig()
			store := aggregates.NewStrategyMap(script.ClientID, dc, nil)
			source := editor.NewBroadcaster()
			ed := editor.NewEditor(store, source, geometry.NewViewport(script.Width, script.Height), logger)

			var sync *syncer.Syncer
			if !dryRun {
				client := remote.NewStrategyClient(opts.baseURL, opts.timeout, remote.DefaultBreakerConfig(), remote.WithLogger(logger))
				sync = syncer.NewSyncer(script.ClientID, store, client,
					syncer.WithDebounce(opts.debounce),
					syncer.WithTimeout(opts.timeout),
					syncer.WithLogger(logger),
				)
				defer sync.Close()

				// A failed load is logged and the session continues on an empty map
				_ = sync.Load(ctx)
			}

			report, runErr := cli.NewRunner(ed, source, logger).Run(script)
			if runErr != nil {
				logger.Error("Replay stopped", zap.Error(runErr))
			}

			if sync != nil {
				if err := sync.Flush(ctx); err != nil {
					return fmt.Errorf("flush: %w", err)
				}
				if at, ok := sync.LastSaved(); ok {
					logger.Info("Strategy saved", zap.Time("savedAt", at))
				}
			}

			if err := printJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "run without loading or saving")
	return cmd
}
