package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"strategymap/domain/config"
	"strategymap/domain/core/aggregates"
	"strategymap/domain/core/entities"
	"strategymap/domain/core/valueobjects"
)

func newValidateCmd(_ *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <nodes.json>",
		Short: "Check a node collection against the hierarchy rules",
		Long: `Validate reads a JSON array of nodes, as returned by
GET /strategy/{clientId}, and reports the first violation of the hierarchy
rules or node ceilings. Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := readInput(args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			var dtos []entities.NodeDTO
			if err := json.NewDecoder(in).Decode(&dtos); err != nil {
				return fmt.Errorf("decode nodes: %w", err)
			}

			nodes, err := entities.NodesFromDTOs(dtos)
			if err != nil {
				return err
			}
			if err := aggregates.ValidateNodes(nodes, config.DefaultDomainConfig()); err != nil {
				return err
			}

			counts := map[valueobjects.NodeType]int{}
			for _, n := range nodes {
				counts[n.Type()]++
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d main, %d secondary, %d post\n",
				counts[valueobjects.NodeTypeMain],
				counts[valueobjects.NodeTypeSecondary],
				counts[valueobjects.NodeTypePost],
			)
			return nil
		},
	}
}
