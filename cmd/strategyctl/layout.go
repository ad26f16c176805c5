package main

import (
	"github.com/spf13/cobra"

	"strategymap/domain/config"
	"strategymap/domain/core/entities"
	"strategymap/domain/core/valueobjects"
	"strategymap/domain/geometry"
	"strategymap/domain/services"
)

type layoutNode struct {
	Type     string         `json:"type"`
	Position geometry.Point `json:"position"`
	Edge     string         `json:"edge,omitempty"`
	Children []layoutNode   `json:"children,omitempty"`
}

func newLayoutCmd(_ *rootOptions) *cobra.Command {
	var (
		width, height float64
		mains         int
		children      int
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print suggested positions for a fresh map",
		Long: `Layout prints where new main nodes and their first children would be
placed on an empty map in a viewport of the given size, together with the
SVG path of each parent to child edge.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dc := config.DefaultDomainConfig()
			layout := services.NewRadialLayout(dc)
			center := geometry.NewViewport(width, height).Center()

			if mains > dc.MaxMainNodes {
				mains = dc.MaxMainNodes
			}
			if children > dc.MaxSecondaryPerMain {
				children = dc.MaxSecondaryPerMain
			}

			out := make([]layoutNode, 0, mains)
			for i := 0; i < mains; i++ {
				pos := layout.RootPosition(i, i == 0, center)
				root, err := entities.NewNode(valueobjects.NodeTypeMain, valueobjects.NodeID{}, dc.DefaultMainLabel, pos)
				if err != nil {
					return err
				}

				entry := layoutNode{Type: root.Type().String(), Position: pos}
				for j := 0; j < children; j++ {
					childPos := layout.ChildPosition(root, j)
					from, to := services.EdgeEndpoints(pos, childPos, dc.NodeWidth)
					entry.Children = append(entry.Children, layoutNode{
						Type:     valueobjects.NodeTypeSecondary.String(),
						Position: childPos,
						Edge:     services.EdgeCurve(from, to).SVGPath(),
					})
				}
				out = append(out, entry)
			}

			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().Float64Var(&width, "width", 1280, "viewport width in pixels")
	cmd.Flags().Float64Var(&height, "height", 800, "viewport height in pixels")
	cmd.Flags().IntVar(&mains, "mains", 6, "number of main nodes")
	cmd.Flags().IntVar(&children, "children", 3, "children per main node")
	return cmd
}
