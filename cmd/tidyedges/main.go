// Command tidyedges pads every room of a world to its declared size and links
// the shared edges of rooms laid out on a grid.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pixil98/go-tileworld/internal/world"
	"github.com/spf13/cobra"
)

func main() {
	if err := newCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newCommand() *cobra.Command {
	var fill string

	cmd := &cobra.Command{
		Use:   "tidyedges <world-dir>",
		Short: "Pad room grids and link neighbouring room edges",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := world.ValidateTerrain(fill); err != nil {
				return err
			}
			return run(args[0], fill)
		},
		SilenceUsage: true,
	}
	cmd.Flags().StringVar(&fill, "fill", "grass", "terrain used to pad short rows and columns")

	return cmd
}

func run(dir, fill string) error {
	s, err := world.Load(dir, world.WithFill(fill))
	if err != nil {
		return err
	}

	n, err := world.TidyEdges(s)
	if err != nil {
		return fmt.Errorf("tidying edges: %w", err)
	}

	slog.Info("rooms written", "count", n, "world", dir)
	return nil
}
