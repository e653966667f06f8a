package sitegraph

import (
	"context"
	"fmt"

	"github.com/soundprediction/sitegraph/pkg/config"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all graph data, preserving the schema",
	RunE:  runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	client, err := newClient(cfg, newLogger(cfg))
	if err != nil {
		return err
	}
	defer client.Close()

	if err := client.Reset(context.Background()); err != nil {
		return err
	}

	fmt.Println("Graph data cleared")
	return nil
}
