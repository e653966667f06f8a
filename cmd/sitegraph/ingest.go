package sitegraph

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	jsonrepair "github.com/kaptinlin/jsonrepair"
	"github.com/soundprediction/sitegraph/pkg/config"
	"github.com/soundprediction/sitegraph/pkg/types"
	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file.json> [file.json...]",
	Short: "Ingest extracted items from JSON files",
	Long: `Ingest one or more JSON files of extracted items into the graph.

Each file holds either a bare array of extracted items or an object with
an "items" array. Malformed JSON is run through a repair pass before the
file is rejected.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log := newLogger(cfg)

	client, err := newClient(cfg, log)
	if err != nil {
		return err
	}
	defer client.Close()

	total := &types.IngestStats{}
	for _, path := range args {
		items, err := readItems(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		stats, err := client.Ingest(context.Background(), items)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		total.Divisions += stats.Divisions
		total.Facilities += stats.Facilities
		total.Events += stats.Events
		total.Jobs += stats.Jobs
		total.Sources += stats.Sources
		log.Info("Ingested file", "path", path, "items", len(items))
	}

	out, err := json.MarshalIndent(total, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// readItems decodes a file of extracted items, accepting either a bare
// array or an {"items": [...]} wrapper.
func readItems(path string) ([]types.ExtractedItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	items, err := decodeItems(data)
	if err == nil {
		return items, nil
	}

	repaired, rerr := jsonrepair.JSONRepair(string(data))
	if rerr != nil {
		return nil, err
	}
	return decodeItems([]byte(repaired))
}

func decodeItems(data []byte) ([]types.ExtractedItem, error) {
	var items []types.ExtractedItem
	if err := json.Unmarshal(data, &items); err == nil {
		return items, nil
	}

	var wrapper struct {
		Items []types.ExtractedItem `json:"items"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, err
	}
	return wrapper.Items, nil
}
