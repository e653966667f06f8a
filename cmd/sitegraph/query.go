package sitegraph

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/soundprediction/sitegraph"
	"github.com/soundprediction/sitegraph/pkg/config"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the facility graph",
}

var facilitiesCmd = &cobra.Command{
	Use:   "facilities",
	Short: "List consolidated facilities",
	RunE:  runQueryFacilities,
}

var expansionsCmd = &cobra.Command{
	Use:   "expansions",
	Short: "List expansion and announcement events",
	RunE:  runQueryExpansions,
}

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List job postings",
	RunE:  runQueryJobs,
}

func init() {
	rootCmd.AddCommand(queryCmd)
	queryCmd.AddCommand(facilitiesCmd)
	queryCmd.AddCommand(expansionsCmd)
	queryCmd.AddCommand(jobsCmd)

	facilitiesCmd.Flags().String("division", "", "Filter by division name")
	facilitiesCmd.Flags().String("state", "", "Filter by state")
	facilitiesCmd.Flags().String("status", "", "Filter by derived status")

	expansionsCmd.Flags().String("from", "", "Inclusive lower event-date bound (YYYY-MM-DD)")
	expansionsCmd.Flags().String("to", "", "Inclusive upper event-date bound (YYYY-MM-DD)")

	jobsCmd.Flags().Bool("factory-only", false, "Only factory-floor roles")
}

func runQueryFacilities(cmd *cobra.Command, args []string) error {
	client, err := queryClient()
	if err != nil {
		return err
	}
	defer client.Close()

	division, _ := cmd.Flags().GetString("division")
	state, _ := cmd.Flags().GetString("state")
	status, _ := cmd.Flags().GetString("status")

	facilities, err := client.ListFacilities(context.Background(), sitegraph.FacilityFilter{
		Division: division,
		State:    state,
		Status:   status,
	})
	if err != nil {
		return err
	}
	return printJSON(facilities)
}

func runQueryExpansions(cmd *cobra.Command, args []string) error {
	client, err := queryClient()
	if err != nil {
		return err
	}
	defer client.Close()

	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")

	expansions, err := client.ListExpansions(context.Background(), sitegraph.ExpansionFilter{
		DateFrom: from,
		DateTo:   to,
	})
	if err != nil {
		return err
	}
	return printJSON(expansions)
}

func runQueryJobs(cmd *cobra.Command, args []string) error {
	client, err := queryClient()
	if err != nil {
		return err
	}
	defer client.Close()

	factoryOnly, _ := cmd.Flags().GetBool("factory-only")

	jobs, err := client.ListJobs(context.Background(), factoryOnly)
	if err != nil {
		return err
	}
	return printJSON(jobs)
}

func queryClient() (*sitegraph.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return newClient(cfg, newLogger(cfg))
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
