package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rcliao/birdswarm/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs",
		Run:   runRuns,
	}

	cmd.Flags().StringP("label", "l", "", "Filter by label")
	cmd.Flags().IntP("limit", "n", 20, "Max results")
	cmd.Flags().Bool("ids-only", false, "Only output run ids")

	RootCmd.AddCommand(cmd)
}

func runRuns(cmd *cobra.Command, args []string) {
	label, _ := cmd.Flags().GetString("label")
	limit, _ := cmd.Flags().GetInt("limit")
	idsOnly, _ := cmd.Flags().GetBool("ids-only")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	runs, err := s.ListRuns(cmd.Context(), store.ListParams{
		Label: label,
		Limit: limit,
	})
	if err != nil {
		exitErr("list", err)
	}

	if idsOnly {
		type entry struct {
			ID    string `json:"id"`
			Label string `json:"label,omitempty"`
		}
		entries := make([]entry, len(runs))
		for i, r := range runs {
			entries[i] = entry{ID: r.ID, Label: r.Label}
		}
		b, _ := json.MarshalIndent(entries, "", "  ")
		fmt.Println(string(b))
		return
	}

	if formatFlag == "text" {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tLABEL\tSEED\tBIRDS\tTICKS\tSTARTED\tFINISHED")
		for _, r := range runs {
			finished := "-"
			if r.FinishedAt != nil {
				finished = r.FinishedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
				r.ID, r.Label, r.Seed, r.Birds, r.Ticks, r.StartedAt.Format("2006-01-02 15:04:05"), finished)
		}
		w.Flush()
		return
	}

	b, _ := json.MarshalIndent(runs, "", "  ")
	fmt.Println(string(b))
}
