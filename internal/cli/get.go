package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rcliao/birdswarm/internal/model"
	"github.com/rcliao/birdswarm/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Retrieve a run",
		Long:  "Retrieve a run by id or unique id prefix.",
		Args:  cobra.ExactArgs(1),
		Run:   runGet,
	}

	cmd.Flags().Bool("samples", false, "Include the run's samples")

	RootCmd.AddCommand(cmd)
}

func runGet(cmd *cobra.Command, args []string) {
	samples, _ := cmd.Flags().GetBool("samples")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	run, err := s.GetRun(cmd.Context(), store.GetParams{
		ID:      args[0],
		Samples: samples || formatFlag == "text",
	})
	if err != nil {
		exitErr("get", err)
	}

	if formatFlag == "text" {
		printSamples(run)
		return
	}

	b, _ := json.MarshalIndent(run, "", "  ")
	fmt.Println(string(b))
}

func printSamples(run *model.Run) {
	fmt.Printf("run %s  label=%q seed=%d birds=%d ticks=%d dt=%g\n\n",
		run.ID, run.Label, run.Seed, run.Birds, run.Ticks, run.Dt)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "TIME\tHUNGRY\tFEED\tCOMM\tEXPL\tFOUND\tSPAWNED\tREMOVED\tHOPS\tDUPS\tAGE\tCERTAINTY\t")
	for _, smp := range run.Samples {
		fmt.Fprintf(w, "%.1f\t%d\t%d\t%d\t%d\t%d\t%d\t%d\t%.2f\t%.2f\t%.1f\t%.3f\t\n",
			smp.Timestamp,
			smp.HungryBirds, smp.FeedingBirds, smp.CommunicatingBirds, smp.ExploringBirds,
			smp.DiscoveredFood, smp.SpawnedFood, smp.RemovedFood,
			smp.AverageHops, smp.AverageDuplicatesPerInformation,
			smp.AverageInformationAge, smp.AverageInformationCertainty)
	}
	w.Flush()
}
