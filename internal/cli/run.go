package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rcliao/birdswarm/internal/metrics"
	"github.com/rcliao/birdswarm/internal/sim"
	"github.com/rcliao/birdswarm/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation and record its samples",
		Long:  "Run a simulation and record its samples. Ctrl-C stops the run early; the samples taken so far are kept.",
		Run:   runRun,
	}

	cmd.Flags().StringP("label", "l", "", "Label to group runs by")
	cmd.Flags().IntP("ticks", "t", 0, "Number of ticks (default: from config)")
	cmd.Flags().Int64P("seed", "s", 0, "Random seed (default: from config)")
	cmd.Flags().String("metrics-file", "", "Write Prometheus metrics to this file when done")
	cmd.Flags().Bool("no-record", false, "Do not write the run to the database")

	RootCmd.AddCommand(cmd)
}

// runResult is printed when a run ends.
type runResult struct {
	ID          string       `json:"id,omitempty"`
	Ticks       int          `json:"ticks"`
	Time        float64      `json:"time"`
	Samples     int          `json:"samples"`
	Interrupted bool         `json:"interrupted,omitempty"`
	Counters    sim.Counters `json:"counters"`
}

func runRun(cmd *cobra.Command, args []string) {
	label, _ := cmd.Flags().GetString("label")
	ticks, _ := cmd.Flags().GetInt("ticks")
	seed, _ := cmd.Flags().GetInt64("seed")
	metricsFile, _ := cmd.Flags().GetString("metrics-file")
	noRecord, _ := cmd.Flags().GetBool("no-record")

	log, err := newLogger()
	if err != nil {
		exitErr("logger", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		exitErr("load config", err)
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	if ticks > 0 {
		cfg.Ticks = ticks
	}

	swarm, err := sim.New(cfg, log)
	if err != nil {
		exitErr("create simulation", err)
	}
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	swarm.AddObserver(m)
	swarm.AddSampleObserver(m)

	var s *store.SQLiteStore
	var res runResult
	if !noRecord {
		s, err = openStore()
		if err != nil {
			exitErr("open store", err)
		}
		defer s.Close()

		snapshot, err := cfg.Marshal()
		if err != nil {
			exitErr("snapshot config", err)
		}
		run, err := s.CreateRun(cmd.Context(), store.CreateRunParams{
			Label:  label,
			Seed:   cfg.Seed,
			Ticks:  cfg.Ticks,
			Dt:     cfg.Dt,
			Birds:  cfg.Birds(),
			Config: string(snapshot),
		})
		if err != nil {
			exitErr("create run", err)
		}
		res.ID = run.ID
		log.WithField("run", run.ID).Info("recording run")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	runErr := swarm.Run(ctx, cfg.Ticks)
	stop()
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		exitErr("run", runErr)
	}

	res.Ticks = swarm.Counters().Ticks
	res.Time = swarm.Now()
	res.Samples = len(swarm.Samples())
	res.Interrupted = runErr != nil
	res.Counters = swarm.Counters()

	if s != nil {
		// the run context may be cancelled already
		ctx := context.WithoutCancel(cmd.Context())
		if err := s.PutSamples(ctx, res.ID, swarm.Samples()); err != nil {
			exitErr("save samples", err)
		}
		if err := s.FinishRun(ctx, res.ID, res.Ticks); err != nil {
			exitErr("finish run", err)
		}
	}

	if metricsFile != "" {
		if err := prometheus.WriteToTextfile(metricsFile, reg); err != nil {
			exitErr("write metrics", err)
		}
	}

	if formatFlag == "text" {
		fmt.Printf("run %s: %d ticks, %.2fs simulated, %d samples, %d meals, %d exchanges\n",
			res.ID, res.Ticks, res.Time, res.Samples, res.Counters.Meals, res.Counters.Exchanges)
		return
	}
	b, _ := json.MarshalIndent(res, "", "  ")
	fmt.Println(string(b))
}
