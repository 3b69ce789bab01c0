package main

import (
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run curation periodically on a cron schedule",
	Long:  "Runs the curation step on a cron schedule and writes the candidate JSON to a file each time, until interrupted. Generation stays a manual step since item selection happens outside this tool.",
	RunE:  runSchedule,
}

var (
	scheduleSpec string
	scheduleOut  string
)

func init() {
	scheduleCmd.Flags().StringVar(&scheduleSpec, "cron", "@hourly", "Cron expression for the curation runs")
	scheduleCmd.Flags().StringVarP(&scheduleOut, "out", "o", "", "Path for the candidates JSON, rewritten each run (required)")
	scheduleCmd.Flags().StringVarP(&curateFeeds, "feeds", "f", "", "Path to feeds file, one URL per line (# comments allowed)")
	scheduleCmd.Flags().BoolVarP(&curateVerbose, "verbose", "v", false, "Print detailed debug information")

	if err := scheduleCmd.MarkFlagRequired("out"); err != nil {
		panic(fmt.Sprintf("failed to mark out flag as required: %v", err))
	}

	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	cfg, err := curationConfig()
	if err != nil {
		return err
	}

	runOnce := func() {
		candidates, err := curate(cmd, cfg)
		if err != nil {
			log.Printf("curation run failed: %v", err)
			return
		}
		if err := writeCandidates(candidates, scheduleOut); err != nil {
			log.Printf("curation run failed: %v", err)
			return
		}
		log.Printf("curation run complete: %d candidates", len(candidates))
	}

	c := cron.New()
	if _, err := c.AddFunc(scheduleSpec, runOnce); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", scheduleSpec, err)
	}

	// One immediate run, then the schedule takes over.
	runOnce()
	c.Start()
	defer c.Stop()

	fmt.Printf("Scheduled curation (%s); press Ctrl+C to stop.\n", scheduleSpec)
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	fmt.Println("Stopping.")
	return nil
}
