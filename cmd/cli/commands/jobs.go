package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/celestiaorg/quill/internal/types"
)

// Job flag names
const (
	flagWatch    = "watch"
	flagInterval = "interval"
	flagDemo     = "demo"
)

// defaultWatchInterval is the polling period of jobs get --watch
const defaultWatchInterval = 2 * time.Second

func init() {
	jobsCmd.AddCommand(getJobCmd)
	cronCmd.AddCommand(scanCmd)

	getJobCmd.Flags().BoolP(flagWatch, "W", false, "Poll until the job finishes")
	getJobCmd.Flags().Duration(flagInterval, defaultWatchInterval, "Polling interval with --watch")
	getJobCmd.Flags().Bool(flagDemo, false, "Read a demo job without credentials")
}

var runCmd = &cobra.Command{
	Use:   "run <content-id>",
	Short: "Dispatch a content item to the agent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := apiClient.RunAgent(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("error dispatching content: %w", err)
		}
		return printJSON(cmd, resp)
	},
}

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect agent jobs",
}

var getJobCmd = &cobra.Command{
	Use:   "get <job-id>",
	Short: "Show the status and logs of a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		watch, _ := cmd.Flags().GetBool(flagWatch)
		interval, _ := cmd.Flags().GetDuration(flagInterval)
		demo, _ := cmd.Flags().GetBool(flagDemo)

		read := apiClient.GetJob
		if demo {
			read = apiClient.GetDemoJob
		}

		for {
			job, err := read(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("error getting job: %w", err)
			}
			if !watch || job.IsFinished() {
				return printJSON(cmd, job)
			}
			printStep(cmd, &job)

			select {
			case <-cmd.Context().Done():
				return cmd.Context().Err()
			case <-time.After(interval):
			}
		}
	},
}

func printStep(cmd *cobra.Command, job *types.JobStatusResponse) {
	step := ""
	if job.CurrentStep != nil {
		step = *job.CurrentStep
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s %s\n", job.ID, job.Status, step)
}

var cronCmd = &cobra.Command{
	Use:   "cron",
	Short: "Internal scheduler operations, the token must be the cron secret",
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Dispatch every content item that is due",
	RunE: func(cmd *cobra.Command, _ []string) error {
		resp, err := apiClient.TriggerScan(cmd.Context())
		if err != nil {
			return fmt.Errorf("error running scan: %w", err)
		}
		return printJSON(cmd, resp)
	},
}

var demoCmd = &cobra.Command{
	Use:   "demo <topic>",
	Short: "Start an unauthenticated demo run for a topic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := apiClient.DemoRun(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("error starting demo: %w", err)
		}
		return printJSON(cmd, resp)
	},
}
