package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tonimelisma/vidispine-client/internal/app"
	"github.com/tonimelisma/vidispine-client/internal/ui"
	"github.com/tonimelisma/vidispine-client/pkg/vidispine"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List jobs",
	Long:  `Lists jobs on the server, optionally filtered by state and type. By default jobs of all users are listed.`,
	Args:  cobra.NoArgs,
	RunE:  runWithApp(jobsLogic),
}

func jobsLogic(a *app.App, cmd *cobra.Command, args []string) error {
	paging, err := ui.ParsePagingFlags(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	states, _ := flags.GetStringSlice("state")
	types, _ := flags.GetStringSlice("type")
	sort, _ := flags.GetString("sort")
	onlyUser, _ := flags.GetBool("mine")
	failed, _ := flags.GetBool("failed")

	pageSize := pageSizeFor(paging, a.Config.Server)
	cur := a.SDK.FindJobs(vidispine.JobQuery{
		State:    states,
		Type:     types,
		Sort:     sort,
		OnlyUser: onlyUser,
		PageSize: pageSize,
	})

	jobs, total, err := collect(cmd.Context(), cur, paging, pageSize)
	if err != nil {
		return fmt.Errorf("listing jobs: %w", err)
	}
	if failed {
		kept := jobs[:0]
		for _, j := range jobs {
			if j.Failed() {
				kept = append(kept, j)
			}
		}
		jobs = kept
	}
	ui.DisplayJobs(jobs, total)
	return nil
}

func addJobsFlags(c *cobra.Command) {
	f := c.Flags()
	f.StringSlice("state", nil, "Only jobs in these states, e.g. RUNNING,FAILED_TOTAL")
	f.StringSlice("type", nil, "Only jobs of these types, e.g. IMPORT,TRANSCODE")
	f.String("sort", "", "Sort field, e.g. jobId")
	f.Bool("mine", false, "Only jobs started by the current user")
	f.Bool("failed", false, "Only show failed jobs among the fetched results")
	ui.AddPagingFlags(c)
}

func init() {
	addJobsFlags(jobsCmd)
	rootCmd.AddCommand(jobsCmd)
}
