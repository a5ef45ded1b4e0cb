package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/buildforge-io/jenkins/pkg/jenkins"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// logPollInterval is the delay between progressive log polls while a build
// is still running.
const logPollInterval = 2 * time.Second

// NewJobsCommand creates the jobs command group
func NewJobsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "jobs",
		Aliases: []string{"job"},
		Short:   "Manage jobs and builds",
		Long:    "List jobs, inspect builds, trigger builds and fetch console output",
	}

	cmd.AddCommand(newJobsListCommand())
	cmd.AddCommand(newJobsGetCommand())
	cmd.AddCommand(newJobsBuildCommand())
	cmd.AddCommand(newJobsConsoleCommand())

	return cmd
}

func newJobsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			list, err := client.Jobs().List(context.Background())
			if err != nil {
				return fmt.Errorf("listing jobs: %w", err)
			}

			switch viper.GetString("output") {
			case OutputFormatJSON:
				return outputJSON(list.Jobs)
			case OutputFormatYAML:
				return outputYAML(list.Jobs)
			default:
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Name", "Color", "URL")

				for _, job := range list.Jobs {
					_ = table.Append(job.Name, job.Color, job.URL)
				}

				if err := table.Render(); err != nil {
					return fmt.Errorf("failed to render table: %w", err)
				}
			}

			return nil
		},
	}
}

func newJobsGetCommand() *cobra.Command {
	var tree string

	cmd := &cobra.Command{
		Use:   "get JOB",
		Short: "Show a job",
		Long:  "Show a job's API representation. Nested jobs use folder/name paths.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			raw, err := client.Jobs().Get(context.Background(), jenkins.JobPath(args[0]), tree)
			if err != nil {
				return fmt.Errorf("getting job: %w", err)
			}

			return outputRawJSON(raw)
		},
	}

	cmd.Flags().StringVar(&tree, "tree", "", "tree expression to narrow the returned fields")

	return cmd
}

func newJobsBuildCommand() *cobra.Command {
	var params []string

	cmd := &cobra.Command{
		Use:   "build JOB",
		Short: "Trigger a build",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			job := jenkins.JobPath(args[0])
			ctx := context.Background()

			var triggered *jenkins.TriggeredBuild

			if len(params) > 0 {
				formParams := make([]jenkins.Param, 0, len(params))

				for _, param := range params {
					key, value, found := strings.Cut(param, "=")
					if !found || key == "" {
						return fmt.Errorf("%w: %q", ErrInvalidParamFormat, param)
					}

					formParams = append(formParams, jenkins.Param{Key: key, Value: value})
				}

				triggered, err = client.Jobs().BuildWithParameters(ctx, job, formParams)
			} else {
				triggered, err = client.Jobs().Build(ctx, job)
			}

			if err != nil {
				return fmt.Errorf("triggering build: %w", err)
			}

			if triggered.QueueItemID != "" {
				fmt.Printf("Build queued, queue item %s\n", triggered.QueueItemID)
			} else {
				fmt.Println("Build queued")
			}

			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "build parameter KEY=VALUE (repeatable)")

	return cmd
}

func newJobsConsoleCommand() *cobra.Command {
	var follow bool

	cmd := &cobra.Command{
		Use:   "console JOB BUILD",
		Short: "Fetch console output for a build",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			build, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("%w: %q", ErrInvalidBuildNumber, args[1])
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			job := jenkins.JobPath(args[0])
			ctx := context.Background()

			if !follow {
				text, err := client.Jobs().ConsoleText(ctx, job, build)
				if err != nil {
					return fmt.Errorf("getting console text: %w", err)
				}

				fmt.Print(text)

				return nil
			}

			var start int64

			for {
				chunk, err := client.Jobs().ProgressiveConsoleText(ctx, job, build, start)
				if err != nil {
					return fmt.Errorf("getting console text: %w", err)
				}

				fmt.Print(chunk.Text)

				if !chunk.MoreData || chunk.NextStart < 0 {
					return nil
				}

				start = chunk.NextStart

				time.Sleep(logPollInterval)
			}
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "poll the progressive log until the build finishes")

	return cmd
}
