package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewNodesCommand creates the nodes command group
func NewNodesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "nodes",
		Aliases: []string{"node", "computers"},
		Short:   "Manage build agents",
		Long:    "List agents and inspect executor usage",
	}

	cmd.AddCommand(newNodesListCommand())
	cmd.AddCommand(newNodesExecutorsCommand())

	return cmd
}

func newNodesListCommand() *cobra.Command {
	var tree string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List build agents",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			raw, err := client.Computers().List(context.Background(), tree)
			if err != nil {
				return fmt.Errorf("listing nodes: %w", err)
			}

			return outputRawJSON(raw)
		},
	}

	cmd.Flags().StringVar(&tree, "tree", "computer[displayName,offline,numExecutors]", "tree expression to narrow the returned fields")

	return cmd
}

func newNodesExecutorsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "executors",
		Short: "Show executor usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			info, err := client.Computers().ExecutorsInfo(context.Background())
			if err != nil {
				return fmt.Errorf("getting executors info: %w", err)
			}

			switch viper.GetString("output") {
			case OutputFormatJSON:
				return outputJSON(info)
			case OutputFormatYAML:
				return outputYAML(info)
			default:
				table := tablewriter.NewWriter(os.Stdout)
				table.Header("Total", "Busy", "Idle")
				_ = table.Append(
					fmt.Sprintf("%d", info.TotalExecutors),
					fmt.Sprintf("%d", info.BusyExecutors),
					fmt.Sprintf("%d", info.IdleExecutors()),
				)

				if err := table.Render(); err != nil {
					return fmt.Errorf("failed to render table: %w", err)
				}
			}

			return nil
		},
	}
}
