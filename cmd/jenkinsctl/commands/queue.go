package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewQueueCommand creates the queue command group
func NewQueueCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Manage the build queue",
		Long:  "List and cancel pending queue items",
	}

	cmd.AddCommand(newQueueListCommand())
	cmd.AddCommand(newQueueCancelCommand())

	return cmd
}

func newQueueListCommand() *cobra.Command {
	var tree string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queue items",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			raw, err := client.Queue().List(context.Background(), tree)
			if err != nil {
				return fmt.Errorf("listing queue: %w", err)
			}

			return outputRawJSON(raw)
		},
	}

	cmd.Flags().StringVar(&tree, "tree", "items[id,why,task[name]]", "tree expression to narrow the returned fields")

	return cmd
}

func newQueueCancelCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel ID",
		Short: "Cancel a queue item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("%w: %q", ErrInvalidQueueItemID, args[0])
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			if err := client.Queue().Cancel(context.Background(), id); err != nil {
				return fmt.Errorf("cancelling queue item: %w", err)
			}

			fmt.Printf("Queue item %d cancelled\n", id)

			return nil
		},
	}
}
