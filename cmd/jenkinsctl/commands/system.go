package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewSystemCommand creates the system command group
func NewSystemCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "system",
		Short: "Instance-level operations",
		Long:  "Inspect the instance and manage quiet mode",
	}

	cmd.AddCommand(newSystemWhoAmICommand())
	cmd.AddCommand(newSystemCrumbCommand())
	cmd.AddCommand(newSystemQuietDownCommand())
	cmd.AddCommand(newSystemCancelQuietDownCommand())

	return cmd
}

func newSystemWhoAmICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the authenticated user",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			who, err := client.Users().WhoAmI(context.Background())
			if err != nil {
				return fmt.Errorf("getting current user: %w", err)
			}

			if who.Anonymous {
				fmt.Println("Not authenticated (anonymous)")

				return nil
			}

			fmt.Println(who.Name)

			return nil
		},
	}
}

func newSystemCrumbCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "crumb",
		Short: "Fetch a CSRF crumb",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			crumb, err := client.System().Crumb(context.Background())
			if err != nil {
				return fmt.Errorf("getting crumb: %w", err)
			}

			fmt.Printf("%s: %s\n", crumb.CrumbRequestField, crumb.Crumb)

			return nil
		},
	}
}

func newSystemQuietDownCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "quiet-down",
		Short: "Stop scheduling new builds",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			if err := client.System().QuietDown(context.Background()); err != nil {
				return fmt.Errorf("entering quiet mode: %w", err)
			}

			fmt.Println("Quiet mode enabled")

			return nil
		},
	}
}

func newSystemCancelQuietDownCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel-quiet-down",
		Short: "Resume scheduling builds",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := CreateClient()
			if err != nil {
				return err
			}

			if err := client.System().CancelQuietDown(context.Background()); err != nil {
				return fmt.Errorf("cancelling quiet mode: %w", err)
			}

			fmt.Println("Quiet mode cancelled")

			return nil
		},
	}
}
