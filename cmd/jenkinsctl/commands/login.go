package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/buildforge-io/jenkins/pkg/jenkins"
	"github.com/buildforge-io/jenkins/pkg/jenkinsclient"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

// NewLoginCommand creates the login command
func NewLoginCommand() *cobra.Command {
	var (
		server   string
		username string
		token    string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against a server",
		Long: `Verify credentials against a server and save them to the config file.

The token is the user's API token, generated on the server under the user's
security settings. Credentials are checked with a whoAmI call before they
are saved.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if server == "" {
				server = viper.GetString("server")
			}

			if server == "" {
				return ErrServerRequired
			}

			if username == "" {
				reader := bufio.NewReader(os.Stdin)
				fmt.Print("Username: ")
				username, _ = reader.ReadString('\n')
				username = strings.TrimSpace(username)
			}

			if token == "" {
				fmt.Print("API token: ")

				byteToken, err := term.ReadPassword(int(syscall.Stdin))
				if err != nil {
					return fmt.Errorf("failed to read token: %w", err)
				}

				token = string(byteToken)

				fmt.Println()
			}

			if username == "" || token == "" {
				return ErrCredentialsRequired
			}

			client, err := jenkinsclient.New(&jenkins.Config{
				BaseURL:       server,
				Username:      username,
				APIToken:      token,
				SkipTLSVerify: viper.GetBool("skip-ssl-validation"),
			})
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			who, err := client.Users().WhoAmI(context.Background())
			if err != nil {
				return fmt.Errorf("failed to authenticate: %w", err)
			}

			viper.Set("server", server)
			viper.Set("user", username)
			viper.Set("token", token)

			if err := viper.WriteConfig(); err != nil {
				// First login has no config file yet.
				if err = viper.SafeWriteConfig(); err != nil {
					return fmt.Errorf("failed to save config: %w", err)
				}
			}

			fmt.Printf("Logged in as %s\n", who.Name)

			return nil
		},
	}

	cmd.Flags().StringVarP(&server, "server", "s", "", "server base URL")
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&token, "api-token", "t", "", "API token")

	return cmd
}
