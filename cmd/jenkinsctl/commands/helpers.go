// Package commands implements the jenkinsctl subcommands.
package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/buildforge-io/jenkins/pkg/jenkins"
	"github.com/buildforge-io/jenkins/pkg/jenkinsclient"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Output formats.
const (
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"

	defaultJSONIndent = 2
)

// Common static errors used throughout the commands package.
var (
	ErrServerRequired      = errors.New("server URL is required (use --server or set JENKINSCTL_SERVER)")
	ErrJobNameRequired     = errors.New("job name is required")
	ErrInvalidQueueItemID  = errors.New("queue item id must be an integer")
	ErrInvalidBuildNumber  = errors.New("build number must be an integer")
	ErrInvalidParamFormat  = errors.New("invalid parameter format, expected KEY=VALUE")
	ErrCredentialsRequired = errors.New("username and token are required")
)

// CreateClient builds a client from the effective CLI configuration.
func CreateClient() (jenkins.Client, error) {
	server := viper.GetString("server")
	if server == "" {
		return nil, ErrServerRequired
	}

	config := &jenkins.Config{
		BaseURL:       server,
		SkipTLSVerify: viper.GetBool("skip-ssl-validation"),
		DisableCrumb:  viper.GetBool("no-crumb"),
		Debug:         viper.GetBool("verbose"),
	}

	user := viper.GetString("user")
	token := viper.GetString("token")

	switch {
	case user != "":
		config.Username = user
		config.APIToken = token
	case token != "":
		config.BearerToken = token
	}

	client, err := jenkinsclient.New(config)
	if err != nil {
		return nil, fmt.Errorf("creating client: %w", err)
	}

	return client, nil
}

// outputJSON writes v to stdout as indented JSON.
func outputJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	return encoder.Encode(v)
}

// outputYAML writes v to stdout as YAML.
func outputYAML(v interface{}) error {
	encoder := yaml.NewEncoder(os.Stdout)
	encoder.SetIndent(defaultJSONIndent)

	return encoder.Encode(v)
}

// outputRawJSON pretty-prints a raw JSON payload in the selected format.
func outputRawJSON(raw json.RawMessage) error {
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("parsing response: %w", err)
	}

	if viper.GetString("output") == OutputFormatYAML {
		return outputYAML(decoded)
	}

	return outputJSON(decoded)
}
