// Package commands implements the quill command line client
package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/celestiaorg/quill/pkg/api/v1/client"
	"github.com/celestiaorg/quill/pkg/api/v1/routes"
)

// flag names
const (
	flagServerAddress = "server-address"
	flagToken         = "token"
)

// environment variable names
const (
	envServerAddress = "QUILL_SERVER_ADDRESS"
	envToken         = "QUILL_TOKEN"
)

var (
	// apiClient is the shared API client instance
	apiClient client.Client
	// serverAddress holds the target API server address. Flag parsing sets this.
	serverAddress string
	// token is sent as the Bearer credential
	token string
)

// initClient initializes the API client
func initClient() error {
	opts := client.DefaultOptions()
	opts.BaseURL = serverAddress
	opts.Token = token

	c, err := client.NewClient(opts)
	if err != nil {
		return err
	}
	apiClient = c
	return nil
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&serverAddress, flagServerAddress, "s", routes.DefaultBaseURL, "Address of the Quill API server (env: "+envServerAddress+")")
	RootCmd.PersistentFlags().StringVarP(&token, flagToken, "t", "", "Session token or cron secret (env: "+envToken+")")

	RootCmd.AddCommand(contentCmd)
	RootCmd.AddCommand(runCmd)
	RootCmd.AddCommand(jobsCmd)
	RootCmd.AddCommand(cronCmd)
	RootCmd.AddCommand(demoCmd)
	RootCmd.AddCommand(websitesCmd)
	RootCmd.AddCommand(settingsCmd)
	RootCmd.AddCommand(tokenCmd)
}

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "quill",
	Short: "Quill CLI - A command line interface for the Quill API",
	Long: `Quill CLI schedules content items, dispatches them to the writing agent
and follows the resulting jobs through the Quill API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		// Flag > Env Var > Default
		if !cmd.Flags().Changed(flagServerAddress) {
			if envAddr := os.Getenv(envServerAddress); envAddr != "" {
				serverAddress = envAddr
			}
		}
		if !cmd.Flags().Changed(flagToken) {
			token = os.Getenv(envToken)
		}

		if serverAddress == "" {
			return fmt.Errorf("server address cannot be empty")
		}
		// Tests inject their own client
		if apiClient != nil {
			return nil
		}
		return initClient()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return RootCmd.Execute()
}

// printJSON writes v as indented JSON to the command output
func printJSON(cmd *cobra.Command, v interface{}) error {
	prettyJSON, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("error formatting response: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(prettyJSON))
	return err
}
