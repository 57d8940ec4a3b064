package commands

import (
	"github.com/spf13/cobra"

	"slack-review-relay/internal/config"
)

var (
	// relayURL overrides RELAY_BASE_URL.
	relayURL string

	clientCfg config.ClientConfig
)

var rootCmd = &cobra.Command{
	Use:   "reviewctl",
	Short: "Ask a human to approve or deny through the Slack review relay",
	Long: `reviewctl talks to a running review relay.

Use it to post a review and wait for the approve/deny click, to send plain
messages through the relay's bot, or to start a durable review gate workflow.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadClient()
		if err != nil {
			return err
		}
		if relayURL != "" {
			cfg.RelayBaseURL = relayURL
		}
		clientCfg = cfg
		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&relayURL, "relay", "",
		"Relay base URL (default: $RELAY_BASE_URL or http://localhost:8080)",
	)

	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(gateCmd)
}
