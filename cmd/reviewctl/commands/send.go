package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"slack-review-relay/internal/reviewclient"
)

var (
	sendChannel string
	sendMessage string
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a plain message through the relay",
	RunE:  runSend,
}

func init() {
	sendCmd.Flags().StringVar(&sendChannel, "channel", "",
		"Destination channel id (required)")
	sendCmd.Flags().StringVar(&sendMessage, "message", "",
		"Message text (required)")

	sendCmd.MarkFlagRequired("channel")
	sendCmd.MarkFlagRequired("message")
}

func runSend(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	relay := reviewclient.NewHTTPClient(clientCfg.RelayBaseURL)
	if err := relay.SendMessage(ctx, sendChannel, sendMessage); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "sent to %s\n", sendChannel)
	return nil
}
