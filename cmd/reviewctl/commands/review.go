package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"slack-review-relay/internal/reviewclient"
)

// reviewTimeout of zero waits until interrupted.
var reviewTimeout time.Duration

var reviewCmd = &cobra.Command{
	Use:   "review <text>",
	Short: "Post a review and wait for the decision",
	Long: `Post a review to the relay's channel and block until someone clicks
Approve or Deny. Text starting with "$" is approved, anything else is denied.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runReview,
}

func init() {
	reviewCmd.Flags().DurationVar(&reviewTimeout, "timeout", 0,
		"Give up waiting after this long (e.g. 30m)")
}

func runReview(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if reviewTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, reviewTimeout)
		defer cancel()
	}

	relay := reviewclient.NewHTTPClient(clientCfg.RelayBaseURL)
	decision, err := relay.DisplayReview(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), decision)
	return nil
}
