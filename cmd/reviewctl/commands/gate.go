package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	appTemporal "slack-review-relay/internal/temporal"
)

var (
	gateNotifyChannel string
	gateWorkflowID    string
	gateWait          bool
)

var gateCmd = &cobra.Command{
	Use:   "gate <text>",
	Short: "Start a review gate workflow",
	Long: `Start a ReviewGateWorkflow on the configured Temporal task queue. The
workflow posts the review through the relay, waits up to REVIEW_TIMEOUT_SEC for
a decision and optionally announces the outcome to a channel.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGate,
}

func init() {
	gateCmd.Flags().StringVar(&gateNotifyChannel, "notify-channel", "",
		"Channel to announce the outcome in (default: $REVIEW_NOTIFY_CHANNEL_ID)")
	gateCmd.Flags().StringVar(&gateWorkflowID, "workflow-id", "",
		"Workflow id (default: review-gate-<uuid>)")
	gateCmd.Flags().BoolVar(&gateWait, "wait", false,
		"Wait for the workflow result")
}

func runGate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	temporalClient, err := client.Dial(client.Options{
		HostPort:  clientCfg.TemporalAddress,
		Namespace: clientCfg.TemporalNamespace,
	})
	if err != nil {
		return fmt.Errorf("connect temporal: %w", err)
	}
	defer temporalClient.Close()

	opts, input := gateRequest(strings.Join(args, " "))

	startCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	run, err := temporalClient.ExecuteWorkflow(startCtx, opts, appTemporal.ReviewGateWorkflowName, input)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) {
			fmt.Fprintf(cmd.OutOrStdout(), "workflow already started workflow_id=%s\n", opts.ID)
			return nil
		}
		return fmt.Errorf("start workflow %s: %w", opts.ID, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "started workflow_id=%s run_id=%s\n", run.GetID(), run.GetRunID())
	if !gateWait {
		return nil
	}

	var result appTemporal.WorkflowResult
	if err := run.Get(ctx, &result); err != nil {
		return fmt.Errorf("workflow %s: %w", run.GetID(), err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), result.Decision)
	return nil
}

func gateRequest(review string) (client.StartWorkflowOptions, appTemporal.WorkflowInput) {
	id := gateWorkflowID
	if id == "" {
		id = "review-gate-" + uuid.NewString()
	}
	channel := gateNotifyChannel
	if channel == "" {
		channel = clientCfg.ReviewNotifyChannelID
	}

	return client.StartWorkflowOptions{
			ID:        id,
			TaskQueue: clientCfg.TemporalTaskQueue,
		}, appTemporal.WorkflowInput{
			Review:          review,
			NotifyChannelID: channel,
			Timeout:         time.Duration(clientCfg.ReviewTimeoutSec) * time.Second,
		}
}
