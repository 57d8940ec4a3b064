package temporal

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"slack-review-relay/internal/domain"
)

const ReviewGateWorkflowName = "ReviewGateWorkflow"

type WorkflowInput struct {
	Review          string
	NotifyChannelID string
	// Timeout bounds the wait for a decision; zero uses the request_review policy.
	Timeout time.Duration
}

type WorkflowResult struct {
	Review   string
	Decision domain.Decision
}

func ReviewGateWorkflow(ctx workflow.Context, input WorkflowInput) (WorkflowResult, error) {
	state := GateStateAwaitingDecision
	if err := workflow.SetQueryHandler(ctx, ReviewStatusQueryName, func() (GateState, error) {
		return state, nil
	}); err != nil {
		return WorkflowResult{}, err
	}

	if input.Review == "" {
		state = GateStateFailed
		return WorkflowResult{}, temporal.NewNonRetryableApplicationError("review text is required", "InvalidInput", nil)
	}

	reviewCtx := mustActivityContext(ctx, ActivityPolicyRequestReview)
	if input.Timeout > 0 {
		ao := workflow.GetActivityOptions(reviewCtx)
		ao.StartToCloseTimeout = input.Timeout
		reviewCtx = workflow.WithActivityOptions(ctx, ao)
	}

	var requested RequestReviewOutput
	if err := workflow.ExecuteActivity(reviewCtx, (*Activities).RequestReviewActivity, RequestReviewInput{
		Review: input.Review,
	}).Get(ctx, &requested); err != nil {
		state = GateStateFailed
		return WorkflowResult{}, err
	}
	state = GateStateDecided

	result := WorkflowResult{Review: input.Review, Decision: requested.Decision}
	if input.NotifyChannelID == "" {
		return result, nil
	}

	// The decision stands even if the announcement cannot be delivered.
	if err := workflow.ExecuteActivity(mustActivityContext(ctx, ActivityPolicyAnnounceOutcome), (*Activities).AnnounceOutcomeActivity, AnnounceOutcomeInput{
		ChannelID: input.NotifyChannelID,
		Review:    input.Review,
		Decision:  requested.Decision,
	}).Get(ctx, nil); err != nil {
		workflow.GetLogger(ctx).Warn("announce outcome failed", "error", err)
		return result, nil
	}
	state = GateStateAnnounced

	return result, nil
}
