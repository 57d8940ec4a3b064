package temporal

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/activity"

	"slack-review-relay/internal/domain"
	"slack-review-relay/internal/reviewclient"
)

const defaultHeartbeatInterval = 10 * time.Second

type Activities struct {
	Relay             reviewclient.Client
	HeartbeatInterval time.Duration
}

type RequestReviewInput struct {
	Review string
}

type RequestReviewOutput struct {
	Decision domain.Decision
}

type AnnounceOutcomeInput struct {
	ChannelID string
	Review    string
	Decision  domain.Decision
}

func (a *Activities) RequestReviewActivity(ctx context.Context, input RequestReviewInput) (RequestReviewOutput, error) {
	interval := a.HeartbeatInterval
	if interval <= 0 {
		interval = defaultHeartbeatInterval
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				activity.RecordHeartbeat(ctx)
			case <-stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	decision, err := a.Relay.DisplayReview(ctx, input.Review)
	if err != nil {
		return RequestReviewOutput{}, fmt.Errorf("request review: %w", err)
	}
	return RequestReviewOutput{Decision: decision}, nil
}

func (a *Activities) AnnounceOutcomeActivity(ctx context.Context, input AnnounceOutcomeInput) error {
	if err := a.Relay.SendMessage(ctx, input.ChannelID, outcomeMessage(input.Review, input.Decision)); err != nil {
		return fmt.Errorf("announce outcome: %w", err)
	}
	return nil
}

func outcomeMessage(review string, decision domain.Decision) string {
	verb := "denied"
	if decision == domain.DecisionApprove {
		verb = "approved"
	}
	return fmt.Sprintf("Review %s: %s", verb, review)
}
