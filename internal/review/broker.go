package review

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"unicode/utf8"

	"github.com/google/uuid"

	"slack-review-relay/internal/domain"
)

var (
	ErrEmptyReview    = errors.New("review text is required")
	ErrReviewTooLong  = fmt.Errorf("review text exceeds %d characters", domain.MaxReviewLength)
	ErrDeliveryFailed = errors.New("review could not be delivered")
)

type Gateway interface {
	PostReview(ctx context.Context, review string) error
}

type Status struct {
	Awaiting      int  `json:"awaiting"`
	DecisionReady bool `json:"decision_ready"`
}

// Only one review is expected in flight; the recorded text is the only
// correlation key.
type Broker struct {
	gateway  Gateway
	slot     chan string
	awaiting atomic.Int32
}

func NewBroker(gateway Gateway) *Broker {
	return &Broker{
		gateway: gateway,
		slot:    make(chan string, 1),
	}
}

// SubmitReview has no timeout of its own; the wait ends when ctx is done.
func (b *Broker) SubmitReview(ctx context.Context, review string) (domain.Decision, error) {
	if review == "" {
		return "", ErrEmptyReview
	}
	if utf8.RuneCountInString(review) > domain.MaxReviewLength {
		return "", ErrReviewTooLong
	}

	ticket := uuid.NewString()
	if stale, ok := b.drain(); ok {
		log.Printf("discarded unconsumed decision ticket=%s action=%s", ticket, domain.DecisionFromText(stale))
	}

	if err := b.gateway.PostReview(ctx, review); err != nil {
		log.Printf("review post failed ticket=%s: %v", ticket, err)
		return "", fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	log.Printf("review posted ticket=%s, awaiting decision", ticket)

	recorded, err := b.take(ctx)
	if err != nil {
		log.Printf("review wait abandoned ticket=%s: %v", ticket, err)
		return "", err
	}

	decision := domain.DecisionFromText(recorded)
	log.Printf("review decided ticket=%s action=%s", ticket, decision)
	return decision, nil
}

// RecordDecision never blocks. A click arriving while the slot is full is
// dropped and false is returned.
func (b *Broker) RecordDecision(actionID domain.ActionID, review string) bool {
	if !actionID.Valid() {
		return false
	}
	if !b.offer(review) {
		log.Printf("decision discarded, slot occupied action_id=%s", actionID)
		return false
	}
	log.Printf("decision recorded action_id=%s", actionID)
	return true
}

func (b *Broker) Status() Status {
	return Status{
		Awaiting:      int(b.awaiting.Load()),
		DecisionReady: len(b.slot) > 0,
	}
}

func (b *Broker) offer(review string) bool {
	select {
	case b.slot <- review:
		return true
	default:
		return false
	}
}

// drain empties a slot left behind by a caller that stopped waiting.
func (b *Broker) drain() (string, bool) {
	select {
	case review := <-b.slot:
		return review, true
	default:
		return "", false
	}
}

func (b *Broker) take(ctx context.Context) (string, error) {
	b.awaiting.Add(1)
	defer b.awaiting.Add(-1)

	select {
	case review := <-b.slot:
		return review, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
