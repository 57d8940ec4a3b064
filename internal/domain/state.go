package domain

type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionDeny    Decision = "deny"
)

type ActionID string

const (
	ActionApprove ActionID = "approve_button"
	ActionDeny    ActionID = "deny_button"
)

const ApproveSentinel = "$"

// Slack rejects button values longer than this, and the review travels as the value.
const MaxReviewLength = 2000

func (a ActionID) Valid() bool {
	return a == ActionApprove || a == ActionDeny
}
