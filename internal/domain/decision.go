package domain

import "strings"

// The outcome follows the review text, not the button that was clicked.
func DecisionFromText(review string) Decision {
	if strings.HasPrefix(review, ApproveSentinel) {
		return DecisionApprove
	}
	return DecisionDeny
}
