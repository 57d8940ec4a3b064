package temporal

const ReviewStatusQueryName = "reviewStatus"

type GateState string

const (
	GateStateAwaitingDecision GateState = "AWAITING_DECISION"
	GateStateDecided          GateState = "DECIDED"
	GateStateAnnounced        GateState = "ANNOUNCED"
	GateStateFailed           GateState = "FAILED"
)
