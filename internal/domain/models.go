package domain

// Review is the value attached to the button when the message was rendered.
type ActionEvent struct {
	ActionID ActionID `json:"action_id"`
	Review   string   `json:"value"`
}

type InboundMessage struct {
	Channel string `json:"channel"`
	User    string `json:"user"`
	BotID   string `json:"bot_id,omitempty"`
	Text    string `json:"text"`
}

type ReviewResponse struct {
	Status  string   `json:"status"`
	Message string   `json:"message,omitempty"`
	Action  Decision `json:"action,omitempty"`
}

type SendMessageRequest struct {
	ChannelID string `json:"channel_id"`
	Message   string `json:"message"`
}

type DisplayReviewRequest struct {
	Review string `json:"review"`
}
