package listener

import (
	"context"
	"fmt"
	"strings"

	"slack-review-relay/internal/domain"
)

type Replier interface {
	PostText(ctx context.Context, channelID, text string) error
}

type Listener struct {
	trigger   string
	reply     string
	replier   Replier
	botUserID func() string
}

// botUserID may be nil.
func New(trigger, reply string, replier Replier, botUserID func() string) *Listener {
	return &Listener{trigger: trigger, reply: reply, replier: replier, botUserID: botUserID}
}

func (l *Listener) HandleMessage(ctx context.Context, msg domain.InboundMessage) (bool, error) {
	if l.fromSelf(msg) {
		return false, nil
	}
	if msg.Channel == "" || !strings.HasPrefix(msg.Text, l.trigger) {
		return false, nil
	}
	if err := l.replier.PostText(ctx, msg.Channel, l.reply); err != nil {
		return false, fmt.Errorf("reply to channel %s: %w", msg.Channel, err)
	}
	return true, nil
}

func (l *Listener) fromSelf(msg domain.InboundMessage) bool {
	if msg.BotID != "" {
		return true
	}
	if l.botUserID == nil {
		return false
	}
	id := l.botUserID()
	return id != "" && msg.User == id
}
