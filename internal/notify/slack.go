package notify

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/slack-go/slack"

	"slack-review-relay/internal/domain"
)

const reviewFallbackText = "Here is a new review:"

type SlackGateway struct {
	client    *slack.Client
	channelID string

	mu        sync.Mutex
	botUserID string
}

// apiURL may be empty.
func NewSlackGateway(token, channelID, apiURL string) *SlackGateway {
	var opts []slack.Option
	if apiURL != "" {
		if !strings.HasSuffix(apiURL, "/") {
			apiURL += "/"
		}
		opts = append(opts, slack.OptionAPIURL(apiURL))
	}
	return &SlackGateway{
		client:    slack.New(token, opts...),
		channelID: channelID,
	}
}

func (g *SlackGateway) PostReview(ctx context.Context, review string) error {
	_, _, err := g.client.PostMessageContext(ctx, g.channelID,
		slack.MsgOptionText(reviewFallbackText, false),
		slack.MsgOptionBlocks(ReviewBlocks(review)...),
	)
	if err != nil {
		log.Printf("failed to post review channel=%s: %v", g.channelID, err)
		return fmt.Errorf("post review: %w", err)
	}
	log.Printf("review posted channel=%s", g.channelID)
	return nil
}

func (g *SlackGateway) PostText(ctx context.Context, channelID, text string) error {
	if _, _, err := g.client.PostMessageContext(ctx, channelID, slack.MsgOptionText(text, false)); err != nil {
		log.Printf("failed to post message channel=%s: %v", channelID, err)
		return fmt.Errorf("post message: %w", err)
	}
	return nil
}

// Ping also caches the bot user id.
func (g *SlackGateway) Ping(ctx context.Context) error {
	resp, err := g.client.AuthTestContext(ctx)
	if err != nil {
		return fmt.Errorf("slack auth test: %w", err)
	}
	g.mu.Lock()
	g.botUserID = resp.UserID
	g.mu.Unlock()
	return nil
}

func (g *SlackGateway) BotUserID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.botUserID
}

// Both buttons carry the full review text as their value.
func ReviewBlocks(review string) []slack.Block {
	section := slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, review, false, false),
		nil, nil,
	)

	approve := slack.NewButtonBlockElement(
		string(domain.ActionApprove), review,
		slack.NewTextBlockObject(slack.PlainTextType, "Approve", false, false),
	).WithStyle(slack.StylePrimary)
	deny := slack.NewButtonBlockElement(
		string(domain.ActionDeny), review,
		slack.NewTextBlockObject(slack.PlainTextType, "Deny", false, false),
	).WithStyle(slack.StyleDanger)

	return []slack.Block{section, slack.NewActionBlock("", approve, deny)}
}
