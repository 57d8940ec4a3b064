package reviewclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"slack-review-relay/internal/domain"
)

type Client interface {
	DisplayReview(ctx context.Context, review string) (domain.Decision, error)
	SendMessage(ctx context.Context, channelID, message string) error
}

type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// No client timeout: DisplayReview waits for a human, bound it with ctx.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

func (c *HTTPClient) DisplayReview(ctx context.Context, review string) (domain.Decision, error) {
	if review == "" {
		return "", fmt.Errorf("review text is required")
	}
	resp, err := c.post(ctx, "/display_reviews", domain.DisplayReviewRequest{Review: review})
	if err != nil {
		return "", err
	}
	switch resp.Action {
	case domain.DecisionApprove, domain.DecisionDeny:
		return resp.Action, nil
	default:
		return "", fmt.Errorf("relay returned unknown action %q", resp.Action)
	}
}

func (c *HTTPClient) SendMessage(ctx context.Context, channelID, message string) error {
	_, err := c.post(ctx, "/send_message", domain.SendMessageRequest{ChannelID: channelID, Message: message})
	return err
}

func (c *HTTPClient) post(ctx context.Context, path string, payload any) (domain.ReviewResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.ReviewResponse{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return domain.ReviewResponse{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return domain.ReviewResponse{}, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.ReviewResponse{}, err
	}

	var parsed domain.ReviewResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return domain.ReviewResponse{}, fmt.Errorf("unable to parse relay response: %w", err)
	}

	if resp.StatusCode >= 400 {
		if parsed.Message != "" {
			return domain.ReviewResponse{}, fmt.Errorf("relay %s failed: %s", path, parsed.Message)
		}
		return domain.ReviewResponse{}, fmt.Errorf("relay %s failed with status %d", path, resp.StatusCode)
	}
	return parsed, nil
}
