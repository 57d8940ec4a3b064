package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"

	"slack-review-relay/internal/config"
	"slack-review-relay/internal/domain"
	"slack-review-relay/internal/review"
)

type Handler struct {
	cfg      config.Config
	broker   *review.Broker
	gateway  messenger
	listener messageHandler
}

type messenger interface {
	PostText(ctx context.Context, channelID, text string) error
	Ping(ctx context.Context) error
}

type messageHandler interface {
	HandleMessage(ctx context.Context, msg domain.InboundMessage) (bool, error)
}

// Actions are matched by action_id alone; block_id is not required.
type interactionPayload struct {
	Type    string              `json:"type"`
	Actions []slack.BlockAction `json:"actions"`
}

func NewHandler(cfg config.Config, broker *review.Broker, gateway messenger, listener messageHandler) *Handler {
	return &Handler{cfg: cfg, broker: broker, gateway: gateway, listener: listener}
}

func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxSlackBodyBytes))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read request body")
		return
	}

	var challenge slackevents.ChallengeResponse
	if err := json.Unmarshal(body, &challenge); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if challenge.Challenge != "" {
		writeJSON(w, http.StatusOK, map[string]string{"challenge": challenge.Challenge})
		return
	}

	event, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil || event.Type != slackevents.CallbackEvent {
		writeError(w, http.StatusBadRequest, "Invalid Slack event")
		return
	}

	// The first delivery was already acknowledged and handled.
	if retry := r.Header.Get("X-Slack-Retry-Num"); retry != "" {
		log.Printf("skipping redelivered event retry_num=%s reason=%s", retry, r.Header.Get("X-Slack-Retry-Reason"))
		writeJSON(w, http.StatusOK, domain.ReviewResponse{Status: "success"})
		return
	}

	if msg, ok := event.InnerEvent.Data.(*slackevents.MessageEvent); ok {
		inbound := domain.InboundMessage{
			Channel: msg.Channel,
			User:    msg.User,
			BotID:   msg.BotID,
			Text:    msg.Text,
		}
		// Slack expects the ack within 3s, so the reply is sent after it.
		go h.replyToMessage(context.WithoutCancel(r.Context()), inbound)
	}

	writeJSON(w, http.StatusOK, domain.ReviewResponse{Status: "success"})
}

func (h *Handler) replyToMessage(parent context.Context, msg domain.InboundMessage) {
	ctx, cancel := context.WithTimeout(parent, 10*time.Second)
	defer cancel()

	replied, err := h.listener.HandleMessage(ctx, msg)
	if err != nil {
		log.Printf("listener reply failed channel=%s: %v", msg.Channel, err)
	} else if replied {
		log.Printf("listener replied channel=%s", msg.Channel)
	}
}

func (h *Handler) Actions(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form payload")
		return
	}
	raw := r.PostForm.Get("payload")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "payload form field is required")
		return
	}

	var payload interactionPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		log.Printf("invalid action payload: %v", err)
		writeError(w, http.StatusBadRequest, "Invalid JSON received")
		return
	}

	event, ok := firstReviewAction(payload.Actions)
	if !ok {
		writeJSON(w, http.StatusOK, domain.ReviewResponse{Status: "ignored"})
		return
	}

	log.Printf("button pressed action_id=%s", event.ActionID)
	h.broker.RecordDecision(event.ActionID, event.Review)

	writeJSON(w, http.StatusOK, domain.ReviewResponse{
		Status: "success",
		Action: domain.DecisionFromText(event.Review),
	})
}

func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req domain.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.ChannelID == "" || req.Message == "" {
		writeError(w, http.StatusBadRequest, "Missing channel_id or message")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	if err := h.gateway.PostText(ctx, req.ChannelID, req.Message); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, domain.ReviewResponse{Status: "success", Message: "Message sent"})
}

// The request is held open until a decision is recorded, with no server-side deadline.
func (h *Handler) DisplayReviews(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	var req domain.DisplayReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Review == "" {
		writeError(w, http.StatusBadRequest, "Missing review text")
		return
	}

	decision, err := h.broker.SubmitReview(r.Context(), req.Review)
	if errors.Is(err, review.ErrReviewTooLong) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Printf("display_reviews caller went away before a decision")
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, domain.ReviewResponse{
		Status:  "success",
		Message: "Review displayed",
		Action:  decision,
	})
}

func (h *Handler) DisplayReviewsPreflight(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) PendingReviews(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.broker.Status())
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.gateway.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func firstReviewAction(actions []slack.BlockAction) (domain.ActionEvent, bool) {
	for _, a := range actions {
		id := domain.ActionID(a.ActionID)
		if id.Valid() {
			return domain.ActionEvent{ActionID: id, Review: a.Value}, true
		}
	}
	return domain.ActionEvent{}, false
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, domain.ReviewResponse{Status: "error", Message: message})
}
