package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"slack-review-relay/internal/api"
	"slack-review-relay/internal/config"
	"slack-review-relay/internal/domain"
	"slack-review-relay/internal/listener"
	"slack-review-relay/internal/review"
)

// slackChannel keeps every rendered review so a test can click one of its buttons.
type slackChannel struct {
	mu      sync.Mutex
	reviews []string
	texts   []string
}

func (s *slackChannel) PostReview(_ context.Context, review string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reviews = append(s.reviews, review)
	return nil
}

func (s *slackChannel) PostText(_ context.Context, _ string, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, text)
	return nil
}

func (s *slackChannel) Ping(context.Context) error { return nil }

func (s *slackChannel) Reviews() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.reviews...)
}

func (s *slackChannel) Texts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.texts...)
}

type displayResult struct {
	status int
	body   domain.ReviewResponse
	cors   string
	err    error
}

func displayReview(baseURL, text string) <-chan displayResult {
	out := make(chan displayResult, 1)
	go func() {
		body, _ := json.Marshal(domain.DisplayReviewRequest{Review: text})
		resp, err := http.Post(baseURL+"/display_reviews", "application/json", bytes.NewReader(body))
		if err != nil {
			out <- displayResult{err: err}
			return
		}
		defer resp.Body.Close()
		var parsed domain.ReviewResponse
		err = json.NewDecoder(resp.Body).Decode(&parsed)
		out <- displayResult{status: resp.StatusCode, body: parsed, cors: resp.Header.Get("Access-Control-Allow-Origin"), err: err}
	}()
	return out
}

func clickButton(baseURL string, actionID domain.ActionID, value string) (*http.Response, domain.ReviewResponse) {
	payload, err := json.Marshal(map[string]any{
		"type": "block_actions",
		"actions": []map[string]string{
			{"action_id": string(actionID), "value": value, "block_id": "b1", "type": "button"},
		},
	})
	Expect(err).ToNot(HaveOccurred())

	resp, err := http.PostForm(baseURL+"/actions", url.Values{"payload": {string(payload)}})
	Expect(err).ToNot(HaveOccurred())
	defer resp.Body.Close()

	var parsed domain.ReviewResponse
	Expect(json.NewDecoder(resp.Body).Decode(&parsed)).To(Succeed())
	return resp, parsed
}

var _ = Describe("Review round trip", func() {
	var (
		channel *slackChannel
		broker  *review.Broker
		server  *httptest.Server
	)

	BeforeEach(func() {
		channel = &slackChannel{}
		broker = review.NewBroker(channel)
		cfg := config.Config{SigningSecret: "s", BotToken: "t", DefaultChannelID: "C123"}
		l := listener.New("$Hi", "Hello!", channel, nil)
		server = httptest.NewServer(api.NewRouter(api.NewHandler(cfg, broker, channel, l)))
	})

	AfterEach(func() {
		server.Close()
	})

	It("approves a review carrying the sentinel when approve is clicked", func() {
		By("submitting the review")
		result := displayReview(server.URL, "$Looks good")

		By("waiting for the message with both buttons to be posted")
		Eventually(channel.Reviews).Should(Equal([]string{"$Looks good"}))
		Eventually(broker.Status).Should(Equal(review.Status{Awaiting: 1}))
		Consistently(result, 100*time.Millisecond).ShouldNot(Receive())

		By("clicking approve")
		resp, body := clickButton(server.URL, domain.ActionApprove, "$Looks good")
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(body.Action).To(Equal(domain.DecisionApprove))

		By("releasing the blocked caller with the decision")
		var got displayResult
		Eventually(result, 2*time.Second).Should(Receive(&got))
		Expect(got.err).ToNot(HaveOccurred())
		Expect(got.status).To(Equal(http.StatusOK))
		Expect(got.cors).To(Equal("*"))
		Expect(got.body.Status).To(Equal("success"))
		Expect(got.body.Action).To(Equal(domain.DecisionApprove))

		Expect(broker.Status()).To(Equal(review.Status{}))
	})

	It("denies a review without the sentinel when deny is clicked", func() {
		result := displayReview(server.URL, "Needs work")
		Eventually(broker.Status).Should(Equal(review.Status{Awaiting: 1}))

		_, body := clickButton(server.URL, domain.ActionDeny, "Needs work")
		Expect(body.Action).To(Equal(domain.DecisionDeny))

		var got displayResult
		Eventually(result, 2*time.Second).Should(Receive(&got))
		Expect(got.body.Action).To(Equal(domain.DecisionDeny))
	})

	It("decides from the review text rather than from the button", func() {
		result := displayReview(server.URL, "Needs work")
		Eventually(broker.Status).Should(Equal(review.Status{Awaiting: 1}))

		clickButton(server.URL, domain.ActionApprove, "Needs work")

		var got displayResult
		Eventually(result, 2*time.Second).Should(Receive(&got))
		Expect(got.body.Action).To(Equal(domain.DecisionDeny))
	})

	It("keeps only the first of two rapid clicks", func() {
		result := displayReview(server.URL, "$Looks good")
		Eventually(broker.Status).Should(Equal(review.Status{Awaiting: 1}))

		clickButton(server.URL, domain.ActionApprove, "$Looks good")
		clickButton(server.URL, domain.ActionDeny, "overwrite attempt")

		var got displayResult
		Eventually(result, 2*time.Second).Should(Receive(&got))
		Expect(got.body.Action).To(Equal(domain.DecisionApprove))
	})

	It("does not let a late click decide the next review", func() {
		By("abandoning a review before anyone clicks")
		ctx, cancel := context.WithCancel(context.Background())
		abandoned := make(chan error, 1)
		go func() {
			req, _ := http.NewRequestWithContext(ctx, http.MethodPost, server.URL+"/display_reviews",
				strings.NewReader(`{"review":"$old review"}`))
			req.Header.Set("Content-Type", "application/json")
			resp, err := http.DefaultClient.Do(req)
			if err == nil {
				resp.Body.Close()
			}
			abandoned <- err
		}()
		Eventually(broker.Status).Should(Equal(review.Status{Awaiting: 1}))
		cancel()
		Eventually(abandoned, 2*time.Second).Should(Receive(HaveOccurred()))
		Eventually(broker.Status).Should(Equal(review.Status{}))

		By("clicking approve on the abandoned message")
		clickButton(server.URL, domain.ActionApprove, "$old review")
		Expect(broker.Status()).To(Equal(review.Status{DecisionReady: true}))

		By("submitting an unrelated review that nobody has clicked")
		next := displayReview(server.URL, "Needs work")
		Eventually(broker.Status).Should(Equal(review.Status{Awaiting: 1}))
		Consistently(next, 100*time.Millisecond).ShouldNot(Receive())

		clickButton(server.URL, domain.ActionDeny, "Needs work")
		var got displayResult
		Eventually(next, 2*time.Second).Should(Receive(&got))
		Expect(got.body.Action).To(Equal(domain.DecisionDeny))
	})

	It("starts the next review clean after a decision is consumed", func() {
		first := displayReview(server.URL, "$one")
		Eventually(broker.Status).Should(Equal(review.Status{Awaiting: 1}))
		clickButton(server.URL, domain.ActionApprove, "$one")
		Eventually(first, 2*time.Second).Should(Receive())

		second := displayReview(server.URL, "two")
		Eventually(broker.Status).Should(Equal(review.Status{Awaiting: 1}))
		Consistently(second, 100*time.Millisecond).ShouldNot(Receive())

		clickButton(server.URL, domain.ActionDeny, "two")
		var got displayResult
		Eventually(second, 2*time.Second).Should(Receive(&got))
		Expect(got.body.Action).To(Equal(domain.DecisionDeny))
	})

	It("answers the listener trigger on the event ingress", func() {
		event := `{"type":"event_callback","event":{"type":"message","channel":"C1","user":"U1","text":"$Hi"}}`
		resp, err := http.Post(server.URL+"/events", "application/json", strings.NewReader(event))
		Expect(err).ToNot(HaveOccurred())
		resp.Body.Close()

		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Eventually(channel.Texts).Should(Equal([]string{"Hello!"}))
		Expect(broker.Status()).To(Equal(review.Status{}))
	})
})
