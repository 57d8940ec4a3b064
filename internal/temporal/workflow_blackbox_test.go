package temporal

import (
	"context"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/converter"
	"go.temporal.io/sdk/testsuite"

	"slack-review-relay/internal/domain"
)

type activityTrace struct {
	mu sync.Mutex

	startedOrder []string
	requestIn    *RequestReviewInput
	announceIn   *AnnounceOutcomeInput
}

func (t *activityTrace) recordStarted(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.startedOrder = append(t.startedOrder, name)
}

var _ = Describe("ReviewGateWorkflow blackbox", func() {
	It("requests a review, then announces the decision derived from the review text", func() {
		var suite testsuite.WorkflowTestSuite
		env := suite.NewTestWorkflowEnvironment()

		relay := &stubRelay{}
		acts := &Activities{Relay: relay}
		trace := &activityTrace{}

		env.SetOnActivityStartedListener(func(info *activity.Info, _ context.Context, args converter.EncodedValues) {
			trace.recordStarted(info.ActivityType.Name)

			switch info.ActivityType.Name {
			case "RequestReviewActivity":
				var in RequestReviewInput
				_ = args.Get(&in)
				trace.mu.Lock()
				trace.requestIn = &in
				trace.mu.Unlock()
			case "AnnounceOutcomeActivity":
				var in AnnounceOutcomeInput
				_ = args.Get(&in)
				trace.mu.Lock()
				trace.announceIn = &in
				trace.mu.Unlock()
			}
		})

		env.RegisterWorkflow(ReviewGateWorkflow)
		env.RegisterActivity(acts.RequestReviewActivity)
		env.RegisterActivity(acts.AnnounceOutcomeActivity)

		By("running the gate for a review without the approve sentinel")
		env.ExecuteWorkflow(ReviewGateWorkflow, WorkflowInput{Review: "Needs work", NotifyChannelID: "C-ops"})

		Expect(env.IsWorkflowCompleted()).To(BeTrue())
		Expect(env.GetWorkflowError()).ToNot(HaveOccurred())

		var result WorkflowResult
		Expect(env.GetWorkflowResult(&result)).To(Succeed())
		Expect(result.Decision).To(Equal(domain.DecisionDeny))

		By("checking activity order and inputs")
		Expect(trace.startedOrder).To(Equal([]string{"RequestReviewActivity", "AnnounceOutcomeActivity"}))
		Expect(trace.requestIn).ToNot(BeNil())
		Expect(trace.requestIn.Review).To(Equal("Needs work"))
		Expect(trace.announceIn).ToNot(BeNil())
		Expect(*trace.announceIn).To(Equal(AnnounceOutcomeInput{
			ChannelID: "C-ops",
			Review:    "Needs work",
			Decision:  domain.DecisionDeny,
		}))
		Expect(relay.sent).To(ConsistOf(sentMessage{ChannelID: "C-ops", Message: "Review denied: Needs work"}))
	})
})
