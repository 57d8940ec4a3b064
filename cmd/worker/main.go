package main

import (
	"log"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"slack-review-relay/internal/config"
	"slack-review-relay/internal/reviewclient"
	appTemporal "slack-review-relay/internal/temporal"
)

func main() {
	cfg, err := config.LoadClient()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	temporalClient, err := client.Dial(client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
	})
	if err != nil {
		log.Fatalf("connect temporal: %v", err)
	}
	defer temporalClient.Close()

	activities := &appTemporal.Activities{
		Relay: reviewclient.NewHTTPClient(cfg.RelayBaseURL),
	}

	w := worker.New(temporalClient, cfg.TemporalTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(appTemporal.ReviewGateWorkflow, workflow.RegisterOptions{Name: appTemporal.ReviewGateWorkflowName})
	w.RegisterActivity(activities.RequestReviewActivity)
	w.RegisterActivity(activities.AnnounceOutcomeActivity)

	log.Printf("worker running on task queue %s relay=%s", cfg.TemporalTaskQueue, cfg.RelayBaseURL)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker stopped with error: %v", err)
	}
}
