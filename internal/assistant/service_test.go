package assistant

import (
	"context"
	"testing"

	pkgerrors "github.com/agritrust/agritrust-backend/pkg/errors"
)

func TestAskMatchesTopics(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	cases := []struct {
		question string
		topic    string
	}{
		{"How do I buy wheat?", "buy"},
		{"I want to sell my onions", "sell"},
		{"Where is my delivery?", "track"},
		{"How do I confirm receipt?", "confirm"},
		{"The bags arrived spoiled, what now?", "dispute"},
		{"How do I add money to my wallet?", "wallet"},
		{"what is the meaning of life", "help"},
	}

	for _, tc := range cases {
		answer, err := svc.Ask(ctx, tc.question)
		if err != nil {
			t.Fatalf("ask %q: %v", tc.question, err)
		}
		if answer.Topic != tc.topic {
			t.Errorf("ask %q topic = %s, want %s", tc.question, answer.Topic, tc.topic)
		}
		if answer.Reply == "" {
			t.Errorf("ask %q returned empty reply", tc.question)
		}
	}
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	svc := NewService()
	_, err := svc.Ask(context.Background(), "   ")
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("error = %v, want VALIDATION_ERROR", err)
	}
}

func TestDisputeWinsOverTrackKeywords(t *testing.T) {
	svc := NewService()
	answer, err := svc.Ask(context.Background(), "my delivery arrived damaged")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if answer.Topic != "dispute" {
		t.Fatalf("topic = %s, want dispute", answer.Topic)
	}
}

func TestTopicsListsEveryEntry(t *testing.T) {
	svc := NewService()
	topics := svc.Topics(context.Background())
	if len(topics) != len(topicTable) {
		t.Fatalf("topics = %d, want %d", len(topics), len(topicTable))
	}
}
