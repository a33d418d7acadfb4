package assistant

import (
	"context"
	"strings"

	pkgerrors "github.com/agritrust/agritrust-backend/pkg/errors"
)

// Answer is a canned help reply keyed by the matched topic.
type Answer struct {
	Topic string `json:"topic"`
	Reply string `json:"reply"`
}

// Service answers marketplace how-to questions from a fixed topic table.
// There is no model behind it; matching is keyword based.
type Service interface {
	Ask(ctx context.Context, question string) (*Answer, error)
	Topics(ctx context.Context) []string
}

type topicEntry struct {
	topic    string
	keywords []string
	reply    string
}

// Order matters: the first entry whose keyword appears in the question wins.
var topicTable = []topicEntry{
	{
		topic:    "dispute",
		keywords: []string{"dispute", "complain", "spoiled", "damaged", "wrong"},
		reply:    "If a delivery is not as described, open the order and raise a dispute with a short reason. The escrowed funds stay frozen until an admin reviews the case.",
	},
	{
		topic:    "confirm",
		keywords: []string{"confirm", "receipt", "release"},
		reply:    "Once your produce arrives, open the order and confirm receipt. That releases the escrowed funds to the farmer and completes the order.",
	},
	{
		topic:    "track",
		keywords: []string{"track", "deliver", "delivery", "status", "where"},
		reply:    "Open My Orders to see each order's status. Locked means the farmer is preparing your produce; Delivered means it is with you and waiting for your confirmation.",
	},
	{
		topic:    "buy",
		keywords: []string{"buy", "purchase", "order", "escrow"},
		reply:    "Browse the listings, pick a crop and quantity, and place the order. The full amount moves from your wallet into escrow and is only released to the farmer after you confirm receipt.",
	},
	{
		topic:    "sell",
		keywords: []string{"sell", "list", "post", "crop"},
		reply:    "From your farmer dashboard choose New Listing, set the crop, market, quantity and price per kg. Buyers see it immediately and stock decreases as orders come in.",
	},
	{
		topic:    "wallet",
		keywords: []string{"wallet", "balance", "money", "deposit", "withdraw"},
		reply:    "Your wallet holds the units you trade with. Deposit to add funds before buying; withdraw anytime funds are not locked in an open order.",
	},
}

const fallbackReply = "I can help with buying produce, posting listings, tracking deliveries, confirming receipt, disputes and your wallet. Ask about any of those."

type service struct{}

// NewService returns the canned marketplace assistant.
func NewService() Service {
	return &service{}
}

func (s *service) Ask(_ context.Context, question string) (*Answer, error) {
	question = strings.ToLower(strings.TrimSpace(question))
	if question == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "question required")
	}
	for _, entry := range topicTable {
		for _, keyword := range entry.keywords {
			if strings.Contains(question, keyword) {
				return &Answer{Topic: entry.topic, Reply: entry.reply}, nil
			}
		}
	}
	return &Answer{Topic: "help", Reply: fallbackReply}, nil
}

func (s *service) Topics(context.Context) []string {
	topics := make([]string, 0, len(topicTable))
	for _, entry := range topicTable {
		topics = append(topics, entry.topic)
	}
	return topics
}
