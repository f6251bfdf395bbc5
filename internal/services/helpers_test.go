package services_test

import (
	"context"
	"sync"

	"github.com/princeprakhar/reviewflow-backend/internal/models"
)

type stubNotifier struct {
	mu           sync.Mutex
	requests     []models.CampaignRecipient
	alerts       []models.Review
	requestError error
	alertError   error
}

func (n *stubNotifier) SendReviewRequest(_ context.Context, _ models.Campaign, recipient models.CampaignRecipient) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.requests = append(n.requests, recipient)
	return n.requestError
}

func (n *stubNotifier) SendNegativeReviewAlert(_ context.Context, _ models.User, review models.Review) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.alerts = append(n.alerts, review)
	return n.alertError
}

func stringPtr(value string) *string {
	return &value
}

func boolPtr(value bool) *bool {
	return &value
}

func intPtr(value int) *int {
	return &value
}
