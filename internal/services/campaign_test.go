package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/princeprakhar/reviewflow-backend/internal/models"
	"github.com/princeprakhar/reviewflow-backend/internal/services"
	"github.com/princeprakhar/reviewflow-backend/internal/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type campaignFixture struct {
	db        *gorm.DB
	owner     models.User
	notifier  *stubNotifier
	campaigns *services.CampaignService
}

func newCampaignFixture(t *testing.T) campaignFixture {
	t.Helper()
	db := testutil.NewDatabase(t)
	notifier := &stubNotifier{}
	return campaignFixture{
		db:        db,
		owner:     testutil.CreateUser(t, db, "owner@example.com"),
		notifier:  notifier,
		campaigns: services.NewCampaignService(db, notifier),
	}
}

func (f campaignFixture) create(t *testing.T, campaignType string) *models.Campaign {
	t.Helper()
	campaign, err := f.campaigns.CreateCampaign(context.Background(), f.owner.ID, services.CreateCampaignRequest{
		Name:            "Spring follow-up",
		Type:            campaignType,
		SendDelayDays:   2,
		MessageTemplate: "Hi {customer_name}, how did we do?",
	})
	require.NoError(t, err)
	return campaign
}

func (f campaignFixture) addRecipients(t *testing.T, campaignID uint, names ...string) []models.CampaignRecipient {
	t.Helper()
	inputs := make([]services.RecipientInput, 0, len(names))
	for _, name := range names {
		inputs = append(inputs, services.RecipientInput{Name: name, Email: name + "@example.com"})
	}
	recipients, err := f.campaigns.AddRecipients(context.Background(), f.owner.ID, campaignID, inputs)
	require.NoError(t, err)
	return recipients
}

func (f campaignFixture) reload(t *testing.T, campaignID uint) *models.Campaign {
	t.Helper()
	campaign, err := f.campaigns.GetCampaign(context.Background(), f.owner.ID, campaignID)
	require.NoError(t, err)
	return campaign
}

func TestCreateCampaignValidatesInput(t *testing.T) {
	fixture := newCampaignFixture(t)
	ctx := context.Background()

	campaign := fixture.create(t, "Email")
	require.Equal(t, models.CampaignStatusActive, campaign.Status)
	require.Equal(t, models.CampaignTypeEmail, campaign.Type)
	require.Zero(t, campaign.TotalSent)

	_, err := fixture.campaigns.CreateCampaign(ctx, fixture.owner.ID, services.CreateCampaignRequest{
		Name: "Fax blast", Type: "fax", MessageTemplate: "Hi",
	})
	require.ErrorIs(t, err, services.ErrValidation)

	_, err = fixture.campaigns.CreateCampaign(ctx, fixture.owner.ID, services.CreateCampaignRequest{
		Name: "Late", Type: "sms", SendDelayDays: -1, MessageTemplate: "Hi",
	})
	require.ErrorIs(t, err, services.ErrValidation)

	_, err = fixture.campaigns.CreateCampaign(ctx, fixture.owner.ID, services.CreateCampaignRequest{
		Name: "Empty", Type: "sms", MessageTemplate: "  ",
	})
	require.ErrorIs(t, err, services.ErrValidation)
}

func TestDispatchTransitionsOnlyPendingRecipients(t *testing.T) {
	fixture := newCampaignFixture(t)
	ctx := context.Background()
	campaign := fixture.create(t, "email")
	recipients := fixture.addRecipients(t, campaign.ID, "alice", "bob", "carol")

	carol := recipients[2]
	require.NoError(t, fixture.db.Model(&carol).Update("status", models.RecipientStatusSent).Error)

	result, err := fixture.campaigns.Dispatch(ctx, fixture.owner.ID, campaign.ID)
	require.NoError(t, err)
	require.Equal(t, 2, result.Dispatched)
	require.Equal(t, 2, result.Campaign.TotalSent)

	stored := fixture.reload(t, campaign.ID)
	require.Equal(t, 2, stored.TotalSent)
	for _, recipient := range stored.Recipients {
		require.Equal(t, models.RecipientStatusSent, recipient.Status)
		if recipient.ID == carol.ID {
			require.Nil(t, recipient.SentAt)
		} else {
			require.NotNil(t, recipient.SentAt)
		}
	}

	require.Len(t, fixture.notifier.requests, 2)
	require.Equal(t, recipients[0].ID, fixture.notifier.requests[0].ID)
	require.Equal(t, recipients[1].ID, fixture.notifier.requests[1].ID)
}

func TestDispatchWithoutPendingRecipientsIsNoop(t *testing.T) {
	fixture := newCampaignFixture(t)
	ctx := context.Background()
	campaign := fixture.create(t, "email")

	result, err := fixture.campaigns.Dispatch(ctx, fixture.owner.ID, campaign.ID)
	require.NoError(t, err)
	require.Zero(t, result.Dispatched)
	require.Zero(t, fixture.reload(t, campaign.ID).TotalSent)
	require.Empty(t, fixture.notifier.requests)
}

func TestRepeatedDispatchCountsRecipientsOnce(t *testing.T) {
	fixture := newCampaignFixture(t)
	ctx := context.Background()
	campaign := fixture.create(t, "email")
	fixture.addRecipients(t, campaign.ID, "alice", "bob")

	first, err := fixture.campaigns.Dispatch(ctx, fixture.owner.ID, campaign.ID)
	require.NoError(t, err)
	require.Equal(t, 2, first.Dispatched)

	second, err := fixture.campaigns.Dispatch(ctx, fixture.owner.ID, campaign.ID)
	require.NoError(t, err)
	require.Zero(t, second.Dispatched)

	fixture.addRecipients(t, campaign.ID, "dave")
	third, err := fixture.campaigns.Dispatch(ctx, fixture.owner.ID, campaign.ID)
	require.NoError(t, err)
	require.Equal(t, 1, third.Dispatched)
	require.Equal(t, 3, fixture.reload(t, campaign.ID).TotalSent)
}

func TestConcurrentDispatchCountsEachRecipientOnce(t *testing.T) {
	fixture := newCampaignFixture(t)
	ctx := context.Background()
	campaign := fixture.create(t, "email")
	recipients := fixture.addRecipients(t, campaign.ID, "alice", "bob", "carol", "dave", "erin")

	const workers = 4
	var (
		wait       sync.WaitGroup
		mu         sync.Mutex
		dispatched int
		errs       []error
	)
	for i := 0; i < workers; i++ {
		wait.Add(1)
		go func() {
			defer wait.Done()
			result, err := fixture.campaigns.Dispatch(ctx, fixture.owner.ID, campaign.ID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			dispatched += result.Dispatched
		}()
	}
	wait.Wait()

	require.Empty(t, errs)
	require.Equal(t, len(recipients), dispatched)

	stored := fixture.reload(t, campaign.ID)
	require.Equal(t, len(recipients), stored.TotalSent)
	for _, recipient := range stored.Recipients {
		require.Equal(t, models.RecipientStatusSent, recipient.Status)
		require.NotNil(t, recipient.SentAt)
	}
	require.Len(t, fixture.notifier.requests, len(recipients))
}

func TestDispatchKeepsSentStateWhenDeliveryFails(t *testing.T) {
	fixture := newCampaignFixture(t)
	fixture.notifier.requestError = errors.New("smtp unavailable")
	campaign := fixture.create(t, "email")
	fixture.addRecipients(t, campaign.ID, "alice")

	result, err := fixture.campaigns.Dispatch(context.Background(), fixture.owner.ID, campaign.ID)
	require.NoError(t, err)
	require.Equal(t, 1, result.Dispatched)
	require.Equal(t, models.RecipientStatusSent, fixture.reload(t, campaign.ID).Recipients[0].Status)
}

func TestDispatchSMSCampaignSkipsEmailDelivery(t *testing.T) {
	fixture := newCampaignFixture(t)
	campaign := fixture.create(t, "sms")
	fixture.addRecipients(t, campaign.ID, "alice")

	result, err := fixture.campaigns.Dispatch(context.Background(), fixture.owner.ID, campaign.ID)
	require.NoError(t, err)
	require.Equal(t, 1, result.Dispatched)
	require.Empty(t, fixture.notifier.requests)
}

func TestAddRecipientsIsAllOrNothing(t *testing.T) {
	fixture := newCampaignFixture(t)
	campaign := fixture.create(t, "email")

	_, err := fixture.campaigns.AddRecipients(context.Background(), fixture.owner.ID, campaign.ID, []services.RecipientInput{
		{Name: "alice"},
		{Name: "  "},
	})
	var validationErr *services.ValidationError
	require.True(t, errors.As(err, &validationErr))
	require.Equal(t, "recipients[1].name", validationErr.Field)
	require.Empty(t, fixture.reload(t, campaign.ID).Recipients)

	_, err = fixture.campaigns.AddRecipients(context.Background(), fixture.owner.ID, campaign.ID, nil)
	require.ErrorIs(t, err, services.ErrValidation)
}

func TestRecordConversionIsIdempotent(t *testing.T) {
	fixture := newCampaignFixture(t)
	ctx := context.Background()
	campaign := fixture.create(t, "email")
	recipients := fixture.addRecipients(t, campaign.ID, "alice", "bob")

	_, err := fixture.campaigns.RecordConversion(ctx, fixture.owner.ID, campaign.ID, recipients[0].ID)
	require.ErrorIs(t, err, services.ErrValidation)

	_, err = fixture.campaigns.Dispatch(ctx, fixture.owner.ID, campaign.ID)
	require.NoError(t, err)

	converted, err := fixture.campaigns.RecordConversion(ctx, fixture.owner.ID, campaign.ID, recipients[0].ID)
	require.NoError(t, err)
	require.True(t, converted.Converted())

	_, err = fixture.campaigns.RecordConversion(ctx, fixture.owner.ID, campaign.ID, recipients[0].ID)
	require.NoError(t, err)

	stored := fixture.reload(t, campaign.ID)
	require.Equal(t, 2, stored.TotalSent)
	require.Equal(t, 1, stored.TotalCollected)
}

func TestUpdateCampaignLeavesCounters(t *testing.T) {
	fixture := newCampaignFixture(t)
	ctx := context.Background()
	campaign := fixture.create(t, "email")
	fixture.addRecipients(t, campaign.ID, "alice")
	_, err := fixture.campaigns.Dispatch(ctx, fixture.owner.ID, campaign.ID)
	require.NoError(t, err)

	updated, err := fixture.campaigns.UpdateCampaign(ctx, fixture.owner.ID, campaign.ID, services.UpdateCampaignRequest{
		Name:          stringPtr("Summer follow-up"),
		SendDelayDays: intPtr(5),
	})
	require.NoError(t, err)
	require.Equal(t, "Summer follow-up", updated.Name)
	require.Equal(t, 5, updated.SendDelayDays)
	require.Equal(t, 1, updated.TotalSent)
	require.Equal(t, "Hi {customer_name}, how did we do?", updated.MessageTemplate)

	paused, err := fixture.campaigns.SetStatus(ctx, fixture.owner.ID, campaign.ID, "paused")
	require.NoError(t, err)
	require.Equal(t, models.CampaignStatusPaused, paused.Status)

	_, err = fixture.campaigns.SetStatus(ctx, fixture.owner.ID, campaign.ID, "running")
	require.ErrorIs(t, err, services.ErrValidation)
}

func TestCampaignsAreScopedToOwner(t *testing.T) {
	fixture := newCampaignFixture(t)
	ctx := context.Background()
	intruder := testutil.CreateUser(t, fixture.db, "intruder@example.com")
	campaign := fixture.create(t, "email")
	recipients := fixture.addRecipients(t, campaign.ID, "alice")

	_, err := fixture.campaigns.GetCampaign(ctx, intruder.ID, campaign.ID)
	require.ErrorIs(t, err, services.ErrCampaignNotFound)

	_, err = fixture.campaigns.Dispatch(ctx, intruder.ID, campaign.ID)
	require.ErrorIs(t, err, services.ErrNotFound)

	_, err = fixture.campaigns.RecordConversion(ctx, intruder.ID, campaign.ID, recipients[0].ID)
	require.ErrorIs(t, err, services.ErrNotFound)

	_, err = fixture.campaigns.RecordConversion(ctx, fixture.owner.ID, campaign.ID, 9999)
	require.ErrorIs(t, err, services.ErrRecipientNotFound)

	require.ErrorIs(t, fixture.campaigns.DeleteCampaign(ctx, intruder.ID, campaign.ID), services.ErrNotFound)
	require.NoError(t, fixture.campaigns.DeleteCampaign(ctx, fixture.owner.ID, campaign.ID))

	campaigns, err := fixture.campaigns.ListCampaigns(ctx, fixture.owner.ID)
	require.NoError(t, err)
	require.Empty(t, campaigns)
}

func TestRenderCampaignMessage(t *testing.T) {
	message := services.RenderCampaignMessage("Hi {customer_name}! Thanks {customer_name}.", models.CampaignRecipient{CustomerName: "Ana"})
	require.Equal(t, "Hi Ana! Thanks Ana.", message)
}
