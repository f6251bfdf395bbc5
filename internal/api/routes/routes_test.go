package routes_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/princeprakhar/reviewflow-backend/internal/api/routes"
	"github.com/princeprakhar/reviewflow-backend/internal/config"
	"github.com/princeprakhar/reviewflow-backend/internal/models"
	"github.com/princeprakhar/reviewflow-backend/internal/services"
	"github.com/princeprakhar/reviewflow-backend/internal/testutil"
	"github.com/princeprakhar/reviewflow-backend/pkg/logger"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type recordingNotifier struct {
	requests int
	alerts   int
}

func (n *recordingNotifier) SendReviewRequest(context.Context, models.Campaign, models.CampaignRecipient) error {
	n.requests++
	return nil
}

func (n *recordingNotifier) SendNegativeReviewAlert(context.Context, models.User, models.Review) error {
	n.alerts++
	return nil
}

type testServer struct {
	t        *testing.T
	router   *gin.Engine
	notifier *recordingNotifier
	token    string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger.Logger().SetOutput(io.Discard)

	cfg := &config.Config{
		Environment:        "test",
		JWTSecret:          "routes-secret",
		AccessTokenTTL:     time.Hour,
		RefreshTokenTTL:    24 * time.Hour,
		CORSAllowedOrigins: []string{"*"},
	}
	notifier := &recordingNotifier{}
	router := gin.New()
	require.NoError(t, routes.SetupRoutes(router, testutil.NewDatabase(t), cfg, routes.Dependencies{Notifier: notifier}))

	return &testServer{t: t, router: router, notifier: notifier}
}

func (s *testServer) do(method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(payload)
	}

	request := httptest.NewRequest(method, path, reader)
	request.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		request.Header.Set("Authorization", "Bearer "+s.token)
	}
	recorder := httptest.NewRecorder()
	s.router.ServeHTTP(recorder, request)

	var response envelope
	if recorder.Body.Len() > 0 {
		require.NoError(s.t, json.Unmarshal(recorder.Body.Bytes(), &response), recorder.Body.String())
	}
	return recorder, response
}

func (s *testServer) register(email string) {
	s.t.Helper()
	recorder, response := s.do(http.MethodPost, "/api/auth/register", map[string]string{
		"email": email, "password": "secret1", "name": "Owner",
	})
	require.Equal(s.t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var auth struct {
		Token struct {
			AccessToken string `json:"access_token"`
		} `json:"token"`
	}
	require.NoError(s.t, json.Unmarshal(response.Data, &auth))
	s.token = auth.Token.AccessToken
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var value T
	require.NoError(t, json.Unmarshal(raw, &value))
	return value
}

func TestHealthAndUnknownRoutes(t *testing.T) {
	server := newTestServer(t)

	recorder, _ := server.do(http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder, response := server.do(http.MethodGet, "/api/nowhere", nil)
	require.Equal(t, http.StatusNotFound, recorder.Code)
	require.False(t, response.Success)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	server := newTestServer(t)

	recorder, response := server.do(http.MethodGet, "/api/reviews", nil)
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
	require.False(t, response.Success)
}

func TestAuthFlow(t *testing.T) {
	server := newTestServer(t)
	server.register("owner@example.com")

	recorder, _ := server.do(http.MethodPost, "/api/auth/register", map[string]string{
		"email": "owner@example.com", "password": "secret1", "name": "Owner",
	})
	require.Equal(t, http.StatusConflict, recorder.Code)

	recorder, _ = server.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email": "owner@example.com", "password": "wrong-password",
	})
	require.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder, response := server.do(http.MethodPut, "/api/user/subscription", map[string]string{"plan": "enterprise"})
	require.Equal(t, http.StatusOK, recorder.Code)
	user := decode[models.User](t, response.Data)
	require.Equal(t, models.PlanEnterprise, user.SubscriptionPlan)

	recorder, _ = server.do(http.MethodPut, "/api/user/subscription", map[string]string{"plan": "gold"})
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestReviewLifecycleOverHTTP(t *testing.T) {
	server := newTestServer(t)
	server.register("owner@example.com")

	recorder, response := server.do(http.MethodPost, "/api/automation/templates", map[string]interface{}{
		"name": "Thanks", "template_text": "Thank you for the kind words!", "rating_range": "4-5", "is_default": true,
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	recorder, _ = server.do(http.MethodPost, "/api/automation/templates", map[string]interface{}{
		"name": "Bad", "template_text": "x", "rating_range": "2-4",
	})
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder, response = server.do(http.MethodPost, "/api/reviews", map[string]interface{}{
		"author_name": "Jane", "rating": 5, "review_text": "Lovely",
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())
	review := decode[models.Review](t, response.Data)

	recorder, _ = server.do(http.MethodPost, "/api/reviews", map[string]interface{}{"author_name": "Jane", "rating": 9})
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder, _ = server.do(http.MethodPost, "/api/reviews", map[string]interface{}{"author_name": "Grumpy", "rating": 1})
	require.Equal(t, http.StatusCreated, recorder.Code)
	require.Equal(t, 1, server.notifier.alerts)

	recorder, response = server.do(http.MethodPost, fmt.Sprintf("/api/reviews/%d/auto-respond", review.ID), nil)
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	auto := decode[services.AutoResponse](t, response.Data)
	require.Equal(t, "Thank you for the kind words!", auto.ResponseText)

	recorder, _ = server.do(http.MethodPatch, fmt.Sprintf("/api/reviews/%d/status", review.ID), map[string]string{"status": "archived"})
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder, _ = server.do(http.MethodPatch, fmt.Sprintf("/api/reviews/%d/status", review.ID), map[string]string{"status": "gone"})
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder, _ = server.do(http.MethodPost, fmt.Sprintf("/api/reviews/%d/respond", review.ID), map[string]string{"response_text": ""})
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder, _ = server.do(http.MethodPost, fmt.Sprintf("/api/reviews/%d/respond", review.ID), map[string]string{"response_text": "Thanks again"})
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder, response = server.do(http.MethodGet, "/api/analytics/dashboard", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	stats := decode[services.DashboardStats](t, response.Data)
	require.Equal(t, 2, stats.TotalReviews)
	require.Equal(t, 50, stats.ResponseRate)

	recorder, _ = server.do(http.MethodGet, "/api/analytics/trends?period=abc", nil)
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder, _ = server.do(http.MethodPost, "/api/analytics/monthly-report/export", nil)
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	server.register("intruder@example.com")
	recorder, _ = server.do(http.MethodGet, fmt.Sprintf("/api/reviews/%d", review.ID), nil)
	require.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestCampaignDispatchOverHTTP(t *testing.T) {
	server := newTestServer(t)
	server.register("owner@example.com")

	recorder, response := server.do(http.MethodPost, "/api/campaigns", map[string]interface{}{
		"name": "Follow-up", "type": "email", "send_delay_days": 1, "message_template": "Hi {customer_name}",
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())
	campaign := decode[models.Campaign](t, response.Data)

	recorder, response = server.do(http.MethodPost, fmt.Sprintf("/api/campaigns/%d/recipients", campaign.ID), map[string]interface{}{
		"recipients": []map[string]string{
			{"name": "Alice", "email": "alice@example.com"},
			{"name": "Bob", "phone": "+15550100"},
		},
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())
	recipients := decode[[]models.CampaignRecipient](t, response.Data)
	require.Len(t, recipients, 2)

	recorder, response = server.do(http.MethodPost, fmt.Sprintf("/api/campaigns/%d/send", campaign.ID), nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	result := decode[services.DispatchResult](t, response.Data)
	require.Equal(t, 2, result.Dispatched)
	require.Equal(t, 2, server.notifier.requests)

	recorder, response = server.do(http.MethodPost, fmt.Sprintf("/api/campaigns/%d/send", campaign.ID), nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Zero(t, decode[services.DispatchResult](t, response.Data).Dispatched)

	convertPath := fmt.Sprintf("/api/campaigns/%d/recipients/%d/convert", campaign.ID, recipients[0].ID)
	recorder, _ = server.do(http.MethodPost, convertPath, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	recorder, _ = server.do(http.MethodPost, convertPath, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder, response = server.do(http.MethodGet, "/api/analytics/campaign-performance", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	performance := decode[[]services.CampaignPerformance](t, response.Data)
	require.Len(t, performance, 1)
	require.Equal(t, 2, performance[0].TotalSent)
	require.Equal(t, 1, performance[0].TotalCollected)
	require.Equal(t, 50.0, performance[0].ConversionRate)

	recorder, _ = server.do(http.MethodPatch, fmt.Sprintf("/api/campaigns/%d/status", campaign.ID), map[string]string{"status": "completed"})
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder, _ = server.do(http.MethodPost, "/api/campaigns/abc/send", nil)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}
