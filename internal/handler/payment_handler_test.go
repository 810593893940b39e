package handler

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"milestofund/config"
	"milestofund/internal/auth"
	"milestofund/internal/middleware"
	"milestofund/internal/models"
	"milestofund/internal/repository"
	"milestofund/internal/service"
	"milestofund/internal/testutil"
	"milestofund/pkg/gateway"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// recordingProvider counts gateway calls so tests can assert validation
// happens before any outbound request.
type recordingProvider struct {
	calls  int
	orders []gateway.CreateOrderRequest
}

func (p *recordingProvider) CreateOrder(_ context.Context, req gateway.CreateOrderRequest) (*gateway.Order, error) {
	p.calls++
	p.orders = append(p.orders, req)
	return &gateway.Order{
		ID:          fmt.Sprintf("order_rec%d", p.calls),
		AmountPaise: req.AmountPaise,
		Currency:    req.Currency,
		Receipt:     req.Receipt,
	}, nil
}

func paymentTestConfig(configured bool) *config.Config {
	cfg := &config.Config{
		JWT:      config.JWTConfig{Secret: "test-secret", Expiry: time.Hour, Issuer: "milestofund"},
		Platform: config.PlatformConfig{Currency: "INR", MinContribution: 1},
	}
	if configured {
		cfg.Razorpay = config.RazorpayConfig{KeyID: "rzp_test_k1", KeySecret: "rzp_secret"}
	}
	return cfg
}

func newPaymentRouter(t *testing.T, cfg *config.Config, db *gorm.DB, provider gateway.Provider) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	projectRepo := repository.NewProjectRepository(db)
	contributionRepo := repository.NewContributionRepository(db)
	contributionSvc := service.NewContributionService(db, service.NewMilestoneService(db), cfg.Platform.MinContribution)
	h := NewPaymentHandler(cfg, provider, projectRepo, contributionRepo, contributionSvc)

	r := gin.New()
	g := r.Group("/api/payments", middleware.AuthRequired(&cfg.JWT))
	g.POST("/create-order", h.CreateOrder)
	g.POST("/verify", h.VerifyPayment)
	g.GET("/contribution/:paymentId", h.GetContribution)
	g.GET("/my-contributions", h.GetMyContributions)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, cfg *config.Config, user *models.User, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	token, err := auth.GenerateToken(&cfg.JWT, user.ID, user.Email)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func razorpaySign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestCreateOrderRejectsEndedCampaignBeforeGateway(t *testing.T) {
	db := testutil.NewDB(t)
	cfg := paymentTestConfig(true)
	provider := &recordingProvider{}
	r := newPaymentRouter(t, cfg, db, provider)

	user := testutil.SeedUser(t, db, "asha")
	project := testutil.SeedProject(t, db, user.ID, 1000)
	require.NoError(t, db.Model(&models.Project{}).Where("id = ?", project.ID).
		Update("deadline", time.Now().Add(-24*time.Hour)).Error)

	w := doJSON(t, r, cfg, user, http.MethodPost, "/api/payments/create-order",
		gin.H{"projectId": project.ID, "amount": 500})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "campaign has ended")
	require.Equal(t, 0, provider.calls)
}

func TestCreateOrderConvertsToPaise(t *testing.T) {
	db := testutil.NewDB(t)
	cfg := paymentTestConfig(true)
	provider := &recordingProvider{}
	r := newPaymentRouter(t, cfg, db, provider)

	user := testutil.SeedUser(t, db, "asha")
	project := testutil.SeedProject(t, db, user.ID, 1000)

	w := doJSON(t, r, cfg, user, http.MethodPost, "/api/payments/create-order",
		gin.H{"projectId": project.ID, "amount": 499.5})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, provider.calls)
	require.Equal(t, int64(49950), provider.orders[0].AmountPaise)
	require.Equal(t, "INR", provider.orders[0].Currency)

	var resp struct {
		Data struct {
			KeyID string `json:"keyId"`
			Mock  bool   `json:"mock"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "rzp_test_k1", resp.Data.KeyID)
	require.False(t, resp.Data.Mock)
}

func TestVerifyRejectsTamperedSignature(t *testing.T) {
	db := testutil.NewDB(t)
	cfg := paymentTestConfig(true)
	r := newPaymentRouter(t, cfg, db, &recordingProvider{})

	user := testutil.SeedUser(t, db, "asha")
	project := testutil.SeedProject(t, db, user.ID, 1000)

	w := doJSON(t, r, cfg, user, http.MethodPost, "/api/payments/verify", gin.H{
		"projectId":  project.ID,
		"amountINR":  500,
		"order_id":   "order_1",
		"payment_id": "pay_1",
		"signature":  razorpaySign("order_1", "pay_other", cfg.Razorpay.KeySecret),
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "invalid signature")

	// Nothing may be written on a failed verification.
	var count int64
	require.NoError(t, db.Model(&models.Contribution{}).Count(&count).Error)
	require.Equal(t, int64(0), count)
	var p models.Project
	require.NoError(t, db.First(&p, project.ID).Error)
	require.Equal(t, float64(0), p.AmountRaised)
}

func TestVerifyAcceptsValidSignature(t *testing.T) {
	db := testutil.NewDB(t)
	cfg := paymentTestConfig(true)
	r := newPaymentRouter(t, cfg, db, &recordingProvider{})

	user := testutil.SeedUser(t, db, "asha")
	project := testutil.SeedProject(t, db, user.ID, 1000)

	w := doJSON(t, r, cfg, user, http.MethodPost, "/api/payments/verify", gin.H{
		"projectId":  project.ID,
		"amount":     50000, // paise; no amountINR, handler converts
		"order_id":   "order_1",
		"payment_id": "pay_1",
		"signature":  razorpaySign("order_1", "pay_1", cfg.Razorpay.KeySecret),
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			PaymentID string `json:"payment_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "pay_1", resp.Data.PaymentID)

	var p models.Project
	require.NoError(t, db.First(&p, project.ID).Error)
	require.Equal(t, float64(500), p.AmountRaised)
}

func TestVerifyMockRejectedWhenConfigured(t *testing.T) {
	db := testutil.NewDB(t)
	cfg := paymentTestConfig(true)
	r := newPaymentRouter(t, cfg, db, &recordingProvider{})

	user := testutil.SeedUser(t, db, "asha")
	project := testutil.SeedProject(t, db, user.ID, 1000)

	w := doJSON(t, r, cfg, user, http.MethodPost, "/api/payments/verify", gin.H{
		"projectId":     project.ID,
		"amountINR":     500,
		"mock_order_id": "mock_order_abc",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.Contribution{}).Count(&count).Error)
	require.Equal(t, int64(0), count)
}

func TestVerifyMockFlowWithoutCredentials(t *testing.T) {
	db := testutil.NewDB(t)
	cfg := paymentTestConfig(false)
	r := newPaymentRouter(t, cfg, db, gateway.MockProvider{})

	user := testutil.SeedUser(t, db, "asha")
	project := testutil.SeedProject(t, db, user.ID, 1000)

	w := doJSON(t, r, cfg, user, http.MethodPost, "/api/payments/verify", gin.H{
		"projectId":     project.ID,
		"amountINR":     250,
		"mock_order_id": "mock_order_abc",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var contribution models.Contribution
	require.NoError(t, db.Where("project_id = ?", project.ID).First(&contribution).Error)
	require.Contains(t, contribution.PaymentID, "mock_pay_")
	require.Equal(t, float64(250), contribution.Amount)
}

func TestVerifySurfacesMilestoneWarning(t *testing.T) {
	db := testutil.NewDB(t)
	cfg := paymentTestConfig(false)
	gin.SetMode(gin.TestMode)

	// The evaluator points at an empty store, so milestone evaluation fails
	// after the ledger commit.
	contributionSvc := service.NewContributionService(db, service.NewMilestoneService(testutil.NewDB(t)), cfg.Platform.MinContribution)
	h := NewPaymentHandler(cfg, gateway.MockProvider{}, repository.NewProjectRepository(db), repository.NewContributionRepository(db), contributionSvc)
	r := gin.New()
	r.POST("/api/payments/verify", middleware.AuthRequired(&cfg.JWT), h.VerifyPayment)

	user := testutil.SeedUser(t, db, "asha")
	project := testutil.SeedProject(t, db, user.ID, 1000)

	w := doJSON(t, r, cfg, user, http.MethodPost, "/api/payments/verify", gin.H{
		"projectId":     project.ID,
		"amountINR":     500,
		"mock_order_id": "mock_order_abc",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Warning string `json:"warning"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.True(t, resp.Success)
	require.Equal(t, service.MilestoneWarning, resp.Data.Warning)

	// Degraded success, not failure: the contribution is committed.
	var p models.Project
	require.NoError(t, db.First(&p, project.ID).Error)
	require.Equal(t, float64(500), p.AmountRaised)
}

func TestGetContributionNotFound(t *testing.T) {
	db := testutil.NewDB(t)
	cfg := paymentTestConfig(false)
	r := newPaymentRouter(t, cfg, db, gateway.MockProvider{})
	user := testutil.SeedUser(t, db, "asha")

	w := doJSON(t, r, cfg, user, http.MethodGet, "/api/payments/contribution/pay_missing", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestMyContributionsEmptyIsArray(t *testing.T) {
	db := testutil.NewDB(t)
	cfg := paymentTestConfig(false)
	r := newPaymentRouter(t, cfg, db, gateway.MockProvider{})
	user := testutil.SeedUser(t, db, "asha")

	w := doJSON(t, r, cfg, user, http.MethodGet, "/api/payments/my-contributions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"contributions":[]`)
}
