package handler

import (
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"time"

	"milestofund/config"
	"milestofund/internal/middleware"
	"milestofund/internal/models"
	"milestofund/internal/repository"
	"milestofund/internal/service"
	"milestofund/pkg/gateway"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentHandler struct {
	cfg              *config.Config
	provider         gateway.Provider
	projectRepo      *repository.ProjectRepository
	contributionRepo *repository.ContributionRepository
	contributionSvc  *service.ContributionService
}

func NewPaymentHandler(
	cfg *config.Config,
	provider gateway.Provider,
	projectRepo *repository.ProjectRepository,
	contributionRepo *repository.ContributionRepository,
	contributionSvc *service.ContributionService,
) *PaymentHandler {
	return &PaymentHandler{
		cfg:              cfg,
		provider:         provider,
		projectRepo:      projectRepo,
		contributionRepo: contributionRepo,
		contributionSvc:  contributionSvc,
	}
}

type CreateOrderRequest struct {
	ProjectID uint    `json:"projectId" binding:"required"`
	Amount    float64 `json:"amount" binding:"required"`
}

// CreateOrder opens a gateway order for a contribution. The project must
// exist and its campaign must still be running; both are checked before any
// gateway call.
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "projectId and amount are required.")
		return
	}
	if req.Amount < h.cfg.Platform.MinContribution {
		respondError(c, http.StatusBadRequest, fmt.Sprintf("Minimum contribution is ₹%.0f.", h.cfg.Platform.MinContribution))
		return
	}
	project, err := h.projectRepo.GetLite(req.ProjectID)
	if err != nil {
		respondError(c, http.StatusNotFound, "Project not found.")
		return
	}
	if project.CampaignEnded(time.Now()) {
		respondError(c, http.StatusBadRequest, "This project's campaign has ended.")
		return
	}

	order, err := h.provider.CreateOrder(c.Request.Context(), gateway.CreateOrderRequest{
		AmountPaise: int64(math.Round(req.Amount * 100)),
		Currency:    h.cfg.Platform.Currency,
		Receipt:     fmt.Sprintf("rcpt_%s", uuid.NewString()),
		Notes: map[string]string{
			"projectId":    fmt.Sprintf("%d", req.ProjectID),
			"projectTitle": project.Title,
			"userId":       fmt.Sprintf("%d", middleware.GetUserID(c)),
		},
	})
	if err != nil {
		log.Printf("[payment] create order failed: project=%d err=%v", req.ProjectID, err)
		respondError(c, http.StatusBadGateway, "Payment order failed. Try again shortly.")
		return
	}
	if order.Mock {
		log.Printf("[payment] gateway keys not configured, issued mock order %s", order.ID)
	}

	var keyID interface{}
	if !order.Mock {
		keyID = h.cfg.Razorpay.KeyID
	}
	respondSuccess(c, http.StatusOK, "Order created", gin.H{
		"orderId":      order.ID,
		"amount":       order.AmountPaise,
		"currency":     order.Currency,
		"keyId":        keyID,
		"projectTitle": project.Title,
		"mock":         order.Mock,
	})
}

type VerifyPaymentRequest struct {
	ProjectID   uint    `json:"projectId" binding:"required"`
	RewardID    *uint   `json:"rewardId"`
	Amount      float64 `json:"amount"`    // paise, as echoed by the gateway
	AmountINR   float64 `json:"amountINR"` // rupees, sent directly as backup
	Message     string  `json:"message"`
	Anonymous   bool    `json:"anonymous"`
	OrderID     string  `json:"order_id"`
	PaymentID   string  `json:"payment_id"`
	Signature   string  `json:"signature"`
	MockOrderID string  `json:"mock_order_id"`
}

// VerifyPayment checks the gateway confirmation and applies it to the ledger.
// A tampered signature is rejected before anything is written. Retried
// confirmations return the original contribution unchanged.
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "projectId is required.")
		return
	}
	if req.Amount <= 0 && req.AmountINR <= 0 {
		respondError(c, http.StatusBadRequest, "projectId and amount are required.")
		return
	}

	isMock := req.MockOrderID != "" || req.PaymentID == ""
	paymentID := req.PaymentID
	orderID := req.OrderID
	if orderID == "" {
		orderID = req.MockOrderID
	}

	if isMock {
		// Mock confirmations only exist in the no-credentials posture.
		if h.cfg.Razorpay.Configured() {
			respondError(c, http.StatusBadRequest, "Payment verification failed: invalid confirmation.")
			return
		}
		paymentID = gateway.MockPaymentID()
	} else if h.cfg.Razorpay.Configured() {
		if !gateway.VerifySignature(orderID, paymentID, req.Signature, h.cfg.Razorpay.KeySecret) {
			log.Printf("[payment] signature mismatch: order=%s payment=%s", orderID, paymentID)
			respondError(c, http.StatusBadRequest, "Payment verification failed: invalid signature.")
			return
		}
	}

	amountINR := req.AmountINR
	if amountINR <= 0 {
		amountINR = math.Round(req.Amount / 100)
	}

	result, err := h.contributionSvc.ProcessPayment(service.ProcessPaymentInput{
		BackerID:  middleware.GetUserID(c),
		ProjectID: req.ProjectID,
		RewardID:  req.RewardID,
		Amount:    amountINR,
		OrderID:   orderID,
		PaymentID: paymentID,
		Message:   req.Message,
		Anonymous: req.Anonymous,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProjectNotFound):
			respondError(c, http.StatusNotFound, "Project not found.")
		case errors.Is(err, service.ErrRewardNotFound),
			errors.Is(err, service.ErrEmptyPaymentID),
			errors.Is(err, service.ErrAmountTooSmall):
			respondError(c, http.StatusBadRequest, err.Error())
		default:
			log.Printf("[payment] ledger write failed: payment=%s err=%v", paymentID, err)
			respondError(c, http.StatusInternalServerError, "Payment recorded by gateway but ledger write failed.")
		}
		return
	}

	data := gin.H{
		"contribution": result.Contribution,
		"payment_id":   result.Contribution.PaymentID,
	}
	if result.Warning != "" {
		data["warning"] = result.Warning
	}
	respondSuccess(c, http.StatusOK, "Payment verified", data)
}

func (h *PaymentHandler) GetContribution(c *gin.Context) {
	contribution, err := h.contributionRepo.GetByPaymentID(c.Param("paymentId"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "Contribution not found.")
			return
		}
		respondError(c, http.StatusInternalServerError, "Failed to load contribution.")
		return
	}
	respondSuccess(c, http.StatusOK, "Success", gin.H{"contribution": contribution})
}

func (h *PaymentHandler) GetMyContributions(c *gin.Context) {
	contributions, err := h.contributionRepo.ListByBacker(middleware.GetUserID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to load contributions.")
		return
	}
	if contributions == nil {
		contributions = []models.Contribution{}
	}
	respondSuccess(c, http.StatusOK, "Success", gin.H{"contributions": contributions})
}
