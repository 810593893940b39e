package service

import (
	"errors"
	"fmt"
	"log"

	"milestofund/internal/domain"
	"milestofund/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrRewardNotFound  = errors.New("reward not found for this project")
	ErrEmptyPaymentID  = errors.New("payment id is required")
	ErrAmountTooSmall  = errors.New("contribution amount below minimum")
)

// MilestoneWarning is surfaced (not returned as an error) when the post-commit
// milestone evaluation failed. The contribution itself is committed and
// authoritative; evaluation re-runs on the next contribution.
const MilestoneWarning = "contribution recorded, milestone update pending"

// ContributionService applies a verified gateway confirmation to the ledger.
// The contribution insert and all three aggregate increments commit in a
// single transaction, and every increment is in-store arithmetic, so totals
// are conserved under any interleaving of concurrent contributions.
type ContributionService struct {
	db         *gorm.DB
	milestones *MilestoneService
	minAmount  float64
}

func NewContributionService(db *gorm.DB, milestones *MilestoneService, minAmount float64) *ContributionService {
	return &ContributionService{db: db, milestones: milestones, minAmount: minAmount}
}

type ProcessPaymentInput struct {
	BackerID  uint
	ProjectID uint
	RewardID  *uint
	Amount    float64 // rupees
	OrderID   string
	PaymentID string
	Message   string
	Anonymous bool
}

type ProcessResult struct {
	Contribution *models.Contribution
	// Created is false when a contribution with the same payment id already
	// existed; the existing row is returned and nothing was written.
	Created bool
	// Warning carries the degraded-success note when milestone evaluation
	// failed after commit.
	Warning string
}

func (s *ContributionService) ProcessPayment(in ProcessPaymentInput) (*ProcessResult, error) {
	if in.PaymentID == "" {
		return nil, ErrEmptyPaymentID
	}
	if in.Amount < s.minAmount {
		return nil, ErrAmountTooSmall
	}

	var contribution *models.Contribution
	created := true

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Idempotency guard: a retried confirmation returns the original row
		// and must not touch the aggregates again.
		var existing models.Contribution
		err := tx.Where("payment_id = ?", in.PaymentID).First(&existing).Error
		if err == nil {
			contribution = &existing
			created = false
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("ledger read: %w", err)
		}

		var project models.Project
		if err := tx.Select("id", "deadline", "status").First(&project, in.ProjectID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrProjectNotFound
			}
			return fmt.Errorf("ledger read: %w", err)
		}

		if in.RewardID != nil {
			var reward models.Reward
			if err := tx.Select("id", "project_id").First(&reward, *in.RewardID).Error; err != nil || reward.ProjectID != in.ProjectID {
				return ErrRewardNotFound
			}
		}

		c := &models.Contribution{
			ProjectID: in.ProjectID,
			RewardID:  in.RewardID,
			BackerID:  in.BackerID,
			Amount:    in.Amount,
			OrderID:   in.OrderID,
			PaymentID: in.PaymentID,
			Message:   in.Message,
			Anonymous: in.Anonymous,
			Status:    domain.ContributionStatusCompleted,
		}
		// A concurrent verify for the same payment can win the insert between
		// our guard and here. ON CONFLICT DO NOTHING keeps the transaction
		// healthy on postgres (a raw unique violation would abort it), and a
		// zero row count tells us someone else already wrote this payment.
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "payment_id"}},
			DoNothing: true,
		}).Create(c)
		if res.Error != nil {
			return fmt.Errorf("ledger write: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			var race models.Contribution
			if err := tx.Where("payment_id = ?", in.PaymentID).First(&race).Error; err != nil {
				return fmt.Errorf("ledger read: %w", err)
			}
			contribution = &race
			created = false
			return nil
		}

		// Aggregate increments are pushed down to the store; a cached
		// read-then-write here would lose updates under concurrency.
		if err := tx.Model(&models.Project{}).Where("id = ?", in.ProjectID).
			UpdateColumn("amount_raised", gorm.Expr("amount_raised + ?", in.Amount)).Error; err != nil {
			return fmt.Errorf("ledger write: %w", err)
		}
		if in.RewardID != nil {
			if err := tx.Model(&models.Reward{}).Where("id = ?", *in.RewardID).
				UpdateColumn("backer_count", gorm.Expr("backer_count + 1")).Error; err != nil {
				return fmt.Errorf("ledger write: %w", err)
			}
		}
		if err := tx.Model(&models.User{}).Where("id = ?", in.BackerID).
			UpdateColumn("total_backed", gorm.Expr("total_backed + ?", in.Amount)).Error; err != nil {
			return fmt.Errorf("ledger write: %w", err)
		}

		contribution = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &ProcessResult{Contribution: contribution, Created: created}
	if !created {
		return result, nil
	}

	// Milestone evaluation must not block contribution confirmation. A failure
	// is logged and reported as a degraded success; the evaluator is
	// idempotent and driven purely by ledger state, so the next contribution
	// (or an explicit re-evaluation) repairs any missed marking.
	if err := s.milestones.Evaluate(in.ProjectID); err != nil {
		log.Printf("[payment] milestone evaluation failed: project=%d payment=%s err=%v", in.ProjectID, in.PaymentID, err)
		result.Warning = MilestoneWarning
	}
	return result, nil
}
