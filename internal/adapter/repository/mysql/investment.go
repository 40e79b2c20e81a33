package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/investment"
)

type InvestmentRepository struct{ db *gorm.DB }

func NewInvestmentRepository(db *gorm.DB) *InvestmentRepository {
	return &InvestmentRepository{db: db}
}

func (r *InvestmentRepository) Create(ctx context.Context, inv *investment.Investment) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *InvestmentRepository) GetByInvestmentID(ctx context.Context, investmentID string) (*investment.Investment, error) {
	var out investment.Investment
	err := r.db.WithContext(ctx).Where("investment_id = ?", investmentID).First(&out).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, investment.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *InvestmentRepository) GetByInvestmentIDForUpdate(ctx context.Context, investmentID string) (*investment.Investment, error) {
	var out investment.Investment
	err := forUpdate(r.db.WithContext(ctx)).Where("investment_id = ?", investmentID).First(&out).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, investment.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *InvestmentRepository) ListActiveByLoan(ctx context.Context, loanID uint64) ([]investment.Investment, error) {
	var out []investment.Investment
	err := r.db.WithContext(ctx).
		Where("loan_id = ? AND status = ?", loanID, investment.StatusActive).
		Order("id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *InvestmentRepository) ListByInvestor(ctx context.Context, investorID uint64) ([]investment.Investment, error) {
	var out []investment.Investment
	err := r.db.WithContext(ctx).
		Where("investor_id = ?", investorID).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *InvestmentRepository) Save(ctx context.Context, inv *investment.Investment) error {
	return r.db.WithContext(ctx).Save(inv).Error
}
