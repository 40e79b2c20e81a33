package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/loan"
)

type FundingRepository struct{ db *gorm.DB }

func NewFundingRepository(db *gorm.DB) *FundingRepository { return &FundingRepository{db: db} }

func (r *FundingRepository) Create(ctx context.Context, f *loan.FundingRecord) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *FundingRepository) GetByLoanID(ctx context.Context, loanID uint64) (*loan.FundingRecord, error) {
	var out loan.FundingRecord
	err := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, loan.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *FundingRepository) Save(ctx context.Context, f *loan.FundingRecord) error {
	return r.db.WithContext(ctx).Save(f).Error
}
