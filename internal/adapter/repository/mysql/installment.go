package mysql

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/installment"
)

type InstallmentRepository struct{ db *gorm.DB }

func NewInstallmentRepository(db *gorm.DB) *InstallmentRepository {
	return &InstallmentRepository{db: db}
}

func (r *InstallmentRepository) CreateBatch(ctx context.Context, items []installment.Installment) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

func (r *InstallmentRepository) GetByInstallmentID(ctx context.Context, installmentID string) (*installment.Installment, error) {
	var out installment.Installment
	err := r.db.WithContext(ctx).Where("installment_id = ?", installmentID).First(&out).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, installment.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *InstallmentRepository) GetByInstallmentIDForUpdate(ctx context.Context, installmentID string) (*installment.Installment, error) {
	var out installment.Installment
	err := forUpdate(r.db.WithContext(ctx)).Where("installment_id = ?", installmentID).First(&out).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, installment.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *InstallmentRepository) ListByLoan(ctx context.Context, loanID uint64) ([]installment.Installment, error) {
	var out []installment.Installment
	err := r.db.WithContext(ctx).
		Where("loan_id = ?", loanID).
		Order("installment_number ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *InstallmentRepository) CountPaidByLoan(ctx context.Context, loanID uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&installment.Installment{}).
		Where("loan_id = ? AND status = ?", loanID, installment.StatusPaid).
		Count(&n).Error
	return n, err
}

func (r *InstallmentRepository) ListPendingDueBefore(ctx context.Context, cutoff time.Time) ([]installment.Installment, error) {
	var out []installment.Installment
	err := r.db.WithContext(ctx).
		Where("status = ? AND due_date < ?", installment.StatusPending, cutoff).
		Order("due_date ASC, id ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *InstallmentRepository) Save(ctx context.Context, item *installment.Installment) error {
	return r.db.WithContext(ctx).Save(item).Error
}
