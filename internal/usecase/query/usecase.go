// Package query serves the read side: filtered projections over loans,
// investments, schedules, the transaction ledger and the audit trail.
// No locks, no transactions, no writes.
package query

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/audit"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/installment"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/investment"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/ledger"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/loan"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/user"
)

// maxAuditPage caps one audit listing.
const maxAuditPage = 500

type Usecase struct {
	loanRepo        loan.Repository
	fundingRepo     loan.FundingRepository
	userRepo        user.Repository
	investmentRepo  investment.Repository
	installmentRepo installment.Repository
	ledgerRepo      ledger.Repository
	auditRepo       audit.Repository
}

func NewUsecase(
	loans loan.Repository,
	fundings loan.FundingRepository,
	users user.Repository,
	investments investment.Repository,
	installments installment.Repository,
	entries ledger.Repository,
	audits audit.Repository,
) *Usecase {
	return &Usecase{
		loanRepo:        loans,
		fundingRepo:     fundings,
		userRepo:        users,
		investmentRepo:  investments,
		installmentRepo: installments,
		ledgerRepo:      entries,
		auditRepo:       audits,
	}
}

// ActiveLoans lists loans still moving through the lifecycle: Open,
// Funded or Active.
func (u *Usecase) ActiveLoans(ctx context.Context) ([]LoanSummaryDTO, error) {
	loans, err := u.loanRepo.ListByStatuses(ctx, []loan.Status{loan.StatusOpen, loan.StatusFunded, loan.StatusActive})
	if err != nil {
		return nil, err
	}

	borrowers, err := u.publicUserIDs(ctx, borrowerIDs(loans))
	if err != nil {
		return nil, err
	}

	out := make([]LoanSummaryDTO, 0, len(loans))
	for _, l := range loans {
		out = append(out, LoanSummaryDTO{
			LoanID:          l.LoanID,
			BorrowerID:      borrowers[l.BorrowerID],
			AmountRequested: l.AmountRequested,
			InterestRate:    l.InterestRate,
			DurationMonths:  l.DurationMonths,
			EMIAmount:       l.EMIAmount,
			FundedAmount:    l.FundedAmount,
			Status:          string(l.Status),
			CreatedAt:       l.CreatedAt,
		})
	}
	return out, nil
}

// FundingProgress reports how far a loan's funding has come and who is
// backing it.
func (u *Usecase) FundingProgress(ctx context.Context, loanID string) (*FundingProgressDTO, error) {
	l, err := u.loanRepo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	f, err := u.fundingRepo.GetByLoanID(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	list, err := u.investmentRepo.ListActiveByLoan(ctx, l.ID)
	if err != nil {
		return nil, err
	}

	investorNumeric := make([]uint64, 0, len(list))
	for _, iv := range list {
		investorNumeric = append(investorNumeric, iv.InvestorID)
	}
	investors, err := u.publicUserIDs(ctx, investorNumeric)
	if err != nil {
		return nil, err
	}

	shares := make([]InvestorShareDTO, 0, len(list))
	for _, iv := range list {
		shares = append(shares, InvestorShareDTO{
			InvestmentID:     iv.InvestmentID,
			InvestorID:       investors[iv.InvestorID],
			InvestedAmount:   iv.InvestedAmount,
			OwnershipPercent: iv.OwnershipPercent,
		})
	}

	remaining := f.TotalRequired.Sub(f.TotalFunded)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	return &FundingProgressDTO{
		LoanID:        l.LoanID,
		LoanStatus:    string(l.Status),
		TotalRequired: f.TotalRequired,
		TotalFunded:   f.TotalFunded,
		Remaining:     remaining,
		FundingStatus: string(f.FundingStatus),
		Investors:     shares,
	}, nil
}

// PortfolioByInvestor lists every investment an investor ever made,
// newest first, with totals over the Active ones.
func (u *Usecase) PortfolioByInvestor(ctx context.Context, investorID string) (*PortfolioDTO, error) {
	investor, err := u.userRepo.GetByUserID(ctx, investorID)
	if err != nil {
		return nil, err
	}
	list, err := u.investmentRepo.ListByInvestor(ctx, investor.ID)
	if err != nil {
		return nil, err
	}

	loanNumeric := make([]uint64, 0, len(list))
	for _, iv := range list {
		loanNumeric = append(loanNumeric, iv.LoanID)
	}
	loans, err := u.loanRepo.ListByIDs(ctx, loanNumeric)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint64]loan.Loan, len(loans))
	for _, l := range loans {
		byID[l.ID] = l
	}

	dto := &PortfolioDTO{
		InvestorID:    investor.UserID,
		TotalInvested: decimal.Zero,
		Items:         make([]PortfolioItemDTO, 0, len(list)),
	}
	for _, iv := range list {
		owner := byID[iv.LoanID]
		dto.Items = append(dto.Items, PortfolioItemDTO{
			InvestmentID:     iv.InvestmentID,
			LoanID:           owner.LoanID,
			LoanStatus:       string(owner.Status),
			InvestedAmount:   iv.InvestedAmount,
			OwnershipPercent: iv.OwnershipPercent,
			Status:           string(iv.Status),
			CreatedAt:        iv.CreatedAt,
		})
		if iv.Status == investment.StatusActive {
			dto.TotalInvested = dto.TotalInvested.Add(iv.InvestedAmount)
			dto.ActiveCount++
		}
	}
	return dto, nil
}

// RepaymentHistory returns a loan's schedule with the payments booked
// against it.
func (u *Usecase) RepaymentHistory(ctx context.Context, loanID string) (*RepaymentHistoryDTO, error) {
	l, err := u.loanRepo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, err
	}
	rows, err := u.installmentRepo.ListByLoan(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	paid, err := u.installmentRepo.CountPaidByLoan(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	entries, err := u.ledgerRepo.ListByLoan(ctx, l.ID)
	if err != nil {
		return nil, err
	}

	schedule := make([]ScheduleRowDTO, 0, len(rows))
	for _, it := range rows {
		schedule = append(schedule, ScheduleRowDTO{
			InstallmentID:     it.InstallmentID,
			InstallmentNumber: it.InstallmentNumber,
			DueDate:           it.DueDate,
			AmountDue:         it.AmountDue,
			AmountPaid:        it.AmountPaid,
			Status:            string(it.Status),
			PaymentDate:       it.PaymentDate,
		})
	}

	payments := make([]PaymentDTO, 0)
	for _, e := range entries {
		if e.Type != ledger.TypeRepayment {
			continue
		}
		payments = append(payments, PaymentDTO{
			Reference: e.Reference,
			Amount:    e.Amount,
			CreatedAt: e.CreatedAt,
		})
	}

	return &RepaymentHistoryDTO{
		LoanID:     l.LoanID,
		LoanStatus: string(l.Status),
		EMIAmount:  l.EMIAmount,
		Paid:       paid,
		Total:      l.DurationMonths,
		Schedule:   schedule,
		Payments:   payments,
	}, nil
}

// TransactionsByUser returns a user's ledger, newest first, with loan
// references resolved to public ids.
func (u *Usecase) TransactionsByUser(ctx context.Context, userID string) (*TransactionsDTO, error) {
	owner, err := u.userRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	entries, err := u.ledgerRepo.ListByUser(ctx, owner.ID)
	if err != nil {
		return nil, err
	}

	loanNumeric := make([]uint64, 0, len(entries))
	for _, e := range entries {
		if e.LoanID != nil {
			loanNumeric = append(loanNumeric, *e.LoanID)
		}
	}
	loans, err := u.loanRepo.ListByIDs(ctx, loanNumeric)
	if err != nil {
		return nil, err
	}
	loanPublic := make(map[uint64]string, len(loans))
	for _, l := range loans {
		loanPublic[l.ID] = l.LoanID
	}

	dto := &TransactionsDTO{
		UserID:       owner.UserID,
		Transactions: make([]TransactionDTO, 0, len(entries)),
	}
	for _, e := range entries {
		tx := TransactionDTO{
			Reference: e.Reference,
			Type:      string(e.Type),
			Amount:    e.Amount,
			CreatedAt: e.CreatedAt,
		}
		if e.LoanID != nil {
			tx.LoanID = loanPublic[*e.LoanID]
		}
		dto.Transactions = append(dto.Transactions, tx)
	}
	return dto, nil
}

// AuditLog returns the most recent audit rows, newest first. limit <= 0
// falls back to the repository default; oversized requests are capped.
func (u *Usecase) AuditLog(ctx context.Context, limit int) ([]AuditEntryDTO, error) {
	if limit > maxAuditPage {
		limit = maxAuditPage
	}
	rows, err := u.auditRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}

	actorNumeric := make([]uint64, 0, len(rows))
	for _, a := range rows {
		actorNumeric = append(actorNumeric, a.ActionBy)
	}
	actors, err := u.publicUserIDs(ctx, actorNumeric)
	if err != nil {
		return nil, err
	}

	out := make([]AuditEntryDTO, 0, len(rows))
	for _, a := range rows {
		out = append(out, AuditEntryDTO{
			Reference:  a.Reference,
			Action:     a.Action,
			EntityType: a.EntityType,
			EntityID:   a.EntityID,
			ActionBy:   actors[a.ActionBy],
			Remarks:    a.Remarks,
			CreatedAt:  a.CreatedAt,
		})
	}
	return out, nil
}

// publicUserIDs bulk-resolves numeric user ids to public ids. Unknown
// ids map to the empty string rather than failing the whole read.
func (u *Usecase) publicUserIDs(ctx context.Context, ids []uint64) (map[uint64]string, error) {
	if len(ids) == 0 {
		return map[uint64]string{}, nil
	}
	users, err := u.userRepo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[uint64]string, len(users))
	for _, us := range users {
		out[us.ID] = us.UserID
	}
	return out, nil
}

func borrowerIDs(loans []loan.Loan) []uint64 {
	out := make([]uint64, 0, len(loans))
	for _, l := range loans {
		out = append(out, l.BorrowerID)
	}
	return out
}
