package uow

import (
	"context"

	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/audit"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/history"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/installment"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/investment"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/ledger"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/loan"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/user"
)

// Repos bundles every repository bound to one transaction.
type Repos struct {
	Users        user.Repository
	Loans        loan.Repository
	Fundings     loan.FundingRepository
	Investments  investment.Repository
	Installments installment.Repository
	Ledger       ledger.Repository
	History      history.Repository
	Audits       audit.Repository
}

// UnitOfWork runs a closure inside one atomic transaction. A failed closure
// rolls back every write: partial effects are never visible.
type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the loan row first, then pass it in. All funding
	// and repayment mutations for a loan go through here so that the
	// read-modify-write on its totals is serialized per loan.
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}
