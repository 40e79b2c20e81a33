// Package memstore is an in-memory implementation of the domain
// repositories and the unit of work, for usecase tests. WithinLoanTx
// serializes on a per-loan mutex the way the MySQL implementation
// serializes on the loan row lock, so concurrency tests exercise the
// engines against the same locking discipline as production. A failed
// closure restores the pre-transaction state.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/audit"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/history"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/installment"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/investment"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/ledger"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/loan"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/uow"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/user"
)

type Store struct {
	// mu guards the maps below; loanMu holds one mutex per public loan
	// id, acquired for the whole of a WithinLoanTx. txGate makes
	// WithinTx exclusive against loan transactions.
	mu     sync.Mutex
	txGate sync.RWMutex
	loanMu map[string]*sync.Mutex

	seq uint64

	users        map[uint64]user.User
	loans        map[uint64]loan.Loan
	fundings     map[uint64]loan.FundingRecord
	investments  map[uint64]investment.Investment
	installments map[uint64]installment.Installment
	ledger       []ledger.Entry
	history      []history.Entry
	audits       []audit.Entry
}

var _ uow.UnitOfWork = (*Store)(nil)

func New() *Store {
	return &Store{
		loanMu:       make(map[string]*sync.Mutex),
		users:        make(map[uint64]user.User),
		loans:        make(map[uint64]loan.Loan),
		fundings:     make(map[uint64]loan.FundingRecord),
		investments:  make(map[uint64]investment.Investment),
		installments: make(map[uint64]installment.Installment),
	}
}

// Repos returns repositories reading and writing the store directly,
// outside any transaction. Tests use them for fixtures and asserts.
func (s *Store) Repos() uow.Repos {
	return uow.Repos{
		Users:        &userRepo{s},
		Loans:        &loanRepo{s},
		Fundings:     &fundingRepo{s},
		Investments:  &investmentRepo{s},
		Installments: &installmentRepo{s},
		Ledger:       &ledgerRepo{s},
		History:      &historyRepo{s},
		Audits:       &auditRepo{s},
	}
}

func (s *Store) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	s.txGate.Lock()
	defer s.txGate.Unlock()

	snap := s.snapshot()
	if err := fn(s.Repos()); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *Store) WithinLoanTx(ctx context.Context, loanID string, fn func(r uow.Repos, l *loan.Loan) error) error {
	s.txGate.RLock()
	defer s.txGate.RUnlock()

	mu := s.lockFor(loanID)
	mu.Lock()
	defer mu.Unlock()

	l, err := (&loanRepo{s}).GetByLoanIDForUpdate(ctx, loanID)
	if err != nil {
		return err
	}
	// Rollback restores the whole store; tests only run concurrent
	// transactions against the same loan, where this is exact.
	snap := s.snapshot()
	if err := fn(s.Repos(), l); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *Store) lockFor(loanID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	mu, ok := s.loanMu[loanID]
	if !ok {
		mu = &sync.Mutex{}
		s.loanMu[loanID] = mu
	}
	return mu
}

func (s *Store) nextID() uint64 {
	s.seq++
	return s.seq
}

type snapshot struct {
	seq          uint64
	users        map[uint64]user.User
	loans        map[uint64]loan.Loan
	fundings     map[uint64]loan.FundingRecord
	investments  map[uint64]investment.Investment
	installments map[uint64]installment.Installment
	ledger       []ledger.Entry
	history      []history.Entry
	audits       []audit.Entry
}

func copyMap[V any](m map[uint64]V) map[uint64]V {
	out := make(map[uint64]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{
		seq:          s.seq,
		users:        copyMap(s.users),
		loans:        copyMap(s.loans),
		fundings:     copyMap(s.fundings),
		investments:  copyMap(s.investments),
		installments: copyMap(s.installments),
		ledger:       append([]ledger.Entry(nil), s.ledger...),
		history:      append([]history.Entry(nil), s.history...),
		audits:       append([]audit.Entry(nil), s.audits...),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq = snap.seq
	s.users = snap.users
	s.loans = snap.loans
	s.fundings = snap.fundings
	s.investments = snap.investments
	s.installments = snap.installments
	s.ledger = snap.ledger
	s.history = snap.history
	s.audits = snap.audits
}

func stamp(created *time.Time, updated *time.Time) {
	now := time.Now().UTC()
	if created != nil && created.IsZero() {
		*created = now
	}
	if updated != nil {
		*updated = now
	}
}

// ---- user ----

type userRepo struct{ s *Store }

func (r *userRepo) Create(ctx context.Context, u *user.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u.ID = r.s.nextID()
	stamp(&u.CreatedAt, &u.UpdatedAt)
	r.s.users[u.ID] = *u
	return nil
}

func (r *userRepo) GetByUserID(ctx context.Context, userID string) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.UserID == userID {
			out := u
			return &out, nil
		}
	}
	return nil, user.ErrNotFound
}

func (r *userRepo) GetByID(ctx context.Context, id uint64) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	out := u
	return &out, nil
}

func (r *userRepo) ListByIDs(ctx context.Context, ids []uint64) ([]user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []user.User
	for _, id := range ids {
		if u, ok := r.s.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

// ---- loan ----

type loanRepo struct{ s *Store }

func (r *loanRepo) Create(ctx context.Context, l *loan.Loan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l.ID = r.s.nextID()
	stamp(&l.CreatedAt, &l.UpdatedAt)
	r.s.loans[l.ID] = *l
	return nil
}

func (r *loanRepo) GetByLoanID(ctx context.Context, loanID string) (*loan.Loan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.loans {
		if l.LoanID == loanID {
			out := l
			return &out, nil
		}
	}
	return nil, loan.ErrNotFound
}

// GetByLoanIDForUpdate is a plain read here; WithinLoanTx already holds
// the per-loan mutex.
func (r *loanRepo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loan.Loan, error) {
	return r.GetByLoanID(ctx, loanID)
}

func (r *loanRepo) GetByID(ctx context.Context, id uint64) (*loan.Loan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.loans[id]
	if !ok {
		return nil, loan.ErrNotFound
	}
	out := l
	return &out, nil
}

func (r *loanRepo) Save(ctx context.Context, l *loan.Loan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.loans[l.ID]; !ok {
		return loan.ErrNotFound
	}
	stamp(nil, &l.UpdatedAt)
	r.s.loans[l.ID] = *l
	return nil
}

func (r *loanRepo) ListByStatuses(ctx context.Context, statuses []loan.Status) ([]loan.Loan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []loan.Loan
	for _, l := range r.s.loans {
		for _, st := range statuses {
			if l.Status == st {
				out = append(out, l)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *loanRepo) ListByIDs(ctx context.Context, ids []uint64) ([]loan.Loan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []loan.Loan
	for _, id := range ids {
		if l, ok := r.s.loans[id]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

// ---- funding ----

type fundingRepo struct{ s *Store }

func (r *fundingRepo) Create(ctx context.Context, f *loan.FundingRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	f.ID = r.s.nextID()
	stamp(&f.CreatedAt, &f.UpdatedAt)
	r.s.fundings[f.ID] = *f
	return nil
}

func (r *fundingRepo) GetByLoanID(ctx context.Context, loanID uint64) (*loan.FundingRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, f := range r.s.fundings {
		if f.LoanID == loanID {
			out := f
			return &out, nil
		}
	}
	return nil, loan.ErrNotFound
}

func (r *fundingRepo) Save(ctx context.Context, f *loan.FundingRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.fundings[f.ID]; !ok {
		return loan.ErrNotFound
	}
	stamp(nil, &f.UpdatedAt)
	r.s.fundings[f.ID] = *f
	return nil
}

// ---- investment ----

type investmentRepo struct{ s *Store }

func (r *investmentRepo) Create(ctx context.Context, inv *investment.Investment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv.ID = r.s.nextID()
	stamp(&inv.CreatedAt, &inv.UpdatedAt)
	r.s.investments[inv.ID] = *inv
	return nil
}

func (r *investmentRepo) GetByInvestmentID(ctx context.Context, investmentID string) (*investment.Investment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, inv := range r.s.investments {
		if inv.InvestmentID == investmentID {
			out := inv
			return &out, nil
		}
	}
	return nil, investment.ErrNotFound
}

func (r *investmentRepo) GetByInvestmentIDForUpdate(ctx context.Context, investmentID string) (*investment.Investment, error) {
	return r.GetByInvestmentID(ctx, investmentID)
}

func (r *investmentRepo) ListActiveByLoan(ctx context.Context, loanID uint64) ([]investment.Investment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []investment.Investment
	for _, inv := range r.s.investments {
		if inv.LoanID == loanID && inv.Status == investment.StatusActive {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *investmentRepo) ListByInvestor(ctx context.Context, investorID uint64) ([]investment.Investment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []investment.Investment
	for _, inv := range r.s.investments {
		if inv.InvestorID == investorID {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *investmentRepo) Save(ctx context.Context, inv *investment.Investment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.investments[inv.ID]; !ok {
		return investment.ErrNotFound
	}
	stamp(nil, &inv.UpdatedAt)
	r.s.investments[inv.ID] = *inv
	return nil
}

// ---- installment ----

type installmentRepo struct{ s *Store }

func (r *installmentRepo) CreateBatch(ctx context.Context, rows []installment.Installment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range rows {
		rows[i].ID = r.s.nextID()
		stamp(&rows[i].CreatedAt, &rows[i].UpdatedAt)
		r.s.installments[rows[i].ID] = rows[i]
	}
	return nil
}

func (r *installmentRepo) GetByInstallmentID(ctx context.Context, installmentID string) (*installment.Installment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, it := range r.s.installments {
		if it.InstallmentID == installmentID {
			out := it
			return &out, nil
		}
	}
	return nil, installment.ErrNotFound
}

func (r *installmentRepo) GetByInstallmentIDForUpdate(ctx context.Context, installmentID string) (*installment.Installment, error) {
	return r.GetByInstallmentID(ctx, installmentID)
}

func (r *installmentRepo) ListByLoan(ctx context.Context, loanID uint64) ([]installment.Installment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []installment.Installment
	for _, it := range r.s.installments {
		if it.LoanID == loanID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].InstallmentNumber < out[j].InstallmentNumber })
	return out, nil
}

func (r *installmentRepo) CountPaidByLoan(ctx context.Context, loanID uint64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, it := range r.s.installments {
		if it.LoanID == loanID && it.Status == installment.StatusPaid {
			n++
		}
	}
	return n, nil
}

func (r *installmentRepo) ListPendingDueBefore(ctx context.Context, cutoff time.Time) ([]installment.Installment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []installment.Installment
	for _, it := range r.s.installments {
		if it.Status == installment.StatusPending && it.DueDate.Before(cutoff) {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out, nil
}

func (r *installmentRepo) Save(ctx context.Context, it *installment.Installment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.installments[it.ID]; !ok {
		return installment.ErrNotFound
	}
	stamp(nil, &it.UpdatedAt)
	r.s.installments[it.ID] = *it
	return nil
}

// ---- ledger ----

type ledgerRepo struct{ s *Store }

func (r *ledgerRepo) Append(ctx context.Context, e *ledger.Entry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e.ID = r.s.nextID()
	stamp(&e.CreatedAt, nil)
	r.s.ledger = append(r.s.ledger, *e)
	return nil
}

func (r *ledgerRepo) ListByUser(ctx context.Context, userID uint64) ([]ledger.Entry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []ledger.Entry
	for i := len(r.s.ledger) - 1; i >= 0; i-- {
		if r.s.ledger[i].UserID == userID {
			out = append(out, r.s.ledger[i])
		}
	}
	return out, nil
}

func (r *ledgerRepo) ListByLoan(ctx context.Context, loanID uint64) ([]ledger.Entry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []ledger.Entry
	for _, e := range r.s.ledger {
		if e.LoanID != nil && *e.LoanID == loanID {
			out = append(out, e)
		}
	}
	return out, nil
}

// ---- history ----

type historyRepo struct{ s *Store }

func (r *historyRepo) Append(ctx context.Context, e *history.Entry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e.ID = r.s.nextID()
	if e.ChangedAt.IsZero() {
		e.ChangedAt = time.Now().UTC()
	}
	r.s.history = append(r.s.history, *e)
	return nil
}

func (r *historyRepo) ListByLoan(ctx context.Context, loanID uint64) ([]history.Entry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []history.Entry
	for _, e := range r.s.history {
		if e.LoanID == loanID {
			out = append(out, e)
		}
	}
	return out, nil
}

// ---- audit ----

type auditRepo struct{ s *Store }

func (r *auditRepo) Append(ctx context.Context, e *audit.Entry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e.ID = r.s.nextID()
	stamp(&e.CreatedAt, nil)
	r.s.audits = append(r.s.audits, *e)
	return nil
}

func (r *auditRepo) ListRecent(ctx context.Context, limit int) ([]audit.Entry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if limit <= 0 || limit > len(r.s.audits) {
		limit = len(r.s.audits)
	}
	out := make([]audit.Entry, 0, limit)
	for i := len(r.s.audits) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, r.s.audits[i])
	}
	return out, nil
}
