package uowmock

import (
	"context"
	"errors"
	"testing"

	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/loan"
	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/uow"
	"github.com/nancy-13-hue/p2p-lending-database/internal/testutil/loanmock"
)

func TestUoW_WithinTx_Happy(t *testing.T) {
	ctx := context.Background()

	loans := &loanmock.Repo{}
	repos := uow.Repos{Loans: loans}

	innerCalled := false
	m := &UoW{
		WithinTxFn: func(gotCtx context.Context, fn func(r uow.Repos) error) error {
			if gotCtx != ctx {
				t.Fatalf("WithinTx: ctx mismatch")
			}
			if fn == nil {
				t.Fatalf("WithinTx: fn is nil")
			}
			return fn(repos)
		},
	}

	err := m.WithinTx(ctx, func(r uow.Repos) error {
		innerCalled = true
		if r.Loans != loans {
			t.Fatalf("WithinTx: repos not forwarded correctly")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithinTx: unexpected err: %v", err)
	}
	if !innerCalled {
		t.Fatalf("WithinTx: inner fn not called")
	}
	if m.TxCalls != 1 {
		t.Fatalf("TxCalls = %d, want 1", m.TxCalls)
	}
}

func TestUoW_WithinTx_PropagatesError(t *testing.T) {
	ctx := context.Background()
	sentinel := errors.New("boom")

	m := &UoW{
		WithinTxFn: func(context.Context, func(uow.Repos) error) error {
			return sentinel
		},
	}
	if err := m.WithinTx(ctx, func(uow.Repos) error { return nil }); !errors.Is(err, sentinel) {
		t.Fatalf("WithinTx: want %v, got %v", sentinel, err)
	}
}

func TestUoW_WithinTx_Default_Unimplemented(t *testing.T) {
	m := &UoW{} // no funcs set
	if err := m.WithinTx(context.Background(), func(uow.Repos) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinTx default: want errUnimplemented, got %v", err)
	}
}

func TestUoW_WithinLoanTx_Happy(t *testing.T) {
	ctx := context.Background()

	loans := &loanmock.Repo{}
	repos := uow.Repos{Loans: loans}
	lock := &loan.Loan{ID: 7, LoanID: "aaaabbbbccccddddeeeeffff00001111"}

	innerCalled := false
	m := &UoW{
		WithinLoanTxFn: func(gotCtx context.Context, loanID string, fn func(r uow.Repos, l *loan.Loan) error) error {
			if gotCtx != ctx {
				t.Fatalf("WithinLoanTx: ctx mismatch")
			}
			if loanID != lock.LoanID {
				t.Fatalf("WithinLoanTx: loanID mismatch, got %s", loanID)
			}
			return fn(repos, lock)
		},
	}

	err := m.WithinLoanTx(ctx, lock.LoanID, func(r uow.Repos, l *loan.Loan) error {
		innerCalled = true
		if r.Loans != loans {
			t.Fatalf("WithinLoanTx: repos not forwarded")
		}
		if l != lock {
			t.Fatalf("WithinLoanTx: loan not forwarded correctly: %+v", l)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithinLoanTx: unexpected err: %v", err)
	}
	if !innerCalled {
		t.Fatalf("WithinLoanTx: inner fn not called")
	}
	if m.LoanTxCalls != 1 {
		t.Fatalf("LoanTxCalls = %d, want 1", m.LoanTxCalls)
	}
}

func TestUoW_WithinLoanTx_CountsRetries(t *testing.T) {
	conflict := errors.New("Error 1213: Deadlock found when trying to get lock")
	m := &UoW{
		WithinLoanTxFn: func(context.Context, string, func(uow.Repos, *loan.Loan) error) error {
			return conflict
		},
	}

	err := uow.RetryLoanTx(context.Background(), m, 3, "feedbeef00000000000000000000cafe", func(uow.Repos, *loan.Loan) error { return nil })
	if !errors.Is(err, loan.ErrConcurrencyConflict) {
		t.Fatalf("want ErrConcurrencyConflict after exhaustion, got %v", err)
	}
	if m.LoanTxCalls != 3 {
		t.Fatalf("LoanTxCalls = %d, want 3", m.LoanTxCalls)
	}
}

func TestUoW_Default_Unimplemented_WithinLoanTx(t *testing.T) {
	m := &UoW{} // no funcs set
	if err := m.WithinLoanTx(context.Background(), "aaaabbbbccccddddeeeeffff00001111", func(uow.Repos, *loan.Loan) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinLoanTx default: want errUnimplemented, got %v", err)
	}
}
