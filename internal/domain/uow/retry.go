package uow

import (
	"context"
	"fmt"
	"strings"

	"github.com/nancy-13-hue/p2p-lending-database/internal/domain/loan"
)

// RetryLoanTx runs fn through WithinLoanTx, retrying a bounded number of
// times when the storage layer reports a transient serialization
// conflict. Any other failure, and exhaustion, surface immediately;
// exhaustion wraps loan.ErrConcurrencyConflict so callers can tell a
// lost race from a business rejection.
func RetryLoanTx(ctx context.Context, u UnitOfWork, attempts int, loanID string, fn func(r Repos, l *loan.Loan) error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		err = u.WithinLoanTx(ctx, loanID, fn)
		if err == nil || !RetryableConflict(err) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", loan.ErrConcurrencyConflict, err)
}

// RetryableConflict reports whether err is a transaction casualty worth
// retrying: MySQL deadlock (1213) or lock wait timeout (1205), and
// SQLite's single-writer busy error in tests. Driver errors carry no
// stable sentinel, so this matches on the message.
func RetryableConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, frag := range []string{
		"Error 1213", "Deadlock found",
		"Error 1205", "Lock wait timeout",
		"database is locked",
	} {
		if strings.Contains(msg, frag) {
			return true
		}
	}
	return false
}
