package history

import (
	"time"
)

// Entry records one observed loan status transition. Append-only: one row
// per transition, written inside the same unit of work as the transition
// itself, before the new status is saved.
type Entry struct {
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	// FK to loans.id
	LoanID    uint64 `gorm:"column:loan_id;not null;index:idx_status_history_loan" json:"-"`
	OldStatus string `gorm:"column:old_status;size:16;not null" json:"old_status"`
	NewStatus string `gorm:"column:new_status;size:16;not null" json:"new_status"`
	// FK to users.id: the acting user, always explicit (never session-implicit)
	ChangedBy uint64    `gorm:"column:changed_by;not null" json:"-"`
	ChangedAt time.Time `gorm:"column:changed_at;autoCreateTime" json:"changed_at"`
}

func (Entry) TableName() string { return "loan_status_history" }
