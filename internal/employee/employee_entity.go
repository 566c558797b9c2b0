package employee

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Employee mirrors one row of the personnel sheet. EmployeeID is the
// payroll file number ("legajo"); it is kept as a string because the
// source data is numeric-looking and must not lose its formatting.
// RemainingDays is signed on purpose: the ledger never blocks a debit,
// so a raced approval can legitimately drive it below zero.
type Employee struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID string    `gorm:"type:varchar(30);not null;uniqueIndex"`
	FullName   string    `gorm:"type:varchar(120);not null;index"`

	HireDate      *time.Time `gorm:"type:date"`
	RemainingDays int        `gorm:"type:int;not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizeID is the canonical string form used for equality and joins.
func NormalizeID(raw string) string {
	return strings.TrimSpace(raw)
}

// SeniorityYears returns whole years since hire, or -1 when the hire
// date is missing so callers can render "unknown" instead of failing.
func (e Employee) SeniorityYears(now time.Time) int {
	if e.HireDate == nil {
		return -1
	}
	years := now.Year() - e.HireDate.Year()
	anniversary := e.HireDate.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	if years < 0 {
		years = 0
	}
	return years
}
