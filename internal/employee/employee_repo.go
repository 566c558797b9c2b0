package employee

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	LoadAll(ctx context.Context) ([]Employee, error)
	FindByEmployeeID(ctx context.Context, employeeID string) (*Employee, error)
	// DebitBalance subtracts days from the freshest stored balance in a
	// single atomic statement and returns the resulting balance. It is
	// the only write path that touches RemainingDays.
	DebitBalance(ctx context.Context, employeeID string, days int) (int, error)
}

var ErrNotFound = gorm.ErrRecordNotFound

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) LoadAll(ctx context.Context) ([]Employee, error) {
	var employees []Employee
	err := r.db.WithContext(ctx).
		Order("full_name ASC").
		Find(&employees).Error
	return employees, err
}

func (r *repository) FindByEmployeeID(ctx context.Context, employeeID string) (*Employee, error) {
	var e Employee
	err := r.db.WithContext(ctx).
		First(&e, "employee_id = ?", NormalizeID(employeeID)).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repository) DebitBalance(ctx context.Context, employeeID string, days int) (int, error) {
	var newBalance int

	if r.tx != nil {
		err := r.tx.QueryRowContext(ctx, `
			UPDATE employees
			SET remaining_days = remaining_days - $2, updated_at = now()
			WHERE employee_id = $1
			RETURNING remaining_days
		`, NormalizeID(employeeID), days).Scan(&newBalance)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrNotFound
		}
		return newBalance, err
	}

	result := r.db.WithContext(ctx).Raw(`
		UPDATE employees
		SET remaining_days = remaining_days - ?, updated_at = now()
		WHERE employee_id = ?
		RETURNING remaining_days
	`, days, NormalizeID(employeeID)).Scan(&newBalance)
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, ErrNotFound
	}
	return newBalance, nil
}
