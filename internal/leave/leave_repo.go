package leave

import (
	"context"
	"database/sql"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, lr *LeaveRequest) error
	LoadAll(ctx context.Context) ([]LeaveRequest, error)
	FindByRequestID(ctx context.Context, requestID string) (*LeaveRequest, error)
	FindByEmployeeID(ctx context.Context, employeeID string) ([]LeaveRequest, error)
	FindByStatus(ctx context.Context, status string) ([]LeaveRequest, error)
	CountPendingByEmployee(ctx context.Context, employeeID string) (int64, error)
	// MarkStatus is a compare-and-set on the lifecycle column: the row
	// is updated only while it still holds fromStatus. The boolean
	// result reports whether this caller won the transition.
	MarkStatus(ctx context.Context, requestID, fromStatus, toStatus string, approvedBy *string, approvedAt *time.Time) (bool, error)
}

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

func (r *repository) Create(ctx context.Context, lr *LeaveRequest) error {
	if r.tx != nil {
		_, err := r.tx.ExecContext(ctx, `
			INSERT INTO leave_requests (
				id, request_id, employee_id, employee_name, absence_type,
				start_date, end_date, chargeable_days, substitute_name,
				comment, status, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now(), now())
		`,
			lr.ID, lr.RequestID, lr.EmployeeID, lr.EmployeeName, lr.AbsenceType,
			lr.StartDate, lr.EndDate, lr.ChargeableDays, lr.SubstituteName,
			lr.Comment, lr.Status,
		)
		return err
	}
	return r.db.WithContext(ctx).Create(lr).Error
}

func (r *repository) LoadAll(ctx context.Context) ([]LeaveRequest, error) {
	var requests []LeaveRequest
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

func (r *repository) FindByRequestID(ctx context.Context, requestID string) (*LeaveRequest, error) {
	var lr LeaveRequest
	err := r.db.WithContext(ctx).
		First(&lr, "request_id = ?", requestID).Error
	if err != nil {
		return nil, err
	}
	return &lr, nil
}

func (r *repository) FindByEmployeeID(ctx context.Context, employeeID string) ([]LeaveRequest, error) {
	var requests []LeaveRequest
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("created_at DESC").
		Find(&requests).Error
	return requests, err
}

func (r *repository) FindByStatus(ctx context.Context, status string) ([]LeaveRequest, error) {
	var requests []LeaveRequest
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&requests).Error
	return requests, err
}

func (r *repository) CountPendingByEmployee(ctx context.Context, employeeID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("employee_id = ?", employeeID).
		Where("status = ?", StatusPending).
		Count(&count).Error
	return count, err
}

func (r *repository) MarkStatus(ctx context.Context, requestID, fromStatus, toStatus string, approvedBy *string, approvedAt *time.Time) (bool, error) {
	if r.tx != nil {
		res, err := r.tx.ExecContext(ctx, `
			UPDATE leave_requests
			SET status = $3, approved_by = $4, approved_at = $5, updated_at = now()
			WHERE request_id = $1 AND status = $2
		`, requestID, fromStatus, toStatus, approvedBy, approvedAt)
		if err != nil {
			return false, err
		}
		affected, err := res.RowsAffected()
		return affected == 1, err
	}

	res := r.db.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("request_id = ?", requestID).
		Where("status = ?", fromStatus).
		Updates(map[string]interface{}{
			"status":      toStatus,
			"approved_by": approvedBy,
			"approved_at": approvedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
