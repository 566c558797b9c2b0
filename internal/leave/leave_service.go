package leave

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Nahue18R/sistema-vacaciones/internal/calendar"
	"github.com/Nahue18R/sistema-vacaciones/internal/employee"
	employeeerrors "github.com/Nahue18R/sistema-vacaciones/internal/employee/errors"
	"github.com/Nahue18R/sistema-vacaciones/internal/events"
	"github.com/Nahue18R/sistema-vacaciones/internal/holiday"
	leaveerrors "github.com/Nahue18R/sistema-vacaciones/internal/leave/errors"
	"github.com/Nahue18R/sistema-vacaciones/internal/messaging/kafka"
	"github.com/Nahue18R/sistema-vacaciones/internal/notification"
	"github.com/Nahue18R/sistema-vacaciones/internal/shared/apperror"
	"github.com/Nahue18R/sistema-vacaciones/internal/shared/contextutil"
	"github.com/Nahue18R/sistema-vacaciones/internal/shared/counter"
	"github.com/Nahue18R/sistema-vacaciones/internal/shared/retry"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	// Request ids continue the numbering the team already knows from
	// the old sheet: REQ-1001, REQ-1002, ...
	requestCounterType = "leave_requests"
	requestIDOffset    = 1000

	dateLayout = "2006-01-02"
)

// Colors the timeline view renders per lifecycle state.
const (
	colorPending  = "#FFA726"
	colorApproved = "#66BB6A"
	colorRejected = "#EF5350"
)

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Submit(ctx context.Context, req SubmitLeaveRequest) (LeaveResponse, error)
	Approve(ctx context.Context, requestID string) (LeaveResponse, error)
	Reject(ctx context.Context, requestID string) (LeaveResponse, error)
	GetAll(ctx context.Context) ([]LeaveResponse, error)
	GetPending(ctx context.Context) ([]LeaveResponse, error)
	HistoryByEmployee(ctx context.Context, employeeID string) ([]LeaveResponse, error)
	CalendarEvents(ctx context.Context) ([]CalendarEvent, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	employees employee.Repository
	holidays  holiday.Service
	counter   counter.Repository
	outbox    kafka.OutboxRepository
	notifier  notification.Notifier

	policy        calendar.Policy
	approverEmail string

	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	employees employee.Repository,
	holidays holiday.Service,
	counterRepo counter.Repository,
	outbox kafka.OutboxRepository,
	notifier notification.Notifier,
	policy calendar.Policy,
	approverEmail string,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		db:            db,
		repo:          repo,
		employees:     employees,
		holidays:      holidays,
		counter:       counterRepo,
		outbox:        outbox,
		notifier:      notifier,
		policy:        policy,
		approverEmail: approverEmail,
		sf:            &singleflight.Group{},
		logger:        l,
	}
}

func (s *service) Submit(ctx context.Context, req SubmitLeaveRequest) (LeaveResponse, error) {
	s.logger.Debug("submit leave requested",
		zap.String("employee_id", req.EmployeeID),
		zap.String("absence_type", req.AbsenceType),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)

	if !IsValidAbsenceType(req.AbsenceType) {
		return LeaveResponse{}, leaveerrors.ErrInvalidAbsenceType
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return LeaveResponse{}, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return LeaveResponse{}, err
	}

	emp, err := s.employees.FindByEmployeeID(ctx, req.EmployeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, employeeerrors.ErrEmployeeNotFound
		}
		s.logger.Error("submit leave employee lookup failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	holidayDates, err := s.holidays.Dates(ctx)
	if err != nil {
		s.logger.Error("submit leave holiday load failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	days := calendar.ChargeableDays(startDate, endDate, calendar.NewHolidaySet(holidayDates), s.policy)
	if days <= 0 {
		return LeaveResponse{}, leaveerrors.ErrInvalidRange
	}

	// Advisory check only: nothing is reserved. Two pending vacation
	// requests can each pass this against the same balance.
	if IsBalanceChecked(req.AbsenceType) && days > emp.RemainingDays {
		s.logger.Warn("submit leave insufficient balance",
			zap.String("employee_id", emp.EmployeeID),
			zap.Int("chargeable_days", days),
			zap.Int("remaining_days", emp.RemainingDays),
		)
		return LeaveResponse{}, leaveerrors.ErrInsufficientBalance
	}

	seq, err := s.counter.GetNextValue(ctx, requestCounterType)
	if err != nil {
		s.logger.Error("submit leave counter failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	substitute := strings.TrimSpace(req.Substitute)
	if substitute == "" {
		substitute = employee.SubstituteNone
	}

	lr := &LeaveRequest{
		ID:             uuid.New(),
		RequestID:      fmt.Sprintf("REQ-%d", requestIDOffset+seq),
		EmployeeID:     emp.EmployeeID,
		EmployeeName:   emp.FullName,
		AbsenceType:    req.AbsenceType,
		StartDate:      startDate,
		EndDate:        endDate,
		ChargeableDays: days,
		SubstituteName: substitute,
		Comment:        req.Comment,
		Status:         StatusPending,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("submit leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).Create(ctx, lr); err != nil {
		s.logger.Error("submit leave persist failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if err := s.outbox.WithTx(tx).Create(ctx, s.buildOutboxEvent(ctx, events.LeaveSubmittedEventType, lr)); err != nil {
		s.logger.Error("submit leave outbox failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("submit leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	s.logger.Info("submit leave success",
		zap.String("request_id", lr.RequestID),
		zap.String("employee_id", lr.EmployeeID),
		zap.Int("chargeable_days", days),
	)

	// The balance in the submission notice is advisory: what would
	// remain if this request were approved. Nothing is debited yet.
	s.notifier.EnqueueSubmitted(notification.NewEvent(
		lr.EmployeeID, lr.EmployeeName, lr.AbsenceType,
		lr.StartDate, lr.EndDate,
		days, emp.RemainingDays-days,
		s.approverEmail,
	))

	return mapToResponse(*lr), nil
}

func (s *service) Approve(ctx context.Context, requestID string) (LeaveResponse, error) {
	rid := strings.TrimSpace(requestID)

	// Singleflight per request id: two supervisors clicking approve at
	// the same moment share one execution; the CAS below guards
	// against racing processes on top of that.
	v, err, _ := s.sf.Do("approve:"+rid, func() (interface{}, error) {
		return s.approve(ctx, rid)
	})
	if err != nil {
		return LeaveResponse{}, err
	}
	return v.(LeaveResponse), nil
}

func (s *service) approve(ctx context.Context, rid string) (LeaveResponse, error) {
	actor := contextutil.GetActor(ctx)
	s.logger.Debug("approve leave requested",
		zap.String("request_id", rid),
		zap.String("actor", actor),
	)

	lr, err := s.repo.FindByRequestID(ctx, rid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrRequestNotFound
		}
		s.logger.Error("approve leave lookup failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if !CanTransition(lr.Status, StatusApproved) {
		return LeaveResponse{}, leaveerrors.ErrAlreadyProcessed
	}

	// Fresh read, never the cached list. A request referencing an
	// employee that no longer exists is refused outright; the status
	// stays Pending rather than approving without the balance step.
	emp, err := s.employees.FindByEmployeeID(ctx, lr.EmployeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("approve leave employee missing",
				zap.String("request_id", rid),
				zap.String("employee_id", lr.EmployeeID),
			)
			return LeaveResponse{}, employeeerrors.ErrEmployeeNotFound
		}
		return LeaveResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("approve leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	approvedBy := actor
	won, err := s.repo.WithTx(tx).MarkStatus(ctx, rid, StatusPending, StatusApproved, &approvedBy, &now)
	if err != nil {
		s.logger.Error("approve leave status update failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if !won {
		return LeaveResponse{}, leaveerrors.ErrAlreadyProcessed
	}

	// Debit and status change commit or roll back together; losing the
	// CAS above means no debit, so a request is charged at most once.
	newBalance := emp.RemainingDays
	if IsBalanceChecked(lr.AbsenceType) {
		newBalance, err = s.employees.WithTx(tx).DebitBalance(ctx, lr.EmployeeID, lr.ChargeableDays)
		if err != nil {
			s.logger.Error("approve leave debit failed",
				zap.String("request_id", rid),
				zap.String("employee_id", lr.EmployeeID),
				zap.Error(err),
			)
			return LeaveResponse{}, err
		}
	}

	lr.Status = StatusApproved
	lr.ApprovedBy = &approvedBy
	lr.ApprovedAt = &now

	if err := s.outbox.WithTx(tx).Create(ctx, s.buildOutboxEvent(ctx, events.LeaveApprovedEventType, lr)); err != nil {
		s.logger.Error("approve leave outbox failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("approve leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	s.logger.Info("approve leave success",
		zap.String("request_id", rid),
		zap.String("employee_id", lr.EmployeeID),
		zap.Int("new_balance", newBalance),
	)

	s.notifier.EnqueueApproved(notification.NewEvent(
		lr.EmployeeID, lr.EmployeeName, lr.AbsenceType,
		lr.StartDate, lr.EndDate,
		lr.ChargeableDays, newBalance,
		s.approverEmail,
	))

	return mapToResponse(*lr), nil
}

func (s *service) Reject(ctx context.Context, requestID string) (LeaveResponse, error) {
	rid := strings.TrimSpace(requestID)
	actor := contextutil.GetActor(ctx)
	s.logger.Debug("reject leave requested",
		zap.String("request_id", rid),
		zap.String("actor", actor),
	)

	lr, err := s.repo.FindByRequestID(ctx, rid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrRequestNotFound
		}
		s.logger.Error("reject leave lookup failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if !CanTransition(lr.Status, StatusRejected) {
		return LeaveResponse{}, leaveerrors.ErrAlreadyProcessed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.logger.Error("reject leave begin tx failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	defer tx.Rollback()

	won, err := s.repo.WithTx(tx).MarkStatus(ctx, rid, StatusPending, StatusRejected, nil, nil)
	if err != nil {
		s.logger.Error("reject leave status update failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if !won {
		return LeaveResponse{}, leaveerrors.ErrAlreadyProcessed
	}

	lr.Status = StatusRejected

	if err := s.outbox.WithTx(tx).Create(ctx, s.buildOutboxEvent(ctx, events.LeaveRejectedEventType, lr)); err != nil {
		s.logger.Error("reject leave outbox failed", zap.Error(err))
		return LeaveResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		s.logger.Error("reject leave commit failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	s.logger.Info("reject leave success",
		zap.String("request_id", rid),
		zap.String("employee_id", lr.EmployeeID),
	)

	// No webhook on rejection; only the Kafka lifecycle event above.
	return mapToResponse(*lr), nil
}

func (s *service) GetAll(ctx context.Context) ([]LeaveResponse, error) {
	requests, err := s.listWithRetry(ctx, "load leave requests failed", func() ([]LeaveRequest, error) {
		return s.repo.LoadAll(ctx)
	})
	if err != nil {
		return nil, err
	}
	return mapToListResponse(requests), nil
}

func (s *service) GetPending(ctx context.Context) ([]LeaveResponse, error) {
	requests, err := s.listWithRetry(ctx, "load pending requests failed", func() ([]LeaveRequest, error) {
		return s.repo.FindByStatus(ctx, StatusPending)
	})
	if err != nil {
		return nil, err
	}
	return mapToListResponse(requests), nil
}

func (s *service) HistoryByEmployee(ctx context.Context, employeeID string) ([]LeaveResponse, error) {
	id := employee.NormalizeID(employeeID)
	if id == "" {
		return nil, employeeerrors.ErrInvalidEmployeeID
	}
	requests, err := s.listWithRetry(ctx, "load employee history failed", func() ([]LeaveRequest, error) {
		return s.repo.FindByEmployeeID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return mapToListResponse(requests), nil
}

func (s *service) CalendarEvents(ctx context.Context) ([]CalendarEvent, error) {
	requests, err := s.listWithRetry(ctx, "load calendar events failed", func() ([]LeaveRequest, error) {
		return s.repo.LoadAll(ctx)
	})
	if err != nil {
		return nil, err
	}

	items := make([]CalendarEvent, len(requests))
	for i, lr := range requests {
		items[i] = CalendarEvent{
			Title: fmt.Sprintf("%s (%s)", lr.EmployeeName, lr.AbsenceType),
			Start: lr.StartDate.Format(dateLayout),
			// End exclusivo para el renderer del calendario
			End:   calendar.ReturnDate(lr.EndDate).Format(dateLayout),
			Color: statusColor(lr.Status),
		}
	}
	return items, nil
}

// listWithRetry cubre las lecturas de listados: un corte breve del
// store se reintenta y, si persiste, el caller recibe un 503 en vez de
// un error genérico.
func (s *service) listWithRetry(ctx context.Context, logMsg string, fn func() ([]LeaveRequest, error)) ([]LeaveRequest, error) {
	requests, err := retry.Read(ctx, fn)
	if err != nil {
		s.logger.Error(logMsg, zap.Error(err))
		return nil, apperror.ErrStoreUnavailable
	}
	return requests, nil
}

func statusColor(status string) string {
	switch status {
	case StatusApproved:
		return colorApproved
	case StatusRejected:
		return colorRejected
	default:
		return colorPending
	}
}

func (s *service) buildOutboxEvent(ctx context.Context, eventType string, lr *LeaveRequest) kafka.OutboxEvent {
	payload, _ := json.Marshal(events.LeaveLifecycleEvent{
		EventType:      eventType,
		RequestID:      contextutil.GetRequestID(ctx),
		LeaveRequestID: lr.RequestID,
		EmployeeID:     lr.EmployeeID,
		AbsenceType:    lr.AbsenceType,
		Status:         lr.Status,
		OccurredAt:     time.Now().UTC(),
	})

	return kafka.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "leave_request",
		AggregateID:   lr.RequestID,
		EventType:     eventType,
		Topic:         events.LeaveLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, leaveerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapToResponse(lr LeaveRequest) LeaveResponse {
	resp := LeaveResponse{
		RequestID:      lr.RequestID,
		EmployeeID:     lr.EmployeeID,
		EmployeeName:   lr.EmployeeName,
		AbsenceType:    lr.AbsenceType,
		StartDate:      lr.StartDate.Format(dateLayout),
		EndDate:        lr.EndDate.Format(dateLayout),
		ChargeableDays: lr.ChargeableDays,
		Substitute:     lr.SubstituteName,
		Comment:        lr.Comment,
		Status:         lr.Status,
		ApprovedBy:     lr.ApprovedBy,
	}
	if lr.ApprovedAt != nil {
		v := lr.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}
	return resp
}

func mapToListResponse(requests []LeaveRequest) []LeaveResponse {
	resp := make([]LeaveResponse, len(requests))
	for i, lr := range requests {
		resp[i] = mapToResponse(lr)
	}
	return resp
}
