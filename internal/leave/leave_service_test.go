package leave_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/Nahue18R/sistema-vacaciones/internal/calendar"
	"github.com/Nahue18R/sistema-vacaciones/internal/employee"
	employeeerrors "github.com/Nahue18R/sistema-vacaciones/internal/employee/errors"
	"github.com/Nahue18R/sistema-vacaciones/internal/leave"
	leaveerrors "github.com/Nahue18R/sistema-vacaciones/internal/leave/errors"
	"github.com/Nahue18R/sistema-vacaciones/internal/messaging/kafka"
	"github.com/Nahue18R/sistema-vacaciones/internal/notification"
	"github.com/Nahue18R/sistema-vacaciones/internal/shared/apperror"
	"github.com/Nahue18R/sistema-vacaciones/internal/shared/contextutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeLeaveRepository struct {
	withTxFn           func(tx *sql.Tx) leave.Repository
	createFn           func(ctx context.Context, lr *leave.LeaveRequest) error
	loadAllFn          func(ctx context.Context) ([]leave.LeaveRequest, error)
	findByRequestIDFn  func(ctx context.Context, requestID string) (*leave.LeaveRequest, error)
	findByEmployeeIDFn func(ctx context.Context, employeeID string) ([]leave.LeaveRequest, error)
	findByStatusFn     func(ctx context.Context, status string) ([]leave.LeaveRequest, error)
	countPendingFn     func(ctx context.Context, employeeID string) (int64, error)
	markStatusFn       func(ctx context.Context, requestID, fromStatus, toStatus string, approvedBy *string, approvedAt *time.Time) (bool, error)
}

func (f *fakeLeaveRepository) WithTx(tx *sql.Tx) leave.Repository {
	if f.withTxFn != nil {
		return f.withTxFn(tx)
	}
	return f
}

func (f *fakeLeaveRepository) Create(ctx context.Context, lr *leave.LeaveRequest) error {
	if f.createFn != nil {
		return f.createFn(ctx, lr)
	}
	return nil
}

func (f *fakeLeaveRepository) LoadAll(ctx context.Context) ([]leave.LeaveRequest, error) {
	if f.loadAllFn != nil {
		return f.loadAllFn(ctx)
	}
	return nil, nil
}

func (f *fakeLeaveRepository) FindByRequestID(ctx context.Context, requestID string) (*leave.LeaveRequest, error) {
	if f.findByRequestIDFn != nil {
		return f.findByRequestIDFn(ctx, requestID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLeaveRepository) FindByEmployeeID(ctx context.Context, employeeID string) ([]leave.LeaveRequest, error) {
	if f.findByEmployeeIDFn != nil {
		return f.findByEmployeeIDFn(ctx, employeeID)
	}
	return nil, nil
}

func (f *fakeLeaveRepository) FindByStatus(ctx context.Context, status string) ([]leave.LeaveRequest, error) {
	if f.findByStatusFn != nil {
		return f.findByStatusFn(ctx, status)
	}
	return nil, nil
}

func (f *fakeLeaveRepository) CountPendingByEmployee(ctx context.Context, employeeID string) (int64, error) {
	if f.countPendingFn != nil {
		return f.countPendingFn(ctx, employeeID)
	}
	return 0, nil
}

func (f *fakeLeaveRepository) MarkStatus(ctx context.Context, requestID, fromStatus, toStatus string, approvedBy *string, approvedAt *time.Time) (bool, error) {
	if f.markStatusFn != nil {
		return f.markStatusFn(ctx, requestID, fromStatus, toStatus, approvedBy, approvedAt)
	}
	return true, nil
}

type fakeEmployeeRepository struct {
	findByEmployeeIDFn func(ctx context.Context, employeeID string) (*employee.Employee, error)
	debitBalanceFn     func(ctx context.Context, employeeID string, days int) (int, error)
}

func (f *fakeEmployeeRepository) WithTx(tx *sql.Tx) employee.Repository { return f }

func (f *fakeEmployeeRepository) LoadAll(ctx context.Context) ([]employee.Employee, error) {
	return nil, nil
}

func (f *fakeEmployeeRepository) FindByEmployeeID(ctx context.Context, employeeID string) (*employee.Employee, error) {
	if f.findByEmployeeIDFn != nil {
		return f.findByEmployeeIDFn(ctx, employeeID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEmployeeRepository) DebitBalance(ctx context.Context, employeeID string, days int) (int, error) {
	if f.debitBalanceFn != nil {
		return f.debitBalanceFn(ctx, employeeID, days)
	}
	return 0, nil
}

type fakeHolidayService struct {
	dates []time.Time
	err   error
}

func (f *fakeHolidayService) Dates(ctx context.Context) ([]time.Time, error) {
	return f.dates, f.err
}

type fakeCounterRepository struct {
	next int64
	err  error
}

func (f *fakeCounterRepository) GetNextValue(ctx context.Context, counterType string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.next++
	return f.next, nil
}

type fakeOutboxRepository struct {
	created []kafka.OutboxEvent
}

func (f *fakeOutboxRepository) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutboxRepository) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.created = append(f.created, event)
	return nil
}

func (f *fakeOutboxRepository) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepository) MarkSent(ctx context.Context, id string) error { return nil }

func (f *fakeOutboxRepository) MarkFailed(ctx context.Context, id, r string) error { return nil }

type fakeNotifier struct {
	submitted []notification.Event
	approved  []notification.Event
}

func (f *fakeNotifier) EnqueueSubmitted(event notification.Event) {
	f.submitted = append(f.submitted, event)
}

func (f *fakeNotifier) EnqueueApproved(event notification.Event) {
	f.approved = append(f.approved, event)
}

type leaveServiceDeps struct {
	db        *sql.DB
	sqlMock   sqlmock.Sqlmock
	service   leave.Service
	repo      *fakeLeaveRepository
	employees *fakeEmployeeRepository
	holidays  *fakeHolidayService
	counter   *fakeCounterRepository
	outbox    *fakeOutboxRepository
	notifier  *fakeNotifier
}

func setupLeaveServiceTest(t *testing.T, policy calendar.Policy) *leaveServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	repo := &fakeLeaveRepository{}
	employees := &fakeEmployeeRepository{}
	holidays := &fakeHolidayService{}
	counterRepo := &fakeCounterRepository{}
	outbox := &fakeOutboxRepository{}
	notifier := &fakeNotifier{}

	svc := leave.NewService(
		db, repo, employees, holidays, counterRepo, outbox, notifier,
		policy, "boss@example.com",
	)

	return &leaveServiceDeps{
		db:        db,
		sqlMock:   sqlMock,
		service:   svc,
		repo:      repo,
		employees: employees,
		holidays:  holidays,
		counter:   counterRepo,
		outbox:    outbox,
		notifier:  notifier,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func storedEmployee(id, name string, balance int) *employee.Employee {
	return &employee.Employee{EmployeeID: id, FullName: name, RemainingDays: balance}
}

func TestLeaveService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("success business days", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, calendar.PolicyBusinessDays)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.employees.findByEmployeeIDFn = func(ctx context.Context, id string) (*employee.Employee, error) {
			assert.Equal(t, "1042", id)
			return storedEmployee("1042", "Laura Gomez", 10), nil
		}

		var created *leave.LeaveRequest
		deps.repo.createFn = func(ctx context.Context, lr *leave.LeaveRequest) error {
			created = lr
			return nil
		}

		// 2026-03-02 is a Monday; the full week charges 5 business days.
		resp, err := deps.service.Submit(ctx, leave.SubmitLeaveRequest{
			EmployeeID:  "1042",
			AbsenceType: leave.TypeVacation,
			StartDate:   "2026-03-02",
			EndDate:     "2026-03-06",
			Comment:     "trip",
		})

		assert.NoError(t, err)
		assert.Equal(t, "REQ-1001", resp.RequestID)
		assert.Equal(t, leave.StatusPending, resp.Status)
		assert.Equal(t, 5, resp.ChargeableDays)
		assert.Equal(t, "none", resp.Substitute)

		assert.NotNil(t, created)
		assert.Equal(t, "Laura Gomez", created.EmployeeName)
		assert.Equal(t, 5, created.ChargeableDays)

		assert.Len(t, deps.outbox.created, 1)
		assert.Equal(t, "leave_request_submitted", deps.outbox.created[0].EventType)
		assert.Equal(t, "REQ-1001", deps.outbox.created[0].AggregateID)

		assert.Len(t, deps.notifier.submitted, 1)
		event := deps.notifier.submitted[0]
		assert.Equal(t, "02/03/2026", event.StartDate)
		assert.Equal(t, "06/03/2026", event.EndDate)
		assert.Equal(t, "07/03/2026", event.ReturnDate)
		assert.Equal(t, 5, event.DaysCharged)
		// Advisory balance: 10 - 5, nothing debited yet
		assert.Equal(t, 5, event.RemainingDays)
		assert.Equal(t, "boss@example.com", event.ApproverEmail)
	})

	t.Run("holiday shortens the charge", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, calendar.PolicyBusinessDays)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.holidays.dates = []time.Time{
			time.Date(2026, time.March, 4, 0, 0, 0, 0, time.UTC),
		}
		deps.employees.findByEmployeeIDFn = func(ctx context.Context, id string) (*employee.Employee, error) {
			return storedEmployee("1042", "Laura Gomez", 10), nil
		}

		resp, err := deps.service.Submit(ctx, leave.SubmitLeaveRequest{
			EmployeeID:  "1042",
			AbsenceType: leave.TypeVacation,
			StartDate:   "2026-03-02",
			EndDate:     "2026-03-06",
		})

		assert.NoError(t, err)
		assert.Equal(t, 4, resp.ChargeableDays)
	})

	t.Run("weekend only range is invalid", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, calendar.PolicyBusinessDays)
		defer deps.db.Close()

		deps.employees.findByEmployeeIDFn = func(ctx context.Context, id string) (*employee.Employee, error) {
			return storedEmployee("1042", "Laura Gomez", 10), nil
		}
		deps.repo.createFn = func(ctx context.Context, lr *leave.LeaveRequest) error {
			t.Fatal("nothing should be persisted")
			return nil
		}

		_, err := deps.service.Submit(ctx, leave.SubmitLeaveRequest{
			EmployeeID:  "1042",
			AbsenceType: leave.TypeVacation,
			StartDate:   "2026-03-07",
			EndDate:     "2026-03-08",
		})

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidRange)
		assert.Empty(t, deps.notifier.submitted)
	})

	t.Run("inverted range is invalid under calendar policy", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, calendar.PolicyCalendarDays)
		defer deps.db.Close()

		deps.employees.findByEmployeeIDFn = func(ctx context.Context, id string) (*employee.Employee, error) {
			return storedEmployee("1042", "Laura Gomez", 10), nil
		}

		_, err := deps.service.Submit(ctx, leave.SubmitLeaveRequest{
			EmployeeID:  "1042",
			AbsenceType: leave.TypeVacation,
			StartDate:   "2026-03-06",
			EndDate:     "2026-03-02",
		})

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidRange)
	})

	t.Run("insufficient balance blocks vacation only", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, calendar.PolicyBusinessDays)
		defer deps.db.Close()

		deps.employees.findByEmployeeIDFn = func(ctx context.Context, id string) (*employee.Employee, error) {
			return storedEmployee("1042", "Laura Gomez", 3), nil
		}

		_, err := deps.service.Submit(ctx, leave.SubmitLeaveRequest{
			EmployeeID:  "1042",
			AbsenceType: leave.TypeVacation,
			StartDate:   "2026-03-02",
			EndDate:     "2026-03-06",
		})
		assert.ErrorIs(t, err, leaveerrors.ErrInsufficientBalance)
	})

	t.Run("sickness ignores balance", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, calendar.PolicyBusinessDays)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.employees.findByEmployeeIDFn = func(ctx context.Context, id string) (*employee.Employee, error) {
			return storedEmployee("1042", "Laura Gomez", 0), nil
		}

		resp, err := deps.service.Submit(ctx, leave.SubmitLeaveRequest{
			EmployeeID:  "1042",
			AbsenceType: leave.TypeSickness,
			StartDate:   "2026-03-02",
			EndDate:     "2026-03-06",
		})

		assert.NoError(t, err)
		assert.Equal(t, leave.StatusPending, resp.Status)
		// Advisory balance in the notice still subtracts the charge
		assert.Len(t, deps.notifier.submitted, 1)
		assert.Equal(t, -5, deps.notifier.submitted[0].RemainingDays)
	})

	t.Run("bad date format", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, calendar.PolicyBusinessDays)
		defer deps.db.Close()

		_, err := deps.service.Submit(ctx, leave.SubmitLeaveRequest{
			EmployeeID:  "1042",
			AbsenceType: leave.TypeVacation,
			StartDate:   "02/03/2026",
			EndDate:     "2026-03-06",
		})
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateFormat)
	})

	t.Run("unknown employee", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, calendar.PolicyBusinessDays)
		defer deps.db.Close()

		_, err := deps.service.Submit(ctx, leave.SubmitLeaveRequest{
			EmployeeID:  "9999",
			AbsenceType: leave.TypeVacation,
			StartDate:   "2026-03-02",
			EndDate:     "2026-03-06",
		})
		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})

	t.Run("request ids keep counting", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, calendar.PolicyBusinessDays)
		defer deps.db.Close()

		deps.counter.next = 41
		expectTx(t, deps.sqlMock, true)
		deps.employees.findByEmployeeIDFn = func(ctx context.Context, id string) (*employee.Employee, error) {
			return storedEmployee("1042", "Laura Gomez", 30), nil
		}

		resp, err := deps.service.Submit(ctx, leave.SubmitLeaveRequest{
			EmployeeID:  "1042",
			AbsenceType: leave.TypeVacation,
			StartDate:   "2026-03-02",
			EndDate:     "2026-03-06",
		})

		assert.NoError(t, err)
		assert.Equal(t, "REQ-1042", resp.RequestID)
	})
}

func pendingRequest(absenceType string, days int) *leave.LeaveRequest {
	return &leave.LeaveRequest{
		RequestID:      "REQ-1001",
		EmployeeID:     "1042",
		EmployeeName:   "Laura Gomez",
		AbsenceType:    absenceType,
		StartDate:      time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC),
		EndDate:        time.Date(2026, time.March, 6, 0, 0, 0, 0, time.UTC),
		ChargeableDays: days,
		SubstituteName: "none",
		Status:         leave.StatusPending,
	}
}

func TestLeaveService_Approve(t *testing.T) {
	ctx := contextutil.WithActor(context.Background(), "supervisor")

	t.Run("vacation debits the stored charge", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, calendar.PolicyBusinessDays)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.repo.findByRequestIDFn = func(ctx context.Context, rid string) (*leave.LeaveRequest, error) {
			assert.Equal(t, "REQ-1001", rid)
			return pendingRequest(leave.TypeVacation, 5), nil
		}
		deps.employees.findByEmployeeIDFn = func(ctx context.Context, id string) (*employee.Employee, error) {
			return storedEmployee("1042", "Laura Gomez", 10), nil
		}

		var debited int
		deps.employees.debitBalanceFn = func(ctx context.Context, id string, days int) (int, error) {
			assert.Equal(t, "1042", id)
			debited = days
			return 10 - days, nil
		}
		deps.repo.markStatusFn = func(ctx context.Context, rid, from, to string, approvedBy *string, approvedAt *time.Time) (bool, error) {
			assert.Equal(t, leave.StatusPending, from)
			assert.Equal(t, leave.StatusApproved, to)
			assert.NotNil(t, approvedBy)
			assert.Equal(t, "supervisor", *approvedBy)
			assert.NotNil(t, approvedAt)
			return true, nil
		}

		resp, err := deps.service.Approve(ctx, "REQ-1001")

		assert.NoError(t, err)
		assert.Equal(t, leave.StatusApproved, resp.Status)
		assert.Equal(t, 5, debited)

		assert.Len(t, deps.outbox.created, 1)
		assert.Equal(t, "leave_request_approved", deps.outbox.created[0].EventType)

		assert.Len(t, deps.notifier.approved, 1)
		assert.Equal(t, 5, deps.notifier.approved[0].RemainingDays)
	})

	t.Run("non vacation leaves the balance alone", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, calendar.PolicyBusinessDays)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.repo.findByRequestIDFn = func(ctx context.Context, rid string) (*leave.LeaveRequest, error) {
			return pendingRequest(leave.TypeRemoteWork, 5), nil
		}
		deps.employees.findByEmployeeIDFn = func(ctx context.Context, id string) (*employee.Employee, error) {
			return storedEmployee("1042", "Laura Gomez", 10), nil
		}
		deps.employees.debitBalanceFn = func(ctx context.Context, id string, days int) (int, error) {
			t.Fatal("balance must not be touched")
			return 0, nil
		}

		resp, err := deps.service.Approve(ctx, "REQ-1001")

		assert.NoError(t, err)
		assert.Equal(t, leave.StatusApproved, resp.Status)
		assert.Len(t, deps.notifier.approved, 1)
		assert.Equal(t, 10, deps.notifier.approved[0].RemainingDays)
	})

	t.Run("already decided", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, calendar.PolicyBusinessDays)
		defer deps.db.Close()

		lr := pendingRequest(leave.TypeVacation, 5)
		lr.Status = leave.StatusRejected
		deps.repo.findByRequestIDFn = func(ctx context.Context, rid string) (*leave.LeaveRequest, error) {
			return lr, nil
		}

		_, err := deps.service.Approve(ctx, "REQ-1001")
		assert.ErrorIs(t, err, leaveerrors.ErrAlreadyProcessed)
	})

	t.Run("losing the status race debits nothing", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, calendar.PolicyBusinessDays)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, false)
		deps.repo.findByRequestIDFn = func(ctx context.Context, rid string) (*leave.LeaveRequest, error) {
			return pendingRequest(leave.TypeVacation, 5), nil
		}
		deps.employees.findByEmployeeIDFn = func(ctx context.Context, id string) (*employee.Employee, error) {
			return storedEmployee("1042", "Laura Gomez", 10), nil
		}
		deps.repo.markStatusFn = func(ctx context.Context, rid, from, to string, approvedBy *string, approvedAt *time.Time) (bool, error) {
			return false, nil
		}
		deps.employees.debitBalanceFn = func(ctx context.Context, id string, days int) (int, error) {
			t.Fatal("loser of the race must not debit")
			return 0, nil
		}

		_, err := deps.service.Approve(ctx, "REQ-1001")
		assert.ErrorIs(t, err, leaveerrors.ErrAlreadyProcessed)
		assert.Empty(t, deps.notifier.approved)
	})

	t.Run("missing employee keeps the request pending", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, calendar.PolicyBusinessDays)
		defer deps.db.Close()

		deps.repo.findByRequestIDFn = func(ctx context.Context, rid string) (*leave.LeaveRequest, error) {
			return pendingRequest(leave.TypeVacation, 5), nil
		}
		deps.repo.markStatusFn = func(ctx context.Context, rid, from, to string, approvedBy *string, approvedAt *time.Time) (bool, error) {
			t.Fatal("status must not change when the employee is gone")
			return false, nil
		}

		_, err := deps.service.Approve(ctx, "REQ-1001")
		assert.ErrorIs(t, err, employeeerrors.ErrEmployeeNotFound)
	})

	t.Run("unknown request id", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, calendar.PolicyBusinessDays)
		defer deps.db.Close()

		_, err := deps.service.Approve(ctx, "REQ-9999")
		assert.ErrorIs(t, err, leaveerrors.ErrRequestNotFound)
	})

	t.Run("repo failure bubbles up", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, calendar.PolicyBusinessDays)
		defer deps.db.Close()

		boom := errors.New("store offline")
		deps.repo.findByRequestIDFn = func(ctx context.Context, rid string) (*leave.LeaveRequest, error) {
			return nil, boom
		}

		_, err := deps.service.Approve(ctx, "REQ-1001")
		assert.ErrorIs(t, err, boom)
	})
}

func TestLeaveService_Reject(t *testing.T) {
	ctx := contextutil.WithActor(context.Background(), "supervisor")

	t.Run("success sends no webhook", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, calendar.PolicyBusinessDays)
		defer deps.db.Close()

		expectTx(t, deps.sqlMock, true)
		deps.repo.findByRequestIDFn = func(ctx context.Context, rid string) (*leave.LeaveRequest, error) {
			return pendingRequest(leave.TypeVacation, 5), nil
		}
		deps.repo.markStatusFn = func(ctx context.Context, rid, from, to string, approvedBy *string, approvedAt *time.Time) (bool, error) {
			assert.Equal(t, leave.StatusRejected, to)
			assert.Nil(t, approvedBy)
			return true, nil
		}
		deps.employees.debitBalanceFn = func(ctx context.Context, id string, days int) (int, error) {
			t.Fatal("rejection never touches the balance")
			return 0, nil
		}

		resp, err := deps.service.Reject(ctx, "REQ-1001")

		assert.NoError(t, err)
		assert.Equal(t, leave.StatusRejected, resp.Status)
		assert.Empty(t, deps.notifier.submitted)
		assert.Empty(t, deps.notifier.approved)
		assert.Len(t, deps.outbox.created, 1)
		assert.Equal(t, "leave_request_rejected", deps.outbox.created[0].EventType)
	})

	t.Run("already decided", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, calendar.PolicyBusinessDays)
		defer deps.db.Close()

		lr := pendingRequest(leave.TypeVacation, 5)
		lr.Status = leave.StatusApproved
		deps.repo.findByRequestIDFn = func(ctx context.Context, rid string) (*leave.LeaveRequest, error) {
			return lr, nil
		}

		_, err := deps.service.Reject(ctx, "REQ-1001")
		assert.ErrorIs(t, err, leaveerrors.ErrAlreadyProcessed)
	})
}

func TestLeaveService_CalendarEvents(t *testing.T) {
	deps := setupLeaveServiceTest(t, calendar.PolicyBusinessDays)
	defer deps.db.Close()

	approved := *pendingRequest(leave.TypeVacation, 5)
	approved.Status = leave.StatusApproved
	rejected := *pendingRequest(leave.TypeErrand, 1)
	rejected.Status = leave.StatusRejected

	deps.repo.loadAllFn = func(ctx context.Context) ([]leave.LeaveRequest, error) {
		return []leave.LeaveRequest{*pendingRequest(leave.TypeVacation, 5), approved, rejected}, nil
	}

	events, err := deps.service.CalendarEvents(context.Background())

	assert.NoError(t, err)
	assert.Len(t, events, 3)
	assert.Equal(t, "Laura Gomez (Vacation)", events[0].Title)
	assert.Equal(t, "2026-03-02", events[0].Start)
	// Exclusive end: the day after the last day off
	assert.Equal(t, "2026-03-07", events[0].End)
	assert.Equal(t, "#FFA726", events[0].Color)
	assert.Equal(t, "#66BB6A", events[1].Color)
	assert.Equal(t, "#EF5350", events[2].Color)
}

func TestLeaveService_GetAll(t *testing.T) {
	t.Run("transient store blip is retried", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, calendar.PolicyBusinessDays)
		defer deps.db.Close()

		calls := 0
		deps.repo.loadAllFn = func(ctx context.Context) ([]leave.LeaveRequest, error) {
			calls++
			if calls == 1 {
				return nil, errors.New("store blip")
			}
			return []leave.LeaveRequest{*pendingRequest(leave.TypeVacation, 5)}, nil
		}

		resp, err := deps.service.GetAll(context.Background())

		assert.NoError(t, err)
		assert.Len(t, resp, 1)
		assert.Equal(t, 2, calls)
	})

	t.Run("persistent store outage maps to unavailable", func(t *testing.T) {
		deps := setupLeaveServiceTest(t, calendar.PolicyBusinessDays)
		defer deps.db.Close()

		calls := 0
		deps.repo.loadAllFn = func(ctx context.Context) ([]leave.LeaveRequest, error) {
			calls++
			return nil, errors.New("store offline")
		}

		_, err := deps.service.GetAll(context.Background())

		assert.ErrorIs(t, err, apperror.ErrStoreUnavailable)
		assert.Equal(t, 3, calls)
	})
}

func TestLeaveService_HistoryByEmployee(t *testing.T) {
	deps := setupLeaveServiceTest(t, calendar.PolicyBusinessDays)
	defer deps.db.Close()

	deps.repo.findByEmployeeIDFn = func(ctx context.Context, employeeID string) ([]leave.LeaveRequest, error) {
		assert.Equal(t, "1042", employeeID)
		return []leave.LeaveRequest{*pendingRequest(leave.TypeVacation, 5)}, nil
	}

	// Whitespace from the form is trimmed before the lookup
	resp, err := deps.service.HistoryByEmployee(context.Background(), "  1042 ")

	assert.NoError(t, err)
	assert.Len(t, resp, 1)
	assert.Equal(t, "REQ-1001", resp[0].RequestID)
}
