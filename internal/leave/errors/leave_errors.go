package leaveerrors

import (
	"net/http"

	"github.com/Nahue18R/sistema-vacaciones/internal/shared/apperror"
)

var (
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"dates must use the YYYY-MM-DD format",
		http.StatusBadRequest,
	)
	ErrInvalidAbsenceType = apperror.New(
		apperror.CodeInvalidInput,
		"unknown absence type",
		http.StatusBadRequest,
	)

	// ErrInvalidRange covers both an inverted range and a range that
	// charges zero days under the active counting policy.
	ErrInvalidRange = apperror.New(
		apperror.CodeInvalidInput,
		"date range charges no days under the current policy",
		http.StatusBadRequest,
	)

	// ErrInsufficientBalance is an advisory submission-time check on
	// vacation requests only; it never blocks an approval.
	ErrInsufficientBalance = apperror.New(
		apperror.CodeConflict,
		"requested days exceed the remaining balance",
		http.StatusConflict,
	)

	ErrRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)

	// ErrAlreadyProcessed: the request left Pending before this actor's
	// decision landed. Approved and Rejected are terminal.
	ErrAlreadyProcessed = apperror.New(
		apperror.CodeInvalidState,
		"leave request was already decided",
		http.StatusConflict,
	)
)
