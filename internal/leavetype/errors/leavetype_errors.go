package leavetypeerrors

import (
	"net/http"

	"leavedesk/internal/shared/apperror"
)

var (
	ErrInvalidLeaveTypeID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid leave type id",
		http.StatusBadRequest,
	)
	ErrLeaveTypeNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave type not found",
		http.StatusNotFound,
	)
	ErrDuplicateName = apperror.New(
		apperror.CodeConflict,
		"leave type name already exists",
		http.StatusBadRequest,
	)
	ErrAllocationImmutable = apperror.New(
		apperror.CodeInvalidState,
		"allocation for this leave type cannot be modified",
		http.StatusBadRequest,
	)
)
