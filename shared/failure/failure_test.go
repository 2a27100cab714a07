package failure_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"roombook/shared/failure"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    int
		message string
	}{
		{
			name:    "bad request from error",
			err:     failure.BadRequest(errors.New("end_time must be after start_time")),
			code:    http.StatusBadRequest,
			message: "end_time must be after start_time",
		},
		{
			name:    "bad request from string",
			err:     failure.BadRequestFromString("unknown setting key"),
			code:    http.StatusBadRequest,
			message: "unknown setting key",
		},
		{
			name:    "unauthorized",
			err:     failure.Unauthorized("Missing authorization header"),
			code:    http.StatusUnauthorized,
			message: "Missing authorization header",
		},
		{
			name:    "not found",
			err:     failure.NotFound("booking JGU00042 not found"),
			code:    http.StatusNotFound,
			message: "booking JGU00042 not found",
		},
		{
			name:    "conflict",
			err:     failure.Conflict("room is already booked for the requested time"),
			code:    http.StatusConflict,
			message: "room is already booked for the requested time",
		},
		{
			name:    "internal error",
			err:     failure.InternalError(errors.New("could not allocate a booking id")),
			code:    http.StatusInternalServerError,
			message: "could not allocate a booking id",
		},
		{
			name:    "forbidden",
			err:     failure.ForbiddenError,
			code:    http.StatusForbidden,
			message: "You don't have the required permissions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Error(t, tt.err)
			assert.Equal(t, tt.code, failure.GetCode(tt.err))
			assert.Equal(t, tt.message, tt.err.Error())
		})
	}
}

func TestNilErrorsStayNil(t *testing.T) {
	assert.NoError(t, failure.BadRequest(nil))
	assert.NoError(t, failure.InternalError(nil))
}

func TestGetCode(t *testing.T) {
	t.Run("wrapped failure keeps its code", func(t *testing.T) {
		err := fmt.Errorf("create booking: %w", failure.Conflict("overlap"))

		assert.Equal(t, http.StatusConflict, failure.GetCode(err))
	})

	t.Run("plain errors are internal", func(t *testing.T) {
		assert.Equal(t, http.StatusInternalServerError, failure.GetCode(errors.New("connection reset")))
	})
}

func TestAsAndMessage(t *testing.T) {
	t.Run("failure message is exposed", func(t *testing.T) {
		err := fmt.Errorf("transition: %w", failure.Conflict("cannot move APPROVED to PENDING"))

		fail, ok := failure.As(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusConflict, fail.Code)
		assert.Equal(t, "cannot move APPROVED to PENDING", failure.Message(err))
	})

	t.Run("internal details are hidden", func(t *testing.T) {
		err := errors.New(`pq: relation "bookings" does not exist`)

		_, ok := failure.As(err)
		assert.False(t, ok)
		assert.Equal(t, http.StatusText(http.StatusInternalServerError), failure.Message(err))
	})
}

func TestUnwrapKeepsTheCause(t *testing.T) {
	errUnset := errors.New("manager email is not configured")

	t.Run("internal error", func(t *testing.T) {
		err := fmt.Errorf("request otp: %w", failure.InternalError(errUnset))

		assert.ErrorIs(t, err, errUnset)
		assert.Equal(t, http.StatusInternalServerError, failure.GetCode(err))
		assert.Equal(t, "manager email is not configured", failure.Message(err))
	})

	t.Run("bad request", func(t *testing.T) {
		errDecode := errors.New("unexpected EOF")

		assert.ErrorIs(t, failure.BadRequest(errDecode), errDecode)
	})

	t.Run("failures built from strings have no cause", func(t *testing.T) {
		assert.NoError(t, errors.Unwrap(failure.Conflict("overlap")))
	})
}
