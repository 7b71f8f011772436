package sqlerr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/deppfellow/crashmap/internal/errs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func asHTTPError(t *testing.T, err error) *errs.HTTPError {
	t.Helper()
	var httpErr *errs.HTTPError
	require.True(t, errors.As(err, &httpErr), "expected *errs.HTTPError, got %T", err)
	return httpErr
}

func TestMapCode(t *testing.T) {
	tests := map[string]Code{
		"23503": ForeignKeyViolation,
		"23505": UniqueViolation,
		"23514": CheckViolation,
		"23502": NotNullViolation,
		"08006": ConnectionException,
		"08001": ConnectionException,
		"53300": InsufficientResource,
		"57P01": AdminShutdown,
		"XX000": Other,
		"":      Other,
	}
	for state, want := range tests {
		assert.Equal(t, want, MapCode(state), state)
	}
}

func TestMapSeverity(t *testing.T) {
	assert.Equal(t, SeverityError, MapSeverity("ERROR"))
	assert.Equal(t, SeverityFatal, MapSeverity("FATAL"))
	assert.Equal(t, SeverityUnknown, MapSeverity("LOUD"))
}

func TestHandleError_ForeignKeyViolation(t *testing.T) {
	err := HandleError(fmt.Errorf("set collisions: %w", &pgconn.PgError{
		Code:           "23503",
		Severity:       "ERROR",
		TableName:      "collision",
		ConstraintName: "collision_name_fkey",
	}))

	httpErr := asHTTPError(t, err)
	assert.Equal(t, http.StatusNotFound, httpErr.Status)
	assert.Equal(t, errs.CodeIntersectionNotFound, httpErr.Code)
	assert.Equal(t, "The referenced intersection does not exist", httpErr.Message)
}

func TestHandleError_UniqueViolation(t *testing.T) {
	err := HandleError(&pgconn.PgError{
		Code:           "23505",
		TableName:      "location",
		ConstraintName: "location_name_key",
	})

	httpErr := asHTTPError(t, err)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "LOCATION_ALREADY_EXISTS", httpErr.Code)
	assert.Equal(t, "Intersection with this Name already exists", httpErr.Message)
}

func TestHandleError_CheckViolation(t *testing.T) {
	err := HandleError(&pgconn.PgError{
		Code:           "23514",
		TableName:      "collision",
		ConstraintName: "collision_num_collisions_check",
	})

	httpErr := asHTTPError(t, err)
	assert.Equal(t, http.StatusBadRequest, httpErr.Status)
	assert.Equal(t, "COLLISION_INVALID", httpErr.Code)
	assert.Equal(t, "The Num Collisions value does not meet required conditions", httpErr.Message)
}

func TestHandleError_NotNullViolation(t *testing.T) {
	err := HandleError(&pgconn.PgError{
		Code:       "23502",
		TableName:  "location",
		ColumnName: "latitude",
	})

	httpErr := asHTTPError(t, err)
	assert.Equal(t, "LOCATION_REQUIRED", httpErr.Code)
	require.Len(t, httpErr.Errors, 1)
	assert.Equal(t, "latitude", httpErr.Errors[0].Field)
}

func TestHandleError_Transient(t *testing.T) {
	httpErr := asHTTPError(t, HandleError(&pgconn.PgError{Code: "08006"}))
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.Status)

	httpErr = asHTTPError(t, HandleError(fmt.Errorf("query: %w", context.DeadlineExceeded)))
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.Status)
}

func TestHandleError_Fallbacks(t *testing.T) {
	httpErr := asHTTPError(t, HandleError(pgx.ErrNoRows))
	assert.Equal(t, http.StatusNotFound, httpErr.Status)

	httpErr = asHTTPError(t, HandleError(errors.New("boom")))
	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)

	httpErr = asHTTPError(t, HandleError(&pgconn.PgError{Code: "42601"}))
	assert.Equal(t, http.StatusInternalServerError, httpErr.Status)
}

func TestHandleError_PassesHTTPErrorThrough(t *testing.T) {
	original := errs.NewIntersectionNotFoundError("A St")
	assert.Same(t, original, HandleError(original))
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "23503"})
	assert.True(t, IsCode(err, ForeignKeyViolation))
	assert.False(t, IsCode(err, UniqueViolation))
	assert.Equal(t, Other, ErrCode(errors.New("plain")))

	converted := ConvertPgError(&pgconn.PgError{Code: "23505", Severity: "ERROR", Message: "dup"})
	assert.True(t, IsCode(converted, UniqueViolation))
	assert.Equal(t, "ERROR 23505: dup", converted.Error())
}

func TestExtractColumnForUniqueViolation(t *testing.T) {
	assert.Equal(t, "name", extractColumnForUniqueViolation("unique_location_name"))
	assert.Equal(t, "name", extractColumnForUniqueViolation("location_name_key"))
	assert.Equal(t, "", extractColumnForUniqueViolation(""))
}
