package sqlerr

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/deppfellow/crashmap/internal/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// entityNames maps relations to the noun clients know them by.
var entityNames = map[string]string{
	"location":       "intersection",
	"collision":      "collision record",
	"traffic_volume": "traffic volume",
}

var uniqueConstraintColumn = regexp.MustCompile(`_([^_]+)_(?:key|ukey|pkey)$`)

// ErrCode returns the Code of the first *Error or *pgconn.PgError in err's
// chain, or Other.
func ErrCode(err error) Code {
	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return MapCode(pgErr.Code)
	}
	return Other
}

// IsCode reports whether err carries the given classification.
func IsCode(err error, code Code) bool {
	return ErrCode(err) == code
}

// ConvertPgError normalizes a raw driver error.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),
		Severity:       MapSeverity(src.Severity),
		DatabaseCode:   src.Code,
		Message:        src.Message,
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// generateErrorCode builds <TABLE>_<ACTION>, e.g. LOCATION_ALREADY_EXISTS.
func generateErrorCode(tableName string, errType Code) string {
	if tableName == "" {
		tableName = "RECORD"
	}
	domain := strings.ToUpper(tableName)

	action := "ERROR"
	switch errType {
	case ForeignKeyViolation:
		action = "NOT_FOUND"
	case UniqueViolation:
		action = "ALREADY_EXISTS"
	case NotNullViolation:
		action = "REQUIRED"
	case CheckViolation, InvalidTextRep, NumericOutOfRange:
		action = "INVALID"
	}

	return fmt.Sprintf("%s_%s", domain, action)
}

func formatUserFriendlyMessage(sqlErr *Error) string {
	entityName := getEntityName(sqlErr.TableName)

	switch sqlErr.Code {
	case ForeignKeyViolation:
		// The violating row is the child; the missing one is the intersection.
		return "The referenced intersection does not exist"

	case UniqueViolation:
		return fmt.Sprintf("%s with this identifier already exists", humanizeText(entityName))

	case NotNullViolation:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName == "" {
			fieldName = "field"
		}
		return fmt.Sprintf("The %s is required", fieldName)

	case CheckViolation:
		fieldName := humanizeText(sqlErr.ColumnName)
		if fieldName == "" {
			fieldName = humanizeText(columnFromCheckConstraint(sqlErr.ConstraintName, sqlErr.TableName))
		}
		if fieldName != "" {
			return fmt.Sprintf("The %s value does not meet required conditions", fieldName)
		}
		return "One or more values do not meet required conditions"

	case InvalidTextRep, NumericOutOfRange:
		return "One or more values have an invalid format or are out of range"

	default:
		return "An error occurred while processing your request"
	}
}

func getEntityName(tableName string) string {
	if name, ok := entityNames[tableName]; ok {
		return name
	}
	if tableName != "" {
		return strings.ReplaceAll(tableName, "_", " ")
	}
	return "record"
}

// humanizeText turns "num_collisions" into "Num Collisions".
func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

// extractColumnForUniqueViolation reads the column out of constraint names
// such as "unique_location_name" or "location_name_key".
func extractColumnForUniqueViolation(constraintName string) string {
	if constraintName == "" {
		return ""
	}

	if strings.HasPrefix(constraintName, "unique_") {
		parts := strings.Split(constraintName, "_")
		if len(parts) >= 3 {
			return parts[len(parts)-1]
		}
	}

	if matches := uniqueConstraintColumn.FindStringSubmatch(constraintName); len(matches) > 1 {
		return matches[1]
	}

	return ""
}

// columnFromCheckConstraint reads "num_collisions" out of
// "collision_num_collisions_check".
func columnFromCheckConstraint(constraintName, tableName string) string {
	if !strings.HasSuffix(constraintName, "_check") {
		return ""
	}
	column := strings.TrimSuffix(constraintName, "_check")
	if tableName != "" {
		column = strings.TrimPrefix(column, tableName+"_")
	}
	return column
}

// IsTransient reports whether err is an infrastructure failure that may
// clear up on retry: lost connections, exhausted resources, timeouts.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if ErrCode(err).Transient() {
		return true
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err)
}

// HandleError converts a data-access error into an *errs.HTTPError.
//
//   - *errs.HTTPError: returned unchanged
//   - *pgconn.PgError: constraint violations become 4xx, transient classes 503
//   - pgx.ErrNoRows: 404
//   - connection or timeout failures: 503
//   - anything else: 500
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		sqlErr := ConvertPgError(pgerr)

		errorCode := generateErrorCode(sqlErr.TableName, sqlErr.Code)
		userMessage := formatUserFriendlyMessage(sqlErr)

		switch sqlErr.Code {
		case ForeignKeyViolation:
			code := errs.CodeIntersectionNotFound
			return errs.NewNotFoundError(userMessage, true, &code)

		case UniqueViolation:
			if columnName := extractColumnForUniqueViolation(sqlErr.ConstraintName); columnName != "" {
				userMessage = strings.ReplaceAll(userMessage, "identifier", humanizeText(columnName))
			}
			return errs.NewBadRequestError(userMessage, true, &errorCode, nil, nil)

		case NotNullViolation:
			fieldErrors := []errs.FieldError{{
				Field: strings.ToLower(sqlErr.ColumnName),
				Error: "is required",
			}}
			return errs.NewBadRequestError(userMessage, true, &errorCode, fieldErrors, nil)

		case CheckViolation, InvalidTextRep, NumericOutOfRange:
			return errs.NewBadRequestError(userMessage, true, &errorCode, nil, nil)
		}

		if sqlErr.Code.Transient() {
			return errs.NewServiceUnavailableError("The database is temporarily unavailable").WithCause(err)
		}
		return errs.NewInternalServerError().WithCause(err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return errs.NewNotFoundError("Resource not found", false, nil)
	}

	if IsTransient(err) {
		return errs.NewServiceUnavailableError("The database is temporarily unavailable").WithCause(err)
	}

	return errs.NewInternalServerError().WithCause(err)
}
