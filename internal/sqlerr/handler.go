package sqlerr

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/deppfellow/go-todo/internal/errs"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrCode reports the mapped sqlerr.Code for a given error.
//
// Behavior:
//   - If err unwraps into *sqlerr.Error, return its Code.
//   - If err unwraps into *pgconn.PgError, map its SQLSTATE.
//   - Otherwise return sqlerr.Other.
func ErrCode(err error) Code {
	var sqlErr *Error
	if errors.As(err, &sqlErr) {
		return sqlErr.Code
	}
	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		return MapCode(pgerr.Code)
	}
	return Other
}

// ConvertPgError converts a pgconn.PgError (raw Postgres error) into our custom sqlerr.Error.
func ConvertPgError(src *pgconn.PgError) *Error {
	return &Error{
		Code:           MapCode(src.Code),         // map SQLSTATE to friendly code enum
		Severity:       MapSeverity(src.Severity), // map severity string to enum
		DatabaseCode:   src.Code,                  // keep original SQLSTATE
		Message:        src.Message,               // DB's main message
		SchemaName:     src.SchemaName,
		TableName:      src.TableName,
		ColumnName:     src.ColumnName,
		DataTypeName:   src.DataTypeName,
		ConstraintName: src.ConstraintName,
		driverErr:      src,
	}
}

// generateErrorCode creates consistent "application error codes" from DB errors.
//
// Output format:
//
//	<DOMAIN>_<ACTION>
//
// Example:
//
//	todos + NotNullViolation => TODO_REQUIRED
func generateErrorCode(tableName string, errType Code) string {
	if tableName == "" {
		tableName = "RECORD"
	}

	domain := strings.ToUpper(tableName)

	// Naive singularization: "TODOS" -> "TODO".
	if strings.HasSuffix(domain, "S") && len(domain) > 1 {
		domain = domain[:len(domain)-1]
	}

	action := "ERROR"
	switch errType {
	case ForeignKeyViolation:
		action = "NOT_FOUND"
	case UniqueViolation:
		action = "ALREADY_EXISTS"
	case NotNullViolation:
		action = "REQUIRED"
	case CheckViolation:
		action = "INVALID"
	case ConnectionFailure:
		action = "UNAVAILABLE"
	}

	return fmt.Sprintf("%s_%s", domain, action)
}

// getEntityName tries to infer an entity name from table/column data.
//
// Priority rules:
//  1. If column ends with "_id", use that base name.
//     e.g. "user_id" -> "User"
//  2. Otherwise use table name, singularized if it ends with "s".
//  3. Otherwise fallback to "record".
func getEntityName(tableName, columnName string) string {
	if columnName != "" && strings.HasSuffix(strings.ToLower(columnName), "_id") {
		entity := strings.TrimSuffix(strings.ToLower(columnName), "_id")
		return humanizeText(entity)
	}

	if tableName != "" {
		entity := tableName
		if strings.HasSuffix(entity, "s") && len(entity) > 1 {
			entity = entity[:len(entity)-1]
		}
		return humanizeText(entity)
	}

	return "record"
}

// humanizeText converts snake_case identifiers into Title Case.
//
//	"first_name" -> "First Name"
func humanizeText(text string) string {
	if text == "" {
		return ""
	}
	return cases.Title(language.English).String(strings.ReplaceAll(text, "_", " "))
}

// HandleError converts a low-level database error into an application-level error.
//
// Output:
//   - If already *errs.HTTPError: returned unchanged
//   - If ErrNoRows: 404 "<Entity> not found" (entity taken from WithTable)
//   - If pgconn.PgError: 500 with the driver's message and a classified code
//   - Otherwise: 500 with err.Error()
func HandleError(err error) error {
	var httpErr *errs.HTTPError
	if errors.As(err, &httpErr) {
		return err
	}

	var tableErr *tableError
	table := ""
	if errors.As(err, &tableErr) {
		table = tableErr.table
	}

	// Both pgx and database/sql define ErrNoRows.
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
		if table != "" {
			return errs.NewNotFoundError(fmt.Sprintf("%s not found", getEntityName(table, "")), true, nil)
		}
		return errs.NewNotFoundError("Resource not found", false, nil)
	}

	var pgerr *pgconn.PgError
	if errors.As(err, &pgerr) {
		sqlErr := ConvertPgError(pgerr)
		if sqlErr.TableName != "" {
			table = sqlErr.TableName
		}
		errorCode := generateErrorCode(table, sqlErr.Code)
		return errs.NewInternalServerError(sqlErr.Message, &errorCode)
	}

	return errs.NewInternalServerError(err.Error(), nil)
}
