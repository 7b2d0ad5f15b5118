// Package sqlerr handles database driver errors.
//
// It classifies PostgreSQL SQLSTATE codes into a small set of categories
// and converts driver errors into application HTTP errors (a missing row
// becomes a 404, anything else a 500 carrying the driver's message).
package sqlerr

import "fmt"

// Code is a driver-independent category for a database error.
type Code string

const (
	Other               Code = "other"
	NotNullViolation    Code = "not_null_violation"
	ForeignKeyViolation Code = "foreign_key_violation"
	UniqueViolation     Code = "unique_violation"
	CheckViolation      Code = "check_violation"
	ExclusionViolation  Code = "exclusion_violation"
	InvalidTextRep      Code = "invalid_text_representation"
	NumericOutOfRange   Code = "numeric_value_out_of_range"
	UndefinedTable      Code = "undefined_table"
	UndefinedColumn     Code = "undefined_column"
	ConnectionFailure   Code = "connection_failure"
)

// pgCodes maps SQLSTATE values onto Code. Class 08 is handled by prefix.
var pgCodes = map[string]Code{
	"23502": NotNullViolation,
	"23503": ForeignKeyViolation,
	"23505": UniqueViolation,
	"23514": CheckViolation,
	"23P01": ExclusionViolation,
	"22P02": InvalidTextRep,
	"22003": NumericOutOfRange,
	"42P01": UndefinedTable,
	"42703": UndefinedColumn,
}

// MapCode converts a PostgreSQL SQLSTATE into a Code.
func MapCode(sqlState string) Code {
	if code, ok := pgCodes[sqlState]; ok {
		return code
	}
	if len(sqlState) == 5 && sqlState[:2] == "08" {
		return ConnectionFailure
	}
	return Other
}

// Severity mirrors the PostgreSQL message severity levels.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityFatal   Severity = "FATAL"
	SeverityPanic   Severity = "PANIC"
	SeverityWarning Severity = "WARNING"
	SeverityNotice  Severity = "NOTICE"
	SeverityDebug   Severity = "DEBUG"
	SeverityInfo    Severity = "INFO"
	SeverityLog     Severity = "LOG"
)

// MapSeverity converts the driver's severity string into a Severity.
// Unknown values are treated as ERROR.
func MapSeverity(severity string) Severity {
	switch Severity(severity) {
	case SeverityFatal, SeverityPanic, SeverityWarning, SeverityNotice,
		SeverityDebug, SeverityInfo, SeverityLog:
		return Severity(severity)
	default:
		return SeverityError
	}
}

// Error is the normalized form of a PostgreSQL error.
type Error struct {
	Code           Code
	Severity       Severity
	DatabaseCode   string
	Message        string
	SchemaName     string
	TableName      string
	ColumnName     string
	DataTypeName   string
	ConstraintName string
	driverErr      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Severity, e.DatabaseCode, e.Message)
}

func (e *Error) Unwrap() error {
	return e.driverErr
}

// tableError tags a driver error with the table the statement targeted.
// Its message is the driver's message, unchanged.
type tableError struct {
	table string
	err   error
}

func (e *tableError) Error() string {
	return e.err.Error()
}

func (e *tableError) Unwrap() error {
	return e.err
}

// WithTable records which table a failed statement ran against, so
// HandleError can phrase "not found" errors in terms of the entity.
// A nil err stays nil.
func WithTable(table string, err error) error {
	if err == nil {
		return nil
	}
	return &tableError{table: table, err: err}
}
