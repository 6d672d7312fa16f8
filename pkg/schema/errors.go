package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// FieldError is one violated constraint on one field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RecordError aggregates every failing field of a single record.
type RecordError struct {
	Fields []FieldError `json:"fields"`
}

func (e *RecordError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *RecordError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, fe := range e.Fields {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return strings.Join(parts, "; ")
}

// IndexedRecordError ties a RecordError to its position in the batch.
type IndexedRecordError struct {
	Index int          `json:"index"`
	Err   *RecordError `json:"errors"`
}

// BatchError aggregates the failures of a batch validation. Records that
// validated cleanly are not listed.
type BatchError struct {
	Records []IndexedRecordError `json:"records"`
}

func (e *BatchError) Error() string {
	parts := make([]string, len(e.Records))
	for i, re := range e.Records {
		parts[i] = fmt.Sprintf("record %d: %s", re.Index, re.Err.Error())
	}
	return strings.Join(parts, " | ")
}

func formatBound(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
