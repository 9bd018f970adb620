package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"
)

const maxTitleLength = 255

// Field records whether a value was supplied in a request body.
type Field[T any] struct {
	Set   bool
	Value T
}

func Some[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// TaskCreate is a validated create request. A zero Status means the
// client did not send one.
type TaskCreate struct {
	Title       string
	Description *string
	Status      TaskStatus
}

// TaskUpdate is a validated update request. Only fields with Set are applied.
type TaskUpdate struct {
	Title       Field[string]
	Description Field[*string]
	Status      Field[TaskStatus]
}

// Empty reports whether the update carries no fields at all.
func (u TaskUpdate) Empty() bool {
	return !u.Title.Set && !u.Description.Set && !u.Status.Set
}

// ApplyTo copies every supplied field onto t and reports whether t changed.
func (u TaskUpdate) ApplyTo(t *Task) bool {
	if u.Title.Set {
		t.Title = u.Title.Value
	}
	if u.Description.Set {
		t.Description = u.Description.Value
	}
	if u.Status.Set {
		t.Status = u.Status.Value
	}
	return !u.Empty()
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError collects every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// NewValidationError builds a single-field validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

func DecodeTaskCreate(body []byte) (TaskCreate, error) {
	var in TaskCreate
	raw, err := decodeObject(body)
	if err != nil {
		return in, err
	}

	verr := &ValidationError{}
	if v, ok := raw["title"]; ok {
		in.Title = decodeTitle(v, verr)
	} else {
		verr.add("title", "field required")
	}
	if v, ok := raw["description"]; ok {
		in.Description = decodeDescription(v, verr)
	}
	if v, ok := raw["status"]; ok {
		in.Status = decodeStatus(v, verr)
	}
	return in, verr.orNil()
}

func DecodeTaskUpdate(body []byte) (TaskUpdate, error) {
	var in TaskUpdate
	raw, err := decodeObject(body)
	if err != nil {
		return in, err
	}

	verr := &ValidationError{}
	if v, ok := raw["title"]; ok {
		in.Title = Some(decodeTitle(v, verr))
	}
	if v, ok := raw["description"]; ok {
		in.Description = Some(decodeDescription(v, verr))
	}
	if v, ok := raw["status"]; ok {
		in.Status = Some(decodeStatus(v, verr))
	}
	if err := verr.orNil(); err != nil {
		return TaskUpdate{}, err
	}
	return in, nil
}

func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, NewValidationError("body", "must be a valid JSON object")
	}
	if raw == nil {
		return nil, NewValidationError("body", "must be a valid JSON object")
	}
	return raw, nil
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

func decodeTitle(v json.RawMessage, verr *ValidationError) string {
	var title string
	if isNull(v) || json.Unmarshal(v, &title) != nil {
		verr.add("title", "must be a string")
		return ""
	}
	if strings.TrimSpace(title) == "" {
		verr.add("title", "must not be empty")
		return ""
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		verr.add("title", "must be at most 255 characters")
		return ""
	}
	return title
}

func decodeDescription(v json.RawMessage, verr *ValidationError) *string {
	if isNull(v) {
		return nil
	}
	var desc string
	if err := json.Unmarshal(v, &desc); err != nil {
		verr.add("description", "must be a string or null")
		return nil
	}
	return &desc
}

func decodeStatus(v json.RawMessage, verr *ValidationError) TaskStatus {
	var status TaskStatus
	if err := json.Unmarshal(v, &status); err != nil {
		verr.add("status", "must be one of PENDING, IN_PROGRESS, COMPLETED")
		return ""
	}
	return status
}
