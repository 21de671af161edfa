package engine

import "fmt"

// The mutation API raises these synchronously and leaves the graph
// completely unchanged. None are retried automatically.

// DuplicateNameError is a case-insensitive name collision at the scope the
// entity defines (objects and templates system-wide, sections and headers
// per template).
type DuplicateNameError struct {
	Entity string
	Name   string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("%s '%s' already exists", e.Entity, e.Name)
}

// EmptyNameError is a blank required name.
type EmptyNameError struct {
	Entity string
}

func (e *EmptyNameError) Error() string {
	return fmt.Sprintf("%s name cannot be empty", e.Entity)
}

// ProtectedFieldViolation is any attempt to delete, rename, retype or
// relocate one of the five protected headers or the "Record Data" section.
type ProtectedFieldViolation struct {
	Field  string
	Reason string
}

func (e *ProtectedFieldViolation) Error() string {
	return fmt.Sprintf("'%s' is protected: %s", e.Field, e.Reason)
}

// NotEmptyError is raised when deleting an object that still owns live
// templates.
type NotEmptyError struct {
	ObjectName string
}

func (e *NotEmptyError) Error() string {
	return fmt.Sprintf("object '%s' still contains templates", e.ObjectName)
}

// InvalidPipelineError names the first violated pipeline rule.
type InvalidPipelineError struct {
	Rule string
}

func (e *InvalidPipelineError) Error() string {
	return fmt.Sprintf("invalid pipeline: %s", e.Rule)
}

// TypeImmutabilityError is an attempt to change an existing header's type.
// Type is decided at creation and fixed forever.
type TypeImmutabilityError struct {
	Key  string
	From string
	To   string
}

func (e *TypeImmutabilityError) Error() string {
	return fmt.Sprintf("header '%s' type cannot change from '%s' to '%s'", e.Key, e.From, e.To)
}
