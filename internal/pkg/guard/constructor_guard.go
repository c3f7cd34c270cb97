// Package guard holds the constructor guard shared by commands, queries and
// value objects. A zero-value struct carrying a ConstructorGuard fails Validate,
// which is how callers detect values that skipped their NewX constructor.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when the caller passes a nil error.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard marks a value as produced by its constructor.
//
// Example:
//
//	type SaveCommand struct {
//	    title string
//	    guard guard.ConstructorGuard
//	}
//
//	func (c SaveCommand) Validate() error {
//	    return c.guard.Validate(ErrSaveCommandIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard that passes validation.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns validationError (or ErrDefaultConstructorGuard when it is nil)
// if the guard is a zero value, nil otherwise.
func (g ConstructorGuard) Validate(validationError error) error {
	if g.isConstructed {
		return nil
	}
	if validationError == nil {
		return ErrDefaultConstructorGuard
	}
	return validationError
}
