// Package employee provides the Employee entity: the people who create, carry
// out and audit work orders. Employees are read-only to state commands.
package employee

import (
	"errors"
	"net/mail"
	"strings"

	"workorders/internal/core/domain/model/kernel"
	"workorders/internal/pkg/errs"
)

// ErrEmployeeIsNotConstructed is returned when an Employee was not created through a constructor.
var ErrEmployeeIsNotConstructed = errors.New("Employee must be created via NewEmployee constructor")

// Employee is identified by id and, for humans, by a unique user name.
type Employee struct {
	id        kernel.UUID
	userName  string
	firstName string
	lastName  string
	email     string

	isConstructed bool
}

// NewEmployee creates a validated employee. Email is optional.
//
// Example:
//
//	e, err := employee.NewEmployee(kernel.NewUUID(), "jpalermo", "Jeffrey", "Palermo", "jp@example.com")
func NewEmployee(id kernel.UUID, userName, firstName, lastName, email string) (*Employee, error) {
	e := &Employee{isConstructed: true}

	if err := errors.Join(
		e.setID(id),
		e.setUserName(userName),
		e.setNames(firstName, lastName),
		e.setEmail(email),
	); err != nil {
		return nil, err
	}

	return e, nil
}

// RestoreEmployee rebuilds a stored employee.
func RestoreEmployee(id kernel.UUID, userName, firstName, lastName, email string) (*Employee, error) {
	return NewEmployee(id, userName, firstName, lastName, email)
}

// Reference builds a detached, identity-only employee. Only the id is meaningful.
func Reference(id kernel.UUID) *Employee {
	return &Employee{id: id, isConstructed: true}
}

// Validate ensures the employee was created through a constructor.
func (e *Employee) Validate() error {
	if e == nil || !e.isConstructed {
		return ErrEmployeeIsNotConstructed
	}
	return nil
}

// Clone returns an independent copy.
func (e *Employee) Clone() *Employee {
	c := *e
	return &c
}

// ID returns the employee id.
func (e *Employee) ID() kernel.UUID { return e.id }

// UserName returns the unique login name.
func (e *Employee) UserName() string { return e.userName }

// FirstName returns the given name.
func (e *Employee) FirstName() string { return e.firstName }

// LastName returns the family name.
func (e *Employee) LastName() string { return e.lastName }

// Email returns the email address, possibly empty.
func (e *Employee) Email() string { return e.email }

// DisplayName returns "First Last", falling back to the user name.
func (e *Employee) DisplayName() string {
	name := strings.TrimSpace(e.firstName + " " + e.lastName)
	if name == "" {
		return e.userName
	}
	return name
}

func (e *Employee) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	e.id = id
	return nil
}

func (e *Employee) setUserName(userName string) error {
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return errs.NewValueIsRequiredError("userName")
	}
	e.userName = userName
	return nil
}

func (e *Employee) setNames(firstName, lastName string) error {
	e.firstName = strings.TrimSpace(firstName)
	e.lastName = strings.TrimSpace(lastName)
	if e.firstName == "" && e.lastName == "" {
		return errs.NewValueIsRequiredError("name")
	}
	return nil
}

func (e *Employee) setEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("email", err)
	}
	e.email = email
	return nil
}
