package commands

import (
	"errors"
	"strings"

	"workorders/internal/core/domain/model/kernel"
	"workorders/internal/pkg/guard"
)

var (
	ErrCreateEmployeeCommandIsNotConstructed = errors.New(
		"CreateEmployeeCommand must be created via NewCreateEmployeeCommand constructor",
	)
	ErrUserNameIsRequired = errors.New("user name is required")
	ErrNameIsRequired     = errors.New("first or last name is required")
)

// CreateEmployeeCommand adds a person to the roster so they can create and
// carry out work orders.
//
// Example:
//
//	cmd, err := NewCreateEmployeeCommand("jpalermo", "Jeffrey", "Palermo", "jp@example.com")
//	if err != nil {
//	    return fmt.Errorf("invalid employee data: %w", err)
//	}
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to create employee: %w", err)
//	}
//	fmt.Printf("Created employee with ID: %s", cmd.EmployeeID())
type CreateEmployeeCommand struct { //nolint:recvcheck //using for validation
	employeeID kernel.UUID
	userName   string
	firstName  string
	lastName   string
	email      string

	guard guard.ConstructorGuard
}

// NewCreateEmployeeCommand generates the employee id and checks the required fields.
// Email format is checked by the domain when the handler builds the employee.
func NewCreateEmployeeCommand(userName, firstName, lastName, email string) (CreateEmployeeCommand, error) {
	command := CreateEmployeeCommand{
		guard: guard.NewConstructorGuard(),
		email: strings.TrimSpace(email),
	}

	if err := errors.Join(
		command.setEmployeeID(kernel.NewUUID()),
		command.setUserName(userName),
		command.setNames(firstName, lastName),
	); err != nil {
		return CreateEmployeeCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateEmployeeCommand) Validate() error {
	return c.guard.Validate(ErrCreateEmployeeCommandIsNotConstructed)
}

func (c CreateEmployeeCommand) EmployeeID() kernel.UUID { return c.employeeID }
func (c CreateEmployeeCommand) UserName() string        { return c.userName }
func (c CreateEmployeeCommand) FirstName() string       { return c.firstName }
func (c CreateEmployeeCommand) LastName() string        { return c.lastName }
func (c CreateEmployeeCommand) Email() string           { return c.email }

func (c *CreateEmployeeCommand) setEmployeeID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}

	c.employeeID = id
	return nil
}

func (c *CreateEmployeeCommand) setUserName(userName string) error {
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return ErrUserNameIsRequired
	}

	c.userName = userName
	return nil
}

func (c *CreateEmployeeCommand) setNames(firstName, lastName string) error {
	firstName, lastName = strings.TrimSpace(firstName), strings.TrimSpace(lastName)
	if firstName == "" && lastName == "" {
		return ErrNameIsRequired
	}

	c.firstName = firstName
	c.lastName = lastName
	return nil
}
