// Package servers holds the HTTP contract of the service: the request and
// response types of openapi.yaml, the ServerInterface the http adapter
// implements and its echo route registration. It is maintained by hand in the
// layout oapi-codegen uses for echo servers; change it together with
// openapi.yaml.
package servers

import (
	_ "embed"
	"fmt"
	"net/http"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Defines values for CommandResultOutcome.
const (
	NotValid         CommandResultOutcome = "not_valid"
	Succeeded        CommandResultOutcome = "succeeded"
	ValidationFailed CommandResultOutcome = "validation_failed"
)

// Defines values for CommandResultRejection.
const (
	InvalidTransition CommandResultRejection = "invalid_transition"
	Unauthorized      CommandResultRejection = "unauthorized"
)

// AuditEntry defines model for AuditEntry.
type AuditEntry struct {
	ActionDetail string             `json:"actionDetail"`
	ActionType   string             `json:"actionType"`
	BeginStatus  string             `json:"beginStatus"`
	Date         time.Time          `json:"date"`
	EmployeeId   openapi_types.UUID `json:"employeeId"`
	EmployeeName string             `json:"employeeName"`
	EndStatus    string             `json:"endStatus"`
	Sequence     int                `json:"sequence"`
}

// CommandResult defines model for CommandResult.
type CommandResult struct {
	Deleted   *bool                   `json:"deleted,omitempty"`
	Messages  *[]string               `json:"messages,omitempty"`
	Outcome   CommandResultOutcome    `json:"outcome"`
	Rejection *CommandResultRejection `json:"rejection,omitempty"`
	Verb      string                  `json:"verb"`
	WorkOrder *WorkOrderState         `json:"workOrder,omitempty"`
}

// CommandResultOutcome defines model for CommandResult.Outcome.
type CommandResultOutcome string

// CommandResultRejection defines model for CommandResult.Rejection.
type CommandResultRejection string

// Employee defines model for Employee.
type Employee struct {
	Email     *string            `json:"email,omitempty"`
	FirstName *string            `json:"firstName,omitempty"`
	Id        openapi_types.UUID `json:"id"`
	LastName  *string            `json:"lastName,omitempty"`
	UserName  string             `json:"userName"`
}

// Error defines model for Error.
type Error struct {
	Code    int32  `json:"code"`
	Message string `json:"message"`
}

// NewEmployee defines model for NewEmployee.
type NewEmployee struct {
	Email     *string `json:"email,omitempty"`
	FirstName *string `json:"firstName,omitempty"`
	LastName  *string `json:"lastName,omitempty"`
	UserName  string  `json:"userName"`
}

// SendCommandRequest defines model for SendCommandRequest.
type SendCommandRequest struct {
	ActingUserId  openapi_types.UUID  `json:"actingUserId"`
	AssigneeId    *openapi_types.UUID `json:"assigneeId,omitempty"`
	ClearDeadline *bool               `json:"clearDeadline,omitempty"`
	Command       string              `json:"command"`
	Deadline      *time.Time          `json:"deadline,omitempty"`
	Description   *string             `json:"description,omitempty"`
	Instructions  *string             `json:"instructions,omitempty"`
	RoomTags      *[]string           `json:"roomTags,omitempty"`
	Title         *string             `json:"title,omitempty"`

	// WorkOrderId Omit to create a new draft with Save or Assign.
	WorkOrderId *openapi_types.UUID `json:"workOrderId,omitempty"`
}

// WorkOrder defines model for WorkOrder.
type WorkOrder struct {
	AssignedDate  *time.Time          `json:"assignedDate,omitempty"`
	AssigneeId    *openapi_types.UUID `json:"assigneeId,omitempty"`
	AssigneeName  *string             `json:"assigneeName,omitempty"`
	CompletedDate *time.Time          `json:"completedDate,omitempty"`
	CreatedDate   *time.Time          `json:"createdDate,omitempty"`
	CreatorId     openapi_types.UUID  `json:"creatorId"`
	CreatorName   string              `json:"creatorName"`
	Deadline      *time.Time          `json:"deadline,omitempty"`
	Description   string              `json:"description"`
	Id            openapi_types.UUID  `json:"id"`
	Instructions  *string             `json:"instructions,omitempty"`
	LastChanged   *time.Time          `json:"lastChanged,omitempty"`
	Number        string              `json:"number"`
	Overdue       bool                `json:"overdue"`
	RoomTags      *[]string           `json:"roomTags,omitempty"`
	Status        string              `json:"status"`
	StatusName    string              `json:"statusName"`
	Title         string              `json:"title"`
	Version       int                 `json:"version"`
}

// WorkOrderState defines model for WorkOrderState.
type WorkOrderState struct {
	AssignedDate  *time.Time          `json:"assignedDate,omitempty"`
	AssigneeId    *openapi_types.UUID `json:"assigneeId,omitempty"`
	CompletedDate *time.Time          `json:"completedDate,omitempty"`
	CreatedDate   *time.Time          `json:"createdDate,omitempty"`
	CreatorId     openapi_types.UUID  `json:"creatorId"`
	Deadline      *time.Time          `json:"deadline,omitempty"`
	Description   string              `json:"description"`
	Id            openapi_types.UUID  `json:"id"`
	Instructions  *string             `json:"instructions,omitempty"`
	Number        *string             `json:"number,omitempty"`
	RoomTags      *[]string           `json:"roomTags,omitempty"`
	Status        string              `json:"status"`
	Title         string              `json:"title"`
	Version       int                 `json:"version"`
}

// ListWorkOrdersParams defines parameters for ListWorkOrders.
type ListWorkOrdersParams struct {
	Status ListWorkOrdersParamsStatus `form:"status" json:"status"`
	Limit  *int                       `form:"limit,omitempty" json:"limit,omitempty"`
}

// ListWorkOrdersParamsStatus defines parameters for ListWorkOrders.
type ListWorkOrdersParamsStatus string

// SendCommandParams defines parameters for SendCommand.
type SendCommandParams struct {
	IdempotencyKey *string `json:"Idempotency-Key,omitempty"`
}

// CreateEmployeeJSONRequestBody defines body for CreateEmployee for application/json ContentType.
type CreateEmployeeJSONRequestBody = NewEmployee

// SendCommandJSONRequestBody defines body for SendCommand for application/json ContentType.
type SendCommandJSONRequestBody = SendCommandRequest

// ServerInterface represents all server handlers.
type ServerInterface interface {

	// (POST /api/v1/employees)
	CreateEmployee(ctx echo.Context) error

	// (DELETE /api/v1/employees/{id})
	RemoveEmployee(ctx echo.Context, id openapi_types.UUID) error
	// List work orders in one status
	// (GET /api/v1/work-orders)
	ListWorkOrders(ctx echo.Context, params ListWorkOrdersParams) error
	// Run a state command against a work order
	// (POST /api/v1/work-orders/commands)
	SendCommand(ctx echo.Context, params SendCommandParams) error

	// (GET /api/v1/work-orders/{id})
	GetWorkOrder(ctx echo.Context, id openapi_types.UUID) error

	// (GET /api/v1/work-orders/{id}/audit-entries)
	GetAuditEntries(ctx echo.Context, id openapi_types.UUID) error
}

// ServerInterfaceWrapper converts echo contexts to parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

// CreateEmployee converts echo context to params.
func (w *ServerInterfaceWrapper) CreateEmployee(ctx echo.Context) error {
	var err error

	// Invoke the callback with all the unmarshaled arguments
	err = w.Handler.CreateEmployee(ctx)
	return err
}

// RemoveEmployee converts echo context to params.
func (w *ServerInterfaceWrapper) RemoveEmployee(ctx echo.Context) error {
	var err error
	// ------------- Path parameter "id" -------------
	var id openapi_types.UUID

	err = runtime.BindStyledParameterWithOptions("simple", "id", ctx.Param("id"), &id, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter id: %s", err))
	}

	// Invoke the callback with all the unmarshaled arguments
	err = w.Handler.RemoveEmployee(ctx, id)
	return err
}

// ListWorkOrders converts echo context to params.
func (w *ServerInterfaceWrapper) ListWorkOrders(ctx echo.Context) error {
	var err error

	// Parameter object where we will unmarshal all parameters from the context
	var params ListWorkOrdersParams
	// ------------- Required query parameter "status" -------------

	err = runtime.BindQueryParameter("form", true, true, "status", ctx.QueryParams(), &params.Status)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter status: %s", err))
	}

	// ------------- Optional query parameter "limit" -------------

	err = runtime.BindQueryParameter("form", true, false, "limit", ctx.QueryParams(), &params.Limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter limit: %s", err))
	}

	// Invoke the callback with all the unmarshaled arguments
	err = w.Handler.ListWorkOrders(ctx, params)
	return err
}

// SendCommand converts echo context to params.
func (w *ServerInterfaceWrapper) SendCommand(ctx echo.Context) error {
	var err error

	// Parameter object where we will unmarshal all parameters from the context
	var params SendCommandParams

	headers := ctx.Request().Header
	// ------------- Optional header parameter "Idempotency-Key" -------------
	if valueList, found := headers[http.CanonicalHeaderKey("Idempotency-Key")]; found {
		var IdempotencyKey string
		n := len(valueList)
		if n != 1 {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Expected one value for Idempotency-Key, got %d", n))
		}

		err = runtime.BindStyledParameterWithOptions("simple", "Idempotency-Key", valueList[0], &IdempotencyKey, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationHeader, Explode: false, Required: false})
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter Idempotency-Key: %s", err))
		}

		params.IdempotencyKey = &IdempotencyKey
	}

	// Invoke the callback with all the unmarshaled arguments
	err = w.Handler.SendCommand(ctx, params)
	return err
}

// GetWorkOrder converts echo context to params.
func (w *ServerInterfaceWrapper) GetWorkOrder(ctx echo.Context) error {
	var err error
	// ------------- Path parameter "id" -------------
	var id openapi_types.UUID

	err = runtime.BindStyledParameterWithOptions("simple", "id", ctx.Param("id"), &id, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter id: %s", err))
	}

	// Invoke the callback with all the unmarshaled arguments
	err = w.Handler.GetWorkOrder(ctx, id)
	return err
}

// GetAuditEntries converts echo context to params.
func (w *ServerInterfaceWrapper) GetAuditEntries(ctx echo.Context) error {
	var err error
	// ------------- Path parameter "id" -------------
	var id openapi_types.UUID

	err = runtime.BindStyledParameterWithOptions("simple", "id", ctx.Param("id"), &id, runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Invalid format for parameter id: %s", err))
	}

	// Invoke the callback with all the unmarshaled arguments
	err = w.Handler.GetAuditEntries(ctx, id)
	return err
}

// This is a simple interface which specifies echo.Route addition functions which
// are present on both echo.Echo and echo.Group, since we want to allow using
// either of them for path registration
type EchoRouter interface {
	CONNECT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	DELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	HEAD(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	OPTIONS(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PATCH(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	PUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	TRACE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlers adds each server route to the EchoRouter.
func RegisterHandlers(router EchoRouter, si ServerInterface) {
	RegisterHandlersWithBaseURL(router, si, "")
}

// Registers handlers, and prepends BaseURL to the paths, so that the paths
// can be served under a prefix.
func RegisterHandlersWithBaseURL(router EchoRouter, si ServerInterface, baseURL string) {

	wrapper := ServerInterfaceWrapper{
		Handler: si,
	}

	router.POST(baseURL+"/api/v1/employees", wrapper.CreateEmployee)
	router.DELETE(baseURL+"/api/v1/employees/:id", wrapper.RemoveEmployee)
	router.GET(baseURL+"/api/v1/work-orders", wrapper.ListWorkOrders)
	router.POST(baseURL+"/api/v1/work-orders/commands", wrapper.SendCommand)
	router.GET(baseURL+"/api/v1/work-orders/:id", wrapper.GetWorkOrder)
	router.GET(baseURL+"/api/v1/work-orders/:id/audit-entries", wrapper.GetAuditEntries)

}

//go:embed openapi.yaml
var swaggerSpec []byte

// GetSwagger returns the Swagger specification corresponding to the generated code
// in this file.
func GetSwagger() (swagger *openapi3.T, err error) {
	loader := openapi3.NewLoader()
	swagger, err = loader.LoadFromData(swaggerSpec)
	if err != nil {
		return nil, fmt.Errorf("error loading Swagger: %w", err)
	}
	return swagger, nil
}
