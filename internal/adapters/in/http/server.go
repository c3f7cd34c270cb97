package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"workorders/internal/core/application/usecases/commands"
	"workorders/internal/core/application/usecases/queries"
	"workorders/internal/core/domain/model/employee"
	"workorders/internal/core/domain/model/kernel"
	"workorders/internal/core/domain/model/workorder"
	"workorders/internal/core/domain/statecommand"
	"workorders/internal/core/ports"
	"workorders/internal/generated/servers"
	"workorders/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

type workOrderGetter interface {
	Handle(ctx context.Context, query queries.GetWorkOrderQuery) (queries.WorkOrderView, error)
}

type workOrderLister interface {
	Handle(ctx context.Context, query queries.ListWorkOrdersQuery) ([]queries.WorkOrderView, error)
}

type auditEntryLister interface {
	Handle(ctx context.Context, query queries.GetAuditEntriesQuery) ([]queries.AuditEntryView, error)
}

type employeeCreator interface {
	Handle(ctx context.Context, cmd commands.CreateEmployeeCommand) error
}

type employeeRemover interface {
	Handle(ctx context.Context, cmd commands.RemoveEmployeeCommand) error
}

var _ servers.ServerInterface = (*Server)(nil)

// Server implements the ServerInterface for handling HTTP requests.
// It coordinates between HTTP handlers and application use cases.
type Server struct {
	// State commands go through the dispatcher, local or remote.
	dispatcher commands.StateCommandDispatcher

	// Employee command handlers
	createEmployeeHandler employeeCreator
	removeEmployeeHandler employeeRemover

	// Query handlers
	getWorkOrderHandler    workOrderGetter
	listWorkOrdersHandler  workOrderLister
	getAuditEntriesHandler auditEntryLister

	logger *slog.Logger
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	dispatcher commands.StateCommandDispatcher,
	createEmployeeHandler employeeCreator,
	removeEmployeeHandler employeeRemover,
	getWorkOrderHandler workOrderGetter,
	listWorkOrdersHandler workOrderLister,
	getAuditEntriesHandler auditEntryLister,
	logger *slog.Logger,
) *Server {
	return &Server{
		dispatcher:             dispatcher,
		createEmployeeHandler:  createEmployeeHandler,
		removeEmployeeHandler:  removeEmployeeHandler,
		getWorkOrderHandler:    getWorkOrderHandler,
		listWorkOrdersHandler:  listWorkOrdersHandler,
		getAuditEntriesHandler: getAuditEntriesHandler,
		logger:                 logger.With("component", "http_server"),
	}
}

// SendCommand handles POST /api/v1/work-orders/commands - runs one state command.
// Succeeded maps to 200, field validation to 422 and a refused transition to 409.
func (s *Server) SendCommand(ctx echo.Context, params servers.SendCommandParams) error {
	var req servers.SendCommandRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, servers.Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	cmd, err := newStateCommand(req, params)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, servers.Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid command: " + err.Error(),
		})
	}

	result, err := s.dispatcher.Dispatch(ctx.Request().Context(), cmd)
	if err != nil {
		return s.errorResponse(ctx, err, "Failed to run "+cmd.Name())
	}

	code := http.StatusOK
	switch result.Outcome {
	case commands.OutcomeValidationFailed:
		code = http.StatusUnprocessableEntity
	case commands.OutcomeNotValid:
		code = http.StatusConflict
	}
	return ctx.JSON(code, toCommandResult(result))
}

// GetWorkOrder handles GET /api/v1/work-orders/{id}.
func (s *Server) GetWorkOrder(ctx echo.Context, id openapi_types.UUID) error {
	query, err := queries.NewGetWorkOrderQuery(kernel.UUIDFromGoogle(id))
	if err != nil {
		return s.errorResponse(ctx, err, "Invalid work order id")
	}

	view, err := s.getWorkOrderHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.errorResponse(ctx, err, "Failed to retrieve work order")
	}

	return ctx.JSON(http.StatusOK, toWorkOrder(view))
}

// ListWorkOrders handles GET /api/v1/work-orders?status=KEY.
func (s *Server) ListWorkOrders(ctx echo.Context, params servers.ListWorkOrdersParams) error {
	status, err := workorder.Parse(string(params.Status))
	if err != nil || status.IsNone() {
		return ctx.JSON(http.StatusBadRequest, servers.Error{
			Code:    http.StatusBadRequest,
			Message: "Unknown status " + string(params.Status),
		})
	}

	filter := queries.ListFilter{Status: status}
	if params.Limit != nil {
		filter.Limit = *params.Limit
	}
	query, err := queries.NewListWorkOrdersQuery(filter)
	if err != nil {
		return s.errorResponse(ctx, err, "Invalid filter")
	}

	views, err := s.listWorkOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.errorResponse(ctx, err, "Failed to retrieve work orders")
	}

	response := make([]servers.WorkOrder, len(views))
	for i, view := range views {
		response[i] = toWorkOrder(view)
	}
	return ctx.JSON(http.StatusOK, response)
}

// GetAuditEntries handles GET /api/v1/work-orders/{id}/audit-entries.
func (s *Server) GetAuditEntries(ctx echo.Context, id openapi_types.UUID) error {
	query, err := queries.NewGetAuditEntriesQuery(kernel.UUIDFromGoogle(id))
	if err != nil {
		return s.errorResponse(ctx, err, "Invalid work order id")
	}

	entries, err := s.getAuditEntriesHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.errorResponse(ctx, err, "Failed to retrieve audit entries")
	}

	response := make([]servers.AuditEntry, len(entries))
	for i, e := range entries {
		response[i] = servers.AuditEntry{
			Sequence:     e.Sequence,
			Date:         e.Date,
			BeginStatus:  e.BeginStatus.Key(),
			EndStatus:    e.EndStatus.Key(),
			ActionType:   e.ActionType,
			ActionDetail: e.ActionDetail,
			EmployeeId:   e.EmployeeID.Bytes(),
			EmployeeName: e.EmployeeName,
		}
	}
	return ctx.JSON(http.StatusOK, response)
}

// CreateEmployee handles POST /api/v1/employees - adds an employee to the roster.
func (s *Server) CreateEmployee(ctx echo.Context) error {
	var body servers.NewEmployee
	if err := ctx.Bind(&body); err != nil {
		return ctx.JSON(http.StatusBadRequest, servers.Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	cmd, err := commands.NewCreateEmployeeCommand(body.UserName, deref(body.FirstName), deref(body.LastName), deref(body.Email))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, servers.Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid employee data: " + err.Error(),
		})
	}

	if err := s.createEmployeeHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.errorResponse(ctx, err, "Failed to create employee")
	}

	return ctx.JSON(http.StatusCreated, servers.Employee{
		Id:        cmd.EmployeeID().Bytes(),
		UserName:  cmd.UserName(),
		FirstName: optional(cmd.FirstName()),
		LastName:  optional(cmd.LastName()),
		Email:     optional(cmd.Email()),
	})
}

// RemoveEmployee handles DELETE /api/v1/employees/{id}.
func (s *Server) RemoveEmployee(ctx echo.Context, id openapi_types.UUID) error {
	cmd, err := commands.NewRemoveEmployeeCommand(kernel.UUIDFromGoogle(id))
	if err != nil {
		return s.errorResponse(ctx, err, "Invalid employee id")
	}

	if err := s.removeEmployeeHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.errorResponse(ctx, err, "Failed to remove employee")
	}

	return ctx.NoContent(http.StatusNoContent)
}

// errorResponse maps err to a status code. Internal errors are logged and
// replaced by message.
func (s *Server) errorResponse(ctx echo.Context, err error, message string) error {
	code := statusCode(err)
	if code == http.StatusInternalServerError {
		s.logger.ErrorContext(ctx.Request().Context(), message,
			"method", ctx.Request().Method,
			"path", ctx.Path(),
			"error", err,
		)
	} else {
		message = err.Error()
	}

	return ctx.JSON(code, servers.Error{
		Code:    int32(code),
		Message: message,
	})
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, ports.ErrUserNameTaken):
		return http.StatusConflict
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange),
		errors.Is(err, statecommand.ErrUnknownCommand),
		errors.Is(err, commands.ErrInvalidCommand):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// newStateCommand builds the command from the request envelope. The work
// order and the acting user travel as references; the handler loads both.
func newStateCommand(req servers.SendCommandRequest, params servers.SendCommandParams) (statecommand.Command, error) {
	kind, err := statecommand.KindByName(req.Command)
	if err != nil {
		return statecommand.Command{}, err
	}

	var workOrderID kernel.UUID
	if req.WorkOrderId != nil {
		workOrderID = kernel.UUIDFromGoogle(*req.WorkOrderId)
	}

	edits := statecommand.Edits{
		Title:         req.Title,
		Description:   req.Description,
		Instructions:  req.Instructions,
		Deadline:      req.Deadline,
		ClearDeadline: req.ClearDeadline != nil && *req.ClearDeadline,
	}
	if req.RoomTags != nil {
		edits.RoomTags = *req.RoomTags
		if edits.RoomTags == nil {
			edits.RoomTags = []string{}
		}
	}

	opts := []statecommand.Option{statecommand.WithEdits(edits)}
	if req.AssigneeId != nil {
		opts = append(opts, statecommand.WithAssignee(kernel.UUIDFromGoogle(*req.AssigneeId)))
	}
	if params.IdempotencyKey != nil && *params.IdempotencyKey != "" {
		opts = append(opts, statecommand.WithCorrelationID(*params.IdempotencyKey))
	}

	return statecommand.New(kind,
		workorder.Reference(workOrderID),
		employee.Reference(kernel.UUIDFromGoogle(req.ActingUserId)),
		opts...,
	)
}

func toCommandResult(result commands.StateCommandResult) servers.CommandResult {
	response := servers.CommandResult{
		Outcome: servers.CommandResultOutcome(result.Outcome.String()),
		Verb:    result.Verb,
	}
	if result.Rejection != statecommand.RejectionNone {
		rejection := servers.CommandResultRejection(result.Rejection.String())
		response.Rejection = &rejection
	}
	if len(result.Messages) > 0 {
		messages := append([]string(nil), result.Messages...)
		response.Messages = &messages
	}
	if result.Deleted {
		response.Deleted = &result.Deleted
	}
	if result.WorkOrder != nil {
		state := toWorkOrderState(result.WorkOrder)
		response.WorkOrder = &state
	}
	return response
}

func toWorkOrderState(wo *workorder.WorkOrder) servers.WorkOrderState {
	s := wo.Snapshot()
	state := servers.WorkOrderState{
		Id:            s.ID.Bytes(),
		Number:        optional(s.Number),
		Title:         s.Title,
		Description:   s.Description,
		Instructions:  optional(s.Instructions),
		Deadline:      s.Deadline,
		Status:        s.Status.Key(),
		CreatorId:     s.CreatorID.Bytes(),
		AssigneeId:    optionalUUID(s.AssigneeID),
		CreatedDate:   s.CreatedDate,
		AssignedDate:  s.AssignedDate,
		CompletedDate: s.CompletedDate,
		Version:       s.Version,
	}
	if len(s.RoomTags) > 0 {
		state.RoomTags = &s.RoomTags
	}
	return state
}

func toWorkOrder(view queries.WorkOrderView) servers.WorkOrder {
	response := servers.WorkOrder{
		Id:            view.ID.Bytes(),
		Number:        view.Number,
		Title:         view.Title,
		Description:   view.Description,
		Instructions:  optional(view.Instructions),
		Deadline:      view.Deadline,
		Status:        view.Status.Key(),
		StatusName:    view.Status.Name(),
		CreatorId:     view.CreatorID.Bytes(),
		CreatorName:   view.CreatorName,
		AssigneeId:    optionalUUID(view.AssigneeID),
		AssigneeName:  optional(view.AssigneeName),
		CreatedDate:   view.CreatedDate,
		AssignedDate:  view.AssignedDate,
		CompletedDate: view.CompletedDate,
		LastChanged:   view.LastChanged,
		Version:       view.Version,
		Overdue:       view.Overdue,
	}
	if len(view.RoomTags) > 0 {
		tags := append([]string(nil), view.RoomTags...)
		response.RoomTags = &tags
	}
	return response
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optionalUUID(id *kernel.UUID) *openapi_types.UUID {
	if id == nil {
		return nil
	}
	g := id.Bytes()
	return &g
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
