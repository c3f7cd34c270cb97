package commands_test

import (
	"context"

	"workorders/internal/core/application/usecases/commands"
	"workorders/internal/core/domain/model/employee"
	"workorders/internal/core/domain/model/kernel"
	"workorders/internal/core/domain/model/workorder"
	"workorders/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

// Mock implementations for testing.
type MockWorkOrderRepository struct {
	mock.Mock
}

func (m *MockWorkOrderRepository) Add(ctx context.Context, aggregate *workorder.WorkOrder) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockWorkOrderRepository) Update(ctx context.Context, aggregate *workorder.WorkOrder) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockWorkOrderRepository) Delete(ctx context.Context, id kernel.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockWorkOrderRepository) Get(ctx context.Context, id kernel.UUID) (*workorder.WorkOrder, error) {
	args := m.Called(ctx, id)
	wo, _ := args.Get(0).(*workorder.WorkOrder)
	return wo, args.Error(1)
}

func (m *MockWorkOrderRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*workorder.WorkOrder, error) {
	args := m.Called(ctx, id)
	wo, _ := args.Get(0).(*workorder.WorkOrder)
	return wo, args.Error(1)
}

func (m *MockWorkOrderRepository) ListByStatus(ctx context.Context, status workorder.Status) ([]*workorder.WorkOrder, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]*workorder.WorkOrder), args.Error(1)
}

type MockEmployeeRepository struct {
	mock.Mock
}

func (m *MockEmployeeRepository) Add(ctx context.Context, e *employee.Employee) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEmployeeRepository) Get(ctx context.Context, id kernel.UUID) (*employee.Employee, error) {
	args := m.Called(ctx, id)
	e, _ := args.Get(0).(*employee.Employee)
	return e, args.Error(1)
}

func (m *MockEmployeeRepository) GetByUserName(ctx context.Context, userName string) (*employee.Employee, error) {
	args := m.Called(ctx, userName)
	e, _ := args.Get(0).(*employee.Employee)
	return e, args.Error(1)
}

func (m *MockEmployeeRepository) Delete(ctx context.Context, id kernel.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEmployeeRepository) List(ctx context.Context) ([]*employee.Employee, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*employee.Employee), args.Error(1)
}

type MockAuditEntryRepository struct {
	mock.Mock
}

func (m *MockAuditEntryRepository) Append(ctx context.Context, entry workorder.AuditEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditEntryRepository) NextSequence(ctx context.Context, workOrderID kernel.UUID) (int, error) {
	args := m.Called(ctx, workOrderID)
	return args.Int(0), args.Error(1)
}

func (m *MockAuditEntryRepository) ListByWorkOrder(ctx context.Context, workOrderID kernel.UUID) ([]workorder.AuditEntry, error) {
	args := m.Called(ctx, workOrderID)
	return args.Get(0).([]workorder.AuditEntry), args.Error(1)
}

type MockStateCommandUoW struct {
	mock.Mock
}

func (m *MockStateCommandUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStateCommandUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStateCommandUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStateCommandUoW) WorkOrderRepository() ports.WorkOrderRepository {
	args := m.Called()
	return args.Get(0).(ports.WorkOrderRepository)
}

func (m *MockStateCommandUoW) EmployeeRepository() ports.EmployeeRepository {
	args := m.Called()
	return args.Get(0).(ports.EmployeeRepository)
}

func (m *MockStateCommandUoW) AuditEntryRepository() ports.AuditEntryRepository {
	args := m.Called()
	return args.Get(0).(ports.AuditEntryRepository)
}

func (m *MockStateCommandUoW) PendingEvents() []workorder.StatusChanged {
	args := m.Called()
	events, _ := args.Get(0).([]workorder.StatusChanged)
	return events
}

type MockStateCommandUoWFactory struct {
	mock.Mock
}

func (m *MockStateCommandUoWFactory) Create() commands.StateCommandUoW {
	args := m.Called()
	return args.Get(0).(commands.StateCommandUoW)
}

type MockEmployeeUoW struct {
	mock.Mock
}

func (m *MockEmployeeUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockEmployeeUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockEmployeeUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockEmployeeUoW) EmployeeRepository() ports.EmployeeRepository {
	args := m.Called()
	return args.Get(0).(ports.EmployeeRepository)
}

type MockEmployeeUoWFactory struct {
	mock.Mock
}

func (m *MockEmployeeUoWFactory) Create() commands.EmployeeUoW {
	args := m.Called()
	return args.Get(0).(commands.EmployeeUoW)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...workorder.StatusChanged) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}
