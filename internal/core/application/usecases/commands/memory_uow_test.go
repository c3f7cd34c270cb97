package commands_test

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"workorders/internal/core/application/usecases/commands"
	"workorders/internal/core/domain/model/employee"
	"workorders/internal/core/domain/model/kernel"
	"workorders/internal/core/domain/model/workorder"
	"workorders/internal/core/ports"
	"workorders/internal/pkg/errs"
)

// memoryStore is an in-memory stand-in for the database. Each unit of work
// stages its writes on a copy and swaps it in on commit.
type memoryStore struct {
	mu         sync.Mutex
	workOrders map[kernel.UUID]workorder.Snapshot
	employees  map[kernel.UUID]*employee.Employee
	audit      map[kernel.UUID][]workorder.AuditEntry

	// beforeUpdate runs once inside the next Update, before the version check.
	beforeUpdate func(store *memoryStore)
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		workOrders: make(map[kernel.UUID]workorder.Snapshot),
		employees:  make(map[kernel.UUID]*employee.Employee),
		audit:      make(map[kernel.UUID][]workorder.AuditEntry),
	}
}

func (s *memoryStore) Create() commands.StateCommandUoW {
	return &memoryUoW{store: s}
}

func (s *memoryStore) addEmployee(e *employee.Employee) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[e.ID()] = e
}

func (s *memoryStore) workOrder(id kernel.UUID) *workorder.WorkOrder {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.workOrders[id]
	if !ok {
		return nil
	}
	wo, err := workorder.Restore(snap)
	if err != nil {
		panic(err)
	}
	return wo
}

func (s *memoryStore) entries(id kernel.UUID) []workorder.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]workorder.AuditEntry(nil), s.audit[id]...)
}

func (s *memoryStore) workOrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.workOrders)
}

type memoryUoW struct {
	store *memoryStore
	begun bool

	workOrders map[kernel.UUID]workorder.Snapshot
	employees  map[kernel.UUID]*employee.Employee
	audit      map[kernel.UUID][]workorder.AuditEntry
	pending    []workorder.AuditEntry
}

func (u *memoryUoW) Begin(_ context.Context) error {
	if u.begun {
		return nil
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	u.workOrders = make(map[kernel.UUID]workorder.Snapshot, len(u.store.workOrders))
	for k, v := range u.store.workOrders {
		u.workOrders[k] = v
	}
	u.employees = make(map[kernel.UUID]*employee.Employee, len(u.store.employees))
	for k, v := range u.store.employees {
		u.employees[k] = v
	}
	u.audit = make(map[kernel.UUID][]workorder.AuditEntry, len(u.store.audit))
	for k, v := range u.store.audit {
		u.audit[k] = append([]workorder.AuditEntry(nil), v...)
	}
	u.pending = nil
	u.begun = true
	return nil
}

func (u *memoryUoW) Commit(_ context.Context) error {
	if !u.begun {
		return errors.New("no transaction")
	}
	u.store.mu.Lock()
	defer u.store.mu.Unlock()

	u.store.workOrders = u.workOrders
	u.store.employees = u.employees
	u.store.audit = u.audit
	u.begun = false
	return nil
}

func (u *memoryUoW) Rollback(_ context.Context) error {
	if !u.begun {
		return errors.New("no transaction")
	}
	u.begun = false
	u.pending = nil
	return nil
}

func (u *memoryUoW) WorkOrderRepository() ports.WorkOrderRepository   { return memoryWorkOrders{u} }
func (u *memoryUoW) EmployeeRepository() ports.EmployeeRepository     { return memoryEmployees{u} }
func (u *memoryUoW) AuditEntryRepository() ports.AuditEntryRepository { return memoryAudit{u} }

func (u *memoryUoW) PendingEvents() []workorder.StatusChanged {
	events := make([]workorder.StatusChanged, 0, len(u.pending))
	for _, entry := range u.pending {
		wo, err := workorder.Restore(u.workOrders[entry.WorkOrderID()])
		if err != nil {
			wo = workorder.Reference(entry.WorkOrderID())
		}
		events = append(events, workorder.NewStatusChanged(wo, entry))
	}
	return events
}

type memoryWorkOrders struct{ u *memoryUoW }

func (r memoryWorkOrders) Add(_ context.Context, wo *workorder.WorkOrder) error {
	for _, existing := range r.u.workOrders {
		if existing.Number == wo.Number() {
			return fmt.Errorf("%w: number %s is taken", ports.ErrConcurrentModification, wo.Number())
		}
	}
	wo.AdvanceVersion()
	r.u.workOrders[wo.ID()] = wo.Snapshot()
	return nil
}

func (r memoryWorkOrders) Update(_ context.Context, wo *workorder.WorkOrder) error {
	if hook := r.u.store.beforeUpdate; hook != nil {
		r.u.store.beforeUpdate = nil
		hook(r.u.store)
	}

	r.u.store.mu.Lock()
	stored, committed := r.u.store.workOrders[wo.ID()]
	r.u.store.mu.Unlock()
	if !committed {
		stored, committed = r.u.workOrders[wo.ID()]
	}
	if !committed {
		return errs.NewObjectNotFoundError("work order", wo.ID().String())
	}
	if stored.Version != wo.Version() {
		return fmt.Errorf("%w: version %d", ports.ErrConcurrentModification, wo.Version())
	}

	wo.AdvanceVersion()
	r.u.workOrders[wo.ID()] = wo.Snapshot()
	return nil
}

func (r memoryWorkOrders) Delete(_ context.Context, id kernel.UUID) error {
	if _, ok := r.u.workOrders[id]; !ok {
		return errs.NewObjectNotFoundError("work order", id.String())
	}
	delete(r.u.workOrders, id)
	return nil
}

func (r memoryWorkOrders) Get(_ context.Context, id kernel.UUID) (*workorder.WorkOrder, error) {
	snap, ok := r.u.workOrders[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("work order", id.String())
	}
	return workorder.Restore(snap)
}

func (r memoryWorkOrders) GetForUpdate(ctx context.Context, id kernel.UUID) (*workorder.WorkOrder, error) {
	return r.Get(ctx, id)
}

func (r memoryWorkOrders) ListByStatus(_ context.Context, status workorder.Status) ([]*workorder.WorkOrder, error) {
	var list []*workorder.WorkOrder
	for _, snap := range r.u.workOrders {
		if snap.Status.Equal(status) {
			wo, err := workorder.Restore(snap)
			if err != nil {
				return nil, err
			}
			list = append(list, wo)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Number() < list[j].Number() })
	return list, nil
}

type memoryEmployees struct{ u *memoryUoW }

func (r memoryEmployees) Add(_ context.Context, e *employee.Employee) error {
	r.u.employees[e.ID()] = e
	return nil
}

func (r memoryEmployees) Get(_ context.Context, id kernel.UUID) (*employee.Employee, error) {
	e, ok := r.u.employees[id]
	if !ok {
		return nil, errs.NewObjectNotFoundError("employee", id.String())
	}
	return e.Clone(), nil
}

func (r memoryEmployees) GetByUserName(_ context.Context, userName string) (*employee.Employee, error) {
	for _, e := range r.u.employees {
		if e.UserName() == userName {
			return e.Clone(), nil
		}
	}
	return nil, errs.NewObjectNotFoundError("employee", userName)
}

func (r memoryEmployees) Delete(_ context.Context, id kernel.UUID) error {
	delete(r.u.employees, id)
	return nil
}

func (r memoryEmployees) List(_ context.Context) ([]*employee.Employee, error) {
	list := make([]*employee.Employee, 0, len(r.u.employees))
	for _, e := range r.u.employees {
		list = append(list, e.Clone())
	}
	return list, nil
}

type memoryAudit struct{ u *memoryUoW }

func (r memoryAudit) Append(_ context.Context, entry workorder.AuditEntry) error {
	for _, existing := range r.u.audit[entry.WorkOrderID()] {
		if existing.Sequence() == entry.Sequence() {
			return fmt.Errorf("%w: sequence %d", ports.ErrConcurrentModification, entry.Sequence())
		}
	}
	r.u.audit[entry.WorkOrderID()] = append(r.u.audit[entry.WorkOrderID()], entry)
	r.u.pending = append(r.u.pending, entry)
	return nil
}

func (r memoryAudit) NextSequence(_ context.Context, workOrderID kernel.UUID) (int, error) {
	return len(r.u.audit[workOrderID]) + 1, nil
}

func (r memoryAudit) ListByWorkOrder(_ context.Context, workOrderID kernel.UUID) ([]workorder.AuditEntry, error) {
	return append([]workorder.AuditEntry(nil), r.u.audit[workOrderID]...), nil
}
