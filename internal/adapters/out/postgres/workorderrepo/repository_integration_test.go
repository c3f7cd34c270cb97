package workorderrepo_test

import (
	"context"
	"testing"
	"time"

	"workorders/internal/adapters/out/postgres/workorderrepo"
	"workorders/internal/core/domain/model/kernel"
	"workorders/internal/core/domain/model/workorder"
	"workorders/internal/core/domain/services"
	"workorders/internal/core/ports"
	"workorders/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate any) {
	m.Called(id, aggregate)
}

type WorkOrderRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *workorderrepo.GormWorkOrderRepository
	tracker    *MockAggregateTracker
}

func (suite *WorkOrderRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&workorderrepo.WorkOrderDTO{}))
}

func (suite *WorkOrderRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE work_orders").Error)

	suite.tracker = new(MockAggregateTracker)
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything).Maybe()
	suite.repository = workorderrepo.NewGormWorkOrderRepository(suite.db, suite.tracker)
}

func (suite *WorkOrderRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *WorkOrderRepositoryIntegrationTestSuite) newSavedDraft(title string) *workorder.WorkOrder {
	wo, err := workorder.NewDraft(kernel.NewUUID(), title, "Replace bulb")
	suite.Require().NoError(err)
	suite.Require().NoError(services.NewNumberAssigner().Assign(wo))
	suite.Require().NoError(wo.Transition(workorder.Draft, workorder.StampCreated, time.Now().UTC()))
	return wo
}

func (suite *WorkOrderRepositoryIntegrationTestSuite) TestAdd_ValidWorkOrder_Success() {
	ctx := context.Background()
	wo := suite.newSavedDraft("Fix lighting")
	wo.ChangeRoomTags([]string{"101", " 102 ", "101"})
	deadline := time.Now().Add(48 * time.Hour).UTC().Truncate(time.Microsecond)
	wo.ChangeDeadline(&deadline)

	err := suite.repository.Add(ctx, wo)

	suite.Require().NoError(err)
	suite.Equal(1, wo.Version())
	suite.tracker.AssertCalled(suite.T(), "TrackAggregate", wo.ID(), wo)

	stored, err := suite.repository.Get(ctx, wo.ID())
	suite.Require().NoError(err)
	suite.Equal(wo.Number(), stored.Number())
	suite.Equal("Fix lighting", stored.Title())
	suite.Equal([]string{"101", "102"}, stored.RoomTags())
	suite.True(deadline.Equal(*stored.Deadline()))
	suite.Equal(workorder.Draft, stored.Status())
	suite.True(stored.IsCreator(wo.CreatorID()))
	suite.Equal(1, stored.Version())
}

func (suite *WorkOrderRepositoryIntegrationTestSuite) TestAdd_UnpersistedWorkOrder_Fails() {
	wo, err := workorder.NewDraft(kernel.NewUUID(), "Fix lighting", "Replace bulb")
	suite.Require().NoError(err)

	err = suite.repository.Add(context.Background(), wo)

	suite.Require().ErrorIs(err, errs.ErrValueIsRequired)
	suite.tracker.AssertNotCalled(suite.T(), "TrackAggregate", mock.Anything, mock.Anything)
}

func (suite *WorkOrderRepositoryIntegrationTestSuite) TestAdd_DuplicateNumber_ReportsConflict() {
	ctx := context.Background()
	fixed := kernel.NewUUID()

	first, err := workorder.NewDraft(kernel.NewUUID(), "first", "d")
	suite.Require().NoError(err)
	suite.Require().NoError(first.AssignIdentity(fixed, "WO-00000001"))
	suite.Require().NoError(suite.repository.Add(ctx, first))

	second, err := workorder.NewDraft(kernel.NewUUID(), "second", "d")
	suite.Require().NoError(err)
	suite.Require().NoError(second.AssignIdentity(kernel.NewUUID(), "WO-00000001"))

	err = suite.repository.Add(ctx, second)
	suite.Require().ErrorIs(err, ports.ErrConcurrentModification)
	suite.Equal(0, second.Version())
}

func (suite *WorkOrderRepositoryIntegrationTestSuite) TestUpdate_WritesEveryColumn() {
	ctx := context.Background()
	wo := suite.newSavedDraft("Fix lighting")
	deadline := time.Now().UTC().Truncate(time.Microsecond)
	wo.ChangeDeadline(&deadline)
	wo.ChangeInstructions("Use the ladder")
	suite.Require().NoError(suite.repository.Add(ctx, wo))

	assigneeID := kernel.NewUUID()
	suite.Require().NoError(wo.AssignTo(assigneeID))
	wo.ChangeDeadline(nil)
	wo.ChangeInstructions("")
	suite.Require().NoError(wo.Transition(workorder.Assigned, workorder.StampAssigned, time.Now().UTC()))

	err := suite.repository.Update(ctx, wo)

	suite.Require().NoError(err)
	suite.Equal(2, wo.Version())

	stored, err := suite.repository.Get(ctx, wo.ID())
	suite.Require().NoError(err)
	suite.Equal(workorder.Assigned, stored.Status())
	suite.Nil(stored.Deadline())
	suite.Empty(stored.Instructions())
	suite.True(stored.IsAssignee(assigneeID))
	suite.NotNil(stored.AssignedDate())
	suite.Equal(2, stored.Version())
}

func (suite *WorkOrderRepositoryIntegrationTestSuite) TestUpdate_StaleVersion_ReportsConflict() {
	ctx := context.Background()
	wo := suite.newSavedDraft("Fix lighting")
	suite.Require().NoError(suite.repository.Add(ctx, wo))

	stale, err := suite.repository.Get(ctx, wo.ID())
	suite.Require().NoError(err)

	wo.ChangeTitle("first writer")
	suite.Require().NoError(suite.repository.Update(ctx, wo))

	stale.ChangeTitle("second writer")
	err = suite.repository.Update(ctx, stale)

	suite.Require().ErrorIs(err, ports.ErrConcurrentModification)
	stored, err := suite.repository.Get(ctx, wo.ID())
	suite.Require().NoError(err)
	suite.Equal("first writer", stored.Title())
}

func (suite *WorkOrderRepositoryIntegrationTestSuite) TestUpdate_MissingWorkOrder_ReturnsNotFound() {
	wo := suite.newSavedDraft("Fix lighting")

	err := suite.repository.Update(context.Background(), wo)

	suite.Require().ErrorIs(err, gorm.ErrRecordNotFound)
}

func (suite *WorkOrderRepositoryIntegrationTestSuite) TestDelete() {
	ctx := context.Background()
	wo := suite.newSavedDraft("Fix lighting")
	suite.Require().NoError(suite.repository.Add(ctx, wo))

	suite.Require().NoError(suite.repository.Delete(ctx, wo.ID()))

	_, err := suite.repository.Get(ctx, wo.ID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)

	err = suite.repository.Delete(ctx, wo.ID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *WorkOrderRepositoryIntegrationTestSuite) TestGet_NonExistent_ReturnsNotFound() {
	_, err := suite.repository.Get(context.Background(), kernel.NewUUID())

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *WorkOrderRepositoryIntegrationTestSuite) TestGetForUpdate_LocksRowUntilCommit() {
	ctx := context.Background()
	wo := suite.newSavedDraft("Fix lighting")
	suite.Require().NoError(suite.repository.Add(ctx, wo))

	tx := suite.db.Begin()
	locked, err := workorderrepo.NewGormWorkOrderRepository(tx, suite.tracker).GetForUpdate(ctx, wo.ID())
	suite.Require().NoError(err)
	suite.Equal(wo.ID(), locked.ID())

	// A second locking read must wait for the first transaction.
	acquired := make(chan struct{})
	go func() {
		other := suite.db.Begin()
		defer other.Rollback()
		_, _ = workorderrepo.NewGormWorkOrderRepository(other, suite.tracker).GetForUpdate(ctx, wo.ID())
		close(acquired)
	}()

	select {
	case <-acquired:
		suite.Fail("row lock was not held")
	case <-time.After(300 * time.Millisecond):
	}

	suite.Require().NoError(tx.Commit().Error)
	select {
	case <-acquired:
	case <-time.After(5 * time.Second):
		suite.Fail("row lock was not released")
	}
}

func (suite *WorkOrderRepositoryIntegrationTestSuite) TestListByStatus() {
	ctx := context.Background()
	draft := suite.newSavedDraft("draft")
	suite.Require().NoError(suite.repository.Add(ctx, draft))

	assigned := suite.newSavedDraft("assigned")
	suite.Require().NoError(assigned.AssignTo(kernel.NewUUID()))
	suite.Require().NoError(assigned.Transition(workorder.Assigned, workorder.StampAssigned, time.Now().UTC()))
	suite.Require().NoError(suite.repository.Add(ctx, assigned))

	list, err := suite.repository.ListByStatus(ctx, workorder.Assigned)

	suite.Require().NoError(err)
	suite.Require().Len(list, 1)
	suite.Equal(assigned.ID(), list[0].ID())

	_, err = suite.repository.ListByStatus(ctx, workorder.None)
	suite.Require().Error(err)
}

func TestWorkOrderRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(WorkOrderRepositoryIntegrationTestSuite))
}
