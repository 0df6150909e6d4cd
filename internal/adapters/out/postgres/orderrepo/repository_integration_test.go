package orderrepo_test

import (
	"context"
	"testing"
	"time"

	"warehouse/internal/adapters/out/postgres/orderrepo"
	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/core/domain/model/order"
	"warehouse/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// MockAggregateTracker is a mock implementation of aggregateTracker interface.
type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate any) {
	m.Called(id, aggregate)
}

// OrderRepositoryIntegrationTestSuite provides integration tests for OrderRepository
// using PostgreSQL containers to verify database persistence behavior.
type OrderRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *orderrepo.GormOrderRepository
	tracker    *MockAggregateTracker
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupSuite() {
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

	suite.Require().NoError(db.AutoMigrate(&orderrepo.OrderDTO{}, &orderrepo.PickTaskDTO{}))
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE orders CASCADE").Error)
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE pick_tasks CASCADE").Error)

	suite.tracker = new(MockAggregateTracker)
	suite.repository = orderrepo.NewGormOrderRepository(suite.db, suite.tracker)
}

func (suite *OrderRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_ValidOrder_Success() {
	ctx := context.Background()

	testOrder := suite.createTestOrder(3)

	suite.tracker.On("TrackAggregate", testOrder.ID(), testOrder).Once()

	err := suite.repository.Add(ctx, testOrder)
	suite.Require().NoError(err)

	suite.assertOrderCount(1)
	suite.assertTaskCount(3)
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_DuplicateID_ReturnsAlreadyExists() {
	ctx := context.Background()

	testOrder := suite.createTestOrder(1)
	suite.tracker.On("TrackAggregate", testOrder.ID(), testOrder).Once()
	suite.Require().NoError(suite.repository.Add(ctx, testOrder))

	duplicate, err := order.NewOrder(testOrder.ID(), nil)
	suite.Require().NoError(err)

	err = suite.repository.Add(ctx, duplicate)
	suite.Require().ErrorIs(err, orderrepo.ErrOrderAlreadyExists)
	suite.assertOrderCount(1)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_ExistingOrder_RoundTrips() {
	ctx := context.Background()

	testOrder := suite.createTestOrder(2)
	pickerID := kernel.NewUUID()
	suite.Require().NoError(testOrder.Claim(pickerID))

	one, err := kernel.NewQuantity(1)
	suite.Require().NoError(err)
	suite.Require().NoError(testOrder.Tasks()[0].RecordPick(one))

	suite.tracker.On("TrackAggregate", testOrder.ID(), testOrder).Once()
	suite.Require().NoError(suite.repository.Add(ctx, testOrder))

	restored, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)

	suite.True(restored.ID().IsEqual(testOrder.ID()))
	suite.Equal(order.Picking, restored.Status())
	suite.Require().NotNil(restored.Picker())
	suite.True(restored.Picker().IsEqual(pickerID))
	suite.Len(restored.Tasks(), 2)

	restoredTask, err := restored.TaskByID(testOrder.Tasks()[0].ID())
	suite.Require().NoError(err)
	suite.Equal(order.TaskInProgress, restoredTask.Status())
	suite.Equal(1, restoredTask.Picked().Value())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_MissingOrder_ReturnsObjectNotFound() {
	ctx := context.Background()

	_, err := suite.repository.Get(ctx, kernel.NewUUID())

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_ExistingOrder_PersistsTaskChanges() {
	ctx := context.Background()

	testOrder := suite.createTestOrder(2)
	suite.tracker.On("TrackAggregate", testOrder.ID(), testOrder).Twice()
	suite.Require().NoError(suite.repository.Add(ctx, testOrder))

	suite.Require().NoError(testOrder.Claim(kernel.NewUUID()))
	two, err := kernel.NewQuantity(2)
	suite.Require().NoError(err)
	task := testOrder.Tasks()[0]
	suite.Require().NoError(task.RecordPick(two))
	suite.Require().NoError(task.Complete())

	suite.Require().NoError(suite.repository.Update(ctx, testOrder))

	restored, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Picking, restored.Status())

	restoredTask, err := restored.TaskByID(task.ID())
	suite.Require().NoError(err)
	suite.Equal(order.TaskCompleted, restoredTask.Status())
	suite.Equal(2, restoredTask.Picked().Value())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_MissingOrder_ReturnsObjectNotFound() {
	ctx := context.Background()

	missing := suite.createTestOrder(1)

	err := suite.repository.Update(ctx, missing)

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
	suite.assertOrderCount(0)
}

func (suite *OrderRepositoryIntegrationTestSuite) createTestOrder(taskCount int) *order.Order {
	tasks := make([]*order.PickTask, 0, taskCount)
	for range taskCount {
		qty, err := kernel.NewQuantity(2)
		suite.Require().NoError(err)
		task, err := order.NewPickTask(kernel.NewUUID(), "SKU-100", "A-01", "zone-a", qty)
		suite.Require().NoError(err)
		tasks = append(tasks, task)
	}

	testOrder, err := order.NewOrder(kernel.NewUUID(), tasks)
	suite.Require().NoError(err)
	return testOrder
}

func (suite *OrderRepositoryIntegrationTestSuite) assertOrderCount(expected int64) {
	var count int64
	suite.Require().NoError(suite.db.Model(&orderrepo.OrderDTO{}).Count(&count).Error)
	suite.Equal(expected, count)
}

func (suite *OrderRepositoryIntegrationTestSuite) assertTaskCount(expected int64) {
	var count int64
	suite.Require().NoError(suite.db.Model(&orderrepo.PickTaskDTO{}).Count(&count).Error)
	suite.Equal(expected, count)
}

func TestOrderRepositoryIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(OrderRepositoryIntegrationTestSuite))
}
