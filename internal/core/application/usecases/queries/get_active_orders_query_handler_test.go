package queries_test

import (
	"context"
	"testing"
	"time"

	"warehouse/internal/adapters/out/postgres/orderrepo"
	"warehouse/internal/core/application/usecases/queries"
	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/core/domain/model/order"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// mockAggregateTracker satisfies the repository's tracker dependency where
// aggregate tracking is irrelevant to the test.
type mockAggregateTracker struct{}

func (mockAggregateTracker) TrackAggregate(_ kernel.UUID, _ any) {}

type GetActiveOrdersQueryHandlerTestSuite struct {
	suite.Suite
	container     *postgres.PostgresContainer
	db            *gorm.DB
	ordersHandler     queries.GetActiveOrdersQueryHandler
	zonesHandler      queries.GetZoneSummaryQueryHandler
	backordersHandler queries.GetBackorderedOrdersQueryHandler
	orderRepo         *orderrepo.GormOrderRepository
}

func (suite *GetActiveOrdersQueryHandlerTestSuite) SetupSuite() {
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

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	err = db.AutoMigrate(&orderrepo.OrderDTO{}, &orderrepo.PickTaskDTO{})
	suite.Require().NoError(err)

	suite.ordersHandler = queries.NewGetActiveOrdersQueryHandler(db)
	suite.zonesHandler = queries.NewGetZoneSummaryQueryHandler(db)
	suite.backordersHandler = queries.NewGetBackorderedOrdersQueryHandler(db)
	suite.orderRepo = orderrepo.NewGormOrderRepository(db, mockAggregateTracker{})
}

func (suite *GetActiveOrdersQueryHandlerTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *GetActiveOrdersQueryHandlerTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE orders CASCADE").Error)
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE pick_tasks CASCADE").Error)
}

func (suite *GetActiveOrdersQueryHandlerTestSuite) TestHandle_EmptyDatabase_ReturnsEmptySlice() {
	query := queries.NewGetActiveOrdersQuery()

	result, err := suite.ordersHandler.Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.NotNil(result)
	suite.Empty(result)
}

func (suite *GetActiveOrdersQueryHandlerTestSuite) TestHandle_MixedStatuses_ReturnsOnlyActive() {
	ctx := context.Background()

	pending := suite.createOrder("zone-a", 2)
	claimed := suite.createOrder("zone-a", 3)
	suite.Require().NoError(claimed.Claim(kernel.NewUUID()))
	cancelled := suite.createOrder("zone-b", 1)
	suite.Require().NoError(cancelled.Cancel())

	for _, o := range []*order.Order{pending, claimed, cancelled} {
		suite.Require().NoError(suite.orderRepo.Add(ctx, o))
	}

	query := queries.NewGetActiveOrdersQuery()
	result, err := suite.ordersHandler.Handle(ctx, query)

	suite.Require().NoError(err)
	suite.Len(result, 2)

	byID := make(map[string]queries.GetActiveOrdersQueryResponse, len(result))
	for _, r := range result {
		byID[r.ID.String()] = r
	}

	suite.Contains(byID, pending.ID().String())
	suite.Contains(byID, claimed.ID().String())
	suite.NotContains(byID, cancelled.ID().String())

	suite.Equal("PENDING", byID[pending.ID().String()].Status)
	suite.Equal(2, byID[pending.ID().String()].TaskCount)
	suite.Equal("PICKING", byID[claimed.ID().String()].Status)
	suite.NotEmpty(byID[claimed.ID().String()].PickerID)
}

func (suite *GetActiveOrdersQueryHandlerTestSuite) TestHandle_ZoneSummary_CountsOpenTasks() {
	ctx := context.Background()

	claimed := suite.createOrder("zone-a", 3)
	suite.Require().NoError(claimed.Claim(kernel.NewUUID()))

	one, err := kernel.NewQuantity(1)
	suite.Require().NoError(err)
	task := claimed.Tasks()[0]
	suite.Require().NoError(task.RecordPick(one))
	suite.Require().NoError(task.Complete())

	suite.Require().NoError(suite.orderRepo.Add(ctx, claimed))
	suite.Require().NoError(suite.orderRepo.Add(ctx, suite.createOrder("zone-b", 2)))

	result, err := suite.zonesHandler.Handle(ctx, queries.NewGetZoneSummaryQuery())

	suite.Require().NoError(err)
	suite.Require().Len(result, 2)

	byZone := make(map[string]queries.GetZoneSummaryQueryResponse, len(result))
	for _, r := range result {
		byZone[r.ZoneID] = r
	}

	// One of zone-a's three tasks is completed and no longer open.
	suite.Equal(2, byZone["zone-a"].TaskCount)
	suite.Equal(1, byZone["zone-a"].PickerCount)
	suite.Equal(2, byZone["zone-b"].TaskCount)
	suite.Equal(0, byZone["zone-b"].PickerCount)
}

func (suite *GetActiveOrdersQueryHandlerTestSuite) TestHandle_BackorderedOrders_ReturnsOnlyBackordered() {
	ctx := context.Background()

	backordered := suite.createOrder("zone-a", 2)
	suite.Require().NoError(backordered.MarkBackordered())
	active := suite.createOrder("zone-a", 1)

	suite.Require().NoError(suite.orderRepo.Add(ctx, backordered))
	suite.Require().NoError(suite.orderRepo.Add(ctx, active))

	result, err := suite.backordersHandler.Handle(ctx, queries.NewGetBackorderedOrdersQuery())

	suite.Require().NoError(err)
	suite.Require().Len(result, 1)
	suite.Equal(backordered.ID().String(), result[0].ID.String())
	suite.Equal(2, result[0].TaskCount)
}

func (suite *GetActiveOrdersQueryHandlerTestSuite) TestHandle_InvalidQuery_ReturnsError() {
	result, err := suite.ordersHandler.Handle(context.Background(), queries.GetActiveOrdersQuery{})

	suite.Require().Error(err)
	suite.Nil(result)
	suite.Contains(err.Error(), "must be created via NewGetActiveOrdersQuery constructor")
}

func (suite *GetActiveOrdersQueryHandlerTestSuite) createOrder(zoneID string, taskCount int) *order.Order {
	tasks := make([]*order.PickTask, 0, taskCount)
	for range taskCount {
		qty, err := kernel.NewQuantity(1)
		suite.Require().NoError(err)
		task, err := order.NewPickTask(kernel.NewUUID(), "SKU-100", "A-01", zoneID, qty)
		suite.Require().NoError(err)
		tasks = append(tasks, task)
	}

	o, err := order.NewOrder(kernel.NewUUID(), tasks)
	suite.Require().NoError(err)
	return o
}

func TestGetActiveOrdersQueryHandlerIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(GetActiveOrdersQueryHandlerTestSuite))
}
