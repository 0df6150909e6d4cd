package cmd

import (
	"log/slog"

	"warehouse/internal/adapters/in/ws"
	"warehouse/internal/adapters/out/postgres"
	"warehouse/internal/core/application/usecases/commands"
	"warehouse/internal/core/application/usecases/queries"
	"warehouse/internal/jobs"

	"gorm.io/gorm"
)

// CompositionRoot wires adapters into use-case handlers. Handlers that
// recompute order progress share one OrderLocks instance and one event
// publisher; both are process-wide singletons.
type CompositionRoot struct {
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory
	hub        *ws.Hub
	locks      *commands.OrderLocks
	logger     *slog.Logger
}

func NewCompositionRoot(_ Config, gormDB *gorm.DB, logger *slog.Logger) CompositionRoot {
	return CompositionRoot{
		gormDB:     gormDB,
		uowFactory: *postgres.NewGormUnitOfWorkFactory(gormDB),
		hub:        ws.NewHub(logger),
		locks:      commands.NewOrderLocks(),
		logger:     logger,
	}
}

// Hub exposes the broadcast hub for the WebSocket endpoint and the shutdown
// sequence.
func (c *CompositionRoot) Hub() *ws.Hub {
	return c.hub
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateOrderCommandHandler(f)
}

func (c *CompositionRoot) CreateClaimOrderCommandHandler() commands.ClaimOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewClaimOrderCommandHandler(f, c.hub)
}

func (c *CompositionRoot) CreateRecordPickCommandHandler() commands.RecordPickCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRecordPickCommandHandler(f, c.hub, c.locks)
}

func (c *CompositionRoot) CreateCompletePickCommandHandler() commands.CompletePickCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCompletePickCommandHandler(f, c.hub, c.locks)
}

func (c *CompositionRoot) CreateSkipPickCommandHandler() commands.SkipPickCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewSkipPickCommandHandler(f, c.hub, c.locks)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCancelOrderCommandHandler(f, c.hub, c.locks)
}

func (c *CompositionRoot) CreateGetActiveOrdersQueryHandler() queries.GetActiveOrdersQueryHandler {
	return queries.NewGetActiveOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetZoneSummaryQueryHandler() queries.GetZoneSummaryQueryHandler {
	return queries.NewGetZoneSummaryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetBackorderedOrdersQueryHandler() queries.GetBackorderedOrdersQueryHandler {
	return queries.NewGetBackorderedOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	notifier := jobs.NewBackorderNotifier(c.CreateGetBackorderedOrdersQueryHandler(), c.hub)
	return jobs.NewJobManager(notifier, c.CreateGetZoneSummaryQueryHandler(), c.hub, c.logger)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}
