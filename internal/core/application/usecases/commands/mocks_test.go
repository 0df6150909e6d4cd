package commands_test

import (
	"context"
	"sync"
	"testing"

	"warehouse/internal/core/application/usecases/commands"
	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/core/domain/model/order"
	"warehouse/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

type MockOrderUoW struct{ mock.Mock }

func (m *MockOrderUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockOrderUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

// RecordingPublisher captures published events for assertions.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []ports.Event
}

func (p *RecordingPublisher) Publish(event ports.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *RecordingPublisher) Events() []ports.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]ports.Event, len(p.events))
	copy(out, p.events)
	return out
}

// pickingOrder builds an order in PICKING status with taskCount single-unit
// tasks, completedCount of them already completed.
func pickingOrder(t *testing.T, taskCount, completedCount int) *order.Order {
	t.Helper()

	tasks := make([]*order.PickTask, 0, taskCount)
	for i := range taskCount {
		qty, err := kernel.NewQuantity(1)
		require.NoError(t, err)
		task, err := order.NewPickTask(kernel.NewUUID(), "SKU-1", "A-01", "zone-a", qty)
		require.NoError(t, err)

		if i < completedCount {
			one, qErr := kernel.NewQuantity(1)
			require.NoError(t, qErr)
			require.NoError(t, task.RecordPick(one))
			require.NoError(t, task.Complete())
		}
		tasks = append(tasks, task)
	}

	o, err := order.NewOrder(kernel.NewUUID(), tasks)
	require.NoError(t, err)
	require.NoError(t, o.Claim(kernel.NewUUID()))
	return o
}
