// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// This package implements the repository pattern for the order domain aggregate, handling
// the conversion between domain entities and database representations.
package orderrepo

import (
	"warehouse/internal/core/domain/model/kernel"
	"warehouse/internal/core/domain/model/order"

	"github.com/google/uuid"
)

// OrderDTO represents the database structure for persisting order aggregates.
// Maps order domain entities to relational database tables with proper
// indexing for efficient querying by status and picker assignment.
type OrderDTO struct {
	ID       uuid.UUID     `gorm:"type:uuid;primaryKey"`
	PickerID *uuid.UUID    `gorm:"type:uuid;index"`
	Status   int           `gorm:"type:int;not null;index"`
	Progress int           `gorm:"type:int;not null"`
	Tasks    []PickTaskDTO `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for order entities.
// Overrides GORM's default naming convention to use "orders".
func (OrderDTO) TableName() string {
	return "orders"
}

// PickTaskDTO represents the database structure for persisting pick tasks.
// Links to its owning order via foreign key and is indexed by zone for the
// zone workload read model.
type PickTaskDTO struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID     uuid.UUID `gorm:"type:uuid;not null;index"`
	SKU         string    `gorm:"type:varchar(64);not null"`
	BinLocation string    `gorm:"type:varchar(32);not null"`
	ZoneID      string    `gorm:"type:varchar(32);not null;index"`
	Ordered     int       `gorm:"type:int;not null"`
	Picked      int       `gorm:"type:int;not null"`
	Verified    int       `gorm:"type:int;not null"`
	Status      int       `gorm:"type:int;not null"`
}

// TableName specifies the database table name for pick task entities.
// Overrides GORM's default naming convention to use "pick_tasks".
func (PickTaskDTO) TableName() string {
	return "pick_tasks"
}

// fromDomain converts an order domain aggregate to its database representation.
// Maps all order attributes including the owned pick tasks and the optional
// picker assignment.
func fromDomain(o *order.Order) OrderDTO {
	orderID := o.ID().Bytes()

	var pickerID *uuid.UUID
	if id := o.Picker(); id != nil {
		raw := id.Bytes()
		pickerID = &raw
	}

	tasks := make([]PickTaskDTO, 0, len(o.Tasks()))
	for _, task := range o.Tasks() {
		tasks = append(tasks, PickTaskDTO{
			ID:          task.ID().Bytes(),
			OrderID:     orderID,
			SKU:         task.SKU(),
			BinLocation: task.BinLocation(),
			ZoneID:      task.ZoneID(),
			Ordered:     task.Ordered().Value(),
			Picked:      task.Picked().Value(),
			Verified:    task.Verified().Value(),
			Status:      int(task.Status()),
		})
	}

	return OrderDTO{
		ID:       orderID,
		PickerID: pickerID,
		Status:   int(o.Status()),
		Progress: o.Progress(),
		Tasks:    tasks,
	}
}

// toDomain converts a database DTO to an order domain aggregate.
// Reconstructs the complete aggregate including its pick tasks using RestoreOrder.
func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var pickerID *kernel.UUID
	if dto.PickerID != nil {
		pID, pickerErr := kernel.UUIDFromBytes((*dto.PickerID)[:])
		if pickerErr != nil {
			return nil, pickerErr
		}

		pickerID = &pID
	}

	tasks := make([]*order.PickTask, 0, len(dto.Tasks))
	for _, taskDTO := range dto.Tasks {
		task, taskErr := taskToDomain(taskDTO)
		if taskErr != nil {
			return nil, taskErr
		}
		tasks = append(tasks, task)
	}

	return order.RestoreOrder(id, pickerID, order.Status(dto.Status), dto.Progress, tasks)
}

// taskToDomain converts a pick task DTO to its domain entity.
func taskToDomain(dto PickTaskDTO) (*order.PickTask, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	ordered, err := kernel.NewQuantity(dto.Ordered)
	if err != nil {
		return nil, err
	}

	picked, err := kernel.NewQuantity(dto.Picked)
	if err != nil {
		return nil, err
	}

	verified, err := kernel.NewQuantity(dto.Verified)
	if err != nil {
		return nil, err
	}

	return order.RestorePickTask(
		id,
		dto.SKU,
		dto.BinLocation,
		dto.ZoneID,
		ordered,
		picked,
		verified,
		order.TaskStatus(dto.Status),
	)
}
