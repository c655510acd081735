package model

import "time"

// Warehouse is a physical storage location with a hard unit capacity.
// CurrentOccupancy is maintained exclusively by the warehouse usecase;
// 0 <= CurrentOccupancy <= Capacity holds after every committed change.
type Warehouse struct {
	ID               string    `db:"id" json:"id"`
	Code             string    `db:"code" json:"code"`
	Name             string    `db:"name" json:"name"`
	Capacity         int       `db:"capacity" json:"capacity"`
	CurrentOccupancy int       `db:"current_occupancy" json:"current_occupancy"`
	IsActive         bool      `db:"is_active" json:"is_active"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// FreeCapacity is the number of units the warehouse can still take.
func (w *Warehouse) FreeCapacity() int {
	return w.Capacity - w.CurrentOccupancy
}
