package domain

import "time"

type PriceAlert struct {
	ID          uint
	UserID      uint
	PartID      uint
	TargetPrice int
	Active      bool
	Triggered   bool
	TriggeredAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Matches reports whether the current lowest price satisfies the watch.
func (a PriceAlert) Matches(currentLowest int) bool {
	return currentLowest <= a.TargetPrice
}
