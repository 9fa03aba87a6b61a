package models

import "time"

// Shift: turno de un operador en una ubicación. El turno abierto
// (ClosedAt nulo) define la "ubicación activa" que usan las reglas de
// elegibilidad de traslados. A lo sumo un turno abierto por usuario.
type Shift struct {
	ID         uint `gorm:"primaryKey"`
	UserID     uint `gorm:"index;not null"`
	User       User
	LocationID uint `gorm:"index;not null"`
	Location   Location
	OpenedAt   time.Time `gorm:"not null"`
	ClosedAt   *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
