package models

import "time"

// Location: sucursal o sub-bodega. ParentID nulo = sucursal raíz;
// ParentID no nulo = sub-bodega colgada de esa sucursal. La jerarquía
// es de dos niveles: una sub-bodega no puede tener hijas.
type Location struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null;unique"`
	Address   string `gorm:"size:255"`
	ParentID  *uint  `gorm:"index"`
	Parent    *Location
	CreatedAt time.Time
	UpdatedAt time.Time

	Users []User
}

// IsRoot reporta si la ubicación es una sucursal raíz (sin padre).
func (l *Location) IsRoot() bool {
	return l.ParentID == nil
}
