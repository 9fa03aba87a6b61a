package models

import "time"

type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleVendedor UserRole = "vendedor"
	RoleTecnico  UserRole = "tecnico"
)

type User struct {
	ID           uint `gorm:"primaryKey"`
	LocationID   *uint
	Location     *Location
	Name         string   `gorm:"size:100;not null"`
	Email        string   `gorm:"size:100;uniqueIndex;not null"`
	PasswordHash string   `gorm:"size:255;not null"`
	PinHash      string   `gorm:"size:255;not null"` // PIN numérico corto, hasheado con bcrypt
	Role         UserRole `gorm:"size:20;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
