package models

import "time"

type AuditAction string

const (
	AuditActionCreate  AuditAction = "create"
	AuditActionUpdate  AuditAction = "update"
	AuditActionDelete  AuditAction = "delete"
	AuditActionReceive AuditAction = "receive"
	AuditActionReject  AuditAction = "reject"
)

// AuditLog: bitácora de mutaciones sensibles (traslados, stock, turnos).
// BeforeData/AfterData guardan snapshots JSON de la entidad.
type AuditLog struct {
	ID          uint `gorm:"primaryKey"`
	LocationID  *uint
	UserID      uint        `gorm:"index;not null"`
	UserName    string      `gorm:"size:100;not null"`
	EntityType  string      `gorm:"size:50;index;not null"`
	EntityID    uint        `gorm:"index;not null"`
	Action      AuditAction `gorm:"size:20;not null"`
	Description string      `gorm:"size:500"`
	BeforeData  string      `gorm:"type:text"`
	AfterData   string      `gorm:"type:text"`
	CreatedAt   time.Time
}
