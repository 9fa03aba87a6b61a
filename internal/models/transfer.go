package models

import "time"

type TransferStatus string

const (
	TransferPendiente       TransferStatus = "PENDIENTE"
	TransferAceptado        TransferStatus = "ACEPTADO"
	TransferAceptadoParcial TransferStatus = "ACEPTADO_PARCIAL"
	TransferRechazado       TransferStatus = "RECHAZADO"
)

// IsTerminal reporta si el estado ya no admite transiciones.
func (s TransferStatus) IsTerminal() bool {
	return s == TransferAceptado || s == TransferAceptadoParcial || s == TransferRechazado
}

// Transfer: traslado de mercadería entre dos ubicaciones.
// El estado nunca se asigna directo desde el cliente: se deriva de las
// cantidades recibidas al momento de la recepción, salvo RECHAZADO que
// es un rechazo explícito sin cantidades.
type Transfer struct {
	ID                    uint   `gorm:"primaryKey"`
	Folio                 string `gorm:"size:20;uniqueIndex;not null"`
	SourceLocationID      uint   `gorm:"index;not null"`
	SourceLocation        Location
	DestinationLocationID uint `gorm:"index;not null"`
	DestinationLocation   Location
	Note                  string         `gorm:"size:255"`
	Status                TransferStatus `gorm:"size:20;index;not null;default:'PENDIENTE'"`
	RejectReason          string         `gorm:"size:255"`
	CreatedByID           uint           `gorm:"not null"`
	CreatedBy             User
	ReceivedByID          *uint
	ReceivedBy            *User
	ReceivedAt            *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time

	Items []TransferItem `gorm:"foreignKey:TransferID;constraint:OnDelete:CASCADE"`
}

// TransferItem: una línea de producto dentro del traslado.
// ReceivedQuantity queda nulo mientras el traslado está PENDIENTE y
// también para traslados RECHAZADO (nunca se registran cantidades ahí).
type TransferItem struct {
	ID               uint `gorm:"primaryKey"`
	TransferID       uint `gorm:"index;not null"`
	ProductID        uint `gorm:"index;not null"`
	Product          Product
	ProductName      string `gorm:"size:150;not null"` // denormalizado: el nombre al momento del envío
	Quantity         int    `gorm:"not null"`
	ReceivedQuantity *int
	ReceptionNote    *string `gorm:"size:255"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
