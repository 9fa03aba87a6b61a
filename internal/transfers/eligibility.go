package transfers

import (
	"tallerpos-backend/internal/database"
	"tallerpos-backend/internal/models"
)

// Viewer: contexto de solo lectura de quién consulta. Se pasa explícito
// (rol + ubicación del turno activo) en vez de leer estado global.
type Viewer struct {
	Role            models.UserRole
	ShiftLocationID *uint
}

// CanReceive decide si el usuario puede recibir o rechazar el traslado.
// Un traslado PENDIENTE es accionable si se cumple cualquiera de:
//   - el usuario es admin,
//   - su turno activo está en la sucursal destino,
//   - el destino es una sub-bodega cuya sucursal padre coincide con el
//     turno activo (el operador de la sucursal actúa por su sub-bodega).
//
// Los traslados en estado terminal nunca son accionables.
func CanReceive(v Viewer, t *models.Transfer, parentOf func(uint) *uint) bool {
	if t.Status != models.TransferPendiente {
		return false
	}
	if v.Role == models.RoleAdmin {
		return true
	}
	if v.ShiftLocationID == nil {
		return false
	}
	if *v.ShiftLocationID == t.DestinationLocationID {
		return true
	}
	if parent := parentOf(t.DestinationLocationID); parent != nil && *parent == *v.ShiftLocationID {
		return true
	}
	return false
}

// loadParentIndex carga la jerarquía completa de ubicaciones una sola
// vez y devuelve el resolvedor de padres. Los selectores de traslado
// solo muestran sucursales raíz, pero la elegibilidad necesita también
// las sub-bodegas.
func loadParentIndex() (func(uint) *uint, error) {
	var locations []models.Location
	if err := database.DB.Find(&locations).Error; err != nil {
		return nil, err
	}

	parents := make(map[uint]*uint, len(locations))
	for _, l := range locations {
		parents[l.ID] = l.ParentID
	}

	return func(id uint) *uint { return parents[id] }, nil
}
