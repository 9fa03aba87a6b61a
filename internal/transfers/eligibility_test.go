package transfers

import (
	"testing"

	"tallerpos-backend/internal/models"
)

func uintPtr(v uint) *uint { return &v }

func TestCanReceive(t *testing.T) {
	// Jerarquía: 1 (Central), 2 (Norte), 3 (Bodega Norte, hija de 2).
	parents := map[uint]*uint{1: nil, 2: nil, 3: uintPtr(2)}
	parentOf := func(id uint) *uint { return parents[id] }

	pending := &models.Transfer{Status: models.TransferPendiente, DestinationLocationID: 2}
	pendingToSub := &models.Transfer{Status: models.TransferPendiente, DestinationLocationID: 3}
	accepted := &models.Transfer{Status: models.TransferAceptado, DestinationLocationID: 2}

	cases := []struct {
		name     string
		viewer   Viewer
		transfer *models.Transfer
		want     bool
	}{
		{"admin siempre puede sin importar el turno", Viewer{Role: models.RoleAdmin}, pending, true},
		{"admin con turno en otra sucursal también", Viewer{Role: models.RoleAdmin, ShiftLocationID: uintPtr(1)}, pending, true},
		{"turno en el destino", Viewer{Role: models.RoleVendedor, ShiftLocationID: uintPtr(2)}, pending, true},
		{"turno en la sucursal padre del destino sub-bodega", Viewer{Role: models.RoleVendedor, ShiftLocationID: uintPtr(2)}, pendingToSub, true},
		{"turno en otra sucursal", Viewer{Role: models.RoleVendedor, ShiftLocationID: uintPtr(1)}, pending, false},
		{"sin turno activo", Viewer{Role: models.RoleVendedor}, pending, false},
		{"turno en la sub-bodega no habilita a su padre como destino", Viewer{Role: models.RoleTecnico, ShiftLocationID: uintPtr(3)}, pending, false},
		{"estado terminal nunca es accionable", Viewer{Role: models.RoleAdmin}, accepted, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanReceive(tc.viewer, tc.transfer, parentOf); got != tc.want {
				t.Errorf("se esperaba %v, hay %v", tc.want, got)
			}
		})
	}
}
