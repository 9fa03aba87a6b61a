package transfers

import (
	"testing"

	"tallerpos-backend/internal/models"
)

func draftFixture() (*models.Transfer, *ReceptionDraft) {
	transfer := &models.Transfer{
		ID:     1,
		Status: models.TransferPendiente,
		Items: []models.TransferItem{
			{ID: 10, ProductID: 100, ProductName: "Pantalla X", Quantity: 5},
			{ID: 11, ProductID: 101, ProductName: "Batería Y", Quantity: 3},
		},
	}
	return transfer, NewReceptionDraft(transfer)
}

func TestNewReceptionDraftDefaultsToFullReceipt(t *testing.T) {
	_, draft := draftFixture()

	if len(draft.Lines) != 2 {
		t.Fatalf("se esperaban 2 líneas, hay %d", len(draft.Lines))
	}
	for _, line := range draft.Lines {
		if line.Qty != line.Sent {
			t.Errorf("línea %d: el borrador debe iniciar con Qty=%d (enviado), tiene %d", line.ItemID, line.Sent, line.Qty)
		}
		if line.Note != "" {
			t.Errorf("línea %d: la nota debe iniciar vacía", line.ItemID)
		}
	}
}

func TestSetReceivedQtyClampsToRange(t *testing.T) {
	_, draft := draftFixture()

	// Cualquier secuencia de capturas debe mantener 0 <= Qty <= enviado.
	sequences := []int{7, -3, 2, 100, -1, 5, 0}
	for _, qty := range sequences {
		draft.SetReceivedQty(10, qty)
		line := draft.Line(10)
		if line.Qty < 0 || line.Qty > line.Sent {
			t.Fatalf("tras SetReceivedQty(%d): Qty=%d fuera de [0,%d]", qty, line.Qty, line.Sent)
		}
	}

	draft.SetReceivedQty(10, 99)
	if got := draft.Line(10).Qty; got != 5 {
		t.Errorf("exceso debe recortarse al enviado: se esperaba 5, hay %d", got)
	}
	draft.SetReceivedQty(10, -4)
	if got := draft.Line(10).Qty; got != 0 {
		t.Errorf("negativo debe recortarse a 0, hay %d", got)
	}
}

func TestSetReceivedQtyUnknownItemIsNoop(t *testing.T) {
	_, draft := draftFixture()
	draft.SetReceivedQty(999, 1)
	if draft.Line(10).Qty != 5 || draft.Line(11).Qty != 3 {
		t.Error("una línea desconocida no debe alterar el borrador")
	}
}

func TestDeriveStatus(t *testing.T) {
	cases := []struct {
		name string
		recv map[uint]int
		want models.TransferStatus
	}{
		{"todo completo", map[uint]int{10: 5, 11: 3}, models.TransferAceptado},
		{"una línea corta", map[uint]int{10: 5, 11: 2}, models.TransferAceptadoParcial},
		{"todas cortas", map[uint]int{10: 0, 11: 0}, models.TransferAceptadoParcial},
		{"sin capturas (borrador por defecto)", nil, models.TransferAceptado},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, draft := draftFixture()
			for itemID, qty := range tc.recv {
				draft.SetReceivedQty(itemID, qty)
			}
			if got := draft.DeriveStatus(); got != tc.want {
				t.Errorf("se esperaba %s, hay %s", tc.want, got)
			}
			// La derivación nunca produce RECHAZADO: el rechazo es un
			// camino explícito aparte.
			if draft.DeriveStatus() == models.TransferRechazado {
				t.Error("DeriveStatus nunca debe devolver RECHAZADO")
			}
		})
	}
}

func TestShortfall(t *testing.T) {
	_, draft := draftFixture()
	draft.SetReceivedQty(10, 4)
	draft.SetReceivedQty(11, 1)
	if got := draft.Shortfall(); got != 3 {
		t.Errorf("faltante esperado 3, hay %d", got)
	}
}

func TestStatusIsTerminal(t *testing.T) {
	if models.TransferPendiente.IsTerminal() {
		t.Error("PENDIENTE no es terminal")
	}
	for _, s := range []models.TransferStatus{
		models.TransferAceptado,
		models.TransferAceptadoParcial,
		models.TransferRechazado,
	} {
		if !s.IsTerminal() {
			t.Errorf("%s debe ser terminal", s)
		}
	}
}
