package transfers

import "tallerpos-backend/internal/models"

// DraftLine: el borrador de recepción de una línea del traslado.
type DraftLine struct {
	ItemID uint
	Sent   int
	Qty    int
	Note   string
}

// ReceptionDraft: borrador de recepción completo. Se inicializa con el
// supuesto de que todo llegó intacto (Qty = cantidad enviada) y el
// operador corrige hacia abajo los faltantes; así el caso común (entrega
// perfecta) no exige capturar nada.
type ReceptionDraft struct {
	TransferID uint
	Lines      []DraftLine
}

func NewReceptionDraft(t *models.Transfer) *ReceptionDraft {
	draft := &ReceptionDraft{TransferID: t.ID}
	for _, item := range t.Items {
		draft.Lines = append(draft.Lines, DraftLine{
			ItemID: item.ID,
			Sent:   item.Quantity,
			Qty:    item.Quantity,
		})
	}
	return draft
}

// SetReceivedQty fija la cantidad recibida de una línea, recortándola
// en silencio al rango [0, enviado]. Es un control de captura en vivo:
// recortar, no rechazar.
func (d *ReceptionDraft) SetReceivedQty(itemID uint, qty int) {
	line := d.Line(itemID)
	if line == nil {
		return
	}
	if qty < 0 {
		qty = 0
	}
	if qty > line.Sent {
		qty = line.Sent
	}
	line.Qty = qty
}

// SetNote fija la nota de recepción de una línea.
func (d *ReceptionDraft) SetNote(itemID uint, note string) {
	if line := d.Line(itemID); line != nil {
		line.Note = note
	}
}

// Line devuelve la línea del borrador para un item, o nil si el item no
// pertenece al traslado.
func (d *ReceptionDraft) Line(itemID uint) *DraftLine {
	for i := range d.Lines {
		if d.Lines[i].ItemID == itemID {
			return &d.Lines[i]
		}
	}
	return nil
}

// Shortfall: total de unidades faltantes respecto de lo enviado.
func (d *ReceptionDraft) Shortfall() int {
	total := 0
	for _, line := range d.Lines {
		total += line.Sent - line.Qty
	}
	return total
}

// DeriveStatus deriva el estado final de la recepción: basta una línea
// corta para ACEPTADO_PARCIAL, si no ACEPTADO. Nunca deriva RECHAZADO:
// el rechazo es un camino explícito aparte, sin cantidades por línea.
func (d *ReceptionDraft) DeriveStatus() models.TransferStatus {
	for _, line := range d.Lines {
		if line.Qty < line.Sent {
			return models.TransferAceptadoParcial
		}
	}
	return models.TransferAceptado
}
