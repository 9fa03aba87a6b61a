package transfers

import (
	"fmt"

	"tallerpos-backend/internal/config"
	"tallerpos-backend/internal/database"
	"tallerpos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

// GET /api/transfers/:id/print-manifest
// Genera el manifiesto del traslado como documento .xlsx para imprimir
// o archivar. Para traslados terminales incluye las columnas de
// recepción; para PENDIENTE van en blanco.
func PrintManifestHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var transfer models.Transfer
		if err := database.DB.
			Preload("Items").
			Preload("SourceLocation").
			Preload("DestinationLocation").
			First(&transfer, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Traslado no encontrado")
		}

		f := excelize.NewFile()
		defer f.Close()

		const sheet = "Manifiesto"
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el manifiesto")
		}

		f.SetCellValue(sheet, "A1", "MANIFIESTO DE TRASLADO")
		f.SetCellValue(sheet, "A2", "Folio")
		f.SetCellValue(sheet, "B2", transfer.Folio)
		f.SetCellValue(sheet, "A3", "Origen")
		f.SetCellValue(sheet, "B3", transfer.SourceLocation.Name)
		f.SetCellValue(sheet, "A4", "Destino")
		f.SetCellValue(sheet, "B4", transfer.DestinationLocation.Name)
		f.SetCellValue(sheet, "A5", "Fecha")
		f.SetCellValue(sheet, "B5", transfer.CreatedAt.Format("2006-01-02 15:04"))
		f.SetCellValue(sheet, "A6", "Estado")
		f.SetCellValue(sheet, "B6", string(transfer.Status))
		// Nota y motivo de rechazo en renglones propios: un traslado
		// RECHAZADO puede traer ambos.
		row := 7
		if transfer.Note != "" {
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Nota")
			f.SetCellValue(sheet, fmt.Sprintf("B%d", row), transfer.Note)
			row++
		}
		if transfer.Status == models.TransferRechazado && transfer.RejectReason != "" {
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), "Motivo de rechazo")
			f.SetCellValue(sheet, fmt.Sprintf("B%d", row), transfer.RejectReason)
			row++
		}

		headerRow := row + 1
		f.SetCellValue(sheet, fmt.Sprintf("A%d", headerRow), "Producto")
		f.SetCellValue(sheet, fmt.Sprintf("B%d", headerRow), "Enviado")
		f.SetCellValue(sheet, fmt.Sprintf("C%d", headerRow), "Recibido")
		f.SetCellValue(sheet, fmt.Sprintf("D%d", headerRow), "Nota de recepción")

		for i, item := range transfer.Items {
			row := headerRow + 1 + i
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), item.ProductName)
			f.SetCellValue(sheet, fmt.Sprintf("B%d", row), item.Quantity)
			if item.ReceivedQuantity != nil {
				f.SetCellValue(sheet, fmt.Sprintf("C%d", row), *item.ReceivedQuantity)
			}
			if item.ReceptionNote != nil {
				f.SetCellValue(sheet, fmt.Sprintf("D%d", row), *item.ReceptionNote)
			}
		}

		f.SetColWidth(sheet, "A", "A", 36)
		f.SetColWidth(sheet, "B", "C", 12)
		f.SetColWidth(sheet, "D", "D", 40)

		buf, err := f.WriteToBuffer()
		if err != nil {
			config.LogError("transfers", "PrintManifestHandler", transfer.ID, err)
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo generar el manifiesto")
		}

		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="manifiesto-%s.xlsx"`, transfer.Folio))
		return c.Send(buf.Bytes())
	}
}
