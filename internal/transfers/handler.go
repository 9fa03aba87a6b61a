package transfers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"tallerpos-backend/internal/audit"
	"tallerpos-backend/internal/auth"
	"tallerpos-backend/internal/config"
	"tallerpos-backend/internal/database"
	"tallerpos-backend/internal/models"
	"tallerpos-backend/internal/shifts"
	"tallerpos-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrTrasladoProcesado señala que otra operación dejó el traslado en
// estado terminal entre la carga del handler y el cierre de la
// transacción.
var ErrTrasladoProcesado = errors.New("el traslado ya fue procesado")

type CreateTransferRequest struct {
	SourceLocationID      uint                  `json:"source_location_id" validate:"required"`
	DestinationLocationID uint                  `json:"destination_location_id" validate:"required"`
	Note                  string                `json:"note"`
	Items                 []TransferItemRequest `json:"items" validate:"required,min=1,dive"`
	Pin                   string                `json:"pin" validate:"required"`
}

type TransferItemRequest struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,gt=0"`
}

type ReceiveTransferRequest struct {
	Status models.TransferStatus `json:"status" validate:"required"`
	Pin    string                `json:"pin" validate:"required"`
	Items  []ReceiveItemRequest  `json:"items"`
	Note   string                `json:"note"`
}

type ReceiveItemRequest struct {
	ItemID           uint   `json:"item_id"`
	ReceivedQuantity int    `json:"received_quantity"`
	Note             string `json:"note"`
}

type TransferItemResponse struct {
	ID               uint    `json:"id"`
	ProductID        uint    `json:"product_id"`
	ProductName      string  `json:"product_name"`
	Quantity         int     `json:"quantity"`
	ReceivedQuantity *int    `json:"received_quantity"`
	ReceptionNote    *string `json:"reception_note"`
}

type TransferResponse struct {
	ID                    uint                   `json:"id"`
	Folio                 string                 `json:"folio"`
	SourceLocationID      uint                   `json:"source_location_id"`
	DestinationLocationID uint                   `json:"destination_location_id"`
	Note                  string                 `json:"note"`
	Status                models.TransferStatus  `json:"status"`
	RejectReason          string                 `json:"reject_reason,omitempty"`
	CanReceive            bool                   `json:"can_receive"`
	CreatedAt             string                 `json:"created_at"`
	ReceivedAt            string                 `json:"received_at,omitempty"`
	Items                 []TransferItemResponse `json:"items"`
}

func toTransferResponse(t models.Transfer, canReceive bool) TransferResponse {
	items := make([]TransferItemResponse, 0, len(t.Items))
	for _, item := range t.Items {
		items = append(items, TransferItemResponse{
			ID:               item.ID,
			ProductID:        item.ProductID,
			ProductName:      item.ProductName,
			Quantity:         item.Quantity,
			ReceivedQuantity: item.ReceivedQuantity,
			ReceptionNote:    item.ReceptionNote,
		})
	}

	res := TransferResponse{
		ID:                    t.ID,
		Folio:                 t.Folio,
		SourceLocationID:      t.SourceLocationID,
		DestinationLocationID: t.DestinationLocationID,
		Note:                  t.Note,
		Status:                t.Status,
		RejectReason:          t.RejectReason,
		CanReceive:            canReceive,
		CreatedAt:             t.CreatedAt.Format("2006-01-02 15:04:05"),
		Items:                 items,
	}
	if t.ReceivedAt != nil {
		res.ReceivedAt = t.ReceivedAt.Format("2006-01-02 15:04:05")
	}
	return res
}

func newFolio() string {
	return "TR-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
}

// POST /api/transfers
// Valida el borrador con las mismas reglas del carrito (líneas
// fusionadas por producto, suma acotada por la existencia del origen) y
// persiste el traslado descontando el stock en una sola transacción.
func CreateTransferHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateTransferRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		if err := validation.Struct(&body); err != nil {
			return err
		}

		if body.SourceLocationID == body.DestinationLocationID {
			return fiber.NewError(fiber.StatusBadRequest, "El destino debe ser distinto del origen")
		}

		// Los selectores del cliente solo ofrecen sucursales raíz, pero
		// la autoridad acepta cualquier ubicación existente: un destino
		// sub-bodega es válido y su recepción la resuelve la sucursal
		// padre vía la regla de elegibilidad.
		var source, destination models.Location
		if err := database.DB.First(&source, "id = ?", body.SourceLocationID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "La ubicación de origen no existe")
		}
		if err := database.DB.First(&destination, "id = ?", body.DestinationLocationID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "La ubicación de destino no existe")
		}

		user, err := requestUser(c)
		if err != nil {
			return err
		}
		if err := auth.VerifyPIN(user, body.Pin); err != nil {
			return err
		}

		// Armar el carrito: fusiona líneas repetidas y aplica el tope
		// de existencia acumulada por producto.
		var cart Cart
		for _, it := range body.Items {
			var product models.Product
			if err := database.DB.First(&product, "id = ?", it.ProductID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Producto no encontrado: %d", it.ProductID))
			}
			if !product.Sellable {
				return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("El producto %s no es trasladable", product.Name))
			}

			stock := stockAt(product.ID, body.SourceLocationID)
			if err := cart.AddLine(product.ID, product.Name, stock, it.Quantity); err != nil {
				if errors.Is(err, ErrStockInsuficiente) {
					return fiber.NewError(fiber.StatusConflict, err.Error())
				}
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
		}

		var transfer models.Transfer
		err = database.DB.Transaction(func(tx *gorm.DB) error {
			// Re-chequeo y descuento atómico por línea: si la existencia
			// cambió entre la consulta y el envío, la transacción falla
			// completa y el error llega tal cual al cliente.
			for _, line := range cart.Lines {
				res := tx.Model(&models.LocationStock{}).
					Where("product_id = ? AND location_id = ? AND quantity >= ?",
						line.ProductID, body.SourceLocationID, line.Quantity).
					Update("quantity", gorm.Expr("quantity - ?", line.Quantity))
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return fmt.Errorf("%w: %s", ErrStockInsuficiente, line.ProductName)
				}
			}

			items := make([]models.TransferItem, 0, len(cart.Lines))
			for _, line := range cart.Lines {
				items = append(items, models.TransferItem{
					ProductID:   line.ProductID,
					ProductName: line.ProductName,
					Quantity:    line.Quantity,
				})
			}

			transfer = models.Transfer{
				Folio:                 newFolio(),
				SourceLocationID:      body.SourceLocationID,
				DestinationLocationID: body.DestinationLocationID,
				Note:                  body.Note,
				Status:                models.TransferPendiente,
				CreatedByID:           user.ID,
				Items:                 items,
			}
			return tx.Create(&transfer).Error
		})
		if err != nil {
			if errors.Is(err, ErrStockInsuficiente) {
				return fiber.NewError(fiber.StatusConflict, err.Error())
			}
			config.LogError("transfers", "CreateTransferHandler", body.Items, err)
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo crear el traslado")
		}

		_ = audit.WriteLog(audit.LogOptions{
			LocationID:  &body.SourceLocationID,
			UserID:      user.ID,
			UserName:    user.Name,
			EntityType:  "transfer",
			EntityID:    transfer.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Traslado %s creado: %d líneas hacia %s", transfer.Folio, len(transfer.Items), destination.Name),
			After:       transfer,
		})

		return c.Status(fiber.StatusCreated).JSON(toTransferResponse(transfer, false))
	}
}

// GET /api/transfers?limit=<n>
// La elegibilidad (can_receive) se evalúa fila por fila con la
// jerarquía completa de ubicaciones cargada una sola vez.
func ListTransfersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 50)
		if limit <= 0 || limit > 200 {
			limit = 50
		}

		var transfers []models.Transfer
		if err := database.DB.
			Preload("Items").
			Order("created_at DESC").
			Limit(limit).
			Find(&transfers).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar los traslados")
		}

		viewer, err := viewerFrom(c)
		if err != nil {
			return err
		}
		parentOf, err := loadParentIndex()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo cargar la jerarquía de ubicaciones")
		}

		res := make([]TransferResponse, 0, len(transfers))
		for _, t := range transfers {
			res = append(res, toTransferResponse(t, CanReceive(viewer, &t, parentOf)))
		}

		return c.JSON(res)
	}
}

// GET /api/transfers/:id
func GetTransferHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var transfer models.Transfer
		if err := database.DB.Preload("Items").First(&transfer, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Traslado no encontrado")
		}

		viewer, err := viewerFrom(c)
		if err != nil {
			return err
		}
		parentOf, err := loadParentIndex()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo cargar la jerarquía de ubicaciones")
		}

		return c.JSON(toTransferResponse(transfer, CanReceive(viewer, &transfer, parentOf)))
	}
}

// POST /api/transfers/:id/receive
// Recepción (checklist con cantidades por línea) o rechazo explícito.
// El estado final del camino de recepción se deriva siempre de las
// cantidades; el estado que mande el cliente no decide nada, salvo
// RECHAZADO que selecciona el camino de rechazo.
func ReceiveTransferHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var body ReceiveTransferRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Cuerpo de la petición inválido")
		}
		if err := validation.Struct(&body); err != nil {
			return err
		}

		switch body.Status {
		case models.TransferAceptado, models.TransferAceptadoParcial, models.TransferRechazado:
		default:
			return fiber.NewError(fiber.StatusBadRequest, "Estado desconocido")
		}

		var transfer models.Transfer
		if err := database.DB.Preload("Items").First(&transfer, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Traslado no encontrado")
		}

		// Los estados terminales son inmutables: un reenvío sobre un
		// traslado ya procesado se rechaza aquí, no en el cliente.
		if transfer.Status != models.TransferPendiente {
			return fiber.NewError(fiber.StatusConflict,
				fmt.Sprintf("El traslado ya fue procesado (estado %s)", transfer.Status))
		}

		user, err := requestUser(c)
		if err != nil {
			return err
		}

		viewer := Viewer{Role: user.Role, ShiftLocationID: shifts.ActiveShiftLocation(user.ID)}
		parentOf, err := loadParentIndex()
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo cargar la jerarquía de ubicaciones")
		}
		if !CanReceive(viewer, &transfer, parentOf) {
			return fiber.NewError(fiber.StatusForbidden, "No puedes recibir traslados dirigidos a otra sucursal")
		}

		// El PIN se verifica antes de tocar cualquier estado: con PIN
		// errado el operador reintenta con el mismo borrador.
		if err := auth.VerifyPIN(user, body.Pin); err != nil {
			return err
		}

		if body.Status == models.TransferRechazado {
			return rejectTransfer(c, &transfer, user, body.Note)
		}
		return commitReception(c, &transfer, user, body.Items)
	}
}

// commitReception aplica el checklist de recepción. Sin items en el
// cuerpo aplica el borrador por defecto (todo llegó completo); con
// items, cada línea del traslado debe venir exactamente una vez.
func commitReception(c *fiber.Ctx, transfer *models.Transfer, user *models.User, items []ReceiveItemRequest) error {
	draft := NewReceptionDraft(transfer)

	if len(items) > 0 {
		seen := make(map[uint]bool, len(items))
		for _, it := range items {
			line := draft.Line(it.ItemID)
			if line == nil {
				return fiber.NewError(fiber.StatusBadRequest,
					fmt.Sprintf("La línea %d no pertenece a este traslado", it.ItemID))
			}
			if seen[it.ItemID] {
				return fiber.NewError(fiber.StatusBadRequest,
					fmt.Sprintf("La línea %d viene repetida", it.ItemID))
			}
			seen[it.ItemID] = true

			// En la frontera de autoridad el recorte del cliente es una
			// comodidad de captura: aquí lo fuera de rango se rechaza.
			if it.ReceivedQuantity < 0 {
				return fiber.NewError(fiber.StatusUnprocessableEntity, "La cantidad recibida no puede ser negativa")
			}
			if it.ReceivedQuantity > line.Sent {
				return fiber.NewError(fiber.StatusUnprocessableEntity,
					fmt.Sprintf("La cantidad recibida (%d) no puede superar la enviada (%d)", it.ReceivedQuantity, line.Sent))
			}

			draft.SetReceivedQty(it.ItemID, it.ReceivedQuantity)
			draft.SetNote(it.ItemID, it.Note)
		}
		if len(seen) != len(draft.Lines) {
			return fiber.NewError(fiber.StatusBadRequest, "Faltan líneas por conciliar")
		}
	}

	finalStatus := draft.DeriveStatus()
	now := time.Now()

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		// Reclamo condicional del traslado, el mismo patrón del
		// descuento de stock: si otra recepción o rechazo concurrente
		// ya lo dejó terminal, ninguna fila cambia y la transacción
		// completa se revierte.
		res := tx.Model(&models.Transfer{}).
			Where("id = ? AND status = ?", transfer.ID, models.TransferPendiente).
			Updates(map[string]any{
				"status":         finalStatus,
				"received_by_id": user.ID,
				"received_at":    now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTrasladoProcesado
		}

		for _, line := range draft.Lines {
			qty := line.Qty
			updates := map[string]any{"received_quantity": qty}
			if line.Note != "" {
				updates["reception_note"] = line.Note
			}
			if err := tx.Model(&models.TransferItem{}).
				Where("id = ?", line.ItemID).
				Updates(updates).Error; err != nil {
				return err
			}

			// Lo recibido entra al stock del destino; el faltante se
			// registra como merma en la bitácora, no vuelve al origen.
			if err := addStockTx(tx, itemProductID(transfer, line.ItemID), transfer.DestinationLocationID, qty); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrTrasladoProcesado) {
			return fiber.NewError(fiber.StatusConflict, "El traslado ya fue procesado por otra operación")
		}
		config.LogError("transfers", "commitReception", transfer.ID, err)
		return fiber.NewError(fiber.StatusInternalServerError, "No se pudo registrar la recepción")
	}

	description := fmt.Sprintf("Traslado %s recibido completo", transfer.Folio)
	if shortfall := draft.Shortfall(); shortfall > 0 {
		description = fmt.Sprintf("Traslado %s recibido con faltante de %d unidades", transfer.Folio, shortfall)
	}
	_ = audit.WriteLog(audit.LogOptions{
		LocationID:  &transfer.DestinationLocationID,
		UserID:      user.ID,
		UserName:    user.Name,
		EntityType:  "transfer",
		EntityID:    transfer.ID,
		Action:      models.AuditActionReceive,
		Description: description,
	})

	var updated models.Transfer
	if err := database.DB.Preload("Items").First(&updated, transfer.ID).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "No se pudo recargar el traslado")
	}

	return c.JSON(toTransferResponse(updated, false))
}

// rejectTransfer marca el traslado como RECHAZADO sin cantidades por
// línea y devuelve todo el stock enviado al origen.
func rejectTransfer(c *fiber.Ctx, transfer *models.Transfer, user *models.User, reason string) error {
	now := time.Now()

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		// Mismo reclamo condicional que la recepción: solo un camino
		// concurrente puede dejar el traslado terminal.
		res := tx.Model(&models.Transfer{}).
			Where("id = ? AND status = ?", transfer.ID, models.TransferPendiente).
			Updates(map[string]any{
				"status":         models.TransferRechazado,
				"reject_reason":  reason,
				"received_by_id": user.ID,
				"received_at":    now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrTrasladoProcesado
		}

		for _, item := range transfer.Items {
			if err := addStockTx(tx, item.ProductID, transfer.SourceLocationID, item.Quantity); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrTrasladoProcesado) {
			return fiber.NewError(fiber.StatusConflict, "El traslado ya fue procesado por otra operación")
		}
		config.LogError("transfers", "rejectTransfer", transfer.ID, err)
		return fiber.NewError(fiber.StatusInternalServerError, "No se pudo rechazar el traslado")
	}

	_ = audit.WriteLog(audit.LogOptions{
		LocationID:  &transfer.DestinationLocationID,
		UserID:      user.ID,
		UserName:    user.Name,
		EntityType:  "transfer",
		EntityID:    transfer.ID,
		Action:      models.AuditActionReject,
		Description: fmt.Sprintf("Traslado %s rechazado: %s", transfer.Folio, reason),
	})

	var updated models.Transfer
	if err := database.DB.Preload("Items").First(&updated, transfer.ID).Error; err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "No se pudo recargar el traslado")
	}

	return c.JSON(toTransferResponse(updated, false))
}

// ----------------------------------------
// Auxiliares
// ----------------------------------------

func requestUser(c *fiber.Ctx) (*models.User, error) {
	userIDVal := c.Locals(auth.CtxUserIDKey)
	userID, ok := userIDVal.(uint)
	if !ok {
		return nil, fiber.NewError(fiber.StatusForbidden, "No se pudo identificar al usuario")
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return nil, fiber.NewError(fiber.StatusInternalServerError, "Usuario no encontrado")
	}

	return &user, nil
}

func viewerFrom(c *fiber.Ctx) (Viewer, error) {
	roleVal := c.Locals(auth.CtxUserRoleKey)
	role, ok := roleVal.(models.UserRole)
	if !ok {
		return Viewer{}, fiber.NewError(fiber.StatusForbidden, "No se pudo determinar el rol")
	}

	userIDVal := c.Locals(auth.CtxUserIDKey)
	userID, ok := userIDVal.(uint)
	if !ok {
		return Viewer{}, fiber.NewError(fiber.StatusForbidden, "No se pudo identificar al usuario")
	}

	return Viewer{Role: role, ShiftLocationID: shifts.ActiveShiftLocation(userID)}, nil
}

func stockAt(productID, locationID uint) int {
	var stock models.LocationStock
	if err := database.DB.
		Where("product_id = ? AND location_id = ?", productID, locationID).
		First(&stock).Error; err != nil {
		return 0
	}
	return stock.Quantity
}

func addStockTx(tx *gorm.DB, productID, locationID uint, qty int) error {
	if qty == 0 {
		return nil
	}

	var stock models.LocationStock
	err := tx.Where("product_id = ? AND location_id = ?", productID, locationID).First(&stock).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tx.Create(&models.LocationStock{
			ProductID:  productID,
			LocationID: locationID,
			Quantity:   qty,
		}).Error
	}
	if err != nil {
		return err
	}

	return tx.Model(&stock).Update("quantity", gorm.Expr("quantity + ?", qty)).Error
}

func itemProductID(t *models.Transfer, itemID uint) uint {
	for _, item := range t.Items {
		if item.ID == itemID {
			return item.ProductID
		}
	}
	return 0
}
