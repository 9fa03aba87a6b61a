package inventory

import (
	"fmt"

	"tallerpos-backend/internal/audit"
	"tallerpos-backend/internal/auth"
	"tallerpos-backend/internal/database"
	"tallerpos-backend/internal/models"
	"tallerpos-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type SetStockRequest struct {
	ProductID  uint `json:"product_id" validate:"required"`
	LocationID uint `json:"location_id" validate:"required"`
	Quantity   int  `json:"quantity" validate:"gte=0"`
}

type StockResponse struct {
	ProductID  uint `json:"product_id"`
	LocationID uint `json:"location_id"`
	Quantity   int  `json:"quantity"`
}

// POST /api/admin/stock
// Fija la existencia de un producto en una ubicación (conteo físico o
// carga inicial). Los traslados mueven stock por su propio camino; este
// endpoint es el ajuste manual del administrador.
func SetStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body SetStockRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
		}
		if err := validation.Struct(&body); err != nil {
			return err
		}

		var product models.Product
		if err := database.DB.First(&product, "id = ?", body.ProductID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "El producto no existe")
		}
		var location models.Location
		if err := database.DB.First(&location, "id = ?", body.LocationID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "La ubicación no existe")
		}

		var stock models.LocationStock
		err := database.DB.
			Where("product_id = ? AND location_id = ?", body.ProductID, body.LocationID).
			First(&stock).Error

		var before *models.LocationStock
		if err == nil {
			copied := stock
			before = &copied
			stock.Quantity = body.Quantity
			err = database.DB.Save(&stock).Error
		} else {
			stock = models.LocationStock{
				ProductID:  body.ProductID,
				LocationID: body.LocationID,
				Quantity:   body.Quantity,
			}
			err = database.DB.Create(&stock).Error
		}
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo guardar el stock")
		}

		if userID, userName, _, uerr := currentUser(c); uerr == nil {
			_ = audit.WriteLog(audit.LogOptions{
				LocationID:  &body.LocationID,
				UserID:      userID,
				UserName:    userName,
				EntityType:  "location_stock",
				EntityID:    stock.ID,
				Action:      models.AuditActionUpdate,
				Description: fmt.Sprintf("Ajuste de stock: %s → %d en ubicación %d", product.Name, body.Quantity, body.LocationID),
				Before:      before,
				After:       stock,
			})
		}

		return c.JSON(StockResponse{
			ProductID:  stock.ProductID,
			LocationID: stock.LocationID,
			Quantity:   stock.Quantity,
		})
	}
}

// GET /api/admin/stock?location_id=<id>
func ListStockHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		locationID := c.Query("location_id")
		if locationID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "location_id es obligatorio")
		}

		var stocks []models.LocationStock
		if err := database.DB.
			Where("location_id = ?", locationID).
			Find(&stocks).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo listar el stock")
		}

		res := make([]StockResponse, 0, len(stocks))
		for _, s := range stocks {
			res = append(res, StockResponse{
				ProductID:  s.ProductID,
				LocationID: s.LocationID,
				Quantity:   s.Quantity,
			})
		}

		return c.JSON(res)
	}
}

// Auxiliar: datos del usuario autenticado para la bitácora.
func currentUser(c *fiber.Ctx) (uint, string, *uint, error) {
	userIDVal := c.Locals(auth.CtxUserIDKey)
	userID, ok := userIDVal.(uint)
	if !ok {
		return 0, "", nil, fiber.NewError(fiber.StatusForbidden, "No se pudo identificar al usuario")
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return 0, "", nil, fiber.NewError(fiber.StatusInternalServerError, "Usuario no encontrado")
	}

	return userID, user.Name, user.LocationID, nil
}
