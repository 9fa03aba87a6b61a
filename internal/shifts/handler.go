package shifts

import (
	"fmt"
	"time"

	"tallerpos-backend/internal/audit"
	"tallerpos-backend/internal/auth"
	"tallerpos-backend/internal/database"
	"tallerpos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type OpenShiftRequest struct {
	LocationID uint `json:"location_id"`
}

type ShiftResponse struct {
	ID         uint   `json:"id"`
	UserID     uint   `json:"user_id"`
	LocationID uint   `json:"location_id"`
	OpenedAt   string `json:"opened_at"`
	ClosedAt   string `json:"closed_at,omitempty"`
}

func toShiftResponse(s models.Shift) ShiftResponse {
	res := ShiftResponse{
		ID:         s.ID,
		UserID:     s.UserID,
		LocationID: s.LocationID,
		OpenedAt:   s.OpenedAt.Format("2006-01-02 15:04:05"),
	}
	if s.ClosedAt != nil {
		res.ClosedAt = s.ClosedAt.Format("2006-01-02 15:04:05")
	}
	return res
}

// ActiveShiftLocation devuelve la ubicación del turno abierto del
// usuario, o nil si no tiene turno activo. Las reglas de elegibilidad
// de traslados dependen de este valor.
func ActiveShiftLocation(userID uint) *uint {
	var shift models.Shift
	if err := database.DB.
		Where("user_id = ? AND closed_at IS NULL", userID).
		Order("opened_at DESC").
		First(&shift).Error; err != nil {
		return nil
	}
	return &shift.LocationID
}

// POST /api/shifts/open
// Abrir un turno cierra cualquier turno abierto anterior del usuario:
// a lo sumo un turno activo por operador.
func OpenShiftHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body OpenShiftRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
		}
		if body.LocationID == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "location_id es obligatorio")
		}

		var location models.Location
		if err := database.DB.First(&location, "id = ?", body.LocationID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "La ubicación no existe")
		}

		userID, userName, err := currentUser(c)
		if err != nil {
			return err
		}

		now := time.Now()
		var shift models.Shift

		err = database.DB.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&models.Shift{}).
				Where("user_id = ? AND closed_at IS NULL", userID).
				Update("closed_at", now).Error; err != nil {
				return err
			}

			shift = models.Shift{
				UserID:     userID,
				LocationID: body.LocationID,
				OpenedAt:   now,
			}
			return tx.Create(&shift).Error
		})
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo abrir el turno")
		}

		_ = audit.WriteLog(audit.LogOptions{
			LocationID:  &body.LocationID,
			UserID:      userID,
			UserName:    userName,
			EntityType:  "shift",
			EntityID:    shift.ID,
			Action:      models.AuditActionCreate,
			Description: fmt.Sprintf("Turno abierto en %s", location.Name),
			After:       shift,
		})

		return c.Status(fiber.StatusCreated).JSON(toShiftResponse(shift))
	}
}

// POST /api/shifts/close
func CloseShiftHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, userName, err := currentUser(c)
		if err != nil {
			return err
		}

		var shift models.Shift
		if err := database.DB.
			Where("user_id = ? AND closed_at IS NULL", userID).
			First(&shift).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "No tienes un turno abierto")
		}

		now := time.Now()
		shift.ClosedAt = &now
		if err := database.DB.Save(&shift).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo cerrar el turno")
		}

		_ = audit.WriteLog(audit.LogOptions{
			LocationID:  &shift.LocationID,
			UserID:      userID,
			UserName:    userName,
			EntityType:  "shift",
			EntityID:    shift.ID,
			Action:      models.AuditActionUpdate,
			Description: "Turno cerrado",
			After:       shift,
		})

		return c.JSON(toShiftResponse(shift))
	}
}

// GET /api/shifts/active
func ActiveShiftHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _, err := currentUser(c)
		if err != nil {
			return err
		}

		var shift models.Shift
		if err := database.DB.
			Where("user_id = ? AND closed_at IS NULL", userID).
			First(&shift).Error; err != nil {
			return c.JSON(fiber.Map{"active": false})
		}

		return c.JSON(fiber.Map{
			"active": true,
			"shift":  toShiftResponse(shift),
		})
	}
}

func currentUser(c *fiber.Ctx) (uint, string, error) {
	userIDVal := c.Locals(auth.CtxUserIDKey)
	userID, ok := userIDVal.(uint)
	if !ok {
		return 0, "", fiber.NewError(fiber.StatusForbidden, "No se pudo identificar al usuario")
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return 0, "", fiber.NewError(fiber.StatusInternalServerError, "Usuario no encontrado")
	}

	return userID, user.Name, nil
}
