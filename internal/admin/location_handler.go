package admin

import (
	"strings"

	"tallerpos-backend/internal/database"
	"tallerpos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

type LocationResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	ParentID  *uint  `json:"parent_id"`
	CreatedAt string `json:"created_at"`
}

type CreateLocationRequest struct {
	Name     string `json:"name"`
	Address  string `json:"address"`
	ParentID *uint  `json:"parent_id"` // nulo = sucursal raíz; con valor = sub-bodega
}

type UpdateLocationRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
}

func toLocationResponse(l models.Location) LocationResponse {
	return LocationResponse{
		ID:        l.ID,
		Name:      l.Name,
		Address:   l.Address,
		ParentID:  l.ParentID,
		CreatedAt: l.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}

// ----------------------------------------
// CRUD DE UBICACIONES
// ----------------------------------------

// POST /api/admin/locations
func CreateLocationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateLocationRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
		}

		body.Name = strings.TrimSpace(body.Name)
		if body.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "El nombre de la ubicación no puede estar vacío")
		}

		if body.ParentID != nil {
			// La jerarquía es de dos niveles: el padre debe ser una sucursal raíz
			var parent models.Location
			if err := database.DB.First(&parent, "id = ?", *body.ParentID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "La sucursal padre no existe")
			}
			if !parent.IsRoot() {
				return fiber.NewError(fiber.StatusBadRequest, "Una sub-bodega no puede colgar de otra sub-bodega")
			}
		}

		location := models.Location{
			Name:     body.Name,
			Address:  body.Address,
			ParentID: body.ParentID,
		}

		if err := database.DB.Create(&location).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo crear la ubicación")
		}

		return c.Status(fiber.StatusCreated).JSON(toLocationResponse(location))
	}
}

// GET /api/locations/?all=true
// Por defecto solo sucursales raíz (las únicas válidas como origen o
// destino de un traslado); con all=true se incluye la jerarquía
// completa, que la regla de elegibilidad necesita para resolver padres.
func ListLocationsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.Location{})
		if c.Query("all") != "true" {
			dbq = dbq.Where("parent_id IS NULL")
		}

		var locations []models.Location
		if err := dbq.Order("name asc").Find(&locations).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar las ubicaciones")
		}

		res := make([]LocationResponse, 0, len(locations))
		for _, l := range locations {
			res = append(res, toLocationResponse(l))
		}

		return c.JSON(res)
	}
}

// GET /api/locations/:id
func GetLocationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var location models.Location
		if err := database.DB.First(&location, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ubicación no encontrada")
		}

		return c.JSON(toLocationResponse(location))
	}
}

// PUT /api/admin/locations/:id
func UpdateLocationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var location models.Location
		if err := database.DB.First(&location, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Ubicación no encontrada")
		}

		var body UpdateLocationRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "El nombre de la ubicación no puede estar vacío")
			}
			location.Name = name
		}

		if body.Address != nil {
			location.Address = *body.Address
		}

		if err := database.DB.Save(&location).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo actualizar la ubicación")
		}

		return c.JSON(toLocationResponse(location))
	}
}

// DELETE /api/admin/locations/:id
func DeleteLocationHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var count int64
		database.DB.Model(&models.Location{}).Where("parent_id = ?", id).Count(&count)
		if count > 0 {
			return fiber.NewError(fiber.StatusBadRequest, "No se puede eliminar una sucursal con sub-bodegas")
		}

		if err := database.DB.Delete(&models.Location{}, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo eliminar la ubicación")
		}

		return c.SendStatus(fiber.StatusNoContent)
	}
}
