package admin

import (
	"strings"

	"tallerpos-backend/internal/auth"
	"tallerpos-backend/internal/database"
	"tallerpos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type CreateUserRequest struct {
	Name       string          `json:"name"`
	Email      string          `json:"email"`
	Password   string          `json:"password"`
	Pin        string          `json:"pin"`
	Role       models.UserRole `json:"role"`
	LocationID *uint           `json:"location_id"`
}

type UserResponse struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	LocationID *uint  `json:"location_id"`
	CreatedAt  string `json:"created_at"`
}

// POST /api/admin/users
func CreateUserHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateUserRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
		}

		body.Email = strings.ToLower(strings.TrimSpace(body.Email))
		body.Name = strings.TrimSpace(body.Name)

		if body.Name == "" || body.Email == "" || body.Password == "" || body.Pin == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Nombre, email, contraseña y PIN son obligatorios")
		}

		switch body.Role {
		case models.RoleAdmin, models.RoleVendedor, models.RoleTecnico:
		default:
			return fiber.NewError(fiber.StatusBadRequest, "Rol desconocido")
		}

		if body.LocationID != nil {
			var location models.Location
			if err := database.DB.First(&location, "id = ?", *body.LocationID).Error; err != nil {
				return fiber.NewError(fiber.StatusBadRequest, "La ubicación no existe")
			}
		}

		var exist models.User
		if err := database.DB.Where("email = ?", body.Email).First(&exist).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Este email ya está registrado")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo procesar la contraseña")
		}

		pinHash, err := auth.HashPIN(body.Pin)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo procesar el PIN")
		}

		user := models.User{
			Name:         body.Name,
			Email:        body.Email,
			PasswordHash: string(hash),
			PinHash:      pinHash,
			Role:         body.Role,
			LocationID:   body.LocationID,
		}

		if err := database.DB.Create(&user).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo crear el usuario")
		}

		return c.Status(fiber.StatusCreated).JSON(UserResponse{
			ID:         user.ID,
			Name:       user.Name,
			Email:      user.Email,
			Role:       string(user.Role),
			LocationID: user.LocationID,
			CreatedAt:  user.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
}

// GET /api/admin/users
func ListUsersHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		dbq := database.DB.Model(&models.User{})
		if lid := c.Query("location_id"); lid != "" {
			dbq = dbq.Where("location_id = ?", lid)
		}

		var users []models.User
		if err := dbq.Order("created_at DESC").Find(&users).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron listar los usuarios")
		}

		res := make([]UserResponse, 0, len(users))
		for _, u := range users {
			res = append(res, UserResponse{
				ID:         u.ID,
				Name:       u.Name,
				Email:      u.Email,
				Role:       string(u.Role),
				LocationID: u.LocationID,
				CreatedAt:  u.CreatedAt.Format("2006-01-02 15:04:05"),
			})
		}

		return c.JSON(res)
	}
}
