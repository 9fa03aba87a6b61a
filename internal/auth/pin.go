package auth

import (
	"strings"

	"tallerpos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// VerifyPIN valida el PIN de autorización contra el hash del usuario.
// El PIN viaja en cada mutación sensible; un PIN errado no debe dejar
// rastro en el estado de la operación (el cliente reintenta con el
// mismo borrador).
func VerifyPIN(user *models.User, pin string) error {
	pin = strings.TrimSpace(pin)
	if pin == "" {
		return fiber.NewError(fiber.StatusBadRequest, "El PIN es obligatorio")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PinHash), []byte(pin)); err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "PIN incorrecto")
	}
	return nil
}

// HashPIN genera el hash bcrypt para almacenar un PIN nuevo.
func HashPIN(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(strings.TrimSpace(pin)), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
