package inventory

import (
	"strings"

	"tallerpos-backend/internal/database"
	"tallerpos-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// Tope de resultados por búsqueda; el buscador del punto de venta
// consulta mientras se escribe y no necesita más filas que esto.
const searchLimit = 20

type ProductResponse struct {
	ID            uint            `json:"id"`
	Name          string          `json:"name"`
	SKU           string          `json:"sku"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
}

type CreateProductRequest struct {
	Name     string          `json:"name"`
	SKU      string          `json:"sku"`
	Cost     decimal.Decimal `json:"cost"`
	Price    decimal.Decimal `json:"price"`
	Sellable *bool           `json:"sellable"`
}

type UpdateProductRequest struct {
	Name     *string          `json:"name"`
	Cost     *decimal.Decimal `json:"cost"`
	Price    *decimal.Decimal `json:"price"`
	Sellable *bool            `json:"sellable"`
}

// GET /api/products/?search=<term>&location_id=<id>
// Busca productos vendibles por nombre o SKU, con la existencia
// (stock_quantity) de la ubicación indicada al momento de la consulta.
// Término en blanco devuelve lista vacía sin tocar la base: el contrato
// del buscador es no-op para búsquedas vacías.
func SearchProductsHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		term := strings.TrimSpace(c.Query("search"))
		if term == "" {
			return c.JSON([]ProductResponse{})
		}

		locationID := c.Query("location_id")
		if locationID == "" {
			return fiber.NewError(fiber.StatusBadRequest, "location_id es obligatorio")
		}

		var location models.Location
		if err := database.DB.First(&location, "id = ?", locationID).Error; err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "La ubicación no existe")
		}

		pattern := "%" + strings.ToLower(term) + "%"
		var products []models.Product
		if err := database.DB.
			Where("sellable = ?", true).
			Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", pattern, pattern).
			Order("name asc").
			Limit(searchLimit).
			Find(&products).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudieron buscar los productos")
		}

		res := make([]ProductResponse, 0, len(products))
		for _, p := range products {
			res = append(res, ProductResponse{
				ID:            p.ID,
				Name:          p.Name,
				SKU:           p.SKU,
				Price:         p.Price,
				StockQuantity: StockAt(p.ID, location.ID),
			})
		}

		return c.JSON(res)
	}
}

// StockAt devuelve la existencia del producto en la ubicación; sin fila
// de stock se asume cero.
func StockAt(productID, locationID uint) int {
	var stock models.LocationStock
	if err := database.DB.
		Where("product_id = ? AND location_id = ?", productID, locationID).
		First(&stock).Error; err != nil {
		return 0
	}
	return stock.Quantity
}

// POST /api/admin/products
func CreateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CreateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
		}

		body.Name = strings.TrimSpace(body.Name)
		body.SKU = strings.TrimSpace(body.SKU)

		if body.Name == "" || body.SKU == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Nombre y SKU son obligatorios")
		}

		var existing models.Product
		if err := database.DB.Where("sku = ?", body.SKU).First(&existing).Error; err == nil {
			return fiber.NewError(fiber.StatusBadRequest, "Este SKU ya está en uso")
		}

		sellable := true
		if body.Sellable != nil {
			sellable = *body.Sellable
		}

		p := models.Product{
			Name:     body.Name,
			SKU:      body.SKU,
			Cost:     body.Cost,
			Price:    body.Price,
			Sellable: sellable,
		}

		if err := database.DB.Create(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo crear el producto")
		}

		return c.Status(fiber.StatusCreated).JSON(ProductResponse{
			ID:    p.ID,
			Name:  p.Name,
			SKU:   p.SKU,
			Price: p.Price,
		})
	}
}

// PUT /api/admin/products/:id
func UpdateProductHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")

		var p models.Product
		if err := database.DB.First(&p, "id = ?", id).Error; err != nil {
			return fiber.NewError(fiber.StatusNotFound, "Producto no encontrado")
		}

		var body UpdateProductRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Datos inválidos")
		}

		if body.Name != nil {
			name := strings.TrimSpace(*body.Name)
			if name == "" {
				return fiber.NewError(fiber.StatusBadRequest, "El nombre no puede estar vacío")
			}
			p.Name = name
		}
		if body.Cost != nil {
			p.Cost = *body.Cost
		}
		if body.Price != nil {
			p.Price = *body.Price
		}
		if body.Sellable != nil {
			p.Sellable = *body.Sellable
		}

		if err := database.DB.Save(&p).Error; err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "No se pudo actualizar el producto")
		}

		return c.JSON(ProductResponse{
			ID:    p.ID,
			Name:  p.Name,
			SKU:   p.SKU,
			Price: p.Price,
		})
	}
}
