package transfers

import (
	"errors"
	"fmt"
)

// ErrStockInsuficiente marca un rechazo por existencia insuficiente en
// el origen. El carrito queda intacto cuando se devuelve este error.
var ErrStockInsuficiente = errors.New("stock insuficiente")

// CartLine: una línea acumulada del borrador de traslado.
type CartLine struct {
	ProductID   uint
	ProductName string
	Stock       int // existencia en el origen al momento de la consulta
	Quantity    int
}

// Cart: borrador de traslado antes de enviarlo. Estructura de
// acumular/descartar: las líneas se agregan o se quitan completas, no
// se editan cantidades parciales.
type Cart struct {
	Lines []CartLine
}

// AddLine agrega cantidad de un producto al carrito. La cantidad debe
// ser un entero positivo y la suma acumulada del producto no puede
// superar la existencia del origen; si no cumple, el carrito no cambia.
// Un producto ya presente se fusiona en su línea en vez de duplicarse.
func (cart *Cart) AddLine(productID uint, productName string, stock, qty int) error {
	if qty <= 0 {
		return fmt.Errorf("la cantidad debe ser un entero positivo")
	}

	for i := range cart.Lines {
		if cart.Lines[i].ProductID != productID {
			continue
		}
		if cart.Lines[i].Quantity+qty > stock {
			return fmt.Errorf("%w: %s (disponible %d)", ErrStockInsuficiente, productName, stock)
		}
		cart.Lines[i].Quantity += qty
		cart.Lines[i].Stock = stock
		return nil
	}

	if qty > stock {
		return fmt.Errorf("%w: %s (disponible %d)", ErrStockInsuficiente, productName, stock)
	}

	cart.Lines = append(cart.Lines, CartLine{
		ProductID:   productID,
		ProductName: productName,
		Stock:       stock,
		Quantity:    qty,
	})
	return nil
}

// RemoveLine quita una línea completa del carrito.
func (cart *Cart) RemoveLine(index int) {
	if index < 0 || index >= len(cart.Lines) {
		return
	}
	cart.Lines = append(cart.Lines[:index], cart.Lines[index+1:]...)
}

func (cart *Cart) IsEmpty() bool {
	return len(cart.Lines) == 0
}
