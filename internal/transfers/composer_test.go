package transfers

import (
	"errors"
	"testing"
)

func TestCartMergesRepeatedProduct(t *testing.T) {
	var cart Cart

	// Producto con stock 10: 4 + 3 se fusionan en una sola línea de 7.
	if err := cart.AddLine(1, "Pantalla X", 10, 4); err != nil {
		t.Fatalf("AddLine(4): %v", err)
	}
	if err := cart.AddLine(1, "Pantalla X", 10, 3); err != nil {
		t.Fatalf("AddLine(3): %v", err)
	}

	if len(cart.Lines) != 1 {
		t.Fatalf("se esperaba 1 línea fusionada, hay %d", len(cart.Lines))
	}
	if cart.Lines[0].Quantity != 7 {
		t.Errorf("cantidad fusionada esperada 7, hay %d", cart.Lines[0].Quantity)
	}

	// Agregar 4 más superaría el stock (11 > 10): se rechaza y el
	// carrito queda en 7.
	err := cart.AddLine(1, "Pantalla X", 10, 4)
	if !errors.Is(err, ErrStockInsuficiente) {
		t.Fatalf("se esperaba ErrStockInsuficiente, hay %v", err)
	}
	if cart.Lines[0].Quantity != 7 {
		t.Errorf("el carrito no debe cambiar tras el rechazo: esperaba 7, hay %d", cart.Lines[0].Quantity)
	}
}

func TestCartRejectsNonPositiveQuantity(t *testing.T) {
	var cart Cart

	for _, qty := range []int{0, -1, -10} {
		if err := cart.AddLine(1, "Pantalla X", 10, qty); err == nil {
			t.Errorf("cantidad %d debió rechazarse", qty)
		}
	}
	if !cart.IsEmpty() {
		t.Error("el carrito debe seguir vacío")
	}
}

func TestCartFirstLineBoundedByStock(t *testing.T) {
	var cart Cart

	err := cart.AddLine(1, "Pantalla X", 3, 5)
	if !errors.Is(err, ErrStockInsuficiente) {
		t.Fatalf("se esperaba ErrStockInsuficiente, hay %v", err)
	}
	if !cart.IsEmpty() {
		t.Error("el carrito debe seguir vacío tras el rechazo")
	}
}

func TestCartRemoveLine(t *testing.T) {
	var cart Cart
	cart.AddLine(1, "Pantalla X", 10, 2)
	cart.AddLine(2, "Batería Y", 5, 1)

	cart.RemoveLine(0)
	if len(cart.Lines) != 1 || cart.Lines[0].ProductID != 2 {
		t.Fatalf("se esperaba solo la línea del producto 2, hay %+v", cart.Lines)
	}

	// Índices fuera de rango no hacen nada.
	cart.RemoveLine(5)
	cart.RemoveLine(-1)
	if len(cart.Lines) != 1 {
		t.Error("índices inválidos no deben alterar el carrito")
	}

	cart.RemoveLine(0)
	if !cart.IsEmpty() {
		t.Error("el carrito debe quedar vacío")
	}
}
