package domain

import "math/bits"

// Price calcula el coste de mover la supply de un subject desde `supply`
// hasta `supply + quantity`: la suma discreta de `quantity` niveles de
// precio enteros consecutivos empezando en `supply`.
//
// Fórmula: price(s, q) = Σ_{i=0}^{q-1} (s + i) = q*s + q*(q-1)/2
//
// La forma cerrada y la suma discreta son idénticas para todo q ≥ 0
// (verificado en tests). Casos borde que salen solos de la fórmula:
//   - price(s, 0) = 0 — comprar nada cuesta nada.
//   - price(0, 1) = 0 — la primera share de una curva nueva es gratis
//     (el término i=0 con s=0 vale 0, sin branch especial).
//
// Devuelve ErrArithmeticOverflow si el resultado no cabe en uint64.
func Price(supply, quantity uint64) (uint64, error) {
	if quantity == 0 {
		return 0, nil
	}

	linear, err := mulU64(quantity, supply)
	if err != nil {
		return 0, err
	}

	// q*(q-1) siempre es par; dividir el factor par antes de multiplicar
	// evita un overflow intermedio innecesario.
	a, b := quantity, quantity-1
	if a%2 == 0 {
		a /= 2
	} else {
		b /= 2
	}
	triangular, err := mulU64(a, b)
	if err != nil {
		return 0, err
	}

	return addU64(linear, triangular)
}

// SellPrice calcula lo que produce vender `quantity` shares con la supply
// actual en `supply`: el mismo rango de niveles que costó comprarlas,
// evaluado en el extremo inferior. Asume supply ≥ quantity (lo garantiza
// el Market antes de llamar).
func SellPrice(supply, quantity uint64) (uint64, error) {
	return Price(supply-quantity, quantity)
}

// mulU64 multiplica con detección de overflow.
func mulU64(a, b uint64) (uint64, error) {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return 0, ErrArithmeticOverflow
	}
	return lo, nil
}

// addU64 suma con detección de overflow.
func addU64(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrArithmeticOverflow
	}
	return sum, nil
}
