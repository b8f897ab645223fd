package domain

import "errors"

// Errores del núcleo de trading. Todos son fallos de precondición: la
// operación que los devuelve no deja ningún cambio de estado parcial.
var (
	// ErrInsufficientPayment — el pago no cubre precio base + fees.
	ErrInsufficientPayment = errors.New("insufficient payment")

	// ErrFirstShareRestricted — solo el propio subject puede comprar la
	// primera share de su curva.
	ErrFirstShareRestricted = errors.New("only the subject can buy the first share")

	// ErrCannotSellLastShare — la última share en circulación de un subject
	// no se puede vender nunca; ancla el suelo de la curva.
	ErrCannotSellLastShare = errors.New("cannot sell the last share")

	// ErrInsufficientShares — el holder no tiene las shares que intenta vender.
	ErrInsufficientShares = errors.New("insufficient shares")

	// ErrInsufficientLiquidity — el pool no cubre el payout de la venta.
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")

	// ErrArithmeticOverflow — una operación sobre uint64 habría hecho wrap.
	ErrArithmeticOverflow = errors.New("arithmetic overflow")

	// ErrUnauthorized — la capability presentada no es la admin cap del mercado.
	ErrUnauthorized = errors.New("unauthorized")
)
