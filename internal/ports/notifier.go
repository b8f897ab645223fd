package ports

import (
	"context"

	"github.com/alejandrodnm/bondmarket/internal/domain"
)

// Notifier es el sink de eventos del Market: recibe cada TradeRecord
// confirmado. Fire-and-forget — el Market loggea los errores del sink
// pero nunca los propaga al trader.
type Notifier interface {
	// Notify presenta un trade confirmado al observador.
	// En la implementación de consola, imprime una línea formateada.
	Notify(ctx context.Context, rec domain.TradeRecord) error
}
