package ports

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/alejandrodnm/bondmarket/internal/domain"
)

// SubjectSnapshot es el estado persistido de un subject: una fila por
// subject, actualizada con cada trade.
type SubjectSnapshot struct {
	Subject   common.Address
	Supply    uint64
	LastPrice uint64 // precio base del último trade
	Volume    uint64 // valor base acumulado de todos los trades
	Trades    uint64
	FirstSeen time.Time
	LastSeen  time.Time
}

// TradeStore persiste los TradeRecords emitidos por el Market y mantiene
// el snapshot por subject. El Market lo trata como fire-and-forget: un
// error de persistencia se loggea pero nunca revierte el trade.
type TradeStore interface {
	// SaveTrade persiste el record y actualiza el snapshot de su subject.
	SaveTrade(ctx context.Context, rec domain.TradeRecord) error

	// History devuelve los trades con timestamp en el rango dado,
	// ordenados del más antiguo al más reciente.
	History(ctx context.Context, from, to time.Time) ([]domain.TradeRecord, error)

	// Subjects devuelve los snapshots de todos los subjects conocidos,
	// ordenados por volumen descendente.
	Subjects(ctx context.Context) ([]SubjectSnapshot, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
