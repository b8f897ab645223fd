package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
)

// Side es la dirección de un trade.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// TradeRecord es el hecho inmutable que emite el Market tras cada trade
// confirmado. Se escribe una vez y solo lo consumen observadores externos
// (storage, notifier); nunca vuelve a entrar al núcleo.
type TradeRecord struct {
	ID          string
	Trader      common.Address
	Subject     common.Address
	Side        Side
	Quantity    uint64
	BasePrice   uint64
	ProtocolFee uint64
	SubjectFee  uint64
	Supply      uint64 // supply del subject después del trade
	Timestamp   time.Time
}

// NewTradeRecord construye el record de un trade confirmado con ID único
// y timestamp UTC.
func NewTradeRecord(trader, subject common.Address, side Side, quantity, base, pfee, sfee, supply uint64) TradeRecord {
	return TradeRecord{
		ID:          uuid.New().String(),
		Trader:      trader,
		Subject:     subject,
		Side:        side,
		Quantity:    quantity,
		BasePrice:   base,
		ProtocolFee: pfee,
		SubjectFee:  sfee,
		Supply:      supply,
		Timestamp:   time.Now().UTC(),
	}
}

// Total devuelve el valor movido por el trade desde el punto de vista del
// trader: coste total en compras, neto recibido en ventas.
func (t TradeRecord) Total() uint64 {
	if t.Side == SideBuy {
		return t.BasePrice + t.ProtocolFee + t.SubjectFee
	}
	return t.BasePrice - t.ProtocolFee - t.SubjectFee
}
