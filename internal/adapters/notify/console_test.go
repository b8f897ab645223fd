package notify_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/bondmarket/internal/adapters/notify"
	"github.com/alejandrodnm/bondmarket/internal/domain"
	"github.com/alejandrodnm/bondmarket/internal/ports"
)

var (
	subject = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	trader  = common.HexToAddress("0x0000000000000000000000000000000000000001")
)

func TestConsole_NotifyCompactLine(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf)

	rec := domain.NewTradeRecord(trader, subject, domain.SideBuy, 3, 55, 2, 2, 11)
	require.NoError(t, c.Notify(context.Background(), rec))

	out := buf.String()
	assert.Contains(t, out, "BUY")
	assert.Contains(t, out, "base=55")
	assert.Contains(t, out, "fee=4")
	assert.Contains(t, out, "supply=11")
}

func TestConsole_PrintHistoryTable(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf)

	c.PrintHistory([]domain.TradeRecord{
		domain.NewTradeRecord(trader, subject, domain.SideBuy, 1, 10, 0, 0, 2),
		domain.NewTradeRecord(trader, subject, domain.SideSell, 1, 10, 0, 0, 1),
	})

	out := buf.String()
	assert.Contains(t, out, "SELL")
	assert.Contains(t, out, "2 trades")
}

func TestConsole_PrintHistoryEmpty(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf)

	c.PrintHistory(nil)
	assert.Contains(t, buf.String(), "no trades recorded")
}

func TestConsole_PrintSubjects(t *testing.T) {
	var buf bytes.Buffer
	c := notify.NewConsoleWriter(&buf)

	c.PrintSubjects([]ports.SubjectSnapshot{{
		Subject:   subject,
		Supply:    7,
		LastPrice: 21,
		Volume:    120,
		Trades:    4,
		FirstSeen: time.Now().UTC(),
		LastSeen:  time.Now().UTC(),
	}})

	out := buf.String()
	assert.Contains(t, out, "120")
	assert.Contains(t, out, "0x0000…00aa")
}
