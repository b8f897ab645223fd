package notify

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/bondmarket/internal/domain"
	"github.com/alejandrodnm/bondmarket/internal/ports"
)

// Console implementa ports.Notifier.
type Console struct {
	out io.Writer
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// Notify imprime una línea compacta por trade confirmado.
func (c *Console) Notify(_ context.Context, rec domain.TradeRecord) error {
	fee := rec.ProtocolFee + rec.SubjectFee
	fmt.Fprintf(c.out, "[%s] %-4s %d %s base=%d fee=%d supply=%d trader=%s\n",
		rec.Timestamp.Format("15:04:05"), rec.Side, rec.Quantity,
		shortAddr(rec.Subject.Hex()), rec.BasePrice, fee, rec.Supply,
		shortAddr(rec.Trader.Hex()))
	return nil
}

// PrintHistory imprime el historial en una tabla.
func (c *Console) PrintHistory(records []domain.TradeRecord) {
	if len(records) == 0 {
		fmt.Fprintln(c.out, "no trades recorded")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Time", "Side", "Subject", "Qty", "Base", "PFee", "SFee", "Supply", "Trader")

	for i, rec := range records {
		table.Append(
			fmt.Sprintf("%d", i+1),
			rec.Timestamp.Format(time.DateTime),
			string(rec.Side),
			shortAddr(rec.Subject.Hex()),
			fmt.Sprintf("%d", rec.Quantity),
			fmt.Sprintf("%d", rec.BasePrice),
			fmt.Sprintf("%d", rec.ProtocolFee),
			fmt.Sprintf("%d", rec.SubjectFee),
			fmt.Sprintf("%d", rec.Supply),
			shortAddr(rec.Trader.Hex()),
		)
	}

	table.Render()
	fmt.Fprintf(c.out, "%d trades\n", len(records))
}

// PrintSubjects imprime los snapshots por subject, más volumen primero.
func (c *Console) PrintSubjects(snaps []ports.SubjectSnapshot) {
	if len(snaps) == 0 {
		fmt.Fprintln(c.out, "no subjects recorded")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Subject", "Supply", "Last", "Volume", "Trades", "Last seen")

	for i, snap := range snaps {
		table.Append(
			fmt.Sprintf("%d", i+1),
			shortAddr(snap.Subject.Hex()),
			fmt.Sprintf("%d", snap.Supply),
			fmt.Sprintf("%d", snap.LastPrice),
			fmt.Sprintf("%d", snap.Volume),
			fmt.Sprintf("%d", snap.Trades),
			snap.LastSeen.Format(time.DateTime),
		)
	}

	table.Render()
}

// shortAddr acorta una address hex a 0xabcd…1234 para salidas de consola.
func shortAddr(hex string) string {
	if len(hex) <= 12 {
		return hex
	}
	return hex[:6] + "…" + hex[len(hex)-4:]
}
