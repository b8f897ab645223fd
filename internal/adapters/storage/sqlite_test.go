package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/bondmarket/internal/adapters/storage"
	"github.com/alejandrodnm/bondmarket/internal/domain"
)

var (
	subjA  = common.BytesToAddress([]byte{0xaa})
	subjB  = common.BytesToAddress([]byte{0xbb})
	trader = common.BytesToAddress([]byte{0x01})
)

func makeTrade(subject common.Address, side domain.Side, base, supply uint64) domain.TradeRecord {
	rec := domain.NewTradeRecord(trader, subject, side, 1, base, base/20, base/20, supply)
	rec.Timestamp = time.Now().UTC().Truncate(time.Second)
	return rec
}

func TestSQLiteStore_SaveAndHistory(t *testing.T) {
	db, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer db.Close()

	first := makeTrade(subjA, domain.SideBuy, 100, 5)
	second := makeTrade(subjA, domain.SideSell, 80, 4)
	second.Timestamp = first.Timestamp.Add(time.Second)

	require.NoError(t, db.SaveTrade(context.Background(), first))
	require.NoError(t, db.SaveTrade(context.Background(), second))

	from := time.Now().UTC().Add(-time.Minute)
	to := time.Now().UTC().Add(time.Minute)
	history, err := db.History(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, history, 2)

	// Ordenados del más antiguo al más reciente
	assert.Equal(t, first.ID, history[0].ID)
	assert.Equal(t, domain.SideBuy, history[0].Side)
	assert.Equal(t, uint64(100), history[0].BasePrice)
	assert.Equal(t, subjA, history[0].Subject)
	assert.Equal(t, trader, history[0].Trader)
}

func TestSQLiteStore_HistoryEmptyRange(t *testing.T) {
	db, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.SaveTrade(context.Background(), makeTrade(subjA, domain.SideBuy, 10, 2)))

	past := time.Now().UTC().Add(-2 * time.Hour)
	history, err := db.History(context.Background(), past, past.Add(time.Minute))
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestSQLiteStore_SubjectSnapshotAggregates(t *testing.T) {
	db, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.SaveTrade(context.Background(), makeTrade(subjA, domain.SideBuy, 100, 5)))
	require.NoError(t, db.SaveTrade(context.Background(), makeTrade(subjA, domain.SideBuy, 150, 6)))
	require.NoError(t, db.SaveTrade(context.Background(), makeTrade(subjB, domain.SideBuy, 40, 2)))

	snaps, err := db.Subjects(context.Background())
	require.NoError(t, err)
	require.Len(t, snaps, 2)

	// Ordenados por volumen desc: subjA (250) primero
	assert.Equal(t, subjA, snaps[0].Subject)
	assert.Equal(t, uint64(250), snaps[0].Volume)
	assert.Equal(t, uint64(2), snaps[0].Trades)
	assert.Equal(t, uint64(6), snaps[0].Supply, "el snapshot guarda la supply del último trade")
	assert.Equal(t, uint64(150), snaps[0].LastPrice)

	assert.Equal(t, subjB, snaps[1].Subject)
	assert.Equal(t, uint64(40), snaps[1].Volume)
}

func TestSQLiteStore_DuplicateTradeID(t *testing.T) {
	db, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer db.Close()

	rec := makeTrade(subjA, domain.SideBuy, 10, 2)
	require.NoError(t, db.SaveTrade(context.Background(), rec))

	// El ID es primary key: reinsertar el mismo record falla y no duplica
	err = db.SaveTrade(context.Background(), rec)
	assert.Error(t, err)

	history, err := db.History(context.Background(), time.Time{}, time.Now().UTC().Add(time.Minute))
	require.NoError(t, err)
	assert.Len(t, history, 1)
}
