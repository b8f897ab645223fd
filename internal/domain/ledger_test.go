package domain

import (
	"math"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	subjA   = common.BytesToAddress([]byte{0xaa})
	subjB   = common.BytesToAddress([]byte{0xbb})
	holder1 = common.BytesToAddress([]byte{0x01})
	holder2 = common.BytesToAddress([]byte{0x02})
)

func TestLedger_AbsentIsZero(t *testing.T) {
	l := NewLedger()
	assert.Equal(t, uint64(0), l.Supply(subjA))
	assert.Equal(t, uint64(0), l.Balance(subjA, holder1))
}

func TestLedger_CreditCreatesLazily(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Credit(subjA, holder1, 3))

	assert.Equal(t, uint64(3), l.Supply(subjA))
	assert.Equal(t, uint64(3), l.Balance(subjA, holder1))
	assert.Equal(t, uint64(0), l.Balance(subjB, holder1), "subjects independientes")
}

func TestLedger_DebitInsufficient(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Credit(subjA, holder1, 2))

	err := l.Debit(subjA, holder1, 3)
	assert.ErrorIs(t, err, ErrInsufficientShares)
	// Nada cambió
	assert.Equal(t, uint64(2), l.Supply(subjA))
	assert.Equal(t, uint64(2), l.Balance(subjA, holder1))

	// El balance de otro holder no cubre al primero
	require.NoError(t, l.Credit(subjA, holder2, 5))
	err = l.Debit(subjA, holder1, 3)
	assert.ErrorIs(t, err, ErrInsufficientShares)
}

func TestLedger_CreditOverflow(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Credit(subjA, holder1, math.MaxUint64))
	err := l.Credit(subjA, holder2, 1)
	assert.ErrorIs(t, err, ErrArithmeticOverflow)
	assert.Equal(t, uint64(math.MaxUint64), l.Supply(subjA))
	assert.Equal(t, uint64(0), l.Balance(subjA, holder2))
}

func TestLedger_Conservation(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Credit(subjA, holder1, 7))
	require.NoError(t, l.Credit(subjA, holder2, 5))
	require.NoError(t, l.Credit(subjB, holder1, 2))
	require.NoError(t, l.Debit(subjA, holder2, 3))

	for _, s := range l.Subjects() {
		assert.Equal(t, l.Supply(s), l.HolderTotal(s), "subject %s", s)
	}
	assert.Equal(t, uint64(9), l.Supply(subjA))
	assert.Equal(t, uint64(2), l.Supply(subjB))
}

func TestLedger_RecordPersistsAtFloor(t *testing.T) {
	l := NewLedger()
	require.NoError(t, l.Credit(subjA, holder1, 4))
	require.NoError(t, l.Debit(subjA, holder1, 4))

	// La supply vuelve a 0 pero el record sigue existiendo
	assert.Contains(t, l.Subjects(), subjA)
	assert.Equal(t, uint64(0), l.Supply(subjA))
}
