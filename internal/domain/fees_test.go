package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFees_DefaultRates(t *testing.T) {
	p := DefaultFeePolicy()
	pfee, sfee := p.Fees(10_000)
	assert.Equal(t, uint64(500), pfee) // 5%
	assert.Equal(t, uint64(500), sfee) // 5%
}

func TestFees_FloorRounding(t *testing.T) {
	p := DefaultFeePolicy()

	// base 3 → 3*500/10000 = 0.15 → floor 0
	pfee, sfee := p.Fees(3)
	assert.Equal(t, uint64(0), pfee)
	assert.Equal(t, uint64(0), sfee)

	// base 19 → 0.95 → floor 0; base 20 → exactamente 1
	pfee, _ = p.Fees(19)
	assert.Equal(t, uint64(0), pfee)
	pfee, _ = p.Fees(20)
	assert.Equal(t, uint64(1), pfee)
}

func TestFees_SumWithinOneUnit(t *testing.T) {
	p := DefaultFeePolicy()
	for base := uint64(0); base <= 5_000; base++ {
		pfee, sfee := p.Fees(base)
		combined := base * (p.ProtocolBps + p.SubjectBps) / BasisPoints
		// Cada fee floorea por separado: a lo sumo 1 unidad por debajo
		// del floor combinado.
		assert.LessOrEqual(t, combined-(pfee+sfee), uint64(1), "base=%d", base)
	}
}

func TestFees_ProtocolBias(t *testing.T) {
	p := DefaultFeePolicy()
	for _, base := range []uint64{1, 7, 99, 1234, 99999} {
		total, err := p.BuyTotal(base)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, total, base, "el comprador nunca paga menos que base")
		assert.LessOrEqual(t, p.SellNet(base), base, "el vendedor nunca recibe más que base")
	}
}

func TestFees_NoOverflowOnHugeBase(t *testing.T) {
	p := DefaultFeePolicy()
	pfee, sfee := p.Fees(math.MaxUint64)
	assert.LessOrEqual(t, pfee, uint64(math.MaxUint64)/10)
	assert.Equal(t, pfee, sfee)
}

func TestNewFeePolicy_RejectsExcessiveRates(t *testing.T) {
	_, err := NewFeePolicy(6_000, 5_000)
	assert.Error(t, err)

	p, err := NewFeePolicy(BasisPoints, 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), p.SellNet(100)) // 100% de fee deja net 0, nunca negativo
}

func TestBuyTotal_Overflow(t *testing.T) {
	p := DefaultFeePolicy()
	_, err := p.BuyTotal(math.MaxUint64 - 10)
	assert.ErrorIs(t, err, ErrArithmeticOverflow)
}
