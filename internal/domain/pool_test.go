package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiquidityPool_DepositWithdraw(t *testing.T) {
	p := NewLiquidityPool()
	require.NoError(t, p.Deposit(100))
	require.NoError(t, p.Withdraw(40))
	assert.Equal(t, uint64(60), p.Balance())
}

func TestLiquidityPool_InsufficientLiquidity(t *testing.T) {
	p := NewLiquidityPool()
	require.NoError(t, p.Deposit(10))

	err := p.Withdraw(11)
	assert.ErrorIs(t, err, ErrInsufficientLiquidity)
	assert.Equal(t, uint64(10), p.Balance(), "el balance no se toca")
}

func TestLiquidityPool_DepositOverflow(t *testing.T) {
	p := NewLiquidityPool()
	require.NoError(t, p.Deposit(math.MaxUint64))
	err := p.Deposit(1)
	assert.ErrorIs(t, err, ErrArithmeticOverflow)
}

func TestFeeAccumulator_AccrueDrain(t *testing.T) {
	a := NewFeeAccumulator()
	require.NoError(t, a.Accrue(30))
	require.NoError(t, a.Accrue(12))
	assert.Equal(t, uint64(42), a.Balance())

	assert.Equal(t, uint64(42), a.Drain())
	assert.Equal(t, uint64(0), a.Balance())
	assert.Equal(t, uint64(0), a.Drain(), "drain repetido devuelve 0")
}

func TestAdminCap_Matches(t *testing.T) {
	a := NewAdminCap()
	b := NewAdminCap()
	assert.True(t, a.Matches(a))
	assert.False(t, a.Matches(b), "cada cap emitida es única")
	assert.False(t, a.Matches(AdminCap{}), "la cap vacía no autoriza nada")
}
