package spot

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
	"poolquote/pkg"
)

func TestAmountOutAtUnitPrice(t *testing.T) {
	one := uint128.From64(1).Lsh(64)
	amount := math.NewInt(1_000_000)

	out, err := AmountOut(one, amount, true)
	require.NoError(t, err)
	assert.True(t, out.Equal(amount))

	out, err = AmountOut(one, amount, false)
	require.NoError(t, err)
	assert.True(t, out.Equal(amount))
}

func TestAmountOutAtPriceFour(t *testing.T) {
	// sqrt price 2.0 in Q64.64 means 1 A = 4 B.
	two := uint128.From64(2).Lsh(64)

	out, err := AmountOut(two, math.NewInt(1000), true)
	require.NoError(t, err)
	assert.Equal(t, "4000", out.String())

	out, err = AmountOut(two, math.NewInt(1000), false)
	require.NoError(t, err)
	assert.Equal(t, "250", out.String())
}

func TestAmountOutZeroPrice(t *testing.T) {
	_, err := AmountOut(uint128.Zero, math.NewInt(10), true)
	assert.ErrorIs(t, err, pkg.ErrInsufficientLiquidity)
}
