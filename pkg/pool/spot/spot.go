// Package spot prices a swap at a concentrated-liquidity pool's current
// sqrt price. It ignores tick crossings, so it is a good approximation only
// for swaps small relative to the active liquidity.
package spot

import (
	"fmt"
	"math/big"

	"cosmossdk.io/math"
	"lukechampine.com/uint128"
	"poolquote/pkg"
)

// q128 is 2^128, the scale of a squared Q64.64 sqrt price.
var q128 = new(big.Int).Lsh(big.NewInt(1), 128)

// AmountOut converts amountIn (already net of fee) at sqrtPriceX64.
// Token A to B multiplies by price; B to A divides by it.
func AmountOut(sqrtPriceX64 uint128.Uint128, amountIn math.Int, aToB bool) (math.Int, error) {
	if sqrtPriceX64.IsZero() {
		return math.ZeroInt(), fmt.Errorf("%w: sqrt price is zero", pkg.ErrInsufficientLiquidity)
	}
	sqrtPrice := sqrtPriceX64.Big()
	priceX128 := new(big.Int).Mul(sqrtPrice, sqrtPrice)

	out := new(big.Int)
	if aToB {
		out.Mul(amountIn.BigInt(), priceX128)
		out.Quo(out, q128)
	} else {
		out.Mul(amountIn.BigInt(), q128)
		out.Quo(out, priceX128)
	}
	return math.NewIntFromBigInt(out), nil
}
