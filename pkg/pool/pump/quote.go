package pump

import (
	"fmt"

	"cosmossdk.io/math"
	"github.com/shopspring/decimal"
	"poolquote/pkg"
)

// Quote is the result of a trade against a constant-product curve.
type Quote struct {
	Fee           math.Int
	NetInput      math.Int
	NewReserveIn  math.Int
	NewReserveOut math.Int
	AmountOut     math.Int
	MinAmountOut  math.Int
	// PriceImpact is netInput/reserveIn in percent, truncated to two decimals.
	PriceImpact decimal.Decimal
}

// ComputeQuote prices amountIn against (reserveIn, reserveOut) with the fee
// taken from the input before the invariant is applied. newReserveOut is
// rounded up by one unit so k never shrinks and the output is never overstated.
func ComputeQuote(reserveIn, reserveOut, amountIn math.Int, feeBps uint64, slippagePercent int) (*Quote, error) {
	if amountIn.IsNil() || !amountIn.IsPositive() {
		return nil, fmt.Errorf("%w: input amount must be greater than zero", pkg.ErrInvalidRequest)
	}
	if amountIn.GT(pkg.MaxAmount) {
		return nil, fmt.Errorf("%w: input amount %s exceeds %s", pkg.ErrInvalidRequest, amountIn, pkg.MaxAmount)
	}
	if slippagePercent < pkg.MinSlippagePercent || slippagePercent > pkg.MaxSlippagePercent {
		return nil, fmt.Errorf("%w: slippage %d is not a whole percent in [0,100]", pkg.ErrInvalidRequest, slippagePercent)
	}
	if reserveIn.IsNil() || reserveOut.IsNil() || !reserveIn.IsPositive() || !reserveOut.IsPositive() {
		return nil, fmt.Errorf("%w: reserves in=%s out=%s", pkg.ErrInsufficientLiquidity, reserveIn, reserveOut)
	}
	if reserveIn.GT(pkg.MaxAmount) || reserveOut.GT(pkg.MaxAmount) {
		return nil, fmt.Errorf("%w: reserves in=%s out=%s exceed %s", pkg.ErrInvalidRequest, reserveIn, reserveOut, pkg.MaxAmount)
	}

	fee := amountIn.Mul(math.NewIntFromUint64(feeBps)).QuoRaw(FeeDenominator)
	netInput := amountIn.Sub(fee)
	if !netInput.IsPositive() {
		return nil, fmt.Errorf("%w: fee of %d bps consumes the whole input", pkg.ErrInvalidRequest, feeBps)
	}

	k := reserveIn.Mul(reserveOut)
	newReserveIn := reserveIn.Add(netInput)
	newReserveOut := k.Quo(newReserveIn).AddRaw(1)
	amountOut := reserveOut.Sub(newReserveOut)

	ratio := netInput.MulRaw(FeeDenominator).Quo(reserveIn)
	return &Quote{
		Fee:           fee,
		NetInput:      netInput,
		NewReserveIn:  newReserveIn,
		NewReserveOut: newReserveOut,
		AmountOut:     amountOut,
		MinAmountOut:  pkg.ApplySlippage(amountOut, slippagePercent),
		PriceImpact:   decimal.NewFromBigInt(ratio.BigInt(), -2),
	}, nil
}
