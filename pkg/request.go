package pkg

import (
	"fmt"
	"strconv"

	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
)

const (
	MinSlippagePercent = 0
	MaxSlippagePercent = 100
)

// MaxAmount bounds request amounts and override reserves. On-chain token
// amounts are u64, and the quote math needs headroom below math.Int's 256 bits.
var MaxAmount = math.NewIntFromUint64(^uint64(0))

// Validate checks the request before any account is read.
func (r QuoteRequest) Validate() error {
	if r.InputAmount.IsNil() || !r.InputAmount.IsPositive() {
		return fmt.Errorf("%w: input amount must be greater than zero", ErrInvalidRequest)
	}
	if r.InputAmount.GT(MaxAmount) {
		return fmt.Errorf("%w: input amount %s exceeds %s", ErrInvalidRequest, r.InputAmount, MaxAmount)
	}
	if r.SlippagePercent < MinSlippagePercent || r.SlippagePercent > MaxSlippagePercent {
		return fmt.Errorf("%w: slippage must be a whole percent between %d and %d, got %d",
			ErrInvalidRequest, MinSlippagePercent, MaxSlippagePercent, r.SlippagePercent)
	}
	if o := r.OverrideReserves; o != nil {
		if o.A.IsNil() || o.B.IsNil() || o.A.IsNegative() || o.B.IsNegative() {
			return fmt.Errorf("%w: override reserves must be non-negative", ErrInvalidRequest)
		}
		if o.A.GT(MaxAmount) || o.B.GT(MaxAmount) {
			return fmt.Errorf("%w: override reserves exceed %s", ErrInvalidRequest, MaxAmount)
		}
	}
	return nil
}

// ApplySlippage returns floor(amount * (100 - pct) / 100).
// pct is a whole percent; fractional tolerances are not representable.
func ApplySlippage(amount math.Int, pct int) math.Int {
	return amount.MulRaw(int64(100 - pct)).QuoRaw(100)
}

// CeilFee returns ceil(amount * rate / denominator).
func CeilFee(amount math.Int, rate uint64, denominator int64) math.Int {
	num := amount.Mul(math.NewIntFromUint64(rate))
	fee := num.QuoRaw(denominator)
	if !num.Sub(fee.MulRaw(denominator)).IsZero() {
		fee = fee.AddRaw(1)
	}
	return fee
}

// MatchMints reports whether input is mintA (a-to-b) or mintB (b-to-a).
func MatchMints(input, mintA, mintB solana.PublicKey) (aToB bool, err error) {
	switch {
	case input.Equals(mintA):
		return true, nil
	case input.Equals(mintB):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %s is neither %s nor %s", ErrInputMintMismatch, input, mintA, mintB)
	}
}

// ParseQuoteRequest builds a validated request from text inputs as they come
// from a command line or query string. Override reserves apply only when both
// are given and at least one is non-zero.
func ParseQuoteRequest(pool, inputMint, amount, slippage, reserveA, reserveB string) (QuoteRequest, error) {
	var req QuoteRequest
	poolKey, err := solana.PublicKeyFromBase58(pool)
	if err != nil {
		return req, fmt.Errorf("%w: pool address %q: %v", ErrInvalidRequest, pool, err)
	}
	mint, err := solana.PublicKeyFromBase58(inputMint)
	if err != nil {
		return req, fmt.Errorf("%w: input mint %q: %v", ErrInvalidRequest, inputMint, err)
	}
	amountIn, ok := math.NewIntFromString(amount)
	if !ok {
		return req, fmt.Errorf("%w: amount %q is not an integer", ErrInvalidRequest, amount)
	}
	pct, err := strconv.Atoi(slippage)
	if err != nil {
		return req, fmt.Errorf("%w: slippage %q must be a whole percent", ErrInvalidRequest, slippage)
	}

	req = QuoteRequest{
		PoolAddress:     poolKey,
		InputMint:       mint,
		InputAmount:     amountIn,
		SlippagePercent: pct,
	}
	if reserveA == "" || reserveB == "" {
		return req, req.Validate()
	}
	ra, okA := math.NewIntFromString(reserveA)
	rb, okB := math.NewIntFromString(reserveB)
	if !okA || !okB {
		return req, fmt.Errorf("%w: override reserves %q/%q are not integers", ErrInvalidRequest, reserveA, reserveB)
	}
	if !ra.IsZero() || !rb.IsZero() {
		req.OverrideReserves = &Reserves{A: ra, B: rb}
	}
	return req, req.Validate()
}
