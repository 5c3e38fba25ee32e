package whirlpool

import (
	"fmt"

	"cosmossdk.io/math"
	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"
	"poolquote/pkg"
	"poolquote/pkg/pool/spot"
)

// WhirlpoolPool represents the head of an Orca Whirlpool CLMM account.
type WhirlpoolPool struct {
	// Account discriminator (8 bytes)
	Discriminator [8]uint8

	// Whirlpool config
	WhirlpoolsConfig solana.PublicKey // 32
	WhirlpoolBump    [1]uint8         // 1
	TickSpacing      uint16           // 2
	FeeTierIndexSeed [2]uint8         // 2

	// Price and liquidity
	FeeRate          uint16          // 2
	ProtocolFeeRate  uint16          // 2
	Liquidity        uint128.Uint128 // 16
	SqrtPrice        uint128.Uint128 // 16
	TickCurrentIndex int32           // 4
	ProtocolFeeOwedA uint64          // 8
	ProtocolFeeOwedB uint64          // 8

	// Token info
	TokenMintA       solana.PublicKey // 32
	TokenVaultA      solana.PublicKey // 32
	FeeGrowthGlobalA uint128.Uint128  // 16
	TokenMintB       solana.PublicKey // 32
	TokenVaultB      solana.PublicKey // 32
	FeeGrowthGlobalB uint128.Uint128  // 16
}

// Decode reads the account head at the offsets of the on-chain layout:
// https://github.com/orca-so/whirlpools/blob/main/programs/whirlpool/src/state/whirlpool.rs
func (pool *WhirlpoolPool) Decode(data []byte) error {
	if len(data) < WhirlpoolSize {
		return fmt.Errorf("%w: whirlpool expected %d bytes, got %d", pkg.ErrMalformedAccount, WhirlpoolSize, len(data))
	}
	if err := bin.NewBinDecoder(data[:WhirlpoolSize]).Decode(pool); err != nil {
		return fmt.Errorf("%w: whirlpool: %v", pkg.ErrMalformedAccount, err)
	}
	if uint64(pool.FeeRate) >= FeeRateDenominator {
		return fmt.Errorf("%w: fee rate %d is invalid", pkg.ErrMalformedAccount, pool.FeeRate)
	}
	return nil
}

// GetTokens returns the A and B mints.
func (pool *WhirlpoolPool) GetTokens() (solana.PublicKey, solana.PublicKey) {
	return pool.TokenMintA, pool.TokenMintB
}

// GetVaults returns the A and B token vaults.
func (pool *WhirlpoolPool) GetVaults() (solana.PublicKey, solana.PublicKey) {
	return pool.TokenVaultA, pool.TokenVaultB
}

// SpotQuote is a swap priced at the current sqrt price.
type SpotQuote struct {
	Fee       math.Int
	AmountOut math.Int
}

// Quote prices amount at the current sqrt price after the pool fee.
// Simplified CLMM quote: uses current pool liquidity without tick array
// traversal, a good approximation for swaps that don't cross many ticks.
func (pool *WhirlpoolPool) Quote(amount math.Int, aToB bool) (*SpotQuote, error) {
	if pool.Liquidity.IsZero() {
		return nil, fmt.Errorf("%w: whirlpool has zero liquidity", pkg.ErrInsufficientLiquidity)
	}
	fee := pkg.CeilFee(amount, uint64(pool.FeeRate), FeeRateDenominator)
	net := amount.Sub(fee)
	if !net.IsPositive() {
		return nil, fmt.Errorf("%w: amount becomes zero after fee", pkg.ErrInvalidRequest)
	}
	out, err := spot.AmountOut(pool.SqrtPrice, net, aToB)
	if err != nil {
		return nil, err
	}
	return &SpotQuote{Fee: fee, AmountOut: out}, nil
}
