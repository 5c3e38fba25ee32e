package raydium

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"
	"poolquote/pkg"
)

// CLMMPool is the head of a Raydium concentrated liquidity pool state.
type CLMMPool struct {
	Discriminator  [8]uint8
	Bump           [1]uint8
	AmmConfig      solana.PublicKey
	Owner          solana.PublicKey
	TokenMint0     solana.PublicKey
	TokenMint1     solana.PublicKey
	TokenVault0    solana.PublicKey
	TokenVault1    solana.PublicKey
	ObservationKey solana.PublicKey
	MintDecimals0  uint8
	MintDecimals1  uint8
	TickSpacing    uint16
	Liquidity      uint128.Uint128
	SqrtPriceX64   uint128.Uint128
	TickCurrent    int32
}

func (p *CLMMPool) Decode(data []byte) error {
	if len(data) < CLMMPoolStateSize {
		return fmt.Errorf("%w: clmm pool expected %d bytes, got %d", pkg.ErrMalformedAccount, CLMMPoolStateSize, len(data))
	}
	if err := bin.NewBinDecoder(data[:CLMMPoolStateSize]).Decode(p); err != nil {
		return fmt.Errorf("%w: clmm pool: %v", pkg.ErrMalformedAccount, err)
	}
	return nil
}

// CLMMConfig is the head of a CLMM AMM config account.
type CLMMConfig struct {
	Discriminator   [8]uint8
	Bump            uint8
	Index           uint16
	Owner           solana.PublicKey
	ProtocolFeeRate uint32
	TradeFeeRate    uint32
}

func (c *CLMMConfig) Decode(data []byte) error {
	if len(data) < CLMMAmmConfigSize {
		return fmt.Errorf("%w: clmm config expected %d bytes, got %d", pkg.ErrMalformedAccount, CLMMAmmConfigSize, len(data))
	}
	if err := bin.NewBinDecoder(data[:CLMMAmmConfigSize]).Decode(c); err != nil {
		return fmt.Errorf("%w: clmm config: %v", pkg.ErrMalformedAccount, err)
	}
	if c.TradeFeeRate >= FeeRateDenominator {
		return fmt.Errorf("%w: trade fee rate %d is invalid", pkg.ErrMalformedAccount, c.TradeFeeRate)
	}
	return nil
}
