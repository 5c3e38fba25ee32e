// Package meteora decodes the token pair of Meteora DLMM and DAMM v2 pools.
// Pricing for both is delegated to a vendor quoter.
package meteora

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"poolquote/pkg"
)

// Pair is the two mints and vaults of a Meteora pool.
type Pair struct {
	MintA  solana.PublicKey
	MintB  solana.PublicKey
	VaultA solana.PublicKey
	VaultB solana.PublicKey
}

// DecodeDLMM reads the token X/Y mints and reserves of an LbPair account.
func DecodeDLMM(data []byte) (*Pair, error) {
	if len(data) < DLMMMinSize {
		return nil, fmt.Errorf("%w: dlmm pair expected %d bytes, got %d", pkg.ErrMalformedAccount, DLMMMinSize, len(data))
	}
	return &Pair{
		MintA:  readKey(data, dlmmTokenXMintOffset),
		MintB:  readKey(data, dlmmTokenYMintOffset),
		VaultA: readKey(data, dlmmReserveXOffset),
		VaultB: readKey(data, dlmmReserveYOffset),
	}, nil
}

// DecodeDAMM reads the token A/B mints and vaults of a DAMM v2 pool.
func DecodeDAMM(data []byte) (*Pair, error) {
	if len(data) < DAMMMinSize {
		return nil, fmt.Errorf("%w: damm pool expected %d bytes, got %d", pkg.ErrMalformedAccount, DAMMMinSize, len(data))
	}
	return &Pair{
		MintA:  readKey(data, dammTokenAMintOffset),
		MintB:  readKey(data, dammTokenBMintOffset),
		VaultA: readKey(data, dammTokenAVaultOffset),
		VaultB: readKey(data, dammTokenBVaultOffset),
	}, nil
}

func readKey(data []byte, offset int) solana.PublicKey {
	return solana.PublicKeyFromBytes(data[offset : offset+32])
}
