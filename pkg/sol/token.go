package sol

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"poolquote/pkg"
)

// TokenAccountSize covers mint, owner and amount of an SPL token account.
const TokenAccountSize = 72

func DecodeTokenAccount(addr solana.PublicKey, data []byte) (pkg.TokenAccount, error) {
	if len(data) < TokenAccountSize {
		return pkg.TokenAccount{}, fmt.Errorf("%w: token account %s has %d bytes", pkg.ErrMalformedAccount, addr, len(data))
	}
	return pkg.TokenAccount{
		Address: addr,
		Mint:    solana.PublicKeyFromBytes(data[0:32]),
		Owner:   solana.PublicKeyFromBytes(data[32:64]),
		Amount:  binary.LittleEndian.Uint64(data[64:72]),
	}, nil
}

// TokenBalances reads the amount held by each vault in one batch call.
func TokenBalances(ctx context.Context, conn pkg.Connection, vaults ...solana.PublicKey) ([]uint64, error) {
	accounts, err := conn.GetMultipleAccounts(ctx, vaults)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vault balances: %w", err)
	}
	balances := make([]uint64, len(vaults))
	for i, acc := range accounts {
		if acc == nil {
			return nil, fmt.Errorf("%w: vault account %s not found", pkg.ErrInsufficientLiquidity, vaults[i])
		}
		ta, err := DecodeTokenAccount(vaults[i], acc.Data)
		if err != nil {
			return nil, err
		}
		balances[i] = ta.Amount
	}
	return balances, nil
}
