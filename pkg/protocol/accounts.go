package protocol

import (
	"context"
	"errors"
	"fmt"

	"cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
	"poolquote/pkg"
	"poolquote/pkg/sol"
)

// fetchPool reads the pool account, mapping an empty address to ErrPoolNotFound.
func fetchPool(ctx context.Context, conn pkg.Connection, addr solana.PublicKey) (*pkg.Account, error) {
	acc, err := conn.GetAccount(ctx, addr)
	if errors.Is(err, pkg.ErrAccountNotFound) {
		return nil, fmt.Errorf("%w: %s", pkg.ErrPoolNotFound, addr)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pool %s: %w", addr, err)
	}
	return acc, nil
}

// fetchOwnedPool reads the pool account and checks that p owns it, so a
// strategy called directly never decodes another program's account.
func fetchOwnedPool(ctx context.Context, conn pkg.Connection, addr solana.PublicKey, p pkg.Protocol) (*pkg.Account, error) {
	acc, err := fetchPool(ctx, conn, addr)
	if err != nil {
		return nil, err
	}
	for _, id := range p.ProgramIDs() {
		if acc.Owner.Equals(id) {
			return acc, nil
		}
	}
	return nil, fmt.Errorf("%w: pool %s is owned by %s, not %s", pkg.ErrUnknownProtocol, addr, acc.Owner, p.ProtocolName())
}

// fetchConfigAndVaults reads a config account and two vaults in one batch.
// Vault reads are skipped when skipVaults is set.
func fetchConfigAndVaults(ctx context.Context, conn pkg.Connection, config, vaultA, vaultB solana.PublicKey, skipVaults bool) (*pkg.Account, pkg.Reserves, error) {
	addrs := []solana.PublicKey{config}
	if !skipVaults {
		addrs = append(addrs, vaultA, vaultB)
	}
	accounts, err := conn.GetMultipleAccounts(ctx, addrs)
	if err != nil {
		return nil, pkg.Reserves{}, fmt.Errorf("failed to fetch pool accounts: %w", err)
	}
	if len(accounts) != len(addrs) || accounts[0] == nil {
		return nil, pkg.Reserves{}, fmt.Errorf("%w: config account %s not found", pkg.ErrMalformedAccount, config)
	}
	if skipVaults {
		return accounts[0], pkg.Reserves{}, nil
	}

	balances := make([]uint64, 2)
	for i, acc := range accounts[1:] {
		if acc == nil {
			return nil, pkg.Reserves{}, fmt.Errorf("%w: vault account %s not found", pkg.ErrInsufficientLiquidity, addrs[i+1])
		}
		ta, err := sol.DecodeTokenAccount(addrs[i+1], acc.Data)
		if err != nil {
			return nil, pkg.Reserves{}, err
		}
		balances[i] = ta.Amount
	}
	return accounts[0], pkg.NewReserves(balances[0], balances[1]), nil
}

// vaultReserves reads two vault balances as a reserve pair.
func vaultReserves(ctx context.Context, conn pkg.Connection, vaultA, vaultB solana.PublicKey) (pkg.Reserves, error) {
	balances, err := sol.TokenBalances(ctx, conn, vaultA, vaultB)
	if err != nil {
		return pkg.Reserves{}, err
	}
	return pkg.NewReserves(balances[0], balances[1]), nil
}

// orient returns (reserveIn, reserveOut) for a two-token pool.
func orient(r pkg.Reserves, aToB bool) (reserveIn, reserveOut math.Int) {
	if aToB {
		return r.A, r.B
	}
	return r.B, r.A
}

func otherMint(aToB bool, mintA, mintB solana.PublicKey) solana.PublicKey {
	if aToB {
		return mintB
	}
	return mintA
}

// snapshotConn serves the dispatch read of the pool account to the selected
// strategy so a quote reads the pool once. It lives for one request only.
type snapshotConn struct {
	pkg.Connection
	pool *pkg.Account
}

func (c *snapshotConn) GetAccount(ctx context.Context, addr solana.PublicKey) (*pkg.Account, error) {
	if addr.Equals(c.pool.Address) {
		data := make([]byte, len(c.pool.Data))
		copy(data, c.pool.Data)
		return &pkg.Account{Address: c.pool.Address, Owner: c.pool.Owner, Data: data}, nil
	}
	return c.Connection.GetAccount(ctx, addr)
}

func errZeroLiquidity(pool solana.PublicKey) error {
	return fmt.Errorf("%w: pool %s has zero active liquidity", pkg.ErrInsufficientLiquidity, pool)
}

func errFeeConsumesInput() error {
	return fmt.Errorf("%w: amount becomes zero after fee", pkg.ErrInvalidRequest)
}
