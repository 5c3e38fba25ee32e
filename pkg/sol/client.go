package sol

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"golang.org/x/time/rate"
	"poolquote/pkg"
)

// Client is a rate-limited Solana RPC client that reads account snapshots.
// It never caches and never retries: every call goes to the node.
type Client struct {
	endpoint   string
	rpc        *rpc.Client
	limiter    *rate.Limiter
	commitment rpc.CommitmentType
}

// NewClient creates a client for endpoint allowing reqLimitPerSecond calls.
// A non-positive limit disables limiting.
func NewClient(ctx context.Context, endpoint string, reqLimitPerSecond int) (*Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("rpc endpoint is required")
	}
	limit := rate.Inf
	burst := 1
	if reqLimitPerSecond > 0 {
		limit = rate.Limit(reqLimitPerSecond)
		burst = reqLimitPerSecond
	}
	return &Client{
		endpoint:   endpoint,
		rpc:        rpc.New(endpoint),
		limiter:    rate.NewLimiter(limit, burst),
		commitment: rpc.CommitmentConfirmed,
	}, nil
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

func (c *Client) wait(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

func (c *Client) GetAccount(ctx context.Context, addr solana.PublicKey) (*pkg.Account, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	res, err := c.rpc.GetAccountInfoWithOpts(ctx, addr, &rpc.GetAccountInfoOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: c.commitment,
	})
	if errors.Is(err, rpc.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", pkg.ErrAccountNotFound, addr)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", addr, err)
	}
	if res == nil || res.Value == nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrAccountNotFound, addr)
	}
	return &pkg.Account{
		Address: addr,
		Owner:   res.Value.Owner,
		Data:    res.Value.Data.GetBinary(),
	}, nil
}

func (c *Client) GetMultipleAccounts(ctx context.Context, addrs []solana.PublicKey) ([]*pkg.Account, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	res, err := c.rpc.GetMultipleAccountsWithOpts(ctx, addrs, &rpc.GetMultipleAccountsOpts{
		Encoding:   solana.EncodingBase64,
		Commitment: c.commitment,
	})
	if err != nil {
		return nil, fmt.Errorf("batch request failed: %w", err)
	}
	if len(res.Value) != len(addrs) {
		return nil, fmt.Errorf("batch request returned %d accounts for %d addresses", len(res.Value), len(addrs))
	}

	out := make([]*pkg.Account, len(addrs))
	for i, v := range res.Value {
		if v == nil {
			continue
		}
		out[i] = &pkg.Account{
			Address: addrs[i],
			Owner:   v.Owner,
			Data:    v.Data.GetBinary(),
		}
	}
	return out, nil
}

func (c *Client) TokenAccountsByOwner(ctx context.Context, owner solana.PublicKey) ([]pkg.TokenAccount, error) {
	if err := c.wait(ctx); err != nil {
		return nil, err
	}
	programID := solana.TokenProgramID
	res, err := c.rpc.GetTokenAccountsByOwner(ctx, owner,
		&rpc.GetTokenAccountsConfig{ProgramId: &programID},
		&rpc.GetTokenAccountsOpts{Encoding: solana.EncodingBase64, Commitment: c.commitment},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get token accounts of %s: %w", owner, err)
	}

	out := make([]pkg.TokenAccount, 0, len(res.Value))
	for _, v := range res.Value {
		if v == nil {
			continue
		}
		ta, err := DecodeTokenAccount(v.Pubkey, v.Account.Data.GetBinary())
		if err != nil {
			return nil, err
		}
		out = append(out, ta)
	}
	return out, nil
}
