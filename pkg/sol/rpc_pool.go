package sol

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/gagliardetto/solana-go"
	"poolquote/pkg"
)

// RPCPool spreads reads across several endpoints in round-robin order.
// Each call picks one client; a failure is returned, not retried elsewhere.
type RPCPool struct {
	clients []*Client
	index   uint64
}

// NewRPCPool creates a client per endpoint.
func NewRPCPool(ctx context.Context, endpoints []string, reqLimitPerSecond int) (*RPCPool, error) {
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("rpc pool needs at least one endpoint")
	}

	pool := &RPCPool{clients: make([]*Client, 0, len(endpoints))}
	for _, endpoint := range endpoints {
		client, err := NewClient(ctx, endpoint, reqLimitPerSecond)
		if err != nil {
			return nil, err
		}
		pool.clients = append(pool.clients, client)
	}
	return pool, nil
}

// GetClient returns the next client in round-robin fashion
func (p *RPCPool) GetClient() *Client {
	if len(p.clients) == 1 {
		return p.clients[0]
	}
	idx := atomic.AddUint64(&p.index, 1) % uint64(len(p.clients))
	return p.clients[idx]
}

// Size returns the number of clients in the pool
func (p *RPCPool) Size() int {
	return len(p.clients)
}

func (p *RPCPool) GetAccount(ctx context.Context, addr solana.PublicKey) (*pkg.Account, error) {
	return p.GetClient().GetAccount(ctx, addr)
}

func (p *RPCPool) GetMultipleAccounts(ctx context.Context, addrs []solana.PublicKey) ([]*pkg.Account, error) {
	return p.GetClient().GetMultipleAccounts(ctx, addrs)
}

func (p *RPCPool) TokenAccountsByOwner(ctx context.Context, owner solana.PublicKey) ([]pkg.TokenAccount, error) {
	return p.GetClient().TokenAccountsByOwner(ctx, owner)
}

// Dial returns a single Client for one endpoint and an RPCPool for several.
func Dial(ctx context.Context, endpoints []string, reqLimitPerSecond int) (pkg.Connection, error) {
	if len(endpoints) == 1 {
		client, err := NewClient(ctx, endpoints[0], reqLimitPerSecond)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	pool, err := NewRPCPool(ctx, endpoints, reqLimitPerSecond)
	if err != nil {
		return nil, err
	}
	return pool, nil
}
