package sol

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"poolquote/pkg"
)

// FixtureConnection serves account snapshots from memory. It backs offline
// simulation from a JSON file and stands in for RPC in tests.
type FixtureConnection struct {
	mu            sync.RWMutex
	accounts      map[solana.PublicKey]*pkg.Account
	tokenAccounts map[solana.PublicKey][]pkg.TokenAccount
	reads         atomic.Int64
}

func NewFixtureConnection() *FixtureConnection {
	return &FixtureConnection{
		accounts:      make(map[solana.PublicKey]*pkg.Account),
		tokenAccounts: make(map[solana.PublicKey][]pkg.TokenAccount),
	}
}

// SetAccount stores a copy of data under addr.
func (f *FixtureConnection) SetAccount(addr, owner solana.PublicKey, data []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[addr] = &pkg.Account{Address: addr, Owner: owner, Data: append([]byte(nil), data...)}
}

// AddTokenAccount registers ta under its owner and as a readable SPL token account.
func (f *FixtureConnection) AddTokenAccount(ta pkg.TokenAccount) {
	data := make([]byte, 165)
	copy(data[0:32], ta.Mint[:])
	copy(data[32:64], ta.Owner[:])
	binary.LittleEndian.PutUint64(data[64:72], ta.Amount)
	f.SetAccount(ta.Address, solana.TokenProgramID, data)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokenAccounts[ta.Owner] = append(f.tokenAccounts[ta.Owner], ta)
}

// Reads reports how many account reads were served.
func (f *FixtureConnection) Reads() int64 {
	return f.reads.Load()
}

func (f *FixtureConnection) lookup(addr solana.PublicKey) *pkg.Account {
	f.mu.RLock()
	defer f.mu.RUnlock()
	acc, ok := f.accounts[addr]
	if !ok {
		return nil
	}
	return &pkg.Account{Address: acc.Address, Owner: acc.Owner, Data: append([]byte(nil), acc.Data...)}
}

func (f *FixtureConnection) GetAccount(ctx context.Context, addr solana.PublicKey) (*pkg.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.reads.Add(1)
	acc := f.lookup(addr)
	if acc == nil {
		return nil, fmt.Errorf("%w: %s", pkg.ErrAccountNotFound, addr)
	}
	return acc, nil
}

func (f *FixtureConnection) GetMultipleAccounts(ctx context.Context, addrs []solana.PublicKey) ([]*pkg.Account, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.reads.Add(1)
	out := make([]*pkg.Account, len(addrs))
	for i, addr := range addrs {
		out[i] = f.lookup(addr)
	}
	return out, nil
}

func (f *FixtureConnection) TokenAccountsByOwner(ctx context.Context, owner solana.PublicKey) ([]pkg.TokenAccount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.reads.Add(1)
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]pkg.TokenAccount(nil), f.tokenAccounts[owner]...), nil
}

// FixtureAccount is one account in a fixture file. Encoding is base64
// (default) or base58.
type FixtureAccount struct {
	Owner    string `json:"owner"`
	Data     string `json:"data"`
	Encoding string `json:"encoding,omitempty"`
}

type FixtureTokenAccount struct {
	Address string `json:"address"`
	Mint    string `json:"mint"`
	Owner   string `json:"owner"`
	Amount  uint64 `json:"amount"`
}

type FixtureFile struct {
	Accounts      map[string]FixtureAccount `json:"accounts"`
	TokenAccounts []FixtureTokenAccount     `json:"tokenAccounts,omitempty"`
}

// LoadFixtures reads a FixtureFile from path.
func LoadFixtures(path string) (*FixtureConnection, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures: %w", err)
	}
	var file FixtureFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}
	return NewFixtureConnectionFromFile(file)
}

func NewFixtureConnectionFromFile(file FixtureFile) (*FixtureConnection, error) {
	conn := NewFixtureConnection()
	for addrStr, acc := range file.Accounts {
		addr, err := solana.PublicKeyFromBase58(addrStr)
		if err != nil {
			return nil, fmt.Errorf("fixture account %q: %w", addrStr, err)
		}
		owner, err := solana.PublicKeyFromBase58(acc.Owner)
		if err != nil {
			return nil, fmt.Errorf("fixture account %q owner: %w", addrStr, err)
		}
		data, err := decodeFixtureData(acc.Data, acc.Encoding)
		if err != nil {
			return nil, fmt.Errorf("fixture account %q data: %w", addrStr, err)
		}
		conn.SetAccount(addr, owner, data)
	}
	for _, ta := range file.TokenAccounts {
		var (
			parsed pkg.TokenAccount
			err    error
		)
		if parsed.Address, err = solana.PublicKeyFromBase58(ta.Address); err != nil {
			return nil, fmt.Errorf("fixture token account address: %w", err)
		}
		if parsed.Mint, err = solana.PublicKeyFromBase58(ta.Mint); err != nil {
			return nil, fmt.Errorf("fixture token account %s mint: %w", ta.Address, err)
		}
		if parsed.Owner, err = solana.PublicKeyFromBase58(ta.Owner); err != nil {
			return nil, fmt.Errorf("fixture token account %s owner: %w", ta.Address, err)
		}
		parsed.Amount = ta.Amount
		conn.AddTokenAccount(parsed)
	}
	return conn, nil
}

func decodeFixtureData(data, encoding string) ([]byte, error) {
	switch encoding {
	case "", "base64":
		return base64.StdEncoding.DecodeString(data)
	case "base58":
		return base58.Decode(data)
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
}
