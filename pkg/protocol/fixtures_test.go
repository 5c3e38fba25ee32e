package protocol

import (
	"bytes"
	"encoding/binary"
	"testing"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"
	"lukechampine.com/uint128"
	"poolquote/pkg"
	"poolquote/pkg/pool/pump"
	"poolquote/pkg/pool/raydium"
	"poolquote/pkg/pool/whirlpool"
	"poolquote/pkg/sol"
)

func newKey() solana.PublicKey {
	return solana.NewWallet().PublicKey()
}

type curveFixture struct {
	virtualToken, virtualSol, realToken, realSol, supply uint64
	complete                                             bool
	feeBps                                               *uint64
}

func (c curveFixture) bytes() []byte {
	data := make([]byte, pump.BondingCurveSize)
	for i, v := range []uint64{c.virtualToken, c.virtualSol, c.realToken, c.realSol, c.supply} {
		binary.LittleEndian.PutUint64(data[8+8*i:], v)
	}
	if c.complete {
		data[48] = 1
	}
	if c.feeBps != nil {
		data = binary.LittleEndian.AppendUint64(data, *c.feeBps)
	}
	return data
}

// scenarioCurve prices a buy of 10_000_000 lamports at 1% as 4_901_475_393 tokens.
func scenarioCurve() curveFixture {
	return curveFixture{
		virtualToken: 500_000_000_000,
		virtualSol:   1_000_000_000,
		realToken:    400_000_000_000,
		realSol:      7_000_000,
		supply:       1_000_000_000_000,
	}
}

// addCurve stores a curve owned by the pump.fun program with one token
// account of mint tokenMint.
func addCurve(conn *sol.FixtureConnection, c curveFixture, tokenMint solana.PublicKey) solana.PublicKey {
	addr := newKey()
	conn.SetAccount(addr, pump.PumpFunProgramID, c.bytes())
	if !tokenMint.IsZero() {
		conn.AddTokenAccount(pkg.TokenAccount{Address: newKey(), Mint: tokenMint, Owner: addr, Amount: c.realToken})
	}
	return addr
}

func encode(t *testing.T, v interface{}) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, bin.NewBinEncoder(&buf).Encode(v))
	return buf.Bytes()
}

func addVault(conn *sol.FixtureConnection, mint, owner solana.PublicKey, amount uint64) solana.PublicKey {
	addr := newKey()
	conn.AddTokenAccount(pkg.TokenAccount{Address: addr, Mint: mint, Owner: owner, Amount: amount})
	return addr
}

type twoTokenPool struct {
	addr         solana.PublicKey
	mintA, mintB solana.PublicKey
}

func addCPMM(t *testing.T, conn *sol.FixtureConnection, vaultA, vaultB uint64) twoTokenPool {
	p := twoTokenPool{addr: newKey(), mintA: pkg.NativeMint, mintB: newKey()}
	configAddr := newKey()
	conn.SetAccount(configAddr, raydium.RaydiumCPMMProgramID, encode(t, &raydium.CPMMConfig{TradeFeeRate: 2500}))
	state := raydium.CPMMPool{
		AmmConfig:          configAddr,
		Token0Vault:        addVault(conn, p.mintA, p.addr, vaultA),
		Token1Vault:        addVault(conn, p.mintB, p.addr, vaultB),
		Token0Mint:         p.mintA,
		Token1Mint:         p.mintB,
		ProtocolFeesToken0: 100,
		FundFeesToken1:     50,
	}
	conn.SetAccount(p.addr, raydium.RaydiumCPMMProgramID, encode(t, &state))
	return p
}

// Pools below price token B at 4 per token A.
var sqrtPriceTwo = uint128.New(0, 2)

func addCLMM(t *testing.T, conn *sol.FixtureConnection) twoTokenPool {
	p := twoTokenPool{addr: newKey(), mintA: pkg.NativeMint, mintB: newKey()}
	configAddr := newKey()
	conn.SetAccount(configAddr, raydium.RaydiumCLMMProgramID, encode(t, &raydium.CLMMConfig{TradeFeeRate: 500}))
	state := raydium.CLMMPool{
		AmmConfig:    configAddr,
		TokenMint0:   p.mintA,
		TokenMint1:   p.mintB,
		TokenVault0:  addVault(conn, p.mintA, p.addr, 5_000_000),
		TokenVault1:  addVault(conn, p.mintB, p.addr, 20_000_000),
		Liquidity:    uint128.From64(10_000_000),
		SqrtPriceX64: sqrtPriceTwo,
	}
	conn.SetAccount(p.addr, raydium.RaydiumCLMMProgramID, encode(t, &state))
	return p
}

func addWhirlpool(t *testing.T, conn *sol.FixtureConnection) twoTokenPool {
	p := twoTokenPool{addr: newKey(), mintA: pkg.NativeMint, mintB: newKey()}
	state := whirlpool.WhirlpoolPool{
		FeeRate:     whirlpool.FEE_RATE_0_30,
		Liquidity:   uint128.From64(10_000_000),
		SqrtPrice:   sqrtPriceTwo,
		TokenMintA:  p.mintA,
		TokenVaultA: addVault(conn, p.mintA, p.addr, 3_000_000),
		TokenMintB:  p.mintB,
		TokenVaultB: addVault(conn, p.mintB, p.addr, 12_000_000),
	}
	conn.SetAccount(p.addr, whirlpool.WhirlpoolProgramID, encode(t, &state))
	return p
}
