package raydium

import "github.com/gagliardetto/solana-go"

const (
	RAYDIUM_CPMM_PROGRAM_ID = "CPMMoo8L3F4NbTegBCKVNunggL7H1ZpdTHKxQB5qKP1C"
	RAYDIUM_CLMM_PROGRAM_ID = "CAMMCzo5YL8w4VFF8KVHrK22GGUsp5VTaW7grrKgrWqK"
)

var (
	RaydiumCPMMProgramID = solana.MustPublicKeyFromBase58(RAYDIUM_CPMM_PROGRAM_ID)
	RaydiumCLMMProgramID = solana.MustPublicKeyFromBase58(RAYDIUM_CLMM_PROGRAM_ID)
)

// Fee rates on both programs are expressed per million.
const FeeRateDenominator = 1_000_000

// Decoded prefix sizes; trailing padding is never read.
const (
	CPMMPoolStateSize  = 389
	CPMMAmmConfigSize  = 44
	CLMMPoolStateSize  = 273
	CLMMAmmConfigSize  = 51
	cpmmStatusSwapFlag = 1 << 2
)
