package meteora

import "github.com/gagliardetto/solana-go"

const (
	METEORA_DLMM_PROGRAM_ID = "LBUZKhRxPF3XUpBCjp4YzTKgLccjZhTSDM9YuVaPwxo"
	METEORA_DAMM_PROGRAM_ID = "cpamdpZCGKUy5JxQXB4dcpGPiikHawvSWAd6mEn1sGG"
)

var (
	MeteoraDLMMProgramID = solana.MustPublicKeyFromBase58(METEORA_DLMM_PROGRAM_ID)
	MeteoraDAMMProgramID = solana.MustPublicKeyFromBase58(METEORA_DAMM_PROGRAM_ID)
)

// LbPair offsets. Static and variable parameters occupy 64 bytes after the
// discriminator, followed by 16 bytes of seeds, ids and flags.
const (
	dlmmTokenXMintOffset = 88
	dlmmTokenYMintOffset = 120
	dlmmReserveXOffset   = 152
	dlmmReserveYOffset   = 184
	DLMMMinSize          = 216
)

// DAMM v2 pool offsets. Pool fees occupy 160 bytes after the discriminator.
const (
	dammTokenAMintOffset  = 168
	dammTokenBMintOffset  = 200
	dammTokenAVaultOffset = 232
	dammTokenBVaultOffset = 264
	DAMMMinSize           = 296
)
