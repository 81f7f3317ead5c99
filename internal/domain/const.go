package domain

const (
	// Blockchain constants
	ETHEREUM_ZERO_ADDRESS = "0x0000000000000000000000000000000000000000"

	// SOLANA_MINT_ADDRESS_LENGTH is the decoded byte length of a Solana mint address
	SOLANA_MINT_ADDRESS_LENGTH = 32
)
