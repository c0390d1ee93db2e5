package domain

const (
	// Blockchain constants
	ETHEREUM_ZERO_ADDRESS = "0x0000000000000000000000000000000000000000"

	// NATIVE_IDENTIFIER is the identifier carried by native currency items
	NATIVE_IDENTIFIER = "0"

	// SINGLE_UNIT is the quantity of a unique NFT item
	SINGLE_UNIT = "1"

	// DEFAULT_ALIAS_INITIAL_COUNTER is the first token id assigned for an aliased mint contract
	DEFAULT_ALIAS_INITIAL_COUNTER = 1

	// MAX_MINT_QUANTITY bounds the units of one mint log, above the block gas limit of any EVM chain
	MAX_MINT_QUANTITY = 100_000
)
