package topics

const (
	// Arbitragens
	ArbitrageFound = "arbitrage_found"

	// Bets
	BetPlaced = "bet_placed"

	// DLQs
	ArbitrageFoundDLQ = "arbitrage_found_dlq"
	BetPlacedDLQ      = "bet_placed_dlq"
)
