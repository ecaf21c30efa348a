package events

// ArbitrageUpdate é o payload de broadcast (Redis Pub/Sub -> WS) quando
// uma arbitragem é criada ou tem as odds atualizadas
type ArbitrageUpdate struct {
	ArbitrageID string         `json:"arbitrageId"`
	Payload     ArbitrageFound `json:"payload"`
}
