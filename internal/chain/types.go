package chain

import "encoding/json"

// Wire shapes for the Sui JSON-RPC object and transaction APIs. Only fields
// the bot reads are declared; nodes send more and the decoder ignores it.

type objectResponse struct {
	Data  *objectData  `json:"data"`
	Error *objectError `json:"error"`
}

type objectData struct {
	ObjectID string         `json:"objectId"`
	Type     string         `json:"type"`
	Content  *objectContent `json:"content"`
}

type objectError struct {
	Code     string `json:"code"`
	ObjectID string `json:"object_id"`
}

type objectContent struct {
	DataType string          `json:"dataType"`
	Type     string          `json:"type"`
	Fields   json.RawMessage `json:"fields"`
}

type ownedObjectsPage struct {
	Data        []objectResponse `json:"data"`
	NextCursor  *string          `json:"nextCursor"`
	HasNextPage bool             `json:"hasNextPage"`
}

// i32Wrapper is the Move i32 envelope: a two's-complement u32 in "bits".
type i32Wrapper struct {
	Fields struct {
		Bits uint32 `json:"bits"`
	} `json:"fields"`
}

// typeNameWrapper is the Move std::type_name::TypeName envelope.
type typeNameWrapper struct {
	Fields struct {
		Name string `json:"name"`
	} `json:"fields"`
}

type positionFields struct {
	Pool           string          `json:"pool"`
	Liquidity      string          `json:"liquidity"`
	TickLowerIndex i32Wrapper      `json:"tick_lower_index"`
	TickUpperIndex i32Wrapper      `json:"tick_upper_index"`
	CoinTypeA      typeNameWrapper `json:"coin_type_a"`
	CoinTypeB      typeNameWrapper `json:"coin_type_b"`
}

type poolFields struct {
	CurrentSqrtPrice string     `json:"current_sqrt_price"`
	CurrentTickIndex i32Wrapper `json:"current_tick_index"`
	TickSpacing      uint32     `json:"tick_spacing"`
	IsPause          bool       `json:"is_pause"`
}

type transactionBytes struct {
	TxBytes string `json:"txBytes"`
}

type transactionResponse struct {
	Digest        string         `json:"digest"`
	Effects       *txEffects     `json:"effects"`
	ObjectChanges []objectChange `json:"objectChanges"`
}

type txEffects struct {
	Status txExecutionStatus `json:"status"`
}

type txExecutionStatus struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

type objectChange struct {
	Type       string `json:"type"`
	ObjectType string `json:"objectType"`
	ObjectID   string `json:"objectId"`
}

// decodeTick converts the on-chain two's-complement bits into a signed tick.
func decodeTick(w i32Wrapper) int32 {
	return int32(w.Fields.Bits)
}

// encodeTickBits is the inverse, for transaction arguments.
func encodeTickBits(tick int32) uint32 {
	return uint32(tick)
}
