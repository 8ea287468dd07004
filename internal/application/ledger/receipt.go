package ledger

import "encoding/json"

// Receipt is the raw payload a successful invoke returned. Payload shapes
// vary by chaincode function and version, so the receipt stays opaque;
// callers that want structured fields attempt a parse.
type Receipt struct {
	TxID    string
	Payload []byte
}

// Parsed attempts to decode the payload as a JSON object. A payload that is
// empty or not a JSON object yields ok=false; that is not an error, since
// the transaction itself committed.
func (r Receipt) Parsed() (map[string]any, bool) {
	if len(r.Payload) == 0 {
		return nil, false
	}
	var m map[string]any
	if err := json.Unmarshal(r.Payload, &m); err != nil {
		return nil, false
	}
	return m, true
}
