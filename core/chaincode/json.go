package chaincode

import (
	"encoding/json"

	"go.dedis.ch/ledger/core/txn"
)

// ParseAsJSON attempts to interpret the payload of the transaction as a JSON
// object. It returns false when the payload is not well-formed JSON, or when
// the root of the document is not an object, in which case the document is
// nil and the caller applies its own rejection policy. JSON is a convenience
// for the handlers, not a mandatory payload format.
func ParseAsJSON(tx txn.Transaction) (Query, bool) {
	doc := Query{}

	err := json.Unmarshal(tx.GetPayload(), &doc)
	if err != nil {
		return nil, false
	}

	return doc, true
}
