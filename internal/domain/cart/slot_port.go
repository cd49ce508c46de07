// internal/domain/cart/slot_port.go
package cart

// SlotKey is the one key the cart uses in its persistence slot
// (mirrors the browser sessionStorage key).
const SlotKey = "cart"

// Slot is a key-value persistence port scoped to one browsing session.
// Only the Local Cart Store writes to it.
//
// Contract:
// - Get returns (nil, false, nil) when the key is absent.
// - Delete of a missing key is not an error.
// - The slot never outlives the session (the caller owns the lifetime).
type Slot interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
}
