package orders

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// buildOrderNumber formats the human-facing order number. The timestamp
// keeps numbers sortable at a glance; the token keeps concurrent orders in
// the same second distinct.
func buildOrderNumber(now time.Time, token string) string {
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102150405"), token)
}

func newOrderNumber(now time.Time) (string, error) {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating order token: %w", err)
	}
	return buildOrderNumber(now, hex.EncodeToString(buf)), nil
}
