// Package numbering generates human-readable document numbers.
//
// Numbers keep the "<PREFIX>-<YYYYMMDDHHMMSS>" shape but carry a random
// suffix so that two documents created within the same second do not collide.
// Uniqueness is still enforced by a unique index on the owning table.
package numbering

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	OrderPrefix   = "CMD"
	InvoicePrefix = "FAC"
)

const timestampLayout = "20060102150405"

// now is swapped in tests.
var now = time.Now

// Next returns a new number for the given prefix, e.g. CMD-20261016153045-3f9a1c2b.
func Next(prefix string) string {
	id := uuid.New()
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteByte('-')
	b.WriteString(now().Format(timestampLayout))
	b.WriteByte('-')
	b.WriteString(hex.EncodeToString(id[:4]))
	return b.String()
}
