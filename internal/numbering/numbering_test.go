package numbering

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextFormat(t *testing.T) {
	n := Next(InvoicePrefix)
	assert.Regexp(t, regexp.MustCompile(`^FAC-\d{14}-[0-9a-f]{8}$`), n)
}

func TestNextDistinctWithinSameSecond(t *testing.T) {
	fixed := time.Date(2026, 10, 16, 15, 30, 45, 0, time.Local)
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = time.Now })

	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		n := Next(OrderPrefix)
		_, dup := seen[n]
		require.False(t, dup, "duplicate number %s", n)
		seen[n] = struct{}{}
	}
}

func TestNextUsesCurrentTime(t *testing.T) {
	fixed := time.Date(2026, 10, 16, 15, 30, 45, 0, time.Local)
	now = func() time.Time { return fixed }
	t.Cleanup(func() { now = time.Now })

	n := Next(InvoicePrefix)
	require.True(t, strings.HasPrefix(n, "FAC-20261016153045-"), n)
	assert.Len(t, n, len("FAC-20261016153045-")+8)
}
