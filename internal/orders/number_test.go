package orders

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateNumberFormat(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	n := GenerateNumber(now)

	parts := strings.SplitN(n, "-", 3)
	require.Len(t, parts, 3)
	assert.Equal(t, "ORD", parts[0])
	assert.Equal(t, "20260314", parts[1])

	// millis in base36 plus 3 random chars
	ms := strings.ToUpper(strconv.FormatInt(now.UnixMilli(), 36))
	assert.True(t, strings.HasPrefix(parts[2], ms))
	assert.Len(t, parts[2], len(ms)+3)
	assert.Equal(t, strings.ToUpper(parts[2]), parts[2])
}

func TestGenerateNumberVariesWithinMillisecond(t *testing.T) {
	now := time.Now()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		seen[GenerateNumber(now)] = true
	}
	// random suffix should produce more than one value for a fixed clock
	assert.Greater(t, len(seen), 1)
}
