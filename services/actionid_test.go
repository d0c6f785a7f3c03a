package services

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveActionIDDeterministic(t *testing.T) {
	a := DeriveActionID("0xAbC0000000000000000000000000000000000001", "daily-login", "2024-03-01")
	b := DeriveActionID("0xAbC0000000000000000000000000000000000001", "daily-login", "2024-03-01")
	require.Equal(t, a, b)
}

func TestDeriveActionIDNormalizesAddressCase(t *testing.T) {
	upper := DeriveActionID("0xAbC0000000000000000000000000000000000001", "daily-login", "2024-03-01")
	lower := DeriveActionID("0xabc0000000000000000000000000000000000001", "daily-login", "2024-03-01")
	require.Equal(t, upper.Bytes(), lower.Bytes())

	padded := DeriveActionID("  0xabc0000000000000000000000000000000000001 ", "daily-login", "2024-03-01")
	require.Equal(t, lower, padded)
}

func TestDeriveActionIDSensitiveToEveryInput(t *testing.T) {
	base := DeriveActionID("0xaaa0000000000000000000000000000000000001", "daily-login", "2024-03-01")

	require.NotEqual(t, base, DeriveActionID("0xaaa0000000000000000000000000000000000002", "daily-login", "2024-03-01"))
	require.NotEqual(t, base, DeriveActionID("0xaaa0000000000000000000000000000000000001", "weekly-streak", "2024-03-01"))
	require.NotEqual(t, base, DeriveActionID("0xaaa0000000000000000000000000000000000001", "daily-login", "2024-03-02"))
}

func TestDeriveActionIDRandomizedInputs(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	randomAddress := func() string {
		const hexDigits = "0123456789abcdef"
		buf := make([]byte, 40)
		for i := range buf {
			buf[i] = hexDigits[rng.Intn(len(hexDigits))]
		}
		return "0x" + string(buf)
	}

	seen := make(map[string]string)
	for i := 0; i < 200; i++ {
		addr := randomAddress()
		kind := fmt.Sprintf("kind-%d", rng.Intn(5))
		period := fmt.Sprintf("2024-03-%02d", 1+rng.Intn(28))

		id := DeriveActionID(addr, kind, period)
		require.Equal(t, id, DeriveActionID(addr, kind, period), "same inputs must re-derive the same id")

		key := addr + "|" + kind + "|" + period
		if prev, ok := seen[id.Hex()]; ok {
			require.Equal(t, prev, key, "distinct inputs produced a colliding id")
		}
		seen[id.Hex()] = key
	}
}

func TestPeriodBounds(t *testing.T) {
	start, end, err := PeriodBounds("2024-03-01")
	require.NoError(t, err)
	require.Equal(t, "2024-03-01T00:00:00Z", start.Format("2006-01-02T15:04:05Z07:00"))
	require.Equal(t, 24.0, end.Sub(start).Hours())

	_, _, err = PeriodBounds("not-a-date")
	require.Error(t, err)
}
