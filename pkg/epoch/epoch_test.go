package epoch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// secondsAt2000 is the host-epoch representation of 2000-01-01T00:00:00Z.
const secondsAt2000 = 946684800

func TestTranslatorIdentityAt1970(t *testing.T) {
	tr := NewTranslator(1970)

	assert.Equal(t, int64(0), tr.Diff())

	for _, v := range []int64{0, 1, -1, secondsAt2000, -secondsAt2000, 1<<40 - 7} {
		assert.Equal(t, v, tr.ToVirtual(v))
		assert.Equal(t, v, tr.ToHost(v))
	}
}

func TestTranslatorEpoch2000(t *testing.T) {
	tr := NewTranslator(2000)

	// 2000-01-01 is exactly 10957 days past 1970-01-01.
	require.Equal(t, int64(secondsAt2000), tr.Diff())

	// A file stamped 2000-01-01 on the host reads as virtual time zero.
	assert.Equal(t, int64(0), tr.ToVirtual(secondsAt2000))
	assert.Equal(t, int64(secondsAt2000), tr.ToHost(0))
}

func TestTranslatorInvertibility(t *testing.T) {
	years := []int{-400, -100, -4, 0, 1, 4, 100, 400, 1600, 1900, 1969, 1970, 1971, 2000, 2038, 9999}
	times := []int64{0, 1, -1, 59, -59, secondsAt2000, -secondsAt2000, 1 << 33, -(1 << 33), 1<<62 - 1}

	for _, year := range years {
		tr := NewTranslator(year)
		for _, v := range times {
			assert.Equal(t, v, tr.ToHost(tr.ToVirtual(v)), "year=%d t=%d", year, v)
			assert.Equal(t, v, tr.ToVirtual(tr.ToHost(v)), "year=%d t=%d", year, v)
		}
	}
}

// Non-positive epoch years skip the leap corrections entirely, so their
// day counts are plain 365-day multiples. Pinned so the behavior cannot
// drift silently.
func TestTranslatorNonPositiveYears(t *testing.T) {
	const secondsAt1970 = int64(719528) * secondsPerDay // 1970*365 + 493 - 19 + 4 days

	zero := NewTranslator(0)
	assert.Equal(t, -secondsAt1970, zero.Diff())

	minusFour := NewTranslator(-4)
	assert.Equal(t, int64(-4*365)*secondsPerDay-secondsAt1970, minusFour.Diff())

	// Invertibility holds for non-positive years too.
	for _, v := range []int64{0, 1, -12345, secondsAt2000} {
		assert.Equal(t, v, zero.ToHost(zero.ToVirtual(v)))
		assert.Equal(t, v, minusFour.ToHost(minusFour.ToVirtual(v)))
	}
}

func TestTranslatorTimeConversion(t *testing.T) {
	tr := NewTranslator(2000)

	host := time.Date(2000, 1, 1, 0, 0, 0, 123456789, time.UTC)
	virtual := tr.VirtualTime(host)

	assert.Equal(t, int64(0), virtual.Unix())
	assert.Equal(t, 123456789, virtual.Nanosecond())

	back := tr.HostTime(virtual)
	assert.True(t, back.Equal(host), "round trip changed the instant: %v != %v", back, host)
}

func TestWiden32(t *testing.T) {
	assert.Equal(t, int64(0), Widen32(0))
	assert.Equal(t, int64(secondsAt2000), Widen32(int32(secondsAt2000)))

	// Negative 32-bit patterns widen as large unsigned magnitudes, so a
	// post-2038 wrapped timestamp is not misread as a pre-1970 one.
	assert.Equal(t, int64(1)<<31, Widen32(-1<<31))
	assert.Equal(t, int64(1)<<32-1, Widen32(-1))

	// Translation still round-trips through the widened value.
	tr := NewTranslator(2000)
	wide := Widen32(-1)
	assert.Equal(t, wide, tr.ToHost(tr.ToVirtual(wide)))
}
