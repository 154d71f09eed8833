package intern

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInternReturnsCanonicalCopy(t *testing.T) {
	in := New()

	// Build two equal strings that are distinct allocations.
	a := strings.Repeat("observation", 1)
	b := string([]byte("observation"))

	first := in.Intern(a)
	second := in.Intern(b)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, in.Len())

	stats := in.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRate, 1e-9)
}

func TestInternDistinctStrings(t *testing.T) {
	in := New()
	in.Intern("section")
	in.Intern("entry")
	in.Intern("section")

	assert.Equal(t, 2, in.Len())
	assert.Equal(t, uint64(1), in.Stats().Hits)
}

func TestClear(t *testing.T) {
	in := New()
	in.Intern("code")
	in.Clear()

	assert.Zero(t, in.Len())
	stats := in.Stats()
	assert.Zero(t, stats.Hits)
	assert.Zero(t, stats.Misses)
	assert.Zero(t, stats.HitRate)
}

func TestStaticElementNames(t *testing.T) {
	for _, name := range []string{
		"ClinicalDocument", "typeId", "templateId", "id", "code",
		"effectiveTime", "section", "entry", "observation", "recordTarget",
	} {
		got, ok := ElementName(name)
		require.Truef(t, ok, "%s should be pre-interned", name)
		assert.Equal(t, name, got)
	}

	_, ok := ElementName("notAnElementName")
	assert.False(t, ok)

	assert.Greater(t, ElementNameCount(), 50)
}
