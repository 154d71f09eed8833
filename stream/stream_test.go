package stream

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocda/engine/document"
	"github.com/gocda/engine/validator"
)

const streamFixture = `<?xml version="1.0" encoding="UTF-8"?>
<ClinicalDocument xmlns="urn:hl7-org:v3">
  <component>
    <section><title>Allergies</title></section>
  </component>
  <component>
    <section><code code="10160-0" codeSystem="2.16.840.1.113883.6.1"/><title>Medications</title></section>
  </component>
  <component>
    <section><title>Problems</title></section>
  </component>
</ClinicalDocument>`

func collect(t *testing.T, r *Reader) []*document.Element {
	t.Helper()
	var out []*document.Element
	for {
		el, err := r.Next(context.Background())
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, el)
	}
}

func TestExtractSections(t *testing.T) {
	r := NewReader(NewMemorySource([]byte(streamFixture)), "section")
	defer r.Close()

	sections := collect(t, r)
	require.Len(t, sections, 3)
	assert.Equal(t, "Allergies", sections[0].FirstChild("title").Text)
	assert.Equal(t, "Medications", sections[1].FirstChild("title").Text)
	assert.Equal(t, "Problems", sections[2].FirstChild("title").Text)
}

func TestExtractAcrossChunkBoundaries(t *testing.T) {
	// Tiny chunks force every span to straddle reads.
	for _, size := range []int{1, 3, 7} {
		r := NewReader(NewMemorySource([]byte(streamFixture)), "section",
			WithBufferSize(size))

		sections := collect(t, r)
		require.Lenf(t, sections, 3, "buffer size %d", size)
		assert.Equal(t, "Allergies", sections[0].FirstChild("title").Text)
	}
}

func TestNextEOFIsIdempotent(t *testing.T) {
	r := NewReader(NewMemorySource([]byte("<a><b/></a>")), "b")
	ctx := context.Background()

	el, err := r.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", el.Name)

	for i := 0; i < 3; i++ {
		_, err = r.Next(ctx)
		assert.Equal(t, io.EOF, err)
	}
}

func TestNextAfterClose(t *testing.T) {
	r := NewReader(NewMemorySource([]byte("<a><b/></a>")), "b")
	require.NoError(t, r.Close())

	// The scratch buffer is back in the pool; Next must not touch it.
	_, err := r.Next(context.Background())
	assert.Equal(t, io.EOF, err)
}

func TestTargetNameBoundary(t *testing.T) {
	// "<sectionList>" must not match a "section" target.
	input := `<doc><sectionList><item/></sectionList><section><title>real</title></section></doc>`

	r := NewReader(NewMemorySource([]byte(input)), "section")
	sections := collect(t, r)
	require.Len(t, sections, 1)
	assert.Equal(t, "real", sections[0].FirstChild("title").Text)
}

func TestNoMatches(t *testing.T) {
	r := NewReader(NewMemorySource([]byte("<a><b/></a>")), "section")
	assert.Empty(t, collect(t, r))
}

func TestCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewReader(NewMemorySource([]byte(streamFixture)), "section")
	_, err := r.Next(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMalformedFragment(t *testing.T) {
	input := `<doc><section><broken</section></doc>`

	r := NewReader(NewMemorySource([]byte(input)), "section")
	_, err := r.Next(context.Background())
	assert.Error(t, err)
}

func TestFragmentsChannel(t *testing.T) {
	r := NewReader(NewMemorySource([]byte(streamFixture)), "section")

	var results []FragmentResult
	for fr := range r.Fragments(context.Background()) {
		require.NoError(t, fr.Err)
		results = append(results, fr)
	}

	require.Len(t, results, 3)
	for i, fr := range results {
		assert.Equal(t, i, fr.Index)
		assert.Equal(t, "section", fr.Element.Name)
	}
}

func TestValidateFragments(t *testing.T) {
	r := NewReader(NewMemorySource([]byte(streamFixture)), "section")
	v := validator.New(validator.WithCDASchema(false))

	validated, err := ValidateFragments(context.Background(), r, v, 4)
	require.NoError(t, err)
	require.Len(t, validated, 3)

	// Results come back in extraction order.
	assert.Equal(t, "Allergies", validated[0].Element.FirstChild("title").Text)
	assert.Equal(t, "Problems", validated[2].Element.FirstChild("title").Text)

	// Sections with a title or code are clean; none here has neither.
	for _, vf := range validated {
		assert.True(t, vf.Result.Valid)
		assert.Zero(t, vf.Result.WarningCount())
	}
}

func TestMemorySource(t *testing.T) {
	s := NewMemorySource([]byte("abcdef"))

	chunk, err := s.ReadNext(4)
	require.NoError(t, err)
	assert.Equal(t, "abcd", string(chunk))

	chunk, err = s.ReadNext(4)
	require.NoError(t, err)
	assert.Equal(t, "ef", string(chunk))

	_, err = s.ReadNext(4)
	assert.Equal(t, io.EOF, err)
	assert.NoError(t, s.Close())
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.xml")
	content := strings.Repeat("x", 100)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	s, err := OpenFile(path)
	require.NoError(t, err)
	defer s.Close()

	total := 0
	for {
		chunk, err := s.ReadNext(32)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		total += len(chunk)
	}
	assert.Equal(t, 100, total)

	_, err = OpenFile(path + ".missing")
	assert.Error(t, err)
}
