package xpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gocda/engine/document"
	"github.com/gocda/engine/parser"
)

const queryFixture = `<ClinicalDocument classCode="DOCCLIN">
  <component>
    <structuredBody>
      <component>
        <section>
          <code code="8716-3" codeSystem="2.16.840.1.113883.6.1"/>
          <title>Vital Signs</title>
        </section>
      </component>
      <component>
        <section>
          <code code="10160-0" codeSystem="2.16.840.1.113883.6.1"/>
          <title>Medications</title>
        </section>
      </component>
    </structuredBody>
  </component>
</ClinicalDocument>`

func parseFixture(t *testing.T) *document.Document {
	t.Helper()
	doc, err := parser.New(parser.DefaultConfig()).Parse([]byte(queryFixture))
	require.NoError(t, err)
	return doc
}

func TestDescendantQuery(t *testing.T) {
	doc := parseFixture(t)

	sections, err := QueryDocument(doc, "//section")
	require.NoError(t, err)
	require.Len(t, sections, 2)

	// Document order is deterministic.
	assert.Equal(t, "Vital Signs", sections[0].FirstChild("title").Text)
	assert.Equal(t, "Medications", sections[1].FirstChild("title").Text)
}

func TestDescendantQueryIncludesContext(t *testing.T) {
	doc := parseFixture(t)

	roots, err := QueryDocument(doc, "//ClinicalDocument")
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Same(t, doc.Root, roots[0])
}

func TestAbsoluteQuery(t *testing.T) {
	doc := parseFixture(t)

	titles, err := QueryDocument(doc,
		"/ClinicalDocument/component/structuredBody/component/section/title")
	require.NoError(t, err)
	require.Len(t, titles, 2)
	assert.Equal(t, "Vital Signs", titles[0].Text)
}

func TestRelativeQuery(t *testing.T) {
	doc := parseFixture(t)

	results, err := Query(doc.Root, "component/structuredBody")
	require.NoError(t, err)
	assert.Len(t, results, 1)

	// A relative path never matches the context element itself.
	none, err := Query(doc.Root, "ClinicalDocument")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPredicateQuery(t *testing.T) {
	doc := parseFixture(t)

	codes, err := QueryDocument(doc, "//code[@code='8716-3']")
	require.NoError(t, err)
	require.Len(t, codes, 1)
	assert.Equal(t, "2.16.840.1.113883.6.1", codes[0].Attributes["codeSystem"])

	// Double quotes work the same as single quotes.
	codes, err = QueryDocument(doc, `//code[@code="8716-3"]`)
	require.NoError(t, err)
	assert.Len(t, codes, 1)
}

func TestPredicateOnIntermediateStep(t *testing.T) {
	doc := parseFixture(t)

	titles, err := QueryDocument(doc, "//section/title")
	require.NoError(t, err)
	assert.Len(t, titles, 2)
}

func TestNoMatchesIsNotAnError(t *testing.T) {
	doc := parseFixture(t)

	results, err := QueryDocument(doc, "//nonexistent")
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = QueryDocument(doc, "//code[@code='no-such-code']")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestInvalidExpressions(t *testing.T) {
	cases := []string{
		"",
		"   ",
		"/",
		"//",
		"a//b",
		"section[@code]",
		"section[@='x']",
		"section[position()=1]",
		"section[@code='x'",
		"[@code='x']",
	}

	for _, expr := range cases {
		_, err := Compile(expr)
		require.Errorf(t, err, "expression %q should not compile", expr)
		assert.ErrorIs(t, err, ErrInvalidExpression, expr)
	}
}

func TestCompiledPathIsReusable(t *testing.T) {
	doc := parseFixture(t)

	p, err := Compile("//section")
	require.NoError(t, err)
	assert.Equal(t, "//section", p.String())

	first := p.Evaluate(doc.Root)
	second := p.Evaluate(doc.Root)
	assert.Equal(t, first, second)

	assert.Nil(t, p.Evaluate(nil))
}

func TestFirst(t *testing.T) {
	doc := parseFixture(t)

	title, err := First(doc.Root, "//title")
	require.NoError(t, err)
	require.NotNil(t, title)
	assert.Equal(t, "Vital Signs", title.Text)

	missing, err := First(doc.Root, "//missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestQueryDocumentNilRoot(t *testing.T) {
	results, err := QueryDocument(nil, "//section")
	require.NoError(t, err)
	assert.Nil(t, results)

	results, err = QueryDocument(&document.Document{}, "//section")
	require.NoError(t, err)
	assert.Nil(t, results)

	// Invalid expressions still fail before the nil check.
	_, err = QueryDocument(nil, "")
	assert.Error(t, err)
}
