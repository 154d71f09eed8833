package cdaengine

import (
	"io"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseErrorMessage(t *testing.T) {
	err := NewParseError(ParseErrorEmptyInput, "document is empty")
	assert.Equal(t, "parse error (empty-input): document is empty", err.Error())

	at := NewParseErrorAt(ParseErrorMalformed, "unexpected closing tag", 3, 7)
	assert.Equal(t, "parse error (malformed-document) at line 3, column 7: unexpected closing tag", at.Error())
}

func TestIsParseError(t *testing.T) {
	err := NewParseError(ParseErrorTooLarge, "too big")

	assert.True(t, IsParseError(err, ParseErrorTooLarge))
	assert.False(t, IsParseError(err, ParseErrorMalformed))
	assert.False(t, IsParseError(nil, ParseErrorTooLarge))
	assert.False(t, IsParseError(io.EOF, ParseErrorTooLarge))
}

func TestIsParseErrorThroughWrapping(t *testing.T) {
	inner := NewParseError(ParseErrorDepthExceeded, "too deep")
	wrapped := errors.Wrap(inner, "processing document")

	assert.True(t, IsParseError(wrapped, ParseErrorDepthExceeded))

	perr, ok := AsParseError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ParseErrorDepthExceeded, perr.Kind)
}

func TestWrapParseError(t *testing.T) {
	cause := errors.New("XML syntax error on line 2")
	err := WrapParseError(ParseErrorMalformed, cause, "malformed document")

	assert.Equal(t, ParseErrorMalformed, err.Kind)
	assert.ErrorContains(t, errors.Cause(err.Unwrap()), "XML syntax error")
}

func TestSerializeError(t *testing.T) {
	err := NewSerializeError("serialized document is not valid UTF-8")
	assert.Contains(t, err.Error(), "not valid UTF-8")
}

func TestReleaseConfig(t *testing.T) {
	root, ext, ok := ReleaseConfig(R2)
	require.True(t, ok)
	assert.Equal(t, "2.16.840.1.113883.1.3", root)
	assert.Equal(t, "POCD_HD000040", ext)

	_, _, ok = ReleaseConfig(CDARelease("R99"))
	assert.False(t, ok)

	assert.True(t, R2.IsValid())
	assert.True(t, R21.IsValid())
	assert.False(t, CDARelease("R99").IsValid())
	assert.Equal(t, "R2.1", R21.String())
}
