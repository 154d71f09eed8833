// Package stream extracts target elements from a chunked byte stream without
// materializing the whole document.
package stream

import (
	"bytes"
	"context"
	"io"

	"github.com/pkg/errors"

	cdaengine "github.com/gocda/engine"
	"github.com/gocda/engine/document"
	"github.com/gocda/engine/parser"
	"github.com/gocda/engine/pool"
)

// Reader pulls chunks from a ByteSource, locates complete
// <target>...</target> spans and parses each span with the full parser.
//
// Spans are located by literal substring search for the open and close tag
// text. Nested same-named elements and tag-like substrings inside attribute
// values or CDATA are not understood; this matches the engine's documented
// extraction behavior.
type Reader struct {
	source     ByteSource
	target     string
	openTag    []byte
	closeTag   []byte
	bufferSize int
	parser     *parser.Parser

	// buf is pooled scratch space holding unconsumed stream bytes. It is
	// returned to the pool on Close.
	buf       *[]byte
	exhausted bool
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithBufferSize sets the chunk size requested from the source.
func WithBufferSize(size int) ReaderOption {
	return func(r *Reader) {
		if size > 0 {
			r.bufferSize = size
		}
	}
}

// WithParserConfig sets the parser configuration used for extracted
// fragments.
func WithParserConfig(cfg parser.Config) ReaderOption {
	return func(r *Reader) {
		r.parser = parser.New(cfg)
	}
}

// NewReader creates a streaming reader extracting target elements.
func NewReader(source ByteSource, target string, opts ...ReaderOption) *Reader {
	r := &Reader{
		source:     source,
		target:     target,
		openTag:    []byte("<" + target),
		closeTag:   []byte("</" + target + ">"),
		bufferSize: cdaengine.DefaultStreamBufferSize,
		parser:     parser.New(parser.DefaultConfig()),
		buf:        pool.AcquireByteSlice(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Next returns the next extracted target element. It blocks while pulling
// chunks from the source and honors cancellation between reads. Once the
// source is exhausted and no further complete span remains in the buffer,
// Next returns io.EOF; repeated calls keep returning io.EOF.
func (r *Reader) Next(ctx context.Context) (*document.Element, error) {
	if r.buf == nil {
		return nil, io.EOF
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrap(err, "stream read cancelled")
		}

		if fragment, ok := r.nextSpan(); ok {
			doc, err := r.parser.Parse(fragment)
			if err != nil {
				return nil, errors.Wrapf(err, "parse extracted %s fragment", r.target)
			}
			return doc.Root, nil
		}

		if r.exhausted {
			return nil, io.EOF
		}

		chunk, err := r.source.ReadNext(r.bufferSize)
		if err == io.EOF {
			r.exhausted = true
			continue
		}
		if err != nil {
			return nil, err
		}
		*r.buf = append(*r.buf, chunk...)
	}
}

// nextSpan locates the next complete target span in the buffer, consumes it
// and returns it.
func (r *Reader) nextSpan() ([]byte, bool) {
	buf := *r.buf
	open := r.findOpenTag()
	if open < 0 {
		// Keep only a tail that could still hold a partial or
		// boundary-unconfirmed open tag.
		if keep := len(r.openTag); len(buf) > keep {
			r.discard(len(buf) - keep)
		}
		return nil, false
	}

	closeIdx := bytes.Index(buf[open:], r.closeTag)
	if closeIdx < 0 {
		// Drop everything before the open tag, wait for more data.
		r.discard(open)
		return nil, false
	}

	end := open + closeIdx + len(r.closeTag)
	fragment := make([]byte, end-open)
	copy(fragment, buf[open:end])
	r.discard(end)
	return fragment, true
}

// discard consumes n leading bytes, shifting the remainder to the front so
// the pooled buffer keeps its full backing array.
func (r *Reader) discard(n int) {
	buf := *r.buf
	m := copy(buf, buf[n:])
	*r.buf = buf[:m]
}

// findOpenTag finds the literal open tag, requiring a name boundary so a
// target of "section" does not match "<sectionList".
func (r *Reader) findOpenTag() int {
	from := 0
	for {
		idx := bytes.Index((*r.buf)[from:], r.openTag)
		if idx < 0 {
			return -1
		}
		idx += from
		next := idx + len(r.openTag)
		if next >= len(*r.buf) {
			return -1 // possibly split across chunks, wait for more
		}
		switch (*r.buf)[next] {
		case ' ', '\t', '\n', '\r', '>', '/':
			return idx
		}
		from = idx + 1
	}
}

// Close returns the scratch buffer to the pool and closes the underlying
// source. Next returns io.EOF after Close.
func (r *Reader) Close() error {
	if r.buf != nil {
		pool.ReleaseByteSlice(r.buf)
		r.buf = nil
	}
	return r.source.Close()
}

// FragmentResult is one extracted fragment or the error that ended
// extraction.
type FragmentResult struct {
	// Index is the position of the fragment in extraction order.
	Index int

	// Element is the parsed fragment root.
	Element *document.Element

	// Err is set when extraction or parsing failed.
	Err error
}

// Fragments drives the reader to exhaustion on a goroutine, emitting each
// extracted fragment on the returned channel. The channel closes after the
// source is exhausted or an error is emitted.
func (r *Reader) Fragments(ctx context.Context) <-chan FragmentResult {
	results := make(chan FragmentResult)

	go func() {
		defer close(results)

		index := 0
		for {
			el, err := r.Next(ctx)
			if err == io.EOF {
				return
			}
			if err != nil {
				select {
				case results <- FragmentResult{Index: index, Err: err}:
				case <-ctx.Done():
				}
				return
			}

			select {
			case results <- FragmentResult{Index: index, Element: el}:
			case <-ctx.Done():
				return
			}
			index++
		}
	}()

	return results
}
