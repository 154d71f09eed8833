package stream

import (
	"context"
	"io"

	"golang.org/x/sync/errgroup"

	cdaengine "github.com/gocda/engine"
	"github.com/gocda/engine/document"
	"github.com/gocda/engine/validator"
)

// ValidatedFragment pairs an extracted fragment with its validation result.
type ValidatedFragment struct {
	Index   int
	Element *document.Element
	Result  *cdaengine.ValidationResult
}

// ValidateFragments extracts every target fragment from the reader and
// validates them with up to workers goroutines, returning results in
// extraction order. Extraction itself is sequential; only validation fans
// out. The first extraction error aborts the whole run.
func ValidateFragments(ctx context.Context, r *Reader, v *validator.Validator, workers int) ([]ValidatedFragment, error) {
	if workers <= 0 {
		workers = 1
	}

	var fragments []*document.Element
	for {
		el, err := r.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		fragments = append(fragments, el)
	}

	results := make([]ValidatedFragment, len(fragments))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, el := range fragments {
		i, el := i, el
		g.Go(func() error {
			results[i] = ValidatedFragment{
				Index:   i,
				Element: el,
				Result:  v.Validate(el),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
