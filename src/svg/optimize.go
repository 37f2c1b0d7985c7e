// Package svg applies the archive's fixed SVG clean-up to uploaded drawings:
// metadata and styling are stripped so the frontend can colour the shapes
// itself, then the document is minified.
package svg

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/tdewolff/minify/v2"
	minsvg "github.com/tdewolff/minify/v2/svg"
)

const mediaType = "image/svg+xml"

var ErrNotSVG = errors.New("document root is not <svg>")

// Optimizer turns raw SVG bytes into the stored form.
type Optimizer interface {
	Optimize(data []byte) ([]byte, error)
}

type Standard struct {
	m *minify.M
}

func NewOptimizer() *Standard {
	m := minify.New()
	m.Add(mediaType, &minsvg.Minifier{KeepComments: false})
	return &Standard{m: m}
}

// Optimize never returns partially transformed output; malformed input is an error.
func (o *Standard) Optimize(data []byte) ([]byte, error) {
	root, err := parse(data)
	if err != nil {
		return nil, err
	}

	clean(root)

	var buf bytes.Buffer
	root.write(&buf)

	out, err := o.m.Bytes(mediaType, buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("minifying svg: %w", err)
	}
	return out, nil
}
