package svg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const drawing = `<?xml version="1.0" encoding="UTF-8"?>
<!-- exported from the survey CAD -->
<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="800" height="600">
  <title>Phase 3 plan</title>
  <desc>Outline of the turf house</desc>
  <metadata><rdf>author</rdf></metadata>
  <style>.wall { fill: red; }</style>
  <defs></defs>
  <g>
    <g fill="#ff0000" stroke="black" id="unused">
      <path d="M 0 0 L 10 10" fill="red" stroke="blue" class="wall"/>
    </g>
  </g>
  <g transform="translate(5 5)">
    <rect x="1" y="1" width="4" height="4" transform="scale(2)" data-note=""/>
  </g>
  <image xlink:href="data:image/png;base64,AAAA" width="10" height="10"/>
  <image href="scan.JPG"/>
</svg>`

func TestOptimizeStripsStylingAndMetadata(t *testing.T) {
	out, err := NewOptimizer().Optimize([]byte(drawing))
	require.NoError(t, err)
	s := string(out)

	for _, gone := range []string{"<title", "<desc", "<metadata", "<style", "<defs", "<image", "<!--", `fill=`, `stroke=`, `id=`, `data-note`, `width="800"`} {
		assert.NotContains(t, s, gone)
	}
	assert.Contains(t, s, "<svg")
	assert.Contains(t, s, "<path")
	assert.Contains(t, s, "<rect")
	assert.Contains(t, s, "viewBox")
	assert.Contains(t, s, "wall")
}

func TestOptimizeCollapsesGroups(t *testing.T) {
	root, err := parse([]byte(drawing))
	require.NoError(t, err)
	clean(root)

	for _, c := range root.elementChildren() {
		assert.NotEqual(t, "g", c.name.Local, "groups should have been collapsed")
	}

	var rect *node
	for _, c := range root.elementChildren() {
		if c.name.Local == "rect" {
			rect = c
		}
	}
	require.NotNil(t, rect)
	transform, ok := rect.attr("transform")
	require.True(t, ok)
	assert.Equal(t, "translate(5 5) scale(2)", transform)
}

func TestRemoveDimensionsKeepsExistingViewBox(t *testing.T) {
	root, err := parse([]byte(`<svg viewBox="0 0 50 50" width="100" height="100"><path d="M0 0"/></svg>`))
	require.NoError(t, err)
	clean(root)

	vb, ok := root.attr("viewBox")
	require.True(t, ok)
	assert.Equal(t, "0 0 50 50", vb)
	_, ok = root.attr("width")
	assert.False(t, ok)
}

func TestReferencedIDsSurvive(t *testing.T) {
	root, err := parse([]byte(`<svg><defs><clipPath id="clip"><rect width="1" height="1"/></clipPath></defs><path id="lonely" clip-path="url(#clip)" d="M0 0"/></svg>`))
	require.NoError(t, err)
	clean(root)

	defs := root.elementChildren()[0]
	clip := defs.elementChildren()[0]
	id, ok := clip.attr("id")
	require.True(t, ok)
	assert.Equal(t, "clip", id)

	path := root.elementChildren()[1]
	_, ok = path.attr("id")
	assert.False(t, ok)
}

func TestOptimizeRejectsMalformedInput(t *testing.T) {
	o := NewOptimizer()

	_, err := o.Optimize([]byte(`<svg><g></svg>`))
	assert.Error(t, err)

	_, err = o.Optimize([]byte(`<html><body/></html>`))
	assert.ErrorIs(t, err, ErrNotSVG)

	_, err = o.Optimize([]byte(`not xml at all`))
	assert.Error(t, err)

	_, err = o.Optimize(nil)
	assert.Error(t, err)
}

func TestOptimizeIsStable(t *testing.T) {
	o := NewOptimizer()
	first, err := o.Optimize([]byte(drawing))
	require.NoError(t, err)
	second, err := o.Optimize([]byte(drawing))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
