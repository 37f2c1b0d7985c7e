package svg

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Elements removed together with their subtree.
var droppedElements = map[string]bool{
	"title":    true,
	"desc":     true,
	"metadata": true,
	"style":    true,
}

// Attributes removed wherever they appear.
var droppedAttrs = map[string]bool{
	"stroke": true,
	"fill":   true,
}

var containerElements = map[string]bool{
	"a":             true,
	"defs":          true,
	"g":             true,
	"marker":        true,
	"mask":          true,
	"missing-glyph": true,
	"pattern":       true,
	"switch":        true,
	"symbol":        true,
}

var (
	rasterHref = regexp.MustCompile(`(?i)(\.(jpe?g|png|gif|tiff?|bmp|webp)$)|(^data:image/(jpe?g|png|gif|tiff?|bmp|webp)[;,])`)
	idRef      = regexp.MustCompile(`(?:url\(\s*['"]?#([^'")\s]+)['"]?\s*\))|(?:^#(.+)$)`)
)

func clean(root *node) {
	refs := map[string]bool{}
	collectRefs(root, refs)

	cleanNode(root, refs)
	removeDimensions(root)
}

func collectRefs(n *node, refs map[string]bool) {
	if n.isText {
		return
	}
	for _, a := range n.attrs {
		for _, m := range idRef.FindAllStringSubmatch(strings.TrimSpace(a.Value), -1) {
			for _, id := range m[1:] {
				if id != "" {
					refs[id] = true
				}
			}
		}
	}
	for _, c := range n.children {
		collectRefs(c, refs)
	}
}

// cleanNode rewrites n's attributes and children bottom-up.
func cleanNode(n *node, refs map[string]bool) {
	n.attrs = cleanAttrs(n.attrs, refs)

	var kept []*node
	for _, c := range n.children {
		if c.isText {
			if len(bytes.TrimSpace(c.text)) == 0 {
				continue
			}
			kept = append(kept, c)
			continue
		}
		if shouldDrop(c) {
			continue
		}

		cleanNode(c, refs)

		if isEmptyContainer(c) {
			continue
		}
		if c.name.Local == "g" && c.name.Space == "" {
			if len(c.attrs) == 0 {
				kept = append(kept, c.children...)
				continue
			}
			if merged := mergeSingleChild(c); merged != nil {
				kept = append(kept, merged)
				continue
			}
		}
		kept = append(kept, c)
	}
	n.children = kept
}

func shouldDrop(n *node) bool {
	if n.name.Space == "" && droppedElements[n.name.Local] {
		return true
	}
	if n.name.Local == "image" {
		href, ok := n.attr("href")
		if !ok {
			href, ok = n.attr("xlink:href")
		}
		return ok && rasterHref.MatchString(strings.TrimSpace(href))
	}
	return false
}

func cleanAttrs(attrs []xml.Attr, refs map[string]bool) []xml.Attr {
	out := attrs[:0]
	for _, a := range attrs {
		name := qualified(a.Name)
		if droppedAttrs[name] {
			continue
		}
		value := collapseSpace(a.Value)
		if value == "" {
			continue
		}
		if name == "id" && !refs[value] {
			continue
		}
		a.Value = value
		out = append(out, a)
	}
	return out
}

func isEmptyContainer(n *node) bool {
	if n.name.Space != "" || !containerElements[n.name.Local] || len(n.children) > 0 {
		return false
	}
	if n.name.Local == "pattern" {
		if _, ok := n.attr("href"); ok {
			return false
		}
		if _, ok := n.attr("xlink:href"); ok {
			return false
		}
	}
	if n.name.Local == "g" {
		if _, ok := n.attr("filter"); ok {
			return false
		}
	}
	return true
}

// Attributes that change how a group's subtree renders as a whole.
var groupOnlyAttrs = map[string]bool{
	"id":        true,
	"clip-path": true,
	"mask":      true,
	"filter":    true,
	"opacity":   true,
}

// mergeSingleChild pushes a group's attributes down onto its only child and
// returns that child, or nil when the group has to stay.
func mergeSingleChild(g *node) *node {
	if len(g.children) != 1 || g.children[0].isText {
		return nil
	}
	child := g.children[0]
	for _, a := range g.attrs {
		name := qualified(a.Name)
		if groupOnlyAttrs[name] {
			return nil
		}
		if name == "transform" {
			continue
		}
		if _, clash := child.attr(name); clash {
			return nil
		}
	}

	for _, a := range g.attrs {
		if qualified(a.Name) == "transform" {
			if own, ok := child.attr("transform"); ok {
				child.removeAttr("transform")
				a.Value = a.Value + " " + own
			}
		}
		child.attrs = append(child.attrs, a)
	}
	return child
}

// removeDimensions drops explicit width and height from the root, deriving
// a viewBox from them first when the document has none.
func removeDimensions(root *node) {
	width, hasW := root.attr("width")
	height, hasH := root.attr("height")
	if !hasW || !hasH {
		return
	}

	if _, ok := root.attr("viewBox"); !ok {
		w, errW := strconv.ParseFloat(strings.TrimSuffix(width, "px"), 64)
		h, errH := strconv.ParseFloat(strings.TrimSuffix(height, "px"), 64)
		if errW != nil || errH != nil {
			return
		}
		root.attrs = append(root.attrs, xml.Attr{
			Name:  xml.Name{Local: "viewBox"},
			Value: fmt.Sprintf("0 0 %s %s", trimFloat(w), trimFloat(h)),
		})
	}
	root.removeAttr("width")
	root.removeAttr("height")
}

func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
