package svg

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

type node struct {
	name     xml.Name
	attrs    []xml.Attr
	children []*node
	text     []byte
	isText   bool
}

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

// parse reads the document with RawToken so namespace prefixes survive
// unchanged. Comments, processing instructions and directives are dropped.
func parse(data []byte) (*node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.Strict = true

	var (
		root  *node
		stack []*node
	)
	for {
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing svg: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			n := &node{name: t.Name, attrs: append([]xml.Attr(nil), t.Attr...)}
			if len(stack) == 0 {
				if root != nil {
					return nil, errors.New("parsing svg: more than one root element")
				}
				root = n
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, n)
			}
			stack = append(stack, n)
		case xml.EndElement:
			if len(stack) == 0 || qualified(stack[len(stack)-1].name) != qualified(t.Name) {
				return nil, fmt.Errorf("parsing svg: unexpected </%s>", qualified(t.Name))
			}
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) == 0 {
				if len(bytes.TrimSpace(t)) > 0 {
					return nil, errors.New("parsing svg: text outside the root element")
				}
				continue
			}
			parent := stack[len(stack)-1]
			parent.children = append(parent.children, &node{isText: true, text: append([]byte(nil), t...)})
		}
	}

	if len(stack) != 0 {
		return nil, errors.New("parsing svg: unexpected end of document")
	}
	if root == nil || root.name.Local != "svg" {
		return nil, ErrNotSVG
	}
	return root, nil
}

func (n *node) attr(name string) (string, bool) {
	for _, a := range n.attrs {
		if qualified(a.Name) == name {
			return a.Value, true
		}
	}
	return "", false
}

func (n *node) removeAttr(name string) {
	out := n.attrs[:0]
	for _, a := range n.attrs {
		if qualified(a.Name) != name {
			out = append(out, a)
		}
	}
	n.attrs = out
}

func (n *node) elementChildren() []*node {
	var out []*node
	for _, c := range n.children {
		if !c.isText {
			out = append(out, c)
		}
	}
	return out
}

func (n *node) write(w *bytes.Buffer) {
	if n.isText {
		_ = xml.EscapeText(w, n.text)
		return
	}

	w.WriteByte('<')
	w.WriteString(qualified(n.name))
	for _, a := range n.attrs {
		w.WriteByte(' ')
		w.WriteString(qualified(a.Name))
		w.WriteString(`="`)
		_ = xml.EscapeText(w, []byte(a.Value))
		w.WriteByte('"')
	}
	if len(n.children) == 0 {
		w.WriteString("/>")
		return
	}
	w.WriteByte('>')
	for _, c := range n.children {
		c.write(w)
	}
	w.WriteString("</")
	w.WriteString(qualified(n.name))
	w.WriteByte('>')
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
