package xmlwriter

import (
	"bufio"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/lysyi3m/argot/app/xmlnode"
)

var ErrNoOpenElement = errors.New("no open element")

type Option func(*Writer)

// WithIndent sets the string repeated once per nesting level.
func WithIndent(indent string) Option {
	return func(w *Writer) {
		w.indent = indent
	}
}

// WithoutFormatting writes everything on a single line.
func WithoutFormatting() Option {
	return func(w *Writer) {
		w.format = false
	}
}

type element struct {
	name        string
	decls       []xmlnode.Namespace
	attrs       strings.Builder
	hasChildren bool
	hasText     bool
}

// Writer streams elements to an io.Writer. Start tags stay open until content,
// a child or the end tag is written, so attributes and namespace declarations
// can be added after WriteStartElement.
type Writer struct {
	out       *bufio.Writer
	indent    string
	format    bool
	stack     []*element
	pending   bool
	topLevel  bool
	generated int
	err       error
}

func New(w io.Writer, opts ...Option) *Writer {
	wr := &Writer{
		out:    bufio.NewWriter(w),
		indent: "  ",
		format: true,
	}
	for _, opt := range opts {
		opt(wr)
	}
	return wr
}

func (w *Writer) WriteStartDocument() {
	w.raw(`<?xml version="1.0" encoding="utf-8"?>`)
	w.topLevel = true
}

// WriteStartElement opens an element in namespace ns. With an empty prefix the
// writer reuses any prefix bound to ns, or declares ns as the default namespace.
func (w *Writer) WriteStartElement(prefix, local, ns string) {
	if w.err != nil {
		return
	}
	w.closePending()

	if parent := w.top(); parent != nil {
		parent.hasChildren = true
		if !parent.hasText {
			w.newline(len(w.stack))
		}
	} else if w.topLevel {
		w.newline(0)
	}

	el := &element{}
	switch {
	case ns == "":
		if uri, ok := w.lookupNamespace(""); ok && uri != "" {
			el.decls = append(el.decls, xmlnode.Namespace{})
		}
		el.name = local
	case prefix != "":
		if uri, ok := w.lookupNamespace(prefix); !ok || uri != ns {
			el.decls = append(el.decls, xmlnode.Namespace{Prefix: prefix, URI: ns})
		}
		el.name = prefix + ":" + local
	default:
		if bound, ok := w.lookupPrefix(ns, true); ok {
			el.name = qualified(bound, local)
		} else {
			el.decls = append(el.decls, xmlnode.Namespace{URI: ns})
			el.name = local
		}
	}

	w.stack = append(w.stack, el)
	w.pending = true
}

// WriteNamespace declares prefix on the open start tag unless it is already
// bound to uri in scope.
func (w *Writer) WriteNamespace(prefix, uri string) {
	el := w.openTag()
	if el == nil {
		return
	}
	if bound, ok := w.lookupNamespace(prefix); ok && bound == uri {
		return
	}
	el.decls = append(el.decls, xmlnode.Namespace{Prefix: prefix, URI: uri})
}

func (w *Writer) WriteAttributeString(prefix, local, ns, value string) {
	el := w.openTag()
	if el == nil {
		return
	}

	name := local
	switch {
	case ns == "":
	case ns == xmlnode.XMLNamespace:
		name = "xml:" + local
	default:
		bound, ok := w.lookupPrefix(ns, false)
		if !ok {
			bound = prefix
			if bound == "" {
				w.generated++
				bound = "p" + strconv.Itoa(w.generated)
			}
			el.decls = append(el.decls, xmlnode.Namespace{Prefix: bound, URI: ns})
		}
		name = bound + ":" + local
	}

	el.attrs.WriteString(" ")
	el.attrs.WriteString(name)
	el.attrs.WriteString(`="`)
	var escaped strings.Builder
	if err := xml.EscapeText(&escaped, []byte(value)); err != nil {
		w.fail(err)
		return
	}
	el.attrs.WriteString(escaped.String())
	el.attrs.WriteString(`"`)
}

func (w *Writer) WriteString(text string) {
	el := w.top()
	if el == nil {
		w.fail(ErrNoOpenElement)
		return
	}
	w.closePending()
	if text == "" {
		return
	}
	el.hasText = true
	if w.err == nil {
		w.err = xml.EscapeText(w.out, []byte(text))
	}
}

// WriteCData writes text inside a CDATA section, splitting any "]]>" it contains.
func (w *Writer) WriteCData(text string) {
	el := w.top()
	if el == nil {
		w.fail(ErrNoOpenElement)
		return
	}
	w.closePending()
	el.hasText = true
	w.raw("<![CDATA[")
	w.raw(strings.ReplaceAll(text, "]]>", "]]]]><![CDATA[>"))
	w.raw("]]>")
}

// WriteElementString writes a complete text-only element.
func (w *Writer) WriteElementString(local, ns, value string) {
	w.WriteStartElement("", local, ns)
	w.WriteString(value)
	w.WriteEndElement()
}

func (w *Writer) WriteEndElement() {
	el := w.top()
	if el == nil {
		w.fail(ErrNoOpenElement)
		return
	}

	if w.pending {
		w.raw(w.startTag(el) + " />")
		w.pending = false
	} else {
		if el.hasChildren && !el.hasText {
			w.newline(len(w.stack) - 1)
		}
		w.raw("</" + el.name + ">")
	}

	w.stack = w.stack[:len(w.stack)-1]
	if len(w.stack) == 0 {
		w.topLevel = true
	}
}

// Flush writes buffered output and reports the first error encountered.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if w.pending {
		w.closePending()
	}
	if err := w.out.Flush(); err != nil {
		return fmt.Errorf("failed to flush XML output: %w", err)
	}
	return w.err
}

func (w *Writer) Depth() int {
	return len(w.stack)
}

func (w *Writer) openTag() *element {
	if !w.pending {
		w.fail(fmt.Errorf("%w: start tag already closed", ErrNoOpenElement))
		return nil
	}
	return w.top()
}

func (w *Writer) top() *element {
	if len(w.stack) == 0 {
		return nil
	}
	return w.stack[len(w.stack)-1]
}

func (w *Writer) closePending() {
	if !w.pending {
		return
	}
	w.pending = false
	w.raw(w.startTag(w.top()) + ">")
}

func (w *Writer) startTag(el *element) string {
	var b strings.Builder
	b.WriteString("<")
	b.WriteString(el.name)
	for _, d := range el.decls {
		if d.Prefix == "" {
			b.WriteString(` xmlns="`)
		} else {
			b.WriteString(" xmlns:" + d.Prefix + `="`)
		}
		xml.EscapeText(&b, []byte(d.URI))
		b.WriteString(`"`)
	}
	b.WriteString(el.attrs.String())
	return b.String()
}

func (w *Writer) lookupNamespace(prefix string) (string, bool) {
	if prefix == "xml" {
		return xmlnode.XMLNamespace, true
	}
	for i := len(w.stack) - 1; i >= 0; i-- {
		decls := w.stack[i].decls
		for j := len(decls) - 1; j >= 0; j-- {
			if decls[j].Prefix == prefix {
				return decls[j].URI, true
			}
		}
	}
	return "", false
}

// lookupPrefix finds an unshadowed prefix bound to uri, innermost first.
func (w *Writer) lookupPrefix(uri string, allowDefault bool) (string, bool) {
	for i := len(w.stack) - 1; i >= 0; i-- {
		for _, d := range w.stack[i].decls {
			if d.URI != uri || (d.Prefix == "" && !allowDefault) {
				continue
			}
			if bound, _ := w.lookupNamespace(d.Prefix); bound == uri {
				return d.Prefix, true
			}
		}
	}
	return "", false
}

func (w *Writer) newline(depth int) {
	if !w.format {
		return
	}
	w.raw("\n" + strings.Repeat(w.indent, depth))
}

func (w *Writer) raw(s string) {
	if w.err != nil {
		return
	}
	_, w.err = w.out.WriteString(s)
}

func (w *Writer) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

func qualified(prefix, local string) string {
	if prefix == "" {
		return local
	}
	return prefix + ":" + local
}
