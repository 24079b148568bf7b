package syndication

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/lysyi3m/argot/app/xmlnode"
	"github.com/lysyi3m/argot/app/xmlwriter"
)

var (
	ErrNilArgument   = errors.New("required argument is nil")
	ErrEmptyArgument = errors.New("required argument is empty")
	ErrTypeMismatch  = errors.New("extension types are not comparable")
)

// Descriptor identifies an extension. Prefix and Namespace together form the
// discovery key; the remaining fields are informational.
type Descriptor struct {
	Prefix        string
	Namespace     string
	Version       string
	Documentation string
	Name          string
	Description   string
}

// Context is the typed field set owned by one extension instance.
//
// Load reads the extension's fields from the children and attributes of node,
// using resolver to qualify names with the extension's canonical prefix. Values
// that fail to parse are skipped. It reports whether any field was populated.
//
// WriteTo emits every non-default field, qualified by namespace, in a fixed order.
type Context interface {
	Load(node *xmlnode.Node, resolver *xmlnode.Resolver) bool
	WriteTo(w *xmlwriter.Writer, namespace string)
}

// Extension pairs a Descriptor with a Context.
type Extension interface {
	Descriptor() Descriptor
	Load(node *xmlnode.Node) bool
	WriteTo(w *xmlwriter.Writer) error
	Compare(other Extension) (int, error)
	Equal(other Extension) bool
	String() string
}

// LoadedEvent is delivered to OnLoaded observers after a successful Load.
type LoadedEvent struct {
	Node      *xmlnode.Node
	Extension Extension
}

// Base carries the descriptor and loaded observers shared by every extension.
type Base struct {
	descriptor Descriptor
	observers  []func(LoadedEvent)
}

func NewBase(d Descriptor) Base {
	return Base{descriptor: d}
}

func (b *Base) Descriptor() Descriptor {
	return b.descriptor
}

func (b *Base) OnLoaded(fn func(LoadedEvent)) {
	if fn != nil {
		b.observers = append(b.observers, fn)
	}
}

// LoadContext fills ctx from node and notifies observers with source when at
// least one field was populated.
func (b *Base) LoadContext(node *xmlnode.Node, ctx Context, source Extension) bool {
	if node == nil || ctx == nil {
		return false
	}

	resolver := xmlnode.NewResolver(node)
	resolver.AddNamespace(b.descriptor.Prefix, b.descriptor.Namespace)

	if !ctx.Load(node, resolver) {
		return false
	}

	event := LoadedEvent{Node: node, Extension: source}
	for _, fn := range b.observers {
		fn(event)
	}
	return true
}

func (b *Base) WriteContext(w *xmlwriter.Writer, ctx Context) error {
	if w == nil {
		return fmt.Errorf("%w: writer", ErrNilArgument)
	}
	ctx.WriteTo(w, b.descriptor.Namespace)
	return nil
}

// LoadReader parses r and loads ext from the document element.
func LoadReader(ext Extension, r io.Reader) (bool, error) {
	if ext == nil {
		return false, fmt.Errorf("%w: extension", ErrNilArgument)
	}
	if r == nil {
		return false, fmt.Errorf("%w: reader", ErrNilArgument)
	}

	root, err := xmlnode.Parse(r)
	if err != nil {
		return false, err
	}
	return ext.Load(root), nil
}

// Format renders the fragment ext would write into a document.
func Format(ext Extension) string {
	var buf bytes.Buffer
	w := xmlwriter.New(&buf)
	if err := ext.WriteTo(w); err != nil {
		return ""
	}
	if err := w.Flush(); err != nil {
		return ""
	}
	return buf.String()
}

// Compare is the shared implementation of Extension.Compare: other must have
// the same concrete type as self.
func Compare[T Extension](self T, other Extension, compare func(a, b T) int) (int, error) {
	o, ok := other.(T)
	if !ok {
		return 0, fmt.Errorf("%w: %T and %T", ErrTypeMismatch, self, other)
	}
	return compare(self, o), nil
}

func Equal[T Extension](self T, other Extension, compare func(a, b T) int) bool {
	c, err := Compare(self, other, compare)
	return err == nil && c == 0
}
