package syndication

import (
	"slices"
)

// Extensible is implemented by every entity that can carry extensions.
type Extensible interface {
	Extensions() []Extension
	HasExtensions() bool
	AddExtension(ext Extension) bool
	RemoveExtension(ext Extension) bool
	FindExtension(match func(Extension) bool) Extension
}

// Parent is implemented by extensible entities that own nested extensible
// entities, such as a channel and its items.
type Parent interface {
	ExtensibleChildren() []Extensible
}

// Collection is embedded by entities to satisfy Extensible. Extensions keep
// insertion order.
type Collection struct {
	extensions []Extension
}

func (c *Collection) Extensions() []Extension {
	return slices.Clone(c.extensions)
}

func (c *Collection) HasExtensions() bool {
	return len(c.extensions) > 0
}

func (c *Collection) AddExtension(ext Extension) bool {
	if ext == nil {
		return false
	}
	c.extensions = append(c.extensions, ext)
	return true
}

// RemoveExtension detaches ext, matched by identity.
func (c *Collection) RemoveExtension(ext Extension) bool {
	i := slices.Index(c.extensions, ext)
	if ext == nil || i < 0 {
		return false
	}
	c.extensions = slices.Delete(c.extensions, i, i+1)
	return true
}

func (c *Collection) FindExtension(match func(Extension) bool) Extension {
	if match == nil {
		return nil
	}
	for _, ext := range c.extensions {
		if match(ext) {
			return ext
		}
	}
	return nil
}

// Is returns a predicate matching extensions of concrete type T.
func Is[T Extension]() func(Extension) bool {
	return func(ext Extension) bool {
		_, ok := ext.(T)
		return ok
	}
}

// Find returns the first extension of concrete type T attached to entity.
func Find[T Extension](entity Extensible) (T, bool) {
	var zero T
	if entity == nil {
		return zero, false
	}
	found := entity.FindExtension(Is[T]())
	if found == nil {
		return zero, false
	}
	return found.(T), true
}
