package schema

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Property is one named member of an Object.
type Property struct {
	Type     Node
	Optional bool
}

// Object is a structural type with ordered, uniquely named properties.
type Object struct {
	props *orderedmap.OrderedMap[string, Property]
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{props: orderedmap.New[string, Property]()}
}

// Set adds or replaces a property. Replacing keeps the original position.
func (o *Object) Set(name string, p Property) {
	o.props.Set(name, p)
}

// Get returns the named property.
func (o *Object) Get(name string) (Property, bool) {
	return o.props.Get(name)
}

// Has reports whether the property exists.
func (o *Object) Has(name string) bool {
	_, ok := o.props.Get(name)
	return ok
}

// Len returns the number of properties.
func (o *Object) Len() int {
	return o.props.Len()
}

// Keys returns property names in order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, o.props.Len())
	for pair := o.props.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	return keys
}

// Each calls fn for every property in order until fn returns false.
func (o *Object) Each(fn func(name string, p Property) bool) {
	for pair := o.props.Oldest(); pair != nil; pair = pair.Next() {
		if !fn(pair.Key, pair.Value) {
			return
		}
	}
}

// Merge copies every property of other into o, in other's order.
func (o *Object) Merge(other *Object) {
	other.Each(func(name string, p Property) bool {
		o.Set(name, p)
		return true
	})
}

// Filter returns a new Object holding the properties for which keep returns
// true, in their original order.
func (o *Object) Filter(keep func(name string) bool) *Object {
	out := NewObject()
	o.Each(func(name string, p Property) bool {
		if keep(name) {
			out.Set(name, p)
		}
		return true
	})
	return out
}

// Map returns a new Object with every property rewritten by fn.
func (o *Object) Map(fn func(name string, p Property) Property) *Object {
	out := NewObject()
	o.Each(func(name string, p Property) bool {
		out.Set(name, fn(name, p))
		return true
	})
	return out
}
