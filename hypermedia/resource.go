// Package hypermedia defines the resource model and the serialization
// algorithm that turns a backing domain object into a self-describing
// document carrying data, links, embedded sub-resources, and HAL-FORMS
// style action templates.
//
// Adapters declare their properties as an ordered table of lazily evaluated
// fields rather than a flat snapshot: values are computed at serialization
// time, so a document always reflects the current state of the backing
// object, and adapters compose (one embedding another) without copying
// data.
package hypermedia

// Field is one entry of an adapter's property table. Value is evaluated at
// serialization time; a nil func or a nil result omits the property from
// the document.
type Field struct {
	Name  string
	Value func() any
}

// Resource is the adapter contract every hypermedia-served domain object
// implements. Links is mandatory (every resource is navigable); the
// property table may be empty.
type Resource interface {
	Links() Links
	Fields() []Field
}

// Embed names a relation holding nested resources rendered inline.
type Embed struct {
	Rel       string
	Resources []Resource
}

// Embedder is implemented by resources that carry inline sub-resources.
type Embedder interface {
	Embedded() []Embed
}

// Templater is implemented by resources that expose action templates.
type Templater interface {
	Templates() []Template
}
