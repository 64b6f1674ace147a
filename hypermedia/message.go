package hypermedia

// Message is a generic resource for ad hoc payloads: confirmation messages,
// status blurbs, anything without a dedicated adapter type. Properties are
// attached at construction time and keep their insertion order.
type Message struct {
	links  Links
	names  []string
	values map[string]any
}

// NewMessage returns an empty message resource with no links.
func NewMessage() *Message {
	return &Message{
		links:  NewLinks(),
		values: make(map[string]any),
	}
}

// Set attaches a property, preserving first-insertion order on repeated
// writes, and returns the message for chaining.
func (m *Message) Set(name string, value any) *Message {
	if name == "" {
		return m
	}
	if _, exists := m.values[name]; !exists {
		m.names = append(m.names, name)
	}
	m.values[name] = value
	return m
}

// SetLink attaches a link relation and returns the message for chaining.
func (m *Message) SetLink(rel string, link Link) *Message {
	m.links.Set(rel, link)
	return m
}

// Self sets the self link and returns the message for chaining.
func (m *Message) Self(href string) *Message {
	m.links.Self(href)
	return m
}

// Links implements Resource.
func (m *Message) Links() Links {
	return m.links
}

// Fields implements Resource. The returned closures read through to the
// message, so values set after Fields is called still serialize.
func (m *Message) Fields() []Field {
	fields := make([]Field, 0, len(m.names))
	for _, name := range m.names {
		name := name
		fields = append(fields, Field{
			Name:  name,
			Value: func() any { return m.values[name] },
		})
	}
	return fields
}
