package hypermedia

// SelfRel is the conventional relation pointing at the resource itself.
const SelfRel = "self"

// Link describes one navigable relation target.
type Link struct {
	Href      string
	Title     string
	Type      string
	Templated bool
}

// Links maps a relation name to one or more link objects. Most relations
// carry a single link; collections of alternates use Add.
type Links map[string][]Link

// NewLinks returns an empty, ready-to-fill link set.
func NewLinks() Links {
	return make(Links)
}

// Set replaces the relation with a single link and returns the set for
// chaining.
func (l Links) Set(rel string, link Link) Links {
	l[rel] = []Link{link}
	return l
}

// Add appends a link to the relation and returns the set for chaining.
func (l Links) Add(rel string, link Link) Links {
	l[rel] = append(l[rel], link)
	return l
}

// Self is shorthand for setting the self relation.
func (l Links) Self(href string) Links {
	return l.Set(SelfRel, Link{Href: href})
}

func (l Links) clone() Links {
	if len(l) == 0 {
		return NewLinks()
	}
	cloned := make(Links, len(l))
	for rel, links := range l {
		copied := make([]Link, len(links))
		copy(copied, links)
		cloned[rel] = copied
	}
	return cloned
}
