package hypermedia

import (
	"sort"
	"strings"
)

// ReservedPrefix marks wire-level keys (_links, _embedded, _templates) that
// plain properties must never collide with.
const ReservedPrefix = "_"

// Property is one serialized name/value pair of a document.
type Property struct {
	Name  string
	Value any
}

// LinkGroup is one serialized relation with its links, in render order.
type LinkGroup struct {
	Rel   string
	Links []Link
}

// EmbedGroup is one serialized embedded relation with its documents.
type EmbedGroup struct {
	Rel       string
	Documents []*Document
}

// Document is the wire-level representation of a resource: ordered
// properties plus the reserved _links, _embedded, and _templates sections.
// Renderers consume it; callers obtain one via ToDocument.
type Document struct {
	properties []Property
	links      []LinkGroup
	embedded   []EmbedGroup
	templates  []Template
}

// Properties returns the ordered property list.
func (d *Document) Properties() []Property { return d.properties }

// LinkGroups returns the ordered link relations, self first.
func (d *Document) LinkGroups() []LinkGroup { return d.links }

// EmbedGroups returns the embedded relations in declaration order.
func (d *Document) EmbedGroups() []EmbedGroup { return d.embedded }

// Templates returns the action templates in declaration order.
func (d *Document) Templates() []Template { return d.templates }

// Link returns the first link of a relation, if present.
func (d *Document) Link(rel string) (Link, bool) {
	for _, group := range d.links {
		if group.Rel == rel && len(group.Links) > 0 {
			return group.Links[0], true
		}
	}
	return Link{}, false
}

// ToDocument serialises a resource into a document:
//
//  1. the adapter's field table is evaluated in declaration order, skipping
//     nil values and reserved names; on duplicate names the first field wins;
//  2. base navigation links are merged first, then the adapter's own links
//     overlay them, so an adapter-declared relation always wins whole-link
//     on collision;
//  3. embedded resources recurse, templates copy over verbatim; empty
//     sections are omitted entirely.
//
// Base links are the site-wide navigation relations (home, sitemap) every
// document carries so clients are never stranded; pass nil to omit them.
func ToDocument(r Resource, base Links) *Document {
	if r == nil {
		return &Document{}
	}

	doc := &Document{
		properties: evaluateFields(r.Fields()),
		links:      mergeLinks(base, r.Links()),
	}

	if embedder, ok := r.(Embedder); ok {
		doc.embedded = embedGroups(embedder.Embedded(), base)
	}

	if templater, ok := r.(Templater); ok {
		if templates := templater.Templates(); len(templates) > 0 {
			doc.templates = append(doc.templates, templates...)
		}
	}

	return doc
}

func evaluateFields(fields []Field) []Property {
	if len(fields) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(fields))
	properties := make([]Property, 0, len(fields))
	for _, field := range fields {
		if field.Name == "" || field.Value == nil {
			continue
		}
		if strings.HasPrefix(field.Name, ReservedPrefix) {
			continue
		}
		if _, dup := seen[field.Name]; dup {
			continue
		}

		value := field.Value()
		if value == nil {
			continue
		}

		seen[field.Name] = struct{}{}
		properties = append(properties, Property{Name: field.Name, Value: value})
	}

	if len(properties) == 0 {
		return nil
	}
	return properties
}

func mergeLinks(base, own Links) []LinkGroup {
	merged := base.clone()
	for rel, links := range own {
		if len(links) == 0 {
			continue
		}
		copied := make([]Link, len(links))
		copy(copied, links)
		merged[rel] = copied
	}

	if len(merged) == 0 {
		return nil
	}

	rels := make([]string, 0, len(merged))
	for rel := range merged {
		if rel == SelfRel {
			continue
		}
		rels = append(rels, rel)
	}
	sort.Strings(rels)

	groups := make([]LinkGroup, 0, len(merged))
	if links, ok := merged[SelfRel]; ok {
		groups = append(groups, LinkGroup{Rel: SelfRel, Links: links})
	}
	for _, rel := range rels {
		groups = append(groups, LinkGroup{Rel: rel, Links: merged[rel]})
	}
	return groups
}

func embedGroups(embeds []Embed, base Links) []EmbedGroup {
	groups := make([]EmbedGroup, 0, len(embeds))
	for _, embed := range embeds {
		if embed.Rel == "" || len(embed.Resources) == 0 {
			continue
		}
		documents := make([]*Document, 0, len(embed.Resources))
		for _, resource := range embed.Resources {
			if resource == nil {
				continue
			}
			documents = append(documents, ToDocument(resource, base))
		}
		if len(documents) == 0 {
			continue
		}
		groups = append(groups, EmbedGroup{Rel: embed.Rel, Documents: documents})
	}

	if len(groups) == 0 {
		return nil
	}
	return groups
}
