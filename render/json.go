// Package render turns hypermedia documents into wire bytes: structured
// data (HAL JSON with HAL-FORMS templates) for machine clients and
// navigable HTML for browsers. Output is deterministic so that repeated
// renderings of an unchanged resource produce byte-identical bodies; the
// conditional caching layer fingerprints these bytes.
package render

import (
	"bytes"
	"fmt"

	"github.com/drblury/hyperweave/hypermedia"
	"github.com/drblury/hyperweave/jsonutil"
)

const jsonIndent = "  "

type linkJSON struct {
	Href      string `json:"href"`
	Title     string `json:"title,omitempty"`
	Type      string `json:"type,omitempty"`
	Templated bool   `json:"templated,omitempty"`
}

type templateJSON struct {
	Title       string                 `json:"title,omitempty"`
	Method      string                 `json:"method"`
	Target      string                 `json:"target"`
	ContentType string                 `json:"contentType,omitempty"`
	Properties  []templatePropertyJSON `json:"properties,omitempty"`
}

type templatePropertyJSON struct {
	Name      string       `json:"name"`
	Prompt    string       `json:"prompt,omitempty"`
	Required  bool         `json:"required,omitempty"`
	Value     string       `json:"value,omitempty"`
	Type      string       `json:"type,omitempty"`
	Regex     string       `json:"regex,omitempty"`
	MinLength int          `json:"minLength,omitempty"`
	MaxLength int          `json:"maxLength,omitempty"`
	Options   []optionJSON `json:"options,omitempty"`
}

type optionJSON struct {
	Value  string `json:"value"`
	Prompt string `json:"prompt,omitempty"`
}

// JSON renders the document as pretty-printed HAL JSON. Properties come
// first in their declared order, followed by the reserved _links,
// _embedded, and _templates sections. Empty sections are omitted.
func JSON(doc *hypermedia.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeDocumentJSON(&buf, doc, ""); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func writeDocumentJSON(buf *bytes.Buffer, doc *hypermedia.Document, prefix string) error {
	w := objectWriter{buf: buf, prefix: prefix}
	w.open()

	for _, prop := range doc.Properties() {
		if err := w.member(prop.Name, prop.Value); err != nil {
			return err
		}
	}

	if groups := doc.LinkGroups(); len(groups) > 0 {
		w.key("_links")
		links := objectWriter{buf: buf, prefix: prefix + jsonIndent}
		links.open()
		for _, group := range groups {
			if err := links.member(group.Rel, linkValue(group.Links)); err != nil {
				return err
			}
		}
		links.close()
	}

	if groups := doc.EmbedGroups(); len(groups) > 0 {
		w.key("_embedded")
		embedded := objectWriter{buf: buf, prefix: prefix + jsonIndent}
		embedded.open()
		for _, group := range groups {
			embedded.key(group.Rel)
			if err := writeEmbeddedJSON(buf, group.Documents, prefix+jsonIndent+jsonIndent); err != nil {
				return err
			}
		}
		embedded.close()
	}

	if templates := doc.Templates(); len(templates) > 0 {
		w.key("_templates")
		forms := objectWriter{buf: buf, prefix: prefix + jsonIndent}
		forms.open()
		for _, tmpl := range templates {
			if err := forms.member(tmpl.Key, templateValue(tmpl)); err != nil {
				return err
			}
		}
		forms.close()
	}

	w.close()
	return nil
}

func writeEmbeddedJSON(buf *bytes.Buffer, documents []*hypermedia.Document, prefix string) error {
	if len(documents) == 1 {
		return writeDocumentJSON(buf, documents[0], prefix)
	}

	buf.WriteString("[\n")
	for i, doc := range documents {
		buf.WriteString(prefix + jsonIndent)
		if err := writeDocumentJSON(buf, doc, prefix+jsonIndent); err != nil {
			return err
		}
		if i < len(documents)-1 {
			buf.WriteByte(',')
		}
		buf.WriteByte('\n')
	}
	buf.WriteString(prefix + "]")
	return nil
}

func linkValue(links []hypermedia.Link) any {
	if len(links) == 1 {
		return toLinkJSON(links[0])
	}
	out := make([]linkJSON, 0, len(links))
	for _, link := range links {
		out = append(out, toLinkJSON(link))
	}
	return out
}

func toLinkJSON(link hypermedia.Link) linkJSON {
	return linkJSON{
		Href:      link.Href,
		Title:     link.Title,
		Type:      link.Type,
		Templated: link.Templated,
	}
}

func templateValue(tmpl hypermedia.Template) templateJSON {
	out := templateJSON{
		Title:       tmpl.Title,
		Method:      tmpl.Method,
		Target:      tmpl.Target,
		ContentType: tmpl.ContentType,
	}
	for _, prop := range tmpl.Properties {
		options := make([]optionJSON, 0, len(prop.Options))
		for _, opt := range prop.Options {
			options = append(options, optionJSON{Value: opt.Value, Prompt: opt.Prompt})
		}
		out.Properties = append(out.Properties, templatePropertyJSON{
			Name:      prop.Name,
			Prompt:    prop.Prompt,
			Required:  prop.Required,
			Value:     prop.Value,
			Type:      string(prop.Type),
			Regex:     prop.Regex,
			MinLength: prop.MinLength,
			MaxLength: prop.MaxLength,
			Options:   options,
		})
	}
	return out
}

// objectWriter emits one JSON object with ordered members at a given
// indentation depth. Member values marshal through jsonutil and get
// re-indented to the current depth.
type objectWriter struct {
	buf     *bytes.Buffer
	prefix  string
	started bool
}

func (w *objectWriter) open() {
	w.buf.WriteByte('{')
}

func (w *objectWriter) key(name string) {
	w.separator()
	encoded, err := jsonutil.Marshal(name)
	if err != nil {
		encoded = []byte(fmt.Sprintf("%q", name))
	}
	w.buf.Write(encoded)
	w.buf.WriteString(": ")
}

func (w *objectWriter) member(name string, value any) error {
	w.key(name)
	encoded, err := jsonutil.MarshalIndent(value, "", jsonIndent)
	if err != nil {
		return fmt.Errorf("render: failed to encode %q: %w", name, err)
	}
	w.buf.Write(reindent(encoded, w.prefix+jsonIndent))
	return nil
}

func (w *objectWriter) separator() {
	if w.started {
		w.buf.WriteByte(',')
	}
	w.started = true
	w.buf.WriteString("\n" + w.prefix + jsonIndent)
}

func (w *objectWriter) close() {
	if w.started {
		w.buf.WriteString("\n" + w.prefix)
	}
	w.buf.WriteByte('}')
}

func reindent(data []byte, prefix string) []byte {
	if prefix == "" {
		return data
	}
	return bytes.ReplaceAll(data, []byte("\n"), []byte("\n"+prefix))
}
