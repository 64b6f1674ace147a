package render

import (
	"bytes"
	"fmt"
	"html/template"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/drblury/hyperweave/hypermedia"
	"github.com/drblury/hyperweave/jsonutil"
)

// HTML renders the document as a navigable hypertext page: properties as a
// definition list, embedded relations as sections rendered recursively,
// one generated form per action template, and a navigation block with the
// document's links (self suppressed). All content is escaped.
func HTML(doc *hypermedia.Document) ([]byte, error) {
	var buf bytes.Buffer
	err := pageTemplate.ExecuteTemplate(&buf, "page", pageData{
		Title:    documentTitle(doc),
		Document: doc,
	})
	if err != nil {
		return nil, fmt.Errorf("render: html template failed: %w", err)
	}
	return buf.Bytes(), nil
}

// HTMLProblem renders an error as hypertext: the problem fields as a
// definition list, the violations as a list, and the navigation links so
// the client is not stranded on a dead page.
func HTMLProblem(p Problem) ([]byte, error) {
	var buf bytes.Buffer
	err := pageTemplate.ExecuteTemplate(&buf, "problem-page", problemPageData{
		Problem: p,
		Nav:     problemNav(p.Links),
	})
	if err != nil {
		return nil, fmt.Errorf("render: problem template failed: %w", err)
	}
	return buf.Bytes(), nil
}

type pageData struct {
	Title    string
	Document *hypermedia.Document
}

type problemPageData struct {
	Problem Problem
	Nav     []navLink
}

type navLink struct {
	Href      string
	Text      string
	Type      string
	Templated bool
}

func documentTitle(doc *hypermedia.Document) string {
	for _, prop := range doc.Properties() {
		if prop.Name != "title" && prop.Name != "name" {
			continue
		}
		if s, ok := prop.Value.(string); ok && s != "" {
			return s
		}
	}
	if link, ok := doc.Link(hypermedia.SelfRel); ok && link.Title != "" {
		return link.Title
	}
	return "Resource"
}

func docNav(doc *hypermedia.Document) []navLink {
	var nav []navLink
	for _, group := range doc.LinkGroups() {
		if group.Rel == hypermedia.SelfRel {
			continue
		}
		for _, link := range group.Links {
			nav = append(nav, navLink{
				Href:      link.Href,
				Text:      linkText(group.Rel, link),
				Type:      link.Type,
				Templated: link.Templated,
			})
		}
	}
	return nav
}

func problemNav(links hypermedia.Links) []navLink {
	rels := make([]string, 0, len(links))
	for rel := range links {
		if rel == hypermedia.SelfRel {
			continue
		}
		rels = append(rels, rel)
	}
	sort.Strings(rels)

	var nav []navLink
	for _, rel := range rels {
		for _, link := range links[rel] {
			nav = append(nav, navLink{Href: link.Href, Text: linkText(rel, link), Type: link.Type})
		}
	}
	return nav
}

func linkText(rel string, link hypermedia.Link) string {
	if link.Title != "" {
		return link.Title
	}
	return humanize(rel)
}

func humanize(name string) string {
	cleaned := strings.NewReplacer("-", " ", "_", " ").Replace(name)
	if cleaned == "" {
		return cleaned
	}
	return strings.ToUpper(cleaned[:1]) + cleaned[1:]
}

// renderValue formats a property value for hypertext. Strings that parse as
// RFC 3339 timestamps render as readable local date/time; arrays and nested
// objects render as an inline code block instead of being flattened into
// ambiguous prose.
func renderValue(v any) template.HTML {
	switch val := v.(type) {
	case nil:
		return ""
	case time.Time:
		return escaped(formatTime(val))
	case string:
		if t, err := time.Parse(time.RFC3339, val); err == nil {
			return escaped(formatTime(t))
		}
		return escaped(val)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return escaped(fmt.Sprint(v))
	}

	data, err := jsonutil.Marshal(v)
	if err != nil {
		return escaped(fmt.Sprint(v))
	}
	return template.HTML("<code>" + template.HTMLEscapeString(string(data)) + "</code>")
}

func escaped(s string) template.HTML {
	return template.HTML(template.HTMLEscapeString(s))
}

func formatTime(t time.Time) string {
	return t.Local().Format("January 2, 2006 15:04 MST")
}

func isHidden(p hypermedia.TemplateProperty) bool {
	return p.Type == hypermedia.InputHidden
}

func isSelect(p hypermedia.TemplateProperty) bool {
	return p.Type == hypermedia.InputSelect || len(p.Options) > 0
}

func isTextarea(p hypermedia.TemplateProperty) bool {
	return p.Type == hypermedia.InputTextarea
}

func inputAttr(t hypermedia.InputType) string {
	switch t {
	case "", hypermedia.InputSelect, hypermedia.InputTextarea:
		return string(hypermedia.InputText)
	default:
		return string(t)
	}
}

var pageTemplate = template.Must(template.New("hypertext").Funcs(template.FuncMap{
	"renderValue": renderValue,
	"humanize":    humanize,
	"docNav":      docNav,
	"isHidden":    isHidden,
	"isSelect":    isSelect,
	"isTextarea":  isTextarea,
	"inputAttr":   inputAttr,
}).Parse(hypertextTemplates))

const hypertextTemplates = `
{{define "page"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
<main>
{{template "document" .Document}}</main>
</body>
</html>
{{end}}

{{define "document"}}
{{- if .Properties}}
<dl class="properties">
{{- range .Properties}}
<dt>{{humanize .Name}}</dt>
<dd>{{renderValue .Value}}</dd>
{{- end}}
</dl>
{{- end}}
{{- range .EmbedGroups}}
<section class="embedded">
<h2>{{humanize .Rel}}</h2>
{{- range .Documents}}
<article>
{{template "document" .}}</article>
{{- end}}
</section>
{{- end}}
{{- range .Templates}}
<form class="template" method="{{.Method}}" action="{{.Target}}"{{if .ContentType}} enctype="{{.ContentType}}"{{end}}>
<h2>{{if .Title}}{{.Title}}{{else}}{{humanize .Key}}{{end}}</h2>
{{- range .Properties}}
{{template "formfield" .}}
{{- end}}
<button type="submit">{{if .Title}}{{.Title}}{{else}}{{humanize .Key}}{{end}}</button>
</form>
{{- end}}
{{- with docNav .}}
<nav>
<ul>
{{- range .}}
<li><a href="{{.Href}}"{{if .Type}} type="{{.Type}}"{{end}}>{{.Text}}</a></li>
{{- end}}
</ul>
</nav>
{{- end}}
{{end}}

{{define "formfield"}}
{{- if isHidden .}}
<input type="hidden" name="{{.Name}}" value="{{.Value}}">
{{- else}}
<label>{{if .Prompt}}{{.Prompt}}{{else}}{{humanize .Name}}{{end}}{{if .Required}} <span class="required">*</span>{{end}}
{{- if isSelect .}}
<select name="{{.Name}}"{{if .Required}} required{{end}}>
{{- range .Options}}
<option value="{{.Value}}"{{if eq .Value $.Value}} selected{{end}}>{{if .Prompt}}{{.Prompt}}{{else}}{{.Value}}{{end}}</option>
{{- end}}
</select>
{{- else if isTextarea .}}
<textarea name="{{.Name}}"{{if .Required}} required{{end}}>{{.Value}}</textarea>
{{- else}}
<input type="{{inputAttr .Type}}" name="{{.Name}}" value="{{.Value}}"{{if .Required}} required{{end}}{{if .Regex}} pattern="{{.Regex}}"{{end}}{{if gt .MinLength 0}} minlength="{{.MinLength}}"{{end}}{{if gt .MaxLength 0}} maxlength="{{.MaxLength}}"{{end}}>
{{- end}}
</label>
{{- end}}
{{end}}

{{define "problem-page"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Problem.Status}} {{.Problem.Title}}</title>
</head>
<body>
<main>
<h1>{{.Problem.Title}}</h1>
<dl class="problem">
<dt>Status</dt>
<dd>{{.Problem.Status}}</dd>
{{- with .Problem.Detail}}
<dt>Detail</dt>
<dd>{{.}}</dd>
{{- end}}
{{- with .Problem.Instance}}
<dt>Instance</dt>
<dd>{{.}}</dd>
{{- end}}
{{- with .Problem.Timestamp}}
<dt>Timestamp</dt>
<dd>{{renderValue .}}</dd>
{{- end}}
{{- with .Problem.TraceID}}
<dt>Trace ID</dt>
<dd>{{.}}</dd>
{{- end}}
</dl>
{{- with .Problem.Violations}}
<ul class="violations">
{{- range .}}
<li><strong>{{.Field}}</strong>: {{.Message}}</li>
{{- end}}
</ul>
{{- end}}
{{- with .Nav}}
<nav>
<ul>
{{- range .}}
<li><a href="{{.Href}}">{{.Text}}</a></li>
{{- end}}
</ul>
</nav>
{{- end}}
</main>
</body>
</html>
{{end}}
`
