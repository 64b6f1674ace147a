package info

import (
	"errors"
	"net/http"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/drblury/hyperweave/jsonutil"
	"github.com/drblury/hyperweave/negotiate"
)

// OpenAPIDocument derives an OpenAPI description from the dispatcher's
// route table: one path item per pattern, path parameters from the
// placeholders, both supported response media types declared. The document
// also feeds the optional request-validation middleware.
func (s *Service) OpenAPIDocument() (*openapi3.T, error) {
	if s.d == nil {
		return nil, errors.New("info: service is not bound to a dispatcher")
	}

	version := s.version()["version"]
	if version == "" {
		version = "unversioned"
	}

	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:   s.title,
			Version: version,
		},
		Paths: openapi3.NewPaths(),
	}

	for _, route := range s.d.Routes() {
		pathItem := doc.Paths.Value(route.Pattern)
		if pathItem == nil {
			pathItem = &openapi3.PathItem{}
			doc.Paths.Set(route.Pattern, pathItem)
		}

		operation := openapi3.NewOperation()
		operation.OperationID = route.Name
		operation.Responses = openapi3.NewResponses()
		for _, param := range patternParams(route.Pattern) {
			operation.AddParameter(&openapi3.Parameter{
				Name:     param,
				In:       openapi3.ParameterInPath,
				Required: true,
				Schema:   openapi3.NewSchemaRef("", openapi3.NewStringSchema()),
			})
		}

		pathItem.SetOperation(route.Method, operation)
	}

	return doc, nil
}

func patternParams(pattern string) []string {
	var params []string
	for _, part := range strings.Split(pattern, "/") {
		if strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") && len(part) > 2 {
			params = append(params, part[1:len(part)-1])
		}
	}
	return params
}

// ServeOpenAPI returns a plain handler streaming the generated OpenAPI
// document as JSON. Mount it next to the dispatcher; it is deliberately not
// a hypermedia resource.
func (s *Service) ServeOpenAPI() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		doc, err := s.OpenAPIDocument()
		if err != nil {
			s.log.Error("failed to build openapi document", "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		data, err := jsonutil.MarshalIndent(doc, "", "  ")
		if err != nil {
			s.log.Error("failed to encode openapi document", "error", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", negotiate.MediaJSON)
		if _, err := w.Write(data); err != nil {
			s.log.Error("failed to write openapi document", "error", err)
		}
	})
}
