package calculator

import (
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go-chi-calculator/internal/handlers"
)

// APIVersion is reported by the documentation endpoint.
const APIVersion = "1.0.0"

// Documentation is the JSON body of GET /.
type Documentation struct {
	Message     string                 `json:"message"`
	Version     string                 `json:"version"`
	Endpoints   map[string]EndpointDoc `json:"endpoints"`
	Order       []string               `json:"-"`
	HealthCheck string                 `json:"healthCheck"`
	Note        string                 `json:"note"`
}

// EndpointDoc documents one operation endpoint.
type EndpointDoc struct {
	Method      string            `json:"method"`
	Path        string            `json:"path"`
	Description string            `json:"description"`
	Parameters  map[string]string `json:"parameters"`
	Aliases     map[string]string `json:"aliases,omitempty"`
	Example     string            `json:"example"`
}

// Paths lists every calculator endpoint path, including /chain.
func Paths() []string {
	paths := make([]string, 0, len(operations)+1)
	for _, op := range operations {
		paths = append(paths, "/"+op.Name)
	}
	return append(paths, "/chain")
}

// BaseURL reconstructs the externally visible scheme and host of r.
func BaseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host
}

func exampleQuery(op Operation) string {
	q := make([]string, len(op.Params))
	for i, p := range op.Params {
		q[i] = url.QueryEscape(p.Name) + "=" + strconv.FormatFloat(op.Example[i], 'f', -1, 64)
	}
	return "/" + op.Name + "?" + strings.Join(q, "&")
}

func buildDocumentation(baseURL string) Documentation {
	doc := Documentation{
		Message:     "Calculator Microservice API",
		Version:     APIVersion,
		Endpoints:   make(map[string]EndpointDoc, len(operations)),
		HealthCheck: baseURL + "/health",
		Note:        "All operation endpoints take their operands as query parameters",
	}

	for _, op := range operations {
		ed := EndpointDoc{
			Method:      http.MethodGet,
			Path:        "/" + op.Name,
			Description: op.Description,
			Parameters:  make(map[string]string, len(op.Params)),
			Example:     baseURL + exampleQuery(op),
		}
		for _, p := range op.Params {
			ed.Parameters[p.Name] = p.Hint
			if len(p.Aliases) > 0 {
				if ed.Aliases == nil {
					ed.Aliases = make(map[string]string)
				}
				ed.Aliases[p.Name] = strings.Join(p.Aliases, ", ")
			}
		}
		doc.Endpoints[op.Name] = ed
		doc.Order = append(doc.Order, op.Name)
	}

	return doc
}

var docsTemplate = template.Must(template.New("docs").Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>{{.Message}}</title></head>
<body>
<h1>{{.Message}} <small>v{{.Version}}</small></h1>
<p>{{.Note}}</p>
<table>
<tr><th>Method</th><th>Path</th><th>Parameters</th><th>Description</th><th>Example</th></tr>
{{- range $name := .Order}}{{with index $.Endpoints $name}}
<tr>
<td>{{.Method}}</td>
<td><code>{{.Path}}</code></td>
<td>{{range $p, $hint := .Parameters}}<code>{{$p}}</code>: {{$hint}}<br>{{end}}</td>
<td>{{.Description}}</td>
<td><a href="{{.Example}}">{{.Example}}</a></td>
</tr>
{{- end}}{{end}}
</table>
<p>Health check: <a href="{{.HealthCheck}}">{{.HealthCheck}}</a></p>
</body>
</html>
`))

// Docs handles GET /. Browsers asking for text/html get a rendered page,
// everyone else JSON.
func (h *Handler) Docs(w http.ResponseWriter, r *http.Request) {
	doc := buildDocumentation(BaseURL(r))

	if !strings.Contains(r.Header.Get("Accept"), "text/html") {
		handlers.WriteJSON(w, http.StatusOK, doc)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if err := docsTemplate.Execute(w, doc); err != nil {
		h.sink.Record(r.Context(), Event{Operation: "docs", Err: err})
	}
}
