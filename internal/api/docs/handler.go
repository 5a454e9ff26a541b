package docs

import (
	_ "embed"
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

const (
	prefix   = "/docs"
	specPath = prefix + "/swagger.yaml"
)

//go:embed swagger.yaml
var openAPISpec []byte

// RegisterRoutes mounts the OpenAPI document and Swagger UI under /docs.
// The spec route is registered before the UI wildcard so it is not shadowed.
func RegisterRoutes(r chi.Router) {
	r.Get(prefix, http.RedirectHandler(prefix+"/index.html", http.StatusFound).ServeHTTP)
	r.Get(specPath, serveSpec)
	r.Get(prefix+"/*", httpSwagger.Handler(
		httpSwagger.URL(specPath),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DeepLinking(true),
	))
}

func serveSpec(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(openAPISpec)
}
