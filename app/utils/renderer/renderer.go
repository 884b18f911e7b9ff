// renderer/renderer.go
package renderer

import (
	"github.com/unrolled/render"
)

// New builds the response renderer. Pages are served as JSON view models;
// HTML templates are not part of this service.
func New(development bool) *render.Render {
	return render.New(render.Options{
		Directory:         "templates",
		Extensions:        []string{".html"},
		IndentJSON:        development,
		BinaryContentType: "application/pdf",
	})
}
