package annotation

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/abiosoft/mold"
)

const layoutTemplate = "layouts/layout.html"

// TemplateManager renders pages inside the shared layout
type TemplateManager struct {
	engine mold.Engine
}

// NewTemplateManager parses every template under fsys
func NewTemplateManager(fsys fs.FS, funcMap template.FuncMap) (*TemplateManager, error) {
	engine, err := mold.New(fsys,
		mold.WithLayout(layoutTemplate),
		mold.WithFuncMap(funcMap),
	)
	if err != nil {
		return nil, fmt.Errorf("while parsing templates: %w", err)
	}
	return &TemplateManager{engine: engine}, nil
}

// Render executes pages/<pageName>.html
func (tm *TemplateManager) Render(w io.Writer, pageName string, data any) error {
	if err := tm.engine.Render(w, "pages/"+pageName+".html", data); err != nil {
		return fmt.Errorf("while rendering page '%s': %w", pageName, err)
	}
	return nil
}
