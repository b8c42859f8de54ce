package annotation

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/russross/blackfriday/v2"

	"github.com/lewtec/parelha/internal/domain"
)

var (
	//go:embed templates
	templateFS embed.FS

	//go:embed assets/style.css
	cssContent string

	//go:embed assets/favicon.svg
	faviconContent string

	markdownRenderer = blackfriday.NewHTMLRenderer(blackfriday.HTMLRendererParameters{
		Flags: blackfriday.CommonHTMLFlags | blackfriday.SkipHTML,
	})

	// TemplateFuncMap holds the functions every template can use
	TemplateFuncMap = template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		"t":   Localize,
		"markdown": func(text string) template.HTML {
			return template.HTML(blackfriday.Run([]byte(text), blackfriday.WithRenderer(markdownRenderer)))
		},
		"percent": func(fraction float64) string {
			return fmt.Sprintf("%.0f%%", fraction*100)
		},
		"deadline": func(l *i18n.Localizer, t *domain.Timestamp) string {
			if t == nil || t.IsZero() {
				return Localize(l, "tasks.no_deadline")
			}
			return t.Format("2006-01-02")
		},
		"statusLabel": func(l *i18n.Localizer, status TaskStatus) string {
			return Localize(l, "status."+string(status))
		},
	}

	templateManager *TemplateManager
)

func init() {
	templates, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic(err)
	}
	templateManager, err = NewTemplateManager(templates, TemplateFuncMap)
	if err != nil {
		panic(err)
	}
}

// RenderPage renders a page with the layout data every page needs
func RenderPage(w http.ResponseWriter, r *http.Request, status int, pageName string, data map[string]any) error {
	if data == nil {
		data = make(map[string]any)
	}
	data["CSS"] = template.CSS(cssContent)
	data["L"] = GetLocalizerFromContext(r.Context())
	if ws := GetWorkspace(r.Context()); ws != nil {
		data["Notices"] = ws.Notices()
		data["NoticeSeconds"] = ws.noticeTTL.Seconds()
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	// buffered so a failing template never leaves a half-written page
	var buf bytes.Buffer
	if err := templateManager.Render(&buf, pageName, data); err != nil {
		return err
	}
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// GetFavicon returns the embedded favicon
func GetFavicon() string {
	return faviconContent
}
