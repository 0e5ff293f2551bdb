package web

import (
	"embed"
	"html/template"
	"net/http"

	"inkwell/svc/util"
)

//go:embed templates/*.html
var templateFS embed.FS

// page carries everything a view needs: session state, the one-shot flash,
// and the page-specific fields. Handlers fill it explicitly instead of
// templates reaching into ambient state.
type page struct {
	Flash    string
	SignedIn bool
	Username string
	Files    []string
	Filename string
	Content  string
	Body     template.HTML
}

type templates struct {
	pages map[string]*template.Template
}

func parseTemplates() *templates {
	names := []string{"index", "new", "edit", "signin", "account", "view"}
	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		pages[name] = template.Must(template.ParseFS(
			templateFS,
			"templates/layout.html",
			"templates/"+name+".html",
		))
	}
	return &templates{pages: pages}
}

func (t *templates) render(w http.ResponseWriter, status int, name string, p page) {
	tpl, ok := t.pages[name]
	if !ok {
		util.Error().Str("template", name).Msg("unknown template")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tpl.Execute(w, p); err != nil {
		util.Error().Err(err).Str("template", name).Msg("template execution failed")
	}
}
