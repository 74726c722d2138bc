package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"placeReviewsAPI/internal/types/place"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	Title            = "Középfölde TripAdvisor"
	NoReviewsMessage = "Még nincsenek értékelések"
	Credit           = "Készítette: Lengyel-Barsi Dominik"
)

// Page is everything a render depends on.
type Page struct {
	Places []place.Place
	State  State
	Admin  bool
	Notice string
}

type listData struct {
	Title     string
	Places    []place.Place
	Admin     bool
	Notice    string
	Credit    string
	NoReviews string
}

type detailData struct {
	Title     string
	Place     place.Place
	Admin     bool
	Notice    string
	NoReviews string
}

type loginData struct {
	Title  string
	Notice string
}

type Renderer struct {
	list   *template.Template
	detail *template.Template
	login  *template.Template
}

func NewRenderer() (*Renderer, error) {
	funcs := template.FuncMap{
		"stars": place.Stars,
	}

	parse := func(page string) (*template.Template, error) {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", page, err)
		}
		return t, nil
	}

	list, err := parse("list.html")
	if err != nil {
		return nil, err
	}
	detail, err := parse("detail.html")
	if err != nil {
		return nil, err
	}
	login, err := parse("login.html")
	if err != nil {
		return nil, err
	}

	return &Renderer{list: list, detail: detail, login: login}, nil
}

// Render writes the page for p. A detail state whose place no longer exists
// renders the list instead.
func (r *Renderer) Render(w io.Writer, p Page) error {
	state, selected := p.State.Resolve(p.Places)
	if state.IsDetail() {
		return r.detail.Execute(w, detailData{
			Title:     selected.Name,
			Place:     *selected,
			Admin:     p.Admin,
			Notice:    p.Notice,
			NoReviews: NoReviewsMessage,
		})
	}

	return r.list.Execute(w, listData{
		Title:     Title,
		Places:    p.Places,
		Admin:     p.Admin,
		Notice:    p.Notice,
		Credit:    Credit,
		NoReviews: NoReviewsMessage,
	})
}

func (r *Renderer) RenderLogin(w io.Writer, notice string) error {
	return r.login.Execute(w, loginData{Title: Title, Notice: notice})
}
