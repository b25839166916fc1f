// Package shell serves the calculator as a plain HTML page: a display and a
// form of keypad buttons. Every button press is a form POST that is applied
// to the session and redirected back to the page. The home page is
// stateless; a session is opened by the first press.
package shell

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"go-chi-calculator/internal/calculator"
	"go-chi-calculator/internal/handlers"
	"go-chi-calculator/internal/observability"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templates embed.FS

type Shell struct {
	svc  *calculator.Service
	page *template.Template
}

type pageData struct {
	Display  string
	PressURL string
	Keypad   [][]calculator.Button
}

func New(svc *calculator.Service) (*Shell, error) {
	page, err := template.ParseFS(templates, "templates/calculator.html")
	if err != nil {
		return nil, fmt.Errorf("parsing shell template: %w", err)
	}
	return &Shell{svc: svc, page: page}, nil
}

// RegisterRoutes mounts the HTML pages at / and /ui.
func (s *Shell) RegisterRoutes(r chi.Router) {
	r.Get("/", s.Home)
	r.Post("/ui", s.Start)
	r.Get("/ui/{id}", s.Page)
	r.Post("/ui/{id}/press", s.Press)
}

// Home handles GET / by rendering a fresh keypad. No session exists until
// the first button is pressed.
func (s *Shell) Home(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, "", calculator.NewMachine().Display(), startURL)
}

// Start handles POST /ui: the first press from the home page opens a session
// and applies the key to it.
func (s *Shell) Start(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	key := r.PostForm.Get("key")
	if _, err := calculator.ParseKey(key); err != nil {
		handlers.WriteError(w, calculator.StatusFor(err), err.Error())
		return
	}

	id, _, err := s.svc.Create(r.Context())
	if err != nil {
		handlers.WriteError(w, calculator.StatusFor(err), err.Error())
		return
	}
	s.press(w, r, id, key)
}

// Page handles GET /ui/{id}
func (s *Shell) Page(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	state, err := s.svc.State(r.Context(), id)
	if errors.Is(err, calculator.ErrSessionNotFound) {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	if err != nil {
		handlers.WriteError(w, calculator.StatusFor(err), err.Error())
		return
	}

	s.render(w, r, id, state.Display, pageURL(id)+"/press")
}

func (s *Shell) render(w http.ResponseWriter, r *http.Request, id, display, pressURL string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := s.page.Execute(w, pageData{
		Display:  display,
		PressURL: pressURL,
		Keypad:   calculator.Keypad,
	})
	if err != nil {
		observability.LoggerWithTrace(r.Context()).Error("rendering calculator page",
			zap.String("session_id", id),
			zap.Error(err),
		)
	}
}

// Press handles POST /ui/{id}/press
func (s *Shell) Press(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := r.ParseForm(); err != nil {
		handlers.WriteError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	s.press(w, r, id, r.PostForm.Get("key"))
}

func (s *Shell) press(w http.ResponseWriter, r *http.Request, id, key string) {
	_, err := s.svc.Press(r.Context(), id, key)
	switch {
	case errors.Is(err, calculator.ErrSessionNotFound):
		http.Redirect(w, r, "/", http.StatusSeeOther)
	case err != nil:
		handlers.WriteError(w, calculator.StatusFor(err), err.Error())
	default:
		http.Redirect(w, r, pageURL(id), http.StatusSeeOther)
	}
}

const startURL = "/ui"

func pageURL(id string) string {
	return "/ui/" + id
}
