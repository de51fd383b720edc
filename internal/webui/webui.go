// Package webui serves a single page form that runs a roster scrape and
// hands the result back as a file download.
package webui

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"mime"
	"net/http"
	"strings"
	"ufsc-matriculas/internal/components/telemetry"
	"ufsc-matriculas/internal/roster"
	"ufsc-matriculas/internal/scrapers/cagr"
)

const report_webui_run = "webui.run"

const (
	messageAuthError    = "Erro de autenticação."
	messageMissingField = "Informe o idUFSC e a senha."
	messageRunError     = "Não foi possível listar as matrículas, tente novamente mais tarde."
)

//go:embed templates/index.html
var templates embed.FS

var indexTemplate = template.Must(template.ParseFS(templates, "templates/index.html"))

type page struct {
	Action    string
	Username  string
	Prefix    string
	Error     string
	BatchSize int
}

type Server struct {
	runner    roster.Runner
	tel       telemetry.API
	batchSize int
}

func NewServer(login roster.LoginFunc, batchSize int, tel telemetry.API) Server {
	if tel == nil {
		tel = telemetry.SlogAPI{}
	}
	if batchSize <= 0 {
		batchSize = roster.DefaultBatchSize
	}
	return Server{
		runner:    roster.NewRunner(login, tel),
		tel:       telemetry.NewScopedAPI("webui", tel),
		batchSize: batchSize,
	}
}

// Mux routes the form under /.
func (s Server) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/", s)
	return mux
}

func (s Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		s.render(w, http.StatusOK, page{})
	case http.MethodPost:
		s.run(w, r)
	default:
		w.Header().Set("Allow", "GET, HEAD, POST")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	}
}

func (s Server) render(w http.ResponseWriter, status int, p page) {
	p.Action = "/"
	p.BatchSize = s.batchSize

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	err := indexTemplate.Execute(w, p)
	if err != nil {
		s.tel.ReportBroken(report_webui_run, fmt.Errorf("render: %w", err))
	}
}

func (s Server) run(w http.ResponseWriter, r *http.Request) {
	err := r.ParseForm()
	if err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	// the prefix is applied exactly as typed
	req := roster.Request{
		Username: strings.TrimSpace(r.PostForm.Get("username")),
		Password: r.PostForm.Get("password"),
		Prefix:   r.PostForm.Get("prefix"),
	}
	form := page{Username: req.Username, Prefix: req.Prefix}

	if req.Username == "" || req.Password == "" {
		form.Error = messageMissingField
		s.render(w, http.StatusBadRequest, form)
		return
	}

	result, err := s.runner.Run(r.Context(), req)
	if errors.Is(err, cagr.ErrAuth) {
		form.Error = messageAuthError
		s.render(w, http.StatusUnauthorized, form)
		return
	}
	if err != nil {
		s.tel.ReportBroken(report_webui_run, err)
		form.Error = messageRunError
		s.render(w, http.StatusBadGateway, form)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": roster.FileName(result.Prefix),
	}))
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, roster.Contents(result.StudentIds))
}
