package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tacogips/dcg/internal/app"
	"github.com/tacogips/dcg/internal/template/engine"
)

// templateRequest is the body of the generate and check endpoints.
type templateRequest struct {
	Template    string `json:"template"`
	Name        string `json:"name"`
	PackageName string `json:"package_name"`
	LineEnding  string `json:"line_ending"`
	Debug       bool   `json:"debug"`
	Format      *bool  `json:"format"`
}

type parameterJSON struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type generateResponse struct {
	Source     string          `json:"source"`
	Parameters []parameterJSON `json:"parameters"`
	OutputKeys []string        `json:"output_keys"`
	Sections   []string        `json:"sections"`
	Imports    []string        `json:"imports"`
	References []string        `json:"references"`
}

type diagnosticJSON struct {
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

type checkResponse struct {
	OK          bool             `json:"ok"`
	Diagnostics []diagnosticJSON `json:"diagnostics"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// handleGenerate turns template text into Go source.
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}

	opts := s.engineOptions(req)
	res, err := app.GenerateSource(r.Context(), req.Template, opts)
	if err != nil {
		diags, _ := s.renderer.CheckSource(r.Context(), req.Template, opts, false)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{
			"error":       err.Error(),
			"diagnostics": toDiagnostics(diags),
		})
		return
	}

	resp := generateResponse{
		Source:     res.Source,
		Parameters: []parameterJSON{},
		OutputKeys: nonNil(res.OutputKeys),
		Sections:   nonNil(res.Sections),
		Imports:    nonNil(res.Imports),
		References: nonNil(res.References),
	}
	for _, p := range res.Parameters {
		resp.Parameters = append(resp.Parameters, parameterJSON{Name: p.Name, Type: p.Type})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// handleCheck reports parse and generation diagnostics.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decode(w, r)
	if !ok {
		return
	}

	diags, err := s.renderer.CheckSource(r.Context(), req.Template, s.engineOptions(req), false)
	if err != nil {
		jsonError(w, "check canceled: "+err.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(checkResponse{
		OK:          len(diags) == 0,
		Diagnostics: toDiagnostics(diags),
	})
}

// decode reads a templateRequest, answering with an error status itself
// when the body is unusable.
func (s *Server) decode(w http.ResponseWriter, r *http.Request) (*templateRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodyBytes)

	var req templateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			jsonError(w, "request body too large", http.StatusRequestEntityTooLarge)
			return nil, false
		}
		jsonError(w, "invalid JSON body: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}
	if req.Template == "" {
		jsonError(w, "template is required", http.StatusBadRequest)
		return nil, false
	}
	return &req, true
}

func (s *Server) engineOptions(req *templateRequest) engine.Options {
	opts := engine.Options{
		Debug:       req.Debug || s.cfg.Engine.Debug,
		SourceName:  req.Name,
		LineEnding:  s.cfg.Engine.LineEnding,
		PackageName: s.cfg.Engine.PackageName,
		Format:      s.cfg.Engine.Format,
	}
	if req.LineEnding != "" {
		opts.LineEnding = req.LineEnding
	}
	if req.PackageName != "" {
		opts.PackageName = req.PackageName
	}
	if req.Format != nil {
		opts.Format = *req.Format
	}
	return opts
}

func toDiagnostics(errs []app.CheckError) []diagnosticJSON {
	diags := make([]diagnosticJSON, 0, len(errs))
	for _, e := range errs {
		diags = append(diags, diagnosticJSON{File: e.File, Line: e.Line, Stage: e.Stage, Message: e.Message})
	}
	return diags
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
