// Package server exposes logo upload, palette extraction and post
// generation over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"time"

	"instagenie/internal/brand"
	"instagenie/internal/gemini"
	"instagenie/internal/generate"
	"instagenie/internal/palette"
	"instagenie/internal/prompt"
	"instagenie/internal/storage"
)

const maxUploadBytes = 16 << 20

type Options struct {
	Extractor      *palette.Extractor
	Store          *storage.Store
	Batch          *generate.Service
	Static         fs.FS
	MaxPosts       int
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

type Server struct {
	extractor      *palette.Extractor
	store          *storage.Store
	batch          *generate.Service
	static         fs.FS
	maxPosts       int
	requestTimeout time.Duration
	logger         *slog.Logger
}

func New(opts Options) *Server {
	maxPosts := opts.MaxPosts
	if maxPosts < 1 {
		maxPosts = 5
	}

	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Server{
		extractor:      opts.Extractor,
		store:          opts.Store,
		batch:          opts.Batch,
		static:         opts.Static,
		maxPosts:       maxPosts,
		requestTimeout: timeout,
		logger:         logger,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /upload-logo", s.handleUploadLogo)
	mux.HandleFunc("POST /generate", s.handleGenerate)
	mux.HandleFunc("GET /generated/{file}", s.serveFrom(s.store.GeneratedPath))
	mux.HandleFunc("GET /uploads/{file}", s.serveFrom(s.store.UploadPath))
	mux.HandleFunc("GET /static/presets/{file}", s.serveFrom(s.store.PresetPath))
	mux.HandleFunc("GET /api/tones", s.handleTones)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.static != nil {
		mux.Handle("GET /", http.FileServer(http.FS(s.static)))
	}

	return withRequestID(withLogging(mux, s.logger))
}

func (s *Server) handleUploadLogo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, apiError{Error: "File too large"})
			return
		}
		writeJSON(w, http.StatusBadRequest, apiError{Error: "No logo file provided"})
		return
	}

	file, header, err := r.FormFile("logo")
	if err != nil {
		// A file input submitted with nothing chosen arrives as an empty form value.
		if _, ok := r.MultipartForm.Value["logo"]; ok {
			writeJSON(w, http.StatusBadRequest, apiError{Error: "No file selected"})
			return
		}
		writeJSON(w, http.StatusBadRequest, apiError{Error: "No logo file provided"})
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "No file selected"})
		return
	}
	if !storage.AllowedExtension(header.Filename) {
		writeJSON(w, http.StatusBadRequest, apiError{Error: "Invalid file type"})
		return
	}

	filename, err := s.store.SaveUpload(header.Filename, file)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidName) {
			writeJSON(w, http.StatusBadRequest, apiError{Error: "Invalid file type"})
			return
		}
		s.logger.Error("save upload failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, apiError{Error: "failed to store upload"})
		return
	}

	path, err := s.store.UploadPath(filename)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, apiError{Error: err.Error()})
		return
	}

	ex := s.extractor.Extract(path)
	if ex.Fallback {
		s.logger.Warn("using fallback palette", "file", filename, "err", ex.Err)
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		Success:  true,
		Filename: filename,
		Colors:   ex.Palette,
		Message:  "Brand colors extracted successfully!",
		Fallback: ex.Fallback,
	})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, 1<<20))
	if err := dec.Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: fmt.Sprintf("invalid request body: %v", err)})
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, apiError{Error: err.Error()})
		return
	}

	job := generate.Job{
		CompanyName:  stringOr(req.CompanyName, defaultCompanyName),
		Industry:     stringOr(req.Industry, defaultIndustry),
		ContentTheme: stringOr(req.ContentTheme, defaultContentTheme),
		Tone:         brand.ParseTone(req.Tone),
		Palette:      brand.FallbackPalette(),
		Count:        s.clampPosts(req.NumPosts),
		Logo:         s.loadLogo(req.LogoFilename),
	}
	if req.BrandColors != nil {
		job.Palette = req.BrandColors.palette()
	}
	// Results echo the tone as submitted; the prompt uses the parsed one.
	toneLabel := req.Tone
	if toneLabel == "" {
		toneLabel = string(job.Tone)
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	outcomes := s.batch.Generate(ctx, job)

	results := make([]imageResult, 0, len(outcomes))
	for _, o := range outcomes {
		res := imageResult{VariationIndex: o.VariationIndex, Tone: toneLabel}
		if o.OK() {
			filename := o.Success.Filename
			res.Filename = &filename
			res.URL = o.Success.URL
		} else {
			res.Error = o.Failure.Reason
		}
		results = append(results, res)
	}

	succeeded, _ := generate.Count(outcomes)
	writeJSON(w, http.StatusOK, generateResponse{
		Success: true,
		Images:  results,
		Message: fmt.Sprintf("Generated %d images", succeeded),
	})
}

func (s *Server) clampPosts(n *postCount) int {
	if n == nil || *n < 1 {
		return 1
	}
	return min(int(*n), s.maxPosts)
}

// loadLogo returns nil when ref is empty or unusable; generation then runs
// text-only.
func (s *Server) loadLogo(ref string) *gemini.ImageInput {
	if ref == "" {
		return nil
	}
	logo, err := s.store.LoadLogo(ref)
	if err != nil {
		s.logger.Warn("logo not loaded", "ref", ref, "err", err)
		return nil
	}
	return logo
}

func (s *Server) handleTones(w http.ResponseWriter, _ *http.Request) {
	var out tonesResponse
	for _, t := range prompt.Tones() {
		out.Tones = append(out.Tones, toneOption{Key: t.Key, Name: t.Name, Description: t.Description})
	}
	out.Hints = prompt.VariationHints()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) serveFrom(resolve func(string) (string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		path, err := resolve(r.PathValue("file"))
		if err != nil {
			http.NotFound(w, r)
			return
		}
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, path)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
