package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pagemill/pagemill/internal/doc"
	"github.com/pagemill/pagemill/internal/measure"
	"github.com/pagemill/pagemill/internal/parser"
	"github.com/pagemill/pagemill/internal/session"
)

// BlockView is the JSON shape of one block.
type BlockView struct {
	Kind   string      `json:"kind"`
	Level  string      `json:"level,omitempty"`
	Origin string      `json:"origin,omitempty"`
	Text   string      `json:"text,omitempty"`
	Blocks []BlockView `json:"blocks,omitempty"`
}

// PageView is the JSON shape of one rendered page.
type PageView struct {
	Index    int         `json:"index"`
	Extent   int         `json:"extent"`
	Capacity int         `json:"capacity"`
	Blocks   []BlockView `json:"blocks"`
}

// SessionView is the JSON shape of a session's current layout.
type SessionView struct {
	SessionID string     `json:"session_id"`
	Title     string     `json:"title"`
	PageCount int        `json:"page_count"`
	Size      int        `json:"size"`
	Pages     []PageView `json:"pages"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	p, err := parser.ForFile(filename)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	result, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		jsonError(w, "parse failed: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	view := s.view
	// Optional per-session layout overrides.
	metrics := view.Metrics()
	if v := r.FormValue("capacity"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			metrics.PageCapacity = n
		}
	}
	if v := r.FormValue("spacing"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			metrics.BlockSpacing = n
		}
	}
	if metrics != view.Metrics() {
		view = measure.NewView(metrics)
	}

	title := r.FormValue("title")
	if title == "" {
		title = result.Title
	}

	sess := session.New(title, result.Document(), view, s.log, s.cfg.MaxSettlePasses)
	s.sessions.Put(sess)
	s.log.Info("session created", "session_id", sess.ID, "filename", filename, "pages", doc.PageCount(sess.Doc()))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(s.sessionView(sess))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Get(chi.URLParam(r, "sessionID"))
	if sess == nil {
		jsonError(w, "session not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.sessionView(sess))
}

// editRequest is one edit operation against a session.
type editRequest struct {
	Op   string `json:"op"` // "insert" or "delete"
	Pos  int    `json:"pos,omitempty"`
	Text string `json:"text,omitempty"`
	From int    `json:"from,omitempty"`
	To   int    `json:"to,omitempty"`
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Get(chi.URLParam(r, "sessionID"))
	if sess == nil {
		jsonError(w, "session not found", http.StatusNotFound)
		return
	}

	var req editRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		jsonError(w, "invalid edit request: "+err.Error(), http.StatusBadRequest)
		return
	}

	var err error
	switch req.Op {
	case "insert":
		err = sess.InsertText(req.Pos, req.Text)
	case "delete":
		err = sess.DeleteRange(req.From, req.To)
	default:
		jsonError(w, fmt.Sprintf("unknown op %q", req.Op), http.StatusBadRequest)
		return
	}
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.sessionView(sess))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if !s.sessions.Delete(id) {
		jsonError(w, "session not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) sessionView(sess *session.Session) SessionView {
	d := sess.Doc()
	boxes := sess.Layout()
	view := SessionView{
		SessionID: sess.ID,
		Title:     sess.Title,
		PageCount: doc.PageCount(d),
		Size:      d.ContentSize(),
	}
	for _, box := range boxes {
		page := doc.NodeAt(d, box.Pos)
		pv := PageView{
			Index:    box.Index,
			Extent:   box.Extent,
			Capacity: box.Capacity,
			Blocks:   []BlockView{},
		}
		if page != nil {
			for _, block := range page.Children {
				pv.Blocks = append(pv.Blocks, blockView(block))
			}
		}
		view.Pages = append(view.Pages, pv)
	}
	return view
}

func blockView(n *doc.Node) BlockView {
	bv := BlockView{
		Kind:   n.Kind.String(),
		Level:  n.Attr("level"),
		Origin: n.Attr(doc.AttrOrigin),
		Text:   n.Text,
	}
	for _, c := range n.Children {
		bv.Blocks = append(bv.Blocks, blockView(c))
	}
	return bv
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
