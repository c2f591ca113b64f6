package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/gogpu/ggedit"
)

// maxJSONBody bounds API request bodies other than uploads.
const maxJSONBody = 1 << 20

type editorHandler func(w http.ResponseWriter, r *http.Request, ed *ggedit.Editor)

// withEditor resolves the {id} path value to a session editor.
func (s *Server) withEditor(h editorHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ed, err := s.store.Get(r.PathValue("id"))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		h(w, r, ed)
	}
}

// decode reads a JSON request body into v. An empty body leaves v as is.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && err != io.EOF {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// reply answers with the editor state, or with err mapped to a status.
func (s *Server) reply(w http.ResponseWriter, r *http.Request, ed *ggedit.Editor, err error) {
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ed.State())
}

type presetInfo struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Category string `json:"category"`
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	all := s.opts.presets.All()
	out := make([]presetInfo, 0, len(all))
	for _, p := range all {
		out = append(out, presetInfo{Name: p.Name, Title: p.Title, Category: p.Category})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ggedit.FilterKinds())
}

type createResponse struct {
	ID    string       `json:"id"`
	State ggedit.State `json:"state"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	id, ed, err := s.store.Create()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.log().Debug("session created", "id", id, "live", s.store.Len())
	writeJSON(w, http.StatusCreated, createResponse{ID: id, State: ed.State()})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if !s.store.Delete(r.PathValue("id")) {
		s.writeError(w, r, ErrNoSession)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request, ed *ggedit.Editor) {
	s.reply(w, r, ed, nil)
}

// handleUpload accepts either a multipart form with an "image" file field
// or a raw image body.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request, ed *ggedit.Editor) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.maxUpload)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if !strings.HasPrefix(mediaType, "multipart/") {
		s.reply(w, r, ed, ed.Load(r.Body))
		return
	}

	mr, err := r.MultipartReader()
	if err != nil {
		s.writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			s.writeError(w, r, fmt.Errorf("%w: missing image field", errBadRequest))
			return
		}
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if part.FormName() == "image" {
			err := ed.Load(part)
			part.Close()
			s.reply(w, r, ed, err)
			return
		}
		part.Close()
	}
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request, ed *ggedit.Editor) {
	var req struct {
		Kind string `json:"kind"`
	}
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.reply(w, r, ed, ed.ApplyFilter(req.Kind))
}

func (s *Server) handlePreset(w http.ResponseWriter, r *http.Request, ed *ggedit.Editor) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.reply(w, r, ed, ed.ApplyPreset(req.Name))
}

func (s *Server) handleRotate(w http.ResponseWriter, r *http.Request, ed *ggedit.Editor) {
	req := struct {
		Degrees float64 `json:"degrees"`
	}{Degrees: 90}
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.reply(w, r, ed, ed.Rotate(req.Degrees))
}

func (s *Server) handleFlip(w http.ResponseWriter, r *http.Request, ed *ggedit.Editor) {
	req := struct {
		Axis string `json:"axis"`
	}{Axis: "horizontal"}
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	axis, err := ggedit.ParseAxis(req.Axis)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.reply(w, r, ed, ed.Flip(axis))
}

func (s *Server) handleCircle(w http.ResponseWriter, r *http.Request, ed *ggedit.Editor) {
	s.reply(w, r, ed, ed.CircleCrop())
}

func (s *Server) handleCrop(w http.ResponseWriter, r *http.Request, ed *ggedit.Editor) {
	_, err := ed.StartCrop()
	s.reply(w, r, ed, err)
}

func (s *Server) handleAdjust(w http.ResponseWriter, r *http.Request, ed *ggedit.Editor) {
	var req struct {
		Kind  ggedit.Adjustment `json:"kind"`
		Value float64           `json:"value"`
	}
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.reply(w, r, ed, ed.SetAdjustment(req.Kind, req.Value))
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request, ed *ggedit.Editor) {
	_, err := ed.Undo()
	s.reply(w, r, ed, err)
}

func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request, ed *ggedit.Editor) {
	_, err := ed.Redo()
	s.reply(w, r, ed, err)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request, ed *ggedit.Editor) {
	var req struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	ed.Select(req.X, req.Y)
	s.reply(w, r, ed, nil)
}

func (s *Server) handleResize(w http.ResponseWriter, r *http.Request, ed *ggedit.Editor) {
	var req struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.reply(w, r, ed, ed.Resize(req.Width, req.Height))
}

func (s *Server) handleZoom(w http.ResponseWriter, r *http.Request, ed *ggedit.Editor) {
	var req struct {
		Zoom float64 `json:"zoom"`
	}
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.reply(w, r, ed, ed.SetZoom(req.Zoom))
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request, ed *ggedit.Editor) {
	s.writePNG(w, r, ed.Export, "")
}

// handleExport sends the canvas as a download. With ?region=image only
// the visible image is exported.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, ed *ggedit.Editor) {
	export := ed.Export
	if r.URL.Query().Get("region") == "image" {
		export = ed.ExportImage
	}
	s.writePNG(w, r, export, ed.ExportName())
}

// writePNG encodes into a buffer first so that failures still get a JSON
// error response.
func (s *Server) writePNG(w http.ResponseWriter, r *http.Request, encode func(io.Writer) error, attachment string) {
	var buf bytes.Buffer
	if err := encode(&buf); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if attachment != "" {
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": attachment}))
	}
	_, _ = w.Write(buf.Bytes())
}
