package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"video-thumbnail/internal/bridge"

	"github.com/gorilla/mux"
)

// maxRequestBody bounds the JSON request body; headers are the only
// unbounded field.
const maxRequestBody = 1 << 20

// ThumbnailPathResponse is the body of a successful file-mode request.
type ThumbnailPathResponse struct {
	Path string `json:"path"`
}

// GenerateThumbnail handles POST /api/thumbnail/{mode}. The mode in the path
// overrides any mode in the body.
func (h *Handlers) GenerateThumbnail(w http.ResponseWriter, r *http.Request) {
	var req bridge.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err := dec.Decode(&req); err != nil {
		writeJSONError(w, bridge.CodeException, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	req.Mode = mux.Vars(r)["mode"]

	resp := h.dispatcher.Call(r.Context(), req)
	w.Header().Set("X-Request-Id", resp.ID)

	switch {
	case resp.NotImplemented:
		writeJSONError(w, "not_implemented", "unsupported mode: "+req.Mode, http.StatusNotImplemented)
	case resp.Err != nil && resp.Err.Code == bridge.CodeNoThumbnail:
		writeJSONError(w, resp.Err.Code, resp.Err.Message, http.StatusUnprocessableEntity)
	case resp.Err != nil:
		writeJSONError(w, resp.Err.Code, resp.Err.Message, http.StatusInternalServerError)
	case req.Mode == bridge.ModeFile:
		w.Header().Set("Content-Type", "application/json")
		writeJSON(w, ThumbnailPathResponse{Path: resp.Path})
	default:
		w.Header().Set("Content-Type", resp.Format.ContentType())
		w.Header().Set("Content-Length", strconv.Itoa(len(resp.Data)))
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(resp.Data); err != nil {
			// Client disconnected; nothing left to report
			return
		}
	}
}
