package http

import (
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"bizplan/internal/domain"
	"bizplan/internal/llm"
	"bizplan/internal/plan"
)

func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	var draft plan.Draft
	if err := decodeJSON(r, &draft); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	analysis, err := h.svc.Analyze(r.Context(), draft)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"analysis": analysis})
}

type assistRequest struct {
	Instruction string     `json:"instruction"`
	Draft       plan.Draft `json:"draft"`
}

func (h *Handler) Assist(w http.ResponseWriter, r *http.Request) {
	var req assistRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Instruction) == "" {
		writeError(w, http.StatusBadRequest, "instruction is required")
		return
	}
	result, err := h.svc.Assist(r.Context(), req.Instruction, req.Draft)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) Transcribe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload")
		return
	}
	text, err := h.svc.Transcribe(r.Context(), llm.Audio{MIMEType: audioType(header.Header.Get("Content-Type"), header.Filename), Data: data})
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"transcription": text})
}

// audioType prefers the part's declared type and falls back to the file
// extension when the browser sent a generic one.
func audioType(declared, fileName string) string {
	if mediaType, _, err := mime.ParseMediaType(declared); err == nil && strings.HasPrefix(mediaType, "audio/") {
		return mediaType
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(fileName))); byExt != "" {
		if mediaType, _, err := mime.ParseMediaType(byExt); err == nil {
			return mediaType
		}
	}
	return declared
}

type minutesRequest struct {
	Transcription string                `json:"transcription"`
	Details       domain.MeetingDetails `json:"details"`
}

func (h *Handler) MeetingMinutes(w http.ResponseWriter, r *http.Request) {
	var req minutesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	html, err := h.svc.MeetingMinutes(r.Context(), req.Transcription, req.Details)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"html": html})
}

type regenerateMinutesRequest struct {
	Transcription string                `json:"transcription"`
	Details       domain.MeetingDetails `json:"details"`
	PreviousHTML  string                `json:"previousHtml"`
	EditRequest   string                `json:"editRequest"`
}

func (h *Handler) RegenerateMinutes(w http.ResponseWriter, r *http.Request) {
	var req regenerateMinutesRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	html, err := h.svc.RegenerateMinutes(r.Context(), req.Transcription, req.Details, req.PreviousHTML, req.EditRequest)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"html": html})
}
