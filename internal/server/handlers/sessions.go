// sessions.go — сессии переименования: загрузка, обработка, правка, выгрузка.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ilkoid/airename/internal/server/apierror"
	"github.com/ilkoid/airename/internal/server/service"
	"github.com/ilkoid/airename/pkg/app"
	"github.com/ilkoid/airename/pkg/archive"
	"github.com/ilkoid/airename/pkg/extract"
	"github.com/ilkoid/airename/pkg/naming"
	"github.com/ilkoid/airename/pkg/session"
	"github.com/ilkoid/airename/pkg/utils"
)

type sessionView struct {
	ID        string              `json:"id"`
	CreatedAt time.Time           `json:"createdAt"`
	Running   bool                `json:"running"`
	Pending   int                 `json:"pending"`
	Entries   []session.FileEntry `json:"entries"`
	Selected  []string            `json:"selected"`
}

type createSessionResponse struct {
	sessionView
	Rejected []session.Rejection `json:"rejected"`
}

type updateEntryRequest struct {
	Name     *string `json:"name"`
	Selected *bool   `json:"selected"`
}

type idsRequest struct {
	IDs []string `json:"ids"`
}

func viewOf(sess *session.Session) sessionView {
	selected := make([]string, 0)
	for _, e := range sess.Selected() {
		selected = append(selected, e.ID)
	}
	return sessionView{
		ID:        sess.ID(),
		CreatedAt: sess.CreatedAt(),
		Running:   sess.Running(),
		Pending:   sess.Pending(),
		Entries:   sess.Entries(),
		Selected:  selected,
	}
}

// lookup достаёт сессию из кэша или отвечает 404.
func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*service.Run, bool) {
	id := chi.URLParam(r, "id")
	run, ok := h.sessions.Get(id)
	if !ok {
		apierror.NotFound(w, fmt.Sprintf("session %s not found", id))
		return nil, false
	}
	return run, true
}

// CreateSession принимает файлы (поле files) и создаёт сессию.
// Отклонённые файлы перечисляются в ответе.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	limits := h.comps.Config.Limits.GetDefaults()
	maxBody := limits.MaxFileSize()*int64(limits.MaxFiles) + multipartOverhead

	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		if isTooLarge(err) {
			apierror.FileTooLarge(w, "upload exceeds the batch size limit")
			return
		}
		apierror.ValidationError(w, "invalid multipart form: "+err.Error())
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		apierror.ValidationError(w, "at least one file is required")
		return
	}

	sources := make([]extract.Source, 0, len(headers))
	for _, fh := range headers {
		src, err := readPart(fh, h.now())
		if err != nil {
			apierror.InternalError(w, "failed to read upload")
			return
		}
		sources = append(sources, src)
	}

	sess := h.comps.NewSession()
	_, rejected, err := sess.Add(sources...)
	if err != nil {
		apierror.ValidationError(w, describeRejections(err, rejected))
		return
	}

	h.sessions.Add(sess)
	utils.Info("Session created", "session", sess.ID(), "files", sess.Len(), "rejected", len(rejected))

	if rejected == nil {
		rejected = []session.Rejection{}
	}
	writeJSON(w, http.StatusCreated, createSessionResponse{
		sessionView: viewOf(sess),
		Rejected:    rejected,
	})
}

// GetSession возвращает состояние сессии.
func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	run, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, viewOf(run.Session))
}

// DeleteSession ставит пакет на паузу и забывает сессию.
func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	run, ok := h.lookup(w, r)
	if !ok {
		return
	}
	run.Token.Pause()
	h.sessions.Delete(run.Session.ID())
	w.WriteHeader(http.StatusNoContent)
}

// ProcessSession запускает или возобновляет пакет в фоне.
func (h *Handler) ProcessSession(w http.ResponseWriter, r *http.Request) {
	run, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if run.Session.Running() {
		apierror.Conflict(w, session.ErrBusy.Error())
		return
	}

	run.Token.Reset()
	go h.process(run)

	writeJSON(w, http.StatusAccepted, viewOf(run.Session))
}

func (h *Handler) process(run *service.Run) {
	res, err := h.comps.Process(h.ctx, run.Session, run.Token, nil)
	if err != nil {
		if errors.Is(err, session.ErrBusy) {
			return
		}
		utils.Warn("Batch stopped", "session", run.Session.ID(), "error", err)
		return
	}
	utils.Info("Batch finished",
		"session", run.Session.ID(),
		"ready", res.Ready,
		"failed", res.Failed,
		"remaining", res.Remaining,
		"paused", res.Paused)
}

// PauseSession просит пакет остановиться перед следующим файлом.
func (h *Handler) PauseSession(w http.ResponseWriter, r *http.Request) {
	run, ok := h.lookup(w, r)
	if !ok {
		return
	}
	run.Token.Pause()
	writeJSON(w, http.StatusAccepted, viewOf(run.Session))
}

// UpdateEntry сохраняет отредактированное имя и/или отметку выбора.
func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	run, ok := h.lookup(w, r)
	if !ok {
		return
	}
	entryID := chi.URLParam(r, "entryID")

	var req updateEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		apierror.ValidationError(w, "invalid JSON body")
		return
	}

	sess := run.Session
	if req.Name != nil {
		if err := naming.ValidateName(*req.Name); err != nil {
			apierror.ValidationError(w, fmt.Sprintf("invalid name %q: %v", *req.Name, err))
			return
		}
		err := sess.StartEdit(entryID)
		if err == nil {
			err = sess.CommitEdit(entryID, *req.Name)
		}
		if err != nil {
			writeSessionError(w, err)
			return
		}
	}

	if req.Selected != nil {
		var err error
		if *req.Selected {
			err = sess.Select(entryID)
		} else if _, found := sess.Entry(entryID); found {
			sess.Deselect(entryID)
		} else {
			err = fmt.Errorf("%s: %w", entryID, session.ErrEntryNotFound)
		}
		if err != nil {
			writeSessionError(w, err)
			return
		}
	}

	entry, found := sess.Entry(entryID)
	if !found {
		apierror.NotFound(w, fmt.Sprintf("entry %s not found", entryID))
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// DeleteEntry убирает файл из сессии.
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	run, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if err := run.Session.Remove(chi.URLParam(r, "entryID")); err != nil {
		writeSessionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportSession отдаёт zip с переименованными файлами.
//
// Файлы берутся из ids в теле, иначе из текущего выбора.
func (h *Handler) ExportSession(w http.ResponseWriter, r *http.Request) {
	run, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req idsRequest
	if err := decodeJSON(r, &req); err != nil {
		apierror.ValidationError(w, "invalid JSON body")
		return
	}

	var entries []session.FileEntry
	if len(req.IDs) > 0 {
		for _, id := range req.IDs {
			e, found := run.Session.Entry(id)
			if !found {
				apierror.NotFound(w, fmt.Sprintf("entry %s not found", id))
				return
			}
			entries = append(entries, e)
		}
	} else {
		entries = run.Session.Selected()
	}

	res, err := h.comps.Export(r.Context(), entries, app.ExportOptions{})
	if err != nil {
		if errors.Is(err, archive.ErrEmptySelection) {
			apierror.EmptySelection(w, err.Error())
			return
		}
		utils.Error("Export failed", "session", run.Session.ID(), "error", err)
		apierror.InternalError(w, err.Error())
		return
	}

	if res.BatchID != "" {
		w.Header().Set("X-History-Batch", res.BatchID)
	}
	if res.DownloadURL != "" {
		w.Header().Set("X-Download-URL", res.DownloadURL)
	}
	writeFile(w, res.Archive.Name, "application/zip", res.Archive.Data)
}

// writeSessionError переводит ошибки сессии в HTTP статус.
func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrEntryNotFound):
		apierror.NotFound(w, err.Error())
	case errors.Is(err, session.ErrNotEditable), errors.Is(err, session.ErrBusy):
		apierror.Conflict(w, err.Error())
	default:
		apierror.ValidationError(w, err.Error())
	}
}

func describeRejections(err error, rejected []session.Rejection) string {
	parts := make([]string, 0, len(rejected))
	for _, rej := range rejected {
		parts = append(parts, rej.Name+": "+rej.Reason)
	}
	if len(parts) == 0 {
		return err.Error()
	}
	return err.Error() + " (" + strings.Join(parts, "; ") + ")"
}
