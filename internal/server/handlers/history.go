// history.go — просмотр, очистка и выгрузка истории переименований.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ilkoid/airename/internal/server/apierror"
	"github.com/ilkoid/airename/pkg/history"
	"github.com/ilkoid/airename/pkg/utils"
)

type historyResponse struct {
	Window  string           `json:"window"`
	Records []history.Record `json:"records"`
}

type deletedResponse struct {
	Deleted int `json:"deleted"`
}

// parseWindow разбирает параметр window: "all", длительность ("24h")
// или пусто для окна из конфига. "all" даёт 0.
func (h *Handler) parseWindow(r *http.Request) (time.Duration, error) {
	raw := r.URL.Query().Get("window")
	switch raw {
	case "":
		return h.comps.Config.History.GetDefaults().Window(), nil
	case "all":
		return 0, nil
	}

	d, err := time.ParseDuration(raw)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid window %q: use a duration like 24h or \"all\"", raw)
	}
	return d, nil
}

func windowLabel(d time.Duration) string {
	if d == 0 {
		return "all"
	}
	return d.String()
}

// ListHistory возвращает записи внутри окна, новые первыми.
func (h *Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	window, err := h.parseWindow(r)
	if err != nil {
		apierror.ValidationError(w, err.Error())
		return
	}

	records, err := h.comps.History.Load(r.Context())
	if err != nil {
		apierror.InternalError(w, err.Error())
		return
	}

	records = history.FilterWindow(records, h.now(), window)
	if records == nil {
		records = []history.Record{}
	}
	writeJSON(w, http.StatusOK, historyResponse{
		Window:  windowLabel(window),
		Records: records,
	})
}

// DeleteHistory удаляет записи по ids из тела.
func (h *Handler) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if err := decodeJSON(r, &req); err != nil {
		apierror.ValidationError(w, "invalid JSON body")
		return
	}

	n, err := h.comps.History.DeleteSelected(r.Context(), req.IDs)
	if err != nil {
		writeHistoryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deletedResponse{Deleted: n})
}

// ClearHistory удаляет все записи внутри окна.
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	window, err := h.parseWindow(r)
	if err != nil {
		apierror.ValidationError(w, err.Error())
		return
	}

	n, err := h.comps.History.ClearFiltered(r.Context(), h.now(), window)
	if err != nil {
		writeHistoryError(w, err)
		return
	}
	utils.Info("History cleared", "window", windowLabel(window), "deleted", n)
	writeJSON(w, http.StatusOK, deletedResponse{Deleted: n})
}

// ExportHistory выгружает записи окна (или только ids из тела)
// в txt для одной записи и в CSV для нескольких.
func (h *Handler) ExportHistory(w http.ResponseWriter, r *http.Request) {
	window, err := h.parseWindow(r)
	if err != nil {
		apierror.ValidationError(w, err.Error())
		return
	}

	var req idsRequest
	if err := decodeJSON(r, &req); err != nil {
		apierror.ValidationError(w, "invalid JSON body")
		return
	}

	records, err := h.comps.History.Load(r.Context())
	if err != nil {
		apierror.InternalError(w, err.Error())
		return
	}

	now := h.now()
	records = history.FilterWindow(records, now, window)
	if len(req.IDs) > 0 {
		records = history.Select(records, req.IDs)
	}

	loc, _ := h.comps.Config.Archive.LoadLocation()
	prefix := h.comps.Config.History.GetDefaults().ExportPrefix

	file, err := history.Export(records, prefix, now, loc)
	if err != nil {
		writeHistoryError(w, err)
		return
	}
	writeFile(w, file.Name, file.ContentType, file.Data)
}

func writeHistoryError(w http.ResponseWriter, err error) {
	if errors.Is(err, history.ErrEmptySelection) {
		apierror.EmptySelection(w, err.Error())
		return
	}
	utils.Error("History operation failed", "error", err)
	apierror.InternalError(w, err.Error())
}
