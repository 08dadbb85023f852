// handler.go — обработчики HTTP API и таблица маршрутов.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ilkoid/airename/internal/server/service"
	"github.com/ilkoid/airename/pkg/app"
	"github.com/ilkoid/airename/pkg/extract"
)

// multipartOverhead — запас на заголовки и границы multipart сверх лимита файла.
const multipartOverhead = 1 << 20

// maxMemory — сколько multipart держать в памяти до сброса во временные файлы.
const maxMemory = 32 << 20

// Handler — обработчик API поверх компонентов приложения.
type Handler struct {
	comps    *app.Components
	sessions *service.SessionCache

	// ctx живёт дольше запроса: в нём идут фоновые пакеты.
	ctx context.Context
	now func() time.Time
}

// New создаёт обработчик. ctx отменяется при остановке сервера.
func New(ctx context.Context, comps *app.Components, sessions *service.SessionCache) *Handler {
	return &Handler{
		comps:    comps,
		sessions: sessions,
		ctx:      ctx,
		now:      time.Now,
	}
}

// Register регистрирует маршруты API.
func (h *Handler) Register(r chi.Router) {
	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/api/process-document/", h.ProcessDocument)

	r.Route("/api/sessions", func(r chi.Router) {
		r.Post("/", h.CreateSession)
		r.Get("/{id}", h.GetSession)
		r.Delete("/{id}", h.DeleteSession)
		r.Post("/{id}/process", h.ProcessSession)
		r.Post("/{id}/pause", h.PauseSession)
		r.Put("/{id}/entries/{entryID}", h.UpdateEntry)
		r.Delete("/{id}/entries/{entryID}", h.DeleteEntry)
		r.Post("/{id}/export", h.ExportSession)
	})

	r.Route("/api/history", func(r chi.Router) {
		r.Get("/", h.ListHistory)
		r.Delete("/", h.DeleteHistory)
		r.Post("/clear", h.ClearHistory)
		r.Post("/export", h.ExportHistory)
	})
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeFile отдаёт файл на скачивание.
func writeFile(w http.ResponseWriter, name, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// decodeJSON читает тело запроса. Пустое тело не ошибка.
func decodeJSON(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// readPart читает загруженный файл в Source.
func readPart(fh *multipart.FileHeader, modTime time.Time) (extract.Source, error) {
	f, err := fh.Open()
	if err != nil {
		return extract.Source{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return extract.Source{}, err
	}

	contentType := fh.Header.Get("Content-Type")
	return extract.Source{
		Name:        extract.NameForBlob(fh.Filename, contentType),
		ContentType: contentType,
		ModTime:     modTime,
		Data:        data,
	}, nil
}

// isTooLarge сообщает, что тело запроса упёрлось в MaxBytesReader.
func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
