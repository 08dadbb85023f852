// document.go — одиночное именование документа без сессии.
package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/ilkoid/airename/internal/server/apierror"
	"github.com/ilkoid/airename/pkg/extract"
	"github.com/ilkoid/airename/pkg/naming"
	"github.com/ilkoid/airename/pkg/utils"
)

type aiResult struct {
	Summary string `json:"summary"`
	Title   string `json:"title"`
}

type documentResponse struct {
	OriginalFilename string   `json:"original_filename"`
	ModelUsed        string   `json:"model_used"`
	AIResult         aiResult `json:"ai_result"`
}

// ProcessDocument принимает один файл (поле file) и необязательный
// тег file_type, возвращает краткое описание и заголовок.
func (h *Handler) ProcessDocument(w http.ResponseWriter, r *http.Request) {
	limits := h.comps.Config.Limits.GetDefaults()
	maxSize := limits.MaxFileSize()

	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		if isTooLarge(err) {
			apierror.FileTooLarge(w, fmt.Sprintf("file exceeds the %d MiB limit", limits.MaxFileSizeMB))
			return
		}
		apierror.ValidationError(w, "invalid multipart form: "+err.Error())
		return
	}

	fh, ok := firstFile(r, "file")
	if !ok {
		apierror.ValidationError(w, "file is required")
		return
	}
	if fh.Size > maxSize {
		apierror.FileTooLarge(w, fmt.Sprintf("file exceeds the %d MiB limit", limits.MaxFileSizeMB))
		return
	}

	src, err := readPart(fh, h.now())
	if err != nil {
		apierror.InternalError(w, "failed to read upload")
		return
	}

	if !extract.Supported(src.Name) {
		apierror.WriteError(w, http.StatusBadRequest, apierror.CodeUnsupportedType,
			fmt.Sprintf("unsupported file type: .%s", extract.Ext(src.Name)))
		return
	}

	var opts []naming.SuggestOption
	if fileType := r.FormValue("file_type"); fileType != "" {
		opts = append(opts, naming.WithCategory(fileType))
	}

	content := h.comps.Extractor.Extract(r.Context(), src)
	s, err := h.comps.Namer.Describe(r.Context(), content, src.Name, opts...)
	if err != nil {
		utils.Error("Document naming failed", "file", src.Name, "error", err)
		writeNamingError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, documentResponse{
		OriginalFilename: fh.Filename,
		ModelUsed:        h.comps.Config.Models.DefaultNaming,
		AIResult: aiResult{
			Summary: s.Summary,
			Title:   s.Name,
		},
	})
}

// writeNamingError переводит ошибку клиента именования в HTTP статус.
func writeNamingError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, naming.ErrNotConfigured):
		apierror.WriteError(w, http.StatusNotImplemented, apierror.CodeNotConfigured, err.Error())
	case errors.Is(err, naming.ErrInvalidCredentials):
		apierror.WriteError(w, http.StatusUnauthorized, apierror.CodeInvalidAPIKey, err.Error())
	default:
		apierror.WriteError(w, http.StatusBadGateway, apierror.CodeUpstreamError, err.Error())
	}
}

func firstFile(r *http.Request, field string) (*multipart.FileHeader, bool) {
	if r.MultipartForm == nil {
		return nil, false
	}
	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		return nil, false
	}
	return files[0], true
}
