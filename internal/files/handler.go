package files

import (
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/teamhub/internal/companies"
	"github.com/odyssey-erp/teamhub/internal/platform/httpx"
	"github.com/odyssey-erp/teamhub/internal/shared"
)

// Handler exposes file endpoints. Routes expect the caller's company code on
// the context.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers file routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.upload)
	r.Get("/{id}", h.download)

	r.Get("/private", h.sharedWith)
	r.Get("/private/{username}", h.listPrivate)
	r.Post("/private/{username}", h.uploadPrivate)
	r.Get("/private/{username}/{id}", h.downloadPrivate)
	r.Delete("/private/{username}/{id}", h.deletePrivate)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	code, _ := companies.CodeFromContext(r.Context())
	list, err := h.service.List(r.Context(), code)
	if err != nil {
		h.fail(w, "list files", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"files": list})
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	code, _ := companies.CodeFromContext(r.Context())
	username, _ := shared.UsernameFromContext(r.Context())
	up, err := readUpload(w, r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	f, err := h.service.Upload(r.Context(), code, username, up)
	if err != nil {
		h.fail(w, "upload file", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, f)
}

func (h *Handler) download(w http.ResponseWriter, r *http.Request) {
	code, _ := companies.CodeFromContext(r.Context())
	f, err := h.service.Download(r.Context(), code, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "download file", err)
		return
	}
	writeFile(w, f)
}

func (h *Handler) sharedWith(w http.ResponseWriter, r *http.Request) {
	username, _ := shared.UsernameFromContext(r.Context())
	list, err := h.service.SharedWith(r.Context(), username)
	if err != nil {
		h.fail(w, "list shared files", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"files": list})
}

func (h *Handler) listPrivate(w http.ResponseWriter, r *http.Request) {
	username, _ := shared.UsernameFromContext(r.Context())
	list, err := h.service.ListPrivate(r.Context(), username, chi.URLParam(r, "username"))
	if err != nil {
		h.fail(w, "list private files", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"files": list})
}

func (h *Handler) uploadPrivate(w http.ResponseWriter, r *http.Request) {
	username, _ := shared.UsernameFromContext(r.Context())
	up, err := readUpload(w, r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	f, err := h.service.UploadPrivate(r.Context(), username, chi.URLParam(r, "username"), up)
	if err != nil {
		h.fail(w, "upload private file", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, f)
}

func (h *Handler) downloadPrivate(w http.ResponseWriter, r *http.Request) {
	username, _ := shared.UsernameFromContext(r.Context())
	f, err := h.service.DownloadPrivate(r.Context(), username, chi.URLParam(r, "username"), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, "download private file", err)
		return
	}
	writeFile(w, f)
}

func (h *Handler) deletePrivate(w http.ResponseWriter, r *http.Request) {
	username, _ := shared.UsernameFromContext(r.Context())
	if err := h.service.DeletePrivate(r.Context(), username, chi.URLParam(r, "username"), chi.URLParam(r, "id")); err != nil {
		h.fail(w, "delete private file", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// readUpload reads the "file" part of a multipart form.
func readUpload(w http.ResponseWriter, r *http.Request) (Upload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxSize+1<<20)
	if err := r.ParseMultipartForm(MaxSize); err != nil {
		return Upload{}, fmt.Errorf("%w: invalid upload: %v", shared.ErrValidation, err)
	}
	part, header, err := r.FormFile("file")
	if err != nil {
		return Upload{}, fmt.Errorf("%w: missing file part", shared.ErrValidation)
	}
	defer part.Close()
	content, err := io.ReadAll(part)
	if err != nil {
		return Upload{}, fmt.Errorf("%w: read upload: %v", shared.ErrValidation, err)
	}
	return Upload{Name: header.Filename, Type: header.Header.Get("Content-Type"), Content: content}, nil
}

func writeFile(w http.ResponseWriter, f File) {
	w.Header().Set("Content-Type", f.Type)
	w.Header().Set("Content-Length", strconv.Itoa(len(f.Content)))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": f.Name}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(f.Content)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	h.logger.Error(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}
