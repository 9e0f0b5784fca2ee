package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/wadjakorntonsri/ctrltab/pkg/core/domain"
	"github.com/wadjakorntonsri/ctrltab/pkg/ports"
)

const (
	maxIconSize    = 512 << 10
	iconPathPrefix = "/uploads/icons/"
)

// allowedIcons maps accepted detected types to the stored extension.
var allowedIcons = []struct {
	mime string
	ext  string
}{
	{"image/png", ".png"},
	{"image/svg+xml", ".svg"},
	{"image/x-icon", ".ico"},
}

type UploadHandler struct {
	icons ports.IconStore
}

func NewUploadHandler(icons ports.IconStore) *UploadHandler {
	return &UploadHandler{icons: icons}
}

// UploadIcon stores the multipart "icon" file and returns its public path.
// The type is taken from the content, not from the file name.
func (h *UploadHandler) UploadIcon(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxIconSize+(64<<10))
	if err := r.ParseMultipartForm(maxIconSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, domain.Validation("icon must be at most 512KB"))
			return
		}
		writeError(w, r, domain.Validation("invalid upload"))
		return
	}

	file, _, err := r.FormFile("icon")
	if err != nil {
		writeError(w, r, domain.Validation("icon file is required"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxIconSize+1))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if len(data) > maxIconSize {
		writeError(w, r, domain.Validation("icon must be at most 512KB"))
		return
	}

	contentType, ext, ok := detectIcon(data)
	if !ok {
		writeError(w, r, domain.Validation("icon must be a PNG, SVG or ICO image"))
		return
	}

	name := uuid.NewString() + ext
	if err := h.icons.Save(r.Context(), name, contentType, data); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"path": iconPathPrefix + name})
}

// ServeIcon streams a stored icon. No auth: the paths end up in <img> tags.
func (h *UploadHandler) ServeIcon(w http.ResponseWriter, r *http.Request) {
	rc, contentType, err := h.icons.Open(r.Context(), r.PathValue("name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'")
	_, _ = io.Copy(w, rc)
}

func detectIcon(data []byte) (contentType, ext string, ok bool) {
	detected := mimetype.Detect(data)
	for _, allowed := range allowedIcons {
		if detected.Is(allowed.mime) {
			return allowed.mime, allowed.ext, true
		}
	}
	return "", "", false
}
