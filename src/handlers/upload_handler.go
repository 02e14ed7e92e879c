// src/handlers/upload_handler.go
package handlers

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/username/bankconv/src/converter"
	"github.com/username/bankconv/src/logger"
	"github.com/username/bankconv/src/parsers"
	"github.com/username/bankconv/src/security/validation"
	"github.com/username/bankconv/src/services"
)

//go:embed templates/index.html
var templatesFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

const (
	// multipartOverhead is allowed on top of the file size for boundaries and form fields.
	multipartOverhead = 1 << 20
	// multipartMemory is how much of a parsed form is held in memory before spilling to temp files.
	multipartMemory = 32 << 20

	flashError = "error"
)

// Response strings.
const (
	msgNoFileUploaded   = "No file uploaded"
	msgNoFileSelected   = "No file selected"
	msgInvalidFileType  = "Invalid file type. Please upload a CSV or XLSX file."
	msgProcessingError  = "Error processing file: %s"
	msgUnexpectedError  = "An unexpected error occurred: %s"
	msgFileTooLarge     = "File too large. Maximum size is %d MB."
	csvContentType      = "text/csv; charset=utf-8"
	htmlContentType     = "text/html; charset=utf-8"
	csrfFailureResponse = "CSRF token validation failed"
)

type UploadHandler struct {
	uploadService services.UploadService
	flashes       *FlashStore
	maxUploadSize int64
}

func NewUploadHandler(service services.UploadService, flashes *FlashStore, maxUploadSize int64) *UploadHandler {
	return &UploadHandler{
		uploadService: service,
		flashes:       flashes,
		maxUploadSize: maxUploadSize,
	}
}

type indexPage struct {
	AccountName string
	Flashes     []Flash
	CSRFToken   string
	Accept      string
	Formats     string
	MaxSizeMB   int64
}

// HandleIndex renders the upload form together with any pending flash messages.
func (h *UploadHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	formats := parsers.Formats()
	accept := make([]string, len(formats))
	for i, f := range formats {
		accept[i] = "." + f
	}

	page := indexPage{
		AccountName: h.uploadService.Profile().AccountName,
		Flashes:     h.flashes.Pop(r),
		CSRFToken:   ensureCSRFToken(w, r),
		Accept:      strings.Join(accept, ","),
		Formats:     strings.ToUpper(strings.Join(formats, ", ")),
		MaxSizeMB:   h.maxUploadSize / (1024 * 1024),
	}

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, page); err != nil {
		logger.FromContext(r.Context()).Error("Failed to render upload form", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", htmlContentType)
	w.Write(buf.Bytes())
}

// HandleUpload converts the uploaded export and streams the result back as a download.
// Every rejection is reported as a flash message on the form, except a CSRF failure.
func (h *UploadHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			log.Warn("Upload body too large", "limit", h.maxUploadSize)
			h.fail(w, r, fmt.Sprintf(msgFileTooLarge, h.maxUploadSize/(1024*1024)))
			return
		case errors.Is(err, http.ErrNotMultipart):
			// A plain form can still carry the token; the missing file is reported below.
		default:
			log.Warn("Failed to parse multipart form", "error", err)
		}
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	if !validCSRF(r) {
		http.Error(w, csrfFailureResponse, http.StatusForbidden)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		if r.MultipartForm != nil {
			// An empty file input arrives as a part without a filename, which lands among the plain values.
			if _, ok := r.MultipartForm.Value["file"]; ok {
				h.fail(w, r, msgNoFileSelected)
				return
			}
		}
		log.Debug("Upload request has no file field", "error", err)
		h.fail(w, r, msgNoFileUploaded)
		return
	}
	defer file.Close()

	if fileHeader.Filename == "" {
		h.fail(w, r, msgNoFileSelected)
		return
	}
	if fileHeader.Size > h.maxUploadSize {
		log.Warn("Uploaded file header reports size too large", "fileSize", fileHeader.Size, "limit", h.maxUploadSize)
		h.fail(w, r, fmt.Sprintf(msgFileTooLarge, h.maxUploadSize/(1024*1024)))
		return
	}
	if !validation.AllowedFile(fileHeader.Filename) {
		log.Warn("Upload rejected: extension not allowed", "filename", fileHeader.Filename)
		h.fail(w, r, msgInvalidFileType)
		return
	}

	log.Info("Processing upload request", "filename", fileHeader.Filename, "size", fileHeader.Size)
	result, err := h.uploadService.ProcessUpload(r.Context(), file, fileHeader.Filename)
	if err != nil {
		if converter.IsLabeled(err) {
			h.fail(w, r, fmt.Sprintf(msgProcessingError, err))
		} else {
			log.Error("Unexpected conversion failure", "filename", fileHeader.Filename, "error", err)
			h.fail(w, r, fmt.Sprintf(msgUnexpectedError, err))
		}
		return
	}

	w.Header().Set("Content-Type", csvContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": result.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Data); err != nil {
		log.Error("Error writing converted file to response", "error", err)
	}
}

// fail flashes message and sends the browser back to the form.
func (h *UploadHandler) fail(w http.ResponseWriter, r *http.Request, message string) {
	h.flashes.Add(w, r, flashError, message)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
