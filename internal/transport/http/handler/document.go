package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"docassist/internal/app"
	"docassist/internal/pkg/textextract"
	"docassist/internal/transport/http/response"
)

type DocumentHandler struct {
	ingest    *app.IngestService
	documents *app.DocumentService
	maxUpload int64
}

func NewDocumentHandler(ingest *app.IngestService, documents *app.DocumentService, maxUploadMB int) *DocumentHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 10
	}
	return &DocumentHandler{
		ingest:    ingest,
		documents: documents,
		maxUpload: int64(maxUploadMB) << 20,
	}
}

// Upload accepts a multipart form with "file" (.txt or .pdf), extracts the
// plain text and enqueues ingestion. It returns as soon as the document
// exists in PENDING; the client polls the list endpoint for the terminal
// status.
func (h *DocumentHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file")
		return
	}
	if file.Size > h.maxUpload {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file too large")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to read file")
		return
	}
	defer f.Close()

	text, err := textextract.Extract(f, file.Filename)
	if err != nil {
		if errors.Is(err, textextract.ErrUnsupportedFormat) {
			response.Error(c, http.StatusBadRequest, response.CodeUnsupportedFormat, "only .txt and .pdf files are supported")
		} else {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "failed to extract text: "+err.Error())
		}
		return
	}

	doc, err := h.ingest.Enqueue(c.Request.Context(), strings.TrimSpace(file.Filename), text)
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "enqueue ingestion failed")
		}
		return
	}

	response.Created(c, doc)
}

func (h *DocumentHandler) List(c *gin.Context) {
	docs, err := h.documents.List(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list documents failed")
		return
	}
	response.OK(c, docs)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid document id")
		return
	}
	if err := h.documents.Delete(c.Request.Context(), uint(id)); err != nil {
		if errors.Is(err, app.ErrDocumentNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete document failed")
		}
		return
	}
	response.OK(c, gin.H{"deleted_document_id": id})
}
