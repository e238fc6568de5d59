package handler

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"knowbase/internal/service"
)

// DocumentHandler handles training document endpoints.
type DocumentHandler struct {
	documentService service.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documentService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

func formFile(c *gin.Context) (multipart.File, *multipart.FileHeader, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return nil, nil, false
	}
	return file, header, true
}

// Preview handles POST /api/v1/documents/preview
// @Summary Preview document parsing
// @Description Parse a DOCX or XLSX file and return its sections and tables without storing it
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "DOCX or XLSX file"
// @Success 200 {object} Response{data=docparse.ParsedContent} "Parsed content"
// @Failure 400 {object} ErrorResponseBody "Missing file or unsupported type"
// @Failure 422 {object} ErrorResponseBody "File could not be parsed"
// @Security BearerAuth
// @Router /documents/preview [post]
func (h *DocumentHandler) Preview(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	file, header, ok := formFile(c)
	if !ok {
		return
	}
	defer func() { _ = file.Close() }()

	parsed, err := h.documentService.Preview(c.Request.Context(), actor, header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, parsed)
}

// Upload handles POST /api/v1/documents
// @Summary Upload a training document
// @Description Upload a DOCX or XLSX file; it is parsed before being stored
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "DOCX or XLSX file"
// @Param title formData string false "Document title (defaults to the first section title)"
// @Success 201 {object} Response{data=domain.Document} "Document stored"
// @Failure 400 {object} ErrorResponseBody "Missing file or unsupported type"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 422 {object} ErrorResponseBody "File could not be parsed"
// @Security BearerAuth
// @Router /documents [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	file, header, ok := formFile(c)
	if !ok {
		return
	}
	defer func() { _ = file.Close() }()

	doc, err := h.documentService.Upload(c.Request.Context(), actor, service.UploadDocumentInput{
		Title:       c.PostForm("title"),
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondCreated(c, doc)
}

// List handles GET /api/v1/documents
// @Summary List documents
// @Description Managers see every document; employees see documents assigned to them
// @Tags documents
// @Produce json
// @Param offset query int false "Offset for pagination" default(0)
// @Param limit query int false "Limit for pagination (max 100)" default(20)
// @Success 200 {object} Response{data=[]domain.Document,meta=PagMeta} "Documents"
// @Security BearerAuth
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	offset, limit := pagination(c)

	docs, total, err := h.documentService.List(c.Request.Context(), actor, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, docs, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/documents/:id
// @Summary Get document metadata
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 200 {object} Response{data=domain.Document} "Document"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Security BearerAuth
// @Router /documents/{id} [get]
func (h *DocumentHandler) GetByID(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	docID, ok := pathID(c, "document")
	if !ok {
		return
	}

	doc, err := h.documentService.Get(c.Request.Context(), actor, docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, doc)
}

// GetContent handles GET /api/v1/documents/:id/content
// @Summary Get parsed document content
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 200 {object} Response{data=docparse.ParsedContent} "Sections, tables and counts"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Failure 409 {object} ErrorResponseBody "Document not parsed"
// @Security BearerAuth
// @Router /documents/{id}/content [get]
func (h *DocumentHandler) GetContent(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	docID, ok := pathID(c, "document")
	if !ok {
		return
	}

	content, err := h.documentService.GetContent(c.Request.Context(), actor, docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, content)
}

// Download handles GET /api/v1/documents/:id/download
// @Summary Get a download link for the original file
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 200 {object} Response{data=DownloadURLResponse} "Presigned URL"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Security BearerAuth
// @Router /documents/{id}/download [get]
func (h *DocumentHandler) Download(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	docID, ok := pathID(c, "document")
	if !ok {
		return
	}

	url, err := h.documentService.GetDownloadURL(c.Request.Context(), actor, docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, DownloadURLResponse{DownloadURL: url})
}

// Reparse handles POST /api/v1/documents/:id/reparse
// @Summary Parse a stored document again
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 200 {object} Response{data=domain.Document} "Document re-parsed"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Failure 422 {object} ErrorResponseBody "Parse failed; document marked failed"
// @Security BearerAuth
// @Router /documents/{id}/reparse [post]
func (h *DocumentHandler) Reparse(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	docID, ok := pathID(c, "document")
	if !ok {
		return
	}

	doc, err := h.documentService.Reparse(c.Request.Context(), actor, docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, doc)
}

// Delete handles DELETE /api/v1/documents/:id
// @Summary Delete a document
// @Tags documents
// @Produce json
// @Param id path string true "Document ID (UUID)"
// @Success 200 {object} Response{data=MessageResponse} "Document deleted"
// @Failure 404 {object} ErrorResponseBody "Document not found"
// @Security BearerAuth
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	actor, ok := actorOrAbort(c)
	if !ok {
		return
	}
	docID, ok := pathID(c, "document")
	if !ok {
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), actor, docID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "document deleted"})
}
