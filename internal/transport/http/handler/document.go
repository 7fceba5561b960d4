package handler

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"classcare-chatbot/internal/app"
	"classcare-chatbot/internal/pkg/extract"
	"classcare-chatbot/internal/transport/http/response"
)

type DocumentHandler struct {
	docService  *app.DocumentService
	uploadDir   string
	maxFileSize int64
}

func NewDocumentHandler(docService *app.DocumentService, uploadDir string, maxFileSizeMB int) *DocumentHandler {
	if maxFileSizeMB <= 0 {
		maxFileSizeMB = 10
	}
	return &DocumentHandler{
		docService:  docService,
		uploadDir:   uploadDir,
		maxFileSize: int64(maxFileSizeMB) << 20,
	}
}

// Upload accepts a multipart form with "file" and optional "title", stores
// the file under the upload directory, and runs ingestion.
func (h *DocumentHandler) Upload(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "missing file")
		return
	}
	if file.Size > h.maxFileSize {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest,
			fmt.Sprintf("file too large (max %dMB)", h.maxFileSize>>20))
		return
	}

	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(file.Filename)), ".")
	if !extract.Supported(ext) {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "unsupported file type: "+ext)
		return
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "prepare upload directory failed")
		return
	}
	storedName := uuid.NewString() + "." + ext
	storedPath := filepath.Join(h.uploadDir, storedName)
	if err := c.SaveUploadedFile(file, storedPath); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "store uploaded file failed")
		return
	}

	title := strings.TrimSpace(c.PostForm("title"))
	if title == "" {
		title = strings.TrimSuffix(file.Filename, filepath.Ext(file.Filename))
		if title == "" {
			title = "Untitled"
		}
	}

	result, err := h.docService.Upload(c.Request.Context(), app.UploadDocumentInput{
		Title:      title,
		FilePath:   storedPath,
		FileType:   ext,
		UploadedBy: userID,
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidInput) {
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		} else {
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "upload document failed")
		}
		return
	}

	response.OK(c, result)
}

func (h *DocumentHandler) List(c *gin.Context) {
	if _, ok := getUserIDFromContext(c); !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	docs, err := h.docService.List()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list documents failed")
		return
	}

	response.OK(c, docs)
}

func (h *DocumentHandler) Delete(c *gin.Context) {
	if _, ok := getUserIDFromContext(c); !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}

	docID := c.Param("id")
	if docID == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid document id")
		return
	}

	if err := h.docService.Delete(c.Request.Context(), docID); err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrDocumentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeDocumentNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete document failed")
		}
		return
	}

	response.OK(c, gin.H{"deleted_document_id": docID})
}
