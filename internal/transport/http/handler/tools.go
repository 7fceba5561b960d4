package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"classcare-chatbot/internal/tools"
	"classcare-chatbot/internal/transport/http/response"
)

// ToolsHandler exposes the student-creation tools directly, bypassing the
// conversational flow. The client is nil when no student API is configured.
type ToolsHandler struct {
	studentClient *tools.Client
}

func NewToolsHandler(studentClient *tools.Client) *ToolsHandler {
	return &ToolsHandler{studentClient: studentClient}
}

func (h *ToolsHandler) StudentRequirements(c *gin.Context) {
	if _, ok := getUserIDFromContext(c); !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	response.OK(c, gin.H{"requirements": tools.StudentRequirements()})
}

func (h *ToolsHandler) CreateStudent(c *gin.Context) {
	if _, ok := getUserIDFromContext(c); !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid token payload")
		return
	}
	if h.studentClient == nil {
		response.Error(c, http.StatusServiceUnavailable, response.CodeInternalServer,
			"student API is not configured; set STUDENT_API_BASE and restart the server")
		return
	}

	var data tools.StudentData
	if err := c.ShouldBindJSON(&data); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.studentClient.CreateStudent(c.Request.Context(), data)
	if err != nil {
		response.Error(c, http.StatusBadGateway, response.CodeInternalServer, err.Error())
		return
	}
	if !result.Success {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, result.Error)
		return
	}
	response.OK(c, result)
}
