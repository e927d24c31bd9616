package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ledger-synth/internal/api_gateway/middleware"
)

// Error codes carried in ErrorInfo.Code
const (
	CodeBadRequest     = "BAD_REQUEST"
	CodeInvalidRequest = "INVALID_REQUEST"
	CodeUnknownProfile = "UNKNOWN_PROFILE"
	CodeNotFound       = "NOT_FOUND"
	CodeInternal       = "INTERNAL_SERVER_ERROR"
)

// Response is the envelope of every API response
type Response struct {
	Data          interface{} `json:"data,omitempty"`
	Error         *ErrorInfo  `json:"error,omitempty"`
	CorrelationID string      `json:"correlation_id,omitempty"`
	Meta          *MetaInfo   `json:"meta,omitempty"`
}

type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MetaInfo describes the page of a paginated listing
type MetaInfo struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalPages int64 `json:"total_pages"`
	TotalItems int64 `json:"total_items"`
}

func newPage(page, perPage int, totalItems int64) *MetaInfo {
	var totalPages int64
	if perPage > 0 {
		totalPages = (totalItems + int64(perPage) - 1) / int64(perPage)
	}
	return &MetaInfo{
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
		TotalItems: totalItems,
	}
}

func respond(c *gin.Context, statusCode int, response Response) {
	response.CorrelationID = middleware.GetCorrelationID(c)
	c.JSON(statusCode, response)
}

// RespondWithData sends data in the envelope
func RespondWithData(c *gin.Context, statusCode int, data interface{}) {
	respond(c, statusCode, Response{Data: data})
}

// RespondWithError sends an error in the envelope
func RespondWithError(c *gin.Context, statusCode int, code, message string) {
	respond(c, statusCode, Response{Error: &ErrorInfo{Code: code, Message: message}})
}

// RespondWithPaginatedData sends one page of a listing; an empty page is sent
// as an empty array, never null.
func RespondWithPaginatedData[T any](c *gin.Context, items []T, page, perPage int, totalItems int64) {
	if items == nil {
		items = []T{}
	}
	respond(c, http.StatusOK, Response{Data: items, Meta: newPage(page, perPage, totalItems)})
}

func RespondOK(c *gin.Context, data interface{}) {
	RespondWithData(c, http.StatusOK, data)
}

// RespondAccepted is used for work queued to the synthesizer
func RespondAccepted(c *gin.Context, data interface{}) {
	RespondWithData(c, http.StatusAccepted, data)
}

func RespondBadRequest(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadRequest, CodeBadRequest, message)
}

func RespondNotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, CodeNotFound, message)
}

func RespondInternalError(c *gin.Context) {
	RespondWithError(c, http.StatusInternalServerError, CodeInternal, "An internal server error occurred")
}
