package helper

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskboard/internal/core/model/response"
)

func SendSuccess(c *gin.Context, statusCode int, data any, message ...string) {
	response := response.SuccessResponse{
		Data: data,
	}

	if len(message) > 0 && message[0] != "" {
		response.Message = message[0]
	}

	c.JSON(statusCode, response)
}

func SendError(c *gin.Context, statusCode int, code string, errors []response.ValidationError, details ...any) {
	errorResponse := response.ErrorResponse{
		Error: response.ResponseError{
			Code:   code,
			Errors: errors,
		},
	}

	if len(details) > 0 {
		errorResponse.Error.Details = details[0]
	}

	c.AbortWithStatusJSON(statusCode, errorResponse)
}

func SendInternalError(c *gin.Context, message string, details ...any) {
	SendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", []response.ValidationError{
		{Field: "server", Message: message},
	}, details...)
}

func SendBadRequestError(c *gin.Context, field string, message string) {
	SendError(c, http.StatusBadRequest, "BAD_REQUEST", []response.ValidationError{
		{Field: field, Message: message},
	})
}

func SendNotFoundError(c *gin.Context, message string) {
	SendError(c, http.StatusNotFound, "NOT_FOUND", []response.ValidationError{
		{Field: "resource", Message: message},
	})
}

func SendTooManyRequests(c *gin.Context, message string, retryAfter int) {
	SendError(c, http.StatusTooManyRequests, "RATE_LIMITED", []response.ValidationError{
		{Field: "request", Message: message},
	}, gin.H{"retry_after": retryAfter})
}
