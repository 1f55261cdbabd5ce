package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSONResponse defines the uniform structure for API responses.
type JSONResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Respond writes a JSON response with the given status code.
func Respond(ctx *gin.Context, status int, code int, message string, data interface{}) {
	ctx.JSON(status, JSONResponse{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// Success returns a standard success response.
func Success(ctx *gin.Context, data interface{}) {
	Respond(ctx, http.StatusOK, 0, "success", data)
}

// Error returns a standard error response.
func Error(ctx *gin.Context, status int, code int, message string) {
	Respond(ctx, status, code, message, nil)
}

// FormErrors re-renders a rejected submission: HTTP 200 with a non-zero code
// and the field errors, mirroring the form flow of the original UI.
func FormErrors(ctx *gin.Context, code int, fields interface{}) {
	ctx.JSON(http.StatusOK, JSONResponse{
		Code:    code,
		Message: "validation failed",
		Data:    gin.H{"errors": fields},
	})
}

// SeeOther answers a successful form submission with a 303 redirect.
func SeeOther(ctx *gin.Context, location string) {
	ctx.Redirect(http.StatusSeeOther, location)
}
