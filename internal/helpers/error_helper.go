package helpers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/imcufide/convocatorias/internal/forms"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

func RespondWithError(c *gin.Context, statusCode int, customMessage string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: customMessage,
	})
}

// RespondWithValidationErrors returns the full field→reason map so the
// caller can fix every rejected field in one resubmission.
func RespondWithValidationErrors(c *gin.Context, errs forms.FieldErrors) {
	c.JSON(http.StatusBadRequest, ValidationErrorResponse{
		Error:  "Validation failed.",
		Fields: errs,
	})
}
