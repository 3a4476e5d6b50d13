// Package api holds the gin handlers for the REST surface.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// respond writes the envelope every endpoint shares.
func respond(c *gin.Context, status int, message string, data interface{}) {
	body := gin.H{"success": status < 400, "message": message}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

func fail(c *gin.Context, status int, message string) {
	respond(c, status, message, nil)
}

// failBinding reports a malformed request, attaching field-level errors when
// the binding failure came from validation tags.
func failBinding(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]gin.H, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, gin.H{"field": fe.Field(), "rule": fe.Tag()})
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Validation failed",
			"errors":  fields,
		})
		return
	}
	fail(c, http.StatusBadRequest, "Invalid request body")
}

// failServer hides unexpected storage errors behind a generic fault.
func failServer(c *gin.Context, err error) {
	_ = c.Error(err)
	fail(c, http.StatusInternalServerError, "Internal server error")
}
