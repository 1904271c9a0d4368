// Package handlers holds the gin handlers of the review API.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/meisai-checker/pkg/errors"
	apitypes "github.com/turtacn/meisai-checker/pkg/types/review"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse = apitypes.ErrorResponse

// writeAppError maps err to its HTTP status.  Server-side details (paths,
// causes) are not exposed.
func writeAppError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)

	resp := ErrorResponse{Code: code.String(), Message: errors.DefaultMessageForCode(code)}
	var ae *errors.AppError
	if errors.As(err, &ae) {
		resp.Message = ae.Message
		if status < http.StatusInternalServerError {
			resp.Detail = ae.Detail
		}
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}

//Personal.AI order the ending
