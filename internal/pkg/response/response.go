package response

import (
	"github.com/gin-gonic/gin"
	apperrors "github.com/lk2023060901/yt-content-manager/internal/pkg/errors"
)

// Response is the envelope used for failures outside the content contract,
// such as configuration errors.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data"`
}

// HandleError maps err to its business code and HTTP status.
func HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	code := apperrors.ExtractCode(err)
	c.JSON(apperrors.GetHTTPStatus(code), Response{
		Code:    code,
		Message: apperrors.FormatError(code, apperrors.GetDetails(err)),
		Data:    struct{}{},
	})
}
