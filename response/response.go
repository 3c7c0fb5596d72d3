package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Used by swagger to generate documentation
type Response[T any] struct {
	Code ErrorCode `json:"code"`
	Data T         `json:"data"`
	Msg  string    `json:"msg"`
}

// wrapResponse wraps the response data and sends it back to the client.
// It sets the HTTP status code based on the ErrorCode and serializes the
// response envelope into JSON.
func wrapResponse(c *gin.Context, msg string, data any, code ErrorCode) {
	httpCode := http.StatusOK
	if code != OK {
		httpCode = http.StatusInternalServerError
	}
	c.JSON(httpCode, gin.H{
		"code": code,
		"data": data,
		"msg":  msg,
	})
}

// Success sends a successful response to the client with the provided data.
func Success(c *gin.Context, data any) {
	wrapResponse(c, "", data, OK)
}

// Error sends an error response to the client with the specified message and error code.
func Error(c *gin.Context, msg string, errorCode ErrorCode) {
	wrapResponse(c, msg, nil, errorCode)
}

// HTTPError sends an HTTP error response with the specified HTTP code, error message, and error code.
func HTTPError(c *gin.Context, httpCode int, msg string, errorCode ErrorCode) {
	c.JSON(httpCode, gin.H{
		"code": errorCode,
		"data": nil,
		"msg":  msg,
	})
}

// BadRequestError reports a failed Gin ShouldBindJSON / ShouldBindQuery / ShouldBindUri call.
func BadRequestError(c *gin.Context, msg string) {
	HTTPError(c, http.StatusBadRequest, msg, InvalidRequest)
}

// ValidationError reports a business-rule validation failure, such as a
// missing delete reason or a mismatched confirmation phrase.
func ValidationError(c *gin.Context, msg string) {
	HTTPError(c, http.StatusBadRequest, msg, ValidationFailed)
}

// NotFoundError reports a lookup miss for the requested record.
func NotFoundError(c *gin.Context, msg string) {
	HTTPError(c, http.StatusNotFound, msg, RecordNotFound)
}
