package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Body is the uniform response envelope.
type Body struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Body{Code: 0, Message: message, Data: data})
}

func Fail(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusBadRequest, Body{Code: 1, Message: message, Data: data})
}

func FailWithStatus(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, Body{Code: 1, Message: message, Data: data})
}
