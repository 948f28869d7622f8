package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	DetailCredentialsInvalid = "Could not validate credentials"
	DetailIncorrectLogin     = "Incorrect email or password"
	DetailConflict           = "Username or email already exists"
	DetailUserNotFound       = "User not found"
	DetailTodoNotFound       = "Todo not found"
	DetailPermissionDenied   = "You do not have permission to perform this action"
	DetailInternal           = "Internal server error"
)

type ErrorBody struct {
	Detail string `json:"detail"`
}

type MessageBody struct {
	Message string `json:"message"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

func Message(c *gin.Context, message string) {
	c.JSON(http.StatusOK, MessageBody{Message: message})
}

// Error writes {"detail": ...} and stops the handler chain.
func Error(c *gin.Context, httpStatus int, detail string) {
	c.AbortWithStatusJSON(httpStatus, ErrorBody{Detail: detail})
}

// Unauthorized adds the bearer challenge every 401 must carry.
func Unauthorized(c *gin.Context, detail string) {
	c.Header("WWW-Authenticate", "Bearer")
	Error(c, http.StatusUnauthorized, detail)
}
