package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// OK writes payload with 200.
func OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// Created writes payload with 201 for register and upload.
func Created(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}

// Message writes {"message": msg} with 200, the shape used by the password
// recovery and delete endpoints.
func Message(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, gin.H{"message": msg})
}
