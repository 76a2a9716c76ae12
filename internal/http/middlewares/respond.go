package middlewares

import "github.com/gin-gonic/gin"

// abortMessage stops the chain with the API's {message} envelope.
func abortMessage(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"message": message})
}
