// internal/middleware/helpers.go
package middleware

import "github.com/gin-gonic/gin"

// GetUserID gets the authenticated user id from context
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return "", false
	}

	id, ok := userID.(string)
	return id, ok
}

// GetSessionID gets the sid bound to the current request
func GetSessionID(c *gin.Context) (string, bool) {
	sid, exists := c.Get("sid")
	if !exists {
		return "", false
	}

	s, ok := sid.(string)
	return s, ok
}

// GetRawToken gets the bearer token the request presented
func GetRawToken(c *gin.Context) string {
	token, exists := c.Get("raw_token")
	if !exists {
		return ""
	}

	t, _ := token.(string)
	return t
}

// MustGetUserID gets the user id from context or panics
func MustGetUserID(c *gin.Context) string {
	userID, exists := GetUserID(c)
	if !exists {
		panic("user_id not found in context")
	}
	return userID
}
