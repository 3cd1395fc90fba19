package middleware

import (
	"sync"

	"github.com/gin-gonic/gin"
)

// Serialize runs the handlers of one request at a time.
//
// The directory, session and ledger services assume single threaded dispatch
// of user actions and hold no locks of their own.
func Serialize() gin.HandlerFunc {
	var mu sync.Mutex

	return func(c *gin.Context) {
		mu.Lock()
		defer mu.Unlock()

		c.Next()
	}
}
