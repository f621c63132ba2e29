package middleware

import (
	"os"
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-Id"
	requestIDKey    = "requestId"
	maxRequestIDLen = 128
)

// idNode generates request ids. NODE_ID separates replicas; an unset or
// invalid value uses node 1.
var idNode = sync.OnceValue(func() *snowflake.Node {
	n, err := strconv.ParseInt(os.Getenv("NODE_ID"), 10, 64)
	if err != nil {
		n = 1
	}
	node, err := snowflake.NewNode(n)
	if err != nil {
		node, _ = snowflake.NewNode(1)
	}
	return node
})

// RequestID keeps a well-formed incoming X-Request-Id or assigns a new one,
// and echoes it on the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if !validRequestID(id) {
			id = newRequestID()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// RequestIDFromContext returns the id set by RequestID, or "".
func RequestIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(requestIDKey)
}

func newRequestID() string {
	if node := idNode(); node != nil {
		return node.Generate().String()
	}
	return uuid.NewString()
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
