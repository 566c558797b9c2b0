package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	// idempotencyLockTTL es corto para que el lock se libere solo si
	// el proceso se cae a mitad de camino
	idempotencyLockTTL = 30 * time.Second

	// idempotencyCacheTTL define la ventana durante la cual un retry
	// con la misma key recibe la respuesta original en vez de crear
	// una segunda solicitud
	idempotencyCacheTTL = 24 * time.Hour
)

// storedResponse is the completed response replayed on a repeated key.
type storedResponse struct {
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

type bodyCaptureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *bodyCaptureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware protects the submission endpoint from a double
// click on the form's submit button. Clients send the same
// Idempotency-Key on a retry: while the first attempt is still in
// flight the duplicate is refused, and once it has completed the cached
// response is replayed instead of creating a second request.
func IdempotencyMiddleware(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		idempKey := c.GetHeader("Idempotency-Key")
		if idempKey == "" || c.Request.Method != http.MethodPost || rdb == nil {
			c.Next()
			return
		}

		actor := c.GetString("actor")
		cacheKey := fmt.Sprintf("idemp:%s:%s:%s", c.FullPath(), actor, idempKey)
		lockKey := cacheKey + ":lock"

		// 1. Replay a completed response for this key
		if val, err := rdb.Get(c.Request.Context(), cacheKey).Result(); err == nil {
			var stored storedResponse
			if json.Unmarshal([]byte(val), &stored) == nil {
				c.Data(stored.Status, "application/json; charset=utf-8", stored.Body)
				c.Abort()
				return
			}
		}

		// 2. SetNX atómico: si la key ya existe, el primer intento
		// sigue en curso
		isNew, _ := rdb.SetNX(c.Request.Context(), lockKey, "locked", idempotencyLockTTL).Result()
		if !isNew {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"code":    "PROCESSING",
				"message": "A request with this key is already being processed",
			})
			return
		}

		capture := &bodyCaptureWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = capture

		c.Next()

		// 3. Guardar solo los éxitos; un fallo libera el lock para que
		// el cliente pueda reintentar de inmediato
		status := c.Writer.Status()
		if status >= 200 && status < 300 {
			if data, err := json.Marshal(storedResponse{Status: status, Body: capture.body.Bytes()}); err == nil {
				rdb.Set(c.Request.Context(), cacheKey, data, idempotencyCacheTTL)
			}
		}
		rdb.Del(c.Request.Context(), lockKey)
	}
}
