package delivery

import (
	"crypto/subtle"
	"log"
	"net/http"
	"strings"

	"pushcast-backend/internal/campaign/scheduler"

	"github.com/gin-gonic/gin"
)

// CronHandler lets an external cron service drive the scheduler
type CronHandler struct {
	runner scheduler.Runner
	secret string
}

func NewCronHandler(runner scheduler.Runner, secret string) *CronHandler {
	return &CronHandler{runner: runner, secret: secret}
}

// ProcessScheduled runs one scheduler pass
// GET /api/cron/process-scheduled
func (h *CronHandler) ProcessScheduled(c *gin.Context) {
	if !h.authorized(c.GetHeader("Authorization")) {
		log.Println("[Cron] Unauthorized access attempt")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	report, err := h.runner.ProcessDue(c.Request.Context())
	if err != nil {
		log.Printf("[Cron] Fatal scheduler error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"processed": report.Processed,
		"details":   report.Details,
	})
}

// authorized compares the bearer secret in constant time. An unset secret
// rejects every caller.
func (h *CronHandler) authorized(header string) bool {
	if h.secret == "" {
		return false
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.secret)) == 1
}
