package middleware

import (
	"encoding/json"
	"strings"
	"time"

	"crux-escrow/internal/core/domain"
	"crux-escrow/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuditLog creates an audit middleware that logs successful write operations.
// It maps HTTP methods and paths to audit actions.
func AuditLog(auditSvc ports.AuditService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		// Only audit successful write operations (status 2xx)
		if c.Writer.Status() < 200 || c.Writer.Status() >= 300 {
			return
		}
		if c.Request.Method == "GET" || c.Request.Method == "HEAD" || c.Request.Method == "OPTIONS" {
			return
		}

		action, resourceType := mapPathToAction(c.Request.URL.Path, c.Request.Method)
		if action == "" {
			return
		}

		var accountID *uuid.UUID
		if aid, exists := c.Get(CtxAccountID); exists {
			if id, ok := aid.(uuid.UUID); ok {
				accountID = &id
			}
		}

		details, _ := json.Marshal(map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
		})

		auditSvc.Log(c.Request.Context(), &domain.AuditLog{
			ID:           uuid.New(),
			AccountID:    accountID,
			Action:       action,
			ResourceType: resourceType,
			IPAddress:    c.ClientIP(),
			Details:      string(details),
			CreatedAt:    time.Now(),
		})
	}
}

func mapPathToAction(path, method string) (domain.AuditAction, string) {
	switch {
	case path == "/api/v1/auth/register" && method == "POST":
		return domain.AuditActionRegister, "account"
	case path == "/api/v1/auth/login" && method == "POST":
		return domain.AuditActionLogin, "session"
	case path == "/api/v1/escrows" && method == "POST":
		return domain.AuditActionEscrowCreate, "escrow"
	case strings.HasPrefix(path, "/api/v1/escrows/") && strings.HasSuffix(path, "/cancel") && method == "POST":
		return domain.AuditActionEscrowCancel, "escrow"
	case strings.HasPrefix(path, "/api/v1/incoming/") && strings.HasSuffix(path, "/release") && method == "POST":
		return domain.AuditActionRelease, "escrow"
	case strings.HasPrefix(path, "/api/v1/incoming/") && strings.HasSuffix(path, "/cancel") && method == "POST":
		return domain.AuditActionEscrowCancel, "escrow"
	}
	return "", ""
}
