package postgres

import (
	"context"

	"crux-escrow/internal/core/domain"
	"crux-escrow/internal/core/ports"
)

type auditRepo struct {
	pool Pool
}

// NewAuditRepository creates a PostgreSQL-backed AuditRepository.
func NewAuditRepository(pool Pool) ports.AuditRepository {
	return &auditRepo{pool: pool}
}

func (r *auditRepo) Create(ctx context.Context, log *domain.AuditLog) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO audit_logs (id, account_id, action, resource_type, ip_address, details, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		log.ID, log.AccountID, string(log.Action), log.ResourceType,
		log.IPAddress, log.Details, log.CreatedAt,
	)
	return err
}
