package ledger

import (
	"context"
	"fmt"
)

// HealthCheck implements ports.HealthChecker for the ledger endpoint.
type HealthCheck struct {
	client *Client
}

// NewHealthCheck creates a ledger health checker.
func NewHealthCheck(client *Client) *HealthCheck {
	return &HealthCheck{client: client}
}

// Ping checks ledger connectivity via server_info.
func (h *HealthCheck) Ping(ctx context.Context) error {
	var result serverInfoResult
	if err := h.client.call(ctx, "server_info", struct{}{}, &result); err != nil {
		return err
	}
	if result.Error != "" {
		return fmt.Errorf("server_info: %s", result.Error)
	}
	return nil
}

// Name returns the dependency name.
func (h *HealthCheck) Name() string {
	return "ledger"
}
