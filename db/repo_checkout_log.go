// db/repo_checkout_log.go
package db

import (
	"checkout_kiosk/models"
	"context"
	"fmt"
)

const (
	DefaultLogLimit = 50
	MaxLogLimit     = 500
)

func (r *Repo) AppendLog(ctx context.Context, entry *models.CheckoutLog) error {
	if err := r.DB.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("insert checkout log: %w", err)
	}
	return nil
}

// ListLog returns the newest entries first.
func (r *Repo) ListLog(ctx context.Context, limit int) ([]models.CheckoutLog, error) {
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	if limit > MaxLogLimit {
		limit = MaxLogLimit
	}
	entries := []models.CheckoutLog{}
	err := r.DB.WithContext(ctx).
		Order("timestamp DESC").Order("id DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
