package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SettingsRepository struct {
	*base.Repository
}

func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{Repository: base.NewRepository(pool)}
}

// GetActive получает первую активную строку настроек
func (r *SettingsRepository) GetActive(ctx context.Context) (*model.SiteSetting, error) {
	var s model.SiteSetting
	err := r.QueryRow(ctx, `
		SELECT id, name, gateway_public_key, gateway_secret_key, webhook_secret, is_active
		FROM site_settings
		WHERE is_active = true
		ORDER BY id
		LIMIT 1
	`).Scan(&s.ID, &s.Name, &s.GatewayPublicKey, &s.GatewaySecretKey, &s.WebhookSecret, &s.IsActive)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active settings: %w", err)
	}
	return &s, nil
}
