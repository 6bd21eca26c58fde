package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carepulse/hms-api/internal/model"
)

func (r *healthTipRepository) Create(ctx context.Context, tip *model.HealthTip) error {
	query := `
		INSERT INTO health_tips (
			id, title, content, category, weather_context, season,
			priority, target_audience, scheduled_for, is_active, generated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	if tip.ID == uuid.Nil {
		tip.ID = uuid.New()
	}
	if tip.GeneratedAt.IsZero() {
		tip.GeneratedAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, query,
		tip.ID,
		tip.Title,
		tip.Content,
		tip.Category,
		tip.WeatherContext,
		tip.Season,
		tip.Priority,
		tip.TargetAudience,
		tip.ScheduledFor,
		tip.IsActive,
		tip.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create health tip: %w", err)
	}
	return nil
}

func (r *healthTipRepository) List(ctx context.Context, limit int) ([]*model.HealthTip, error) {
	query := `
		SELECT id, title, content, category, weather_context, season,
			   priority, target_audience, scheduled_for, is_active, generated_at
		FROM health_tips
		ORDER BY generated_at DESC
		LIMIT $1
	`
	var tips []*model.HealthTip
	if err := r.db.SelectContext(ctx, &tips, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list health tips: %w", err)
	}
	return tips, nil
}
