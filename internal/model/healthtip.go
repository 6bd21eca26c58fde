package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TipSlot is one of the two daily generation slots.
type TipSlot string

const (
	TipSlotMorning TipSlot = "9AM"
	TipSlotEvening TipSlot = "9PM"
)

func ParseTipSlot(s string) (TipSlot, error) {
	switch TipSlot(s) {
	case TipSlotMorning, TipSlotEvening:
		return TipSlot(s), nil
	}
	return "", fmt.Errorf("unknown tip slot: %q", s)
}

type HealthTip struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Title          string    `db:"title" json:"title"`
	Content        string    `db:"content" json:"content"`
	Category       string    `db:"category" json:"category"`
	WeatherContext string    `db:"weather_context" json:"weather_context"`
	Season         string    `db:"season" json:"season"`
	Priority       string    `db:"priority" json:"priority"`
	TargetAudience string    `db:"target_audience" json:"target_audience"`
	ScheduledFor   TipSlot   `db:"scheduled_for" json:"scheduled_for"`
	IsActive       bool      `db:"is_active" json:"is_active"`
	GeneratedAt    time.Time `db:"generated_at" json:"generated_at"`
}
