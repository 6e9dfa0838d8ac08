package models

import "time"

// AvailabilityWindow — интервал, в котором игрок доступен для вызова на корт.
type AvailabilityWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type Player struct {
	ID           int                  `json:"id"`
	Name         string               `json:"name"`
	GroupID      *int                 `json:"group_id,omitempty"`
	Tags         []string             `json:"tags,omitempty"`
	Availability []AvailabilityWindow `json:"availability,omitempty"`
	// MinRestMinutes переопределяет TournamentConfig.DefaultRestMinutes для конкретного игрока.
	MinRestMinutes *int `json:"min_rest_minutes,omitempty"`
}

// RestMinutes возвращает требуемый отдых игрока с учётом значения по умолчанию.
func (p *Player) RestMinutes(defaultMinutes int) int {
	if p != nil && p.MinRestMinutes != nil {
		return *p.MinRestMinutes
	}
	return defaultMinutes
}
