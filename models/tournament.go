package models

import (
	"fmt"
	"time"
)

// TournamentConfig — параметры турнирного дня, неизменные по ходу live-операций.
type TournamentConfig struct {
	ID                 int       `json:"id"`
	Name               string    `json:"name"`
	StartTime          time.Time `json:"start_time"`    // начало слота 0
	SlotMinutes        int       `json:"slot_minutes"`  // длительность одного слота
	DefaultRestMinutes int       `json:"default_rest_minutes"`
	FreezeHorizonSlots int       `json:"freeze_horizon_slots"`
	// CalledBlocks включает строгий режим светофора: вызванный (called)
	// матч тоже блокирует своих игроков, а не только started.
	CalledBlocks bool    `json:"called_blocks"`
	Courts       []Court `json:"courts"`
}

// SlotAt возвращает слот, в который попадает момент времени t (минимум 0).
func (c TournamentConfig) SlotAt(t time.Time) int {
	if c.SlotMinutes <= 0 || !t.After(c.StartTime) {
		return 0
	}
	return int(t.Sub(c.StartTime).Minutes()) / c.SlotMinutes
}

// SlotEnd возвращает момент окончания слота slot (начало слота slot+1).
func (c TournamentConfig) SlotEnd(slot int) time.Time {
	return c.StartTime.Add(time.Duration(slot+1) * time.Duration(c.SlotMinutes) * time.Minute)
}

// SlotStart возвращает момент начала слота slot.
func (c TournamentConfig) SlotStart(slot int) time.Time {
	return c.StartTime.Add(time.Duration(slot) * time.Duration(c.SlotMinutes) * time.Minute)
}

// CourtName возвращает имя корта или пустую строку, если корт неизвестен.
func (c TournamentConfig) CourtName(courtID int) string {
	for _, court := range c.Courts {
		if court.ID == courtID {
			return court.Name
		}
	}
	return ""
}

// Snapshot — согласованный read-only срез живой модели турнира.
// Все чистые вычисления (светофор, подсказки, анализ влияния) работают
// только по нему и не мутируют исходные таблицы.
type Snapshot struct {
	Config      TournamentConfig    `json:"config"`
	Players     map[int]*Player     `json:"players"`
	Matches     map[int]*Match      `json:"matches"`
	Assignments []Assignment        `json:"assignments"`
	States      map[int]*MatchState `json:"states"`
	Now         time.Time           `json:"now"`
}

// StatusOf возвращает статус матча; отсутствие MatchState означает scheduled.
func (s *Snapshot) StatusOf(matchID int) MatchStatus {
	if st, ok := s.States[matchID]; ok {
		return st.Status
	}
	return StatusScheduled
}

// AssignmentOf ищет плановую позицию матча.
func (s *Snapshot) AssignmentOf(matchID int) (Assignment, bool) {
	for _, a := range s.Assignments {
		if a.MatchID == matchID {
			return a, true
		}
	}
	return Assignment{}, false
}

// EffectiveCourt — корт, на котором матч реально находится: фактический корт
// старта, если он записан, иначе плановый.
func (s *Snapshot) EffectiveCourt(matchID int) (int, bool) {
	if st, ok := s.States[matchID]; ok && st.ActualCourtID != nil {
		return *st.ActualCourtID, true
	}
	a, ok := s.AssignmentOf(matchID)
	if !ok {
		return 0, false
	}
	return a.CourtID, true
}

// CurrentSlot — слот, соответствующий моменту снимка.
func (s *Snapshot) CurrentSlot() int {
	return s.Config.SlotAt(s.Now)
}

// MatchLabel возвращает отображаемое имя матча для строк-пояснений.
func (s *Snapshot) MatchLabel(matchID int) string {
	if m, ok := s.Matches[matchID]; ok && m.Label != nil && *m.Label != "" {
		return *m.Label
	}
	return fmt.Sprintf("M%d", matchID)
}
