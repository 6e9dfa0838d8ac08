package models

import "time"

// SetScore — счёт одного сета (детализация поверх общего Score).
type SetScore struct {
	A int `json:"a"`
	B int `json:"b"`
}

// MatchState — живое операционное состояние матча, отдельное от планового
// Assignment. Создаётся лениво при первом изменении статуса, никогда не
// удаляется — только сбрасывается при undo.
type MatchState struct {
	MatchID         int          `json:"match_id"`
	Status          MatchStatus  `json:"status"`
	ActualStartTime *time.Time   `json:"actual_start_time,omitempty"`
	ActualEndTime   *time.Time   `json:"actual_end_time,omitempty"`
	ActualCourtID   *int         `json:"actual_court_id,omitempty"` // корт фактического старта, если отличается от планового
	Delayed         bool         `json:"delayed"`
	DelayReason     *string      `json:"delay_reason,omitempty"`
	Pinned          bool         `json:"pinned"` // закреплённый матч не вытесняется автоматически
	Postponed       bool         `json:"postponed"`
	Confirmations   map[int]bool `json:"confirmations,omitempty"` // playerID -> подтвердил присутствие (имеет смысл в статусе called)
	Score           *string      `json:"score,omitempty"`
	SetScores       []SetScore   `json:"set_scores,omitempty"`
	// OriginalSlotID/OriginalCourtID устанавливаются и очищаются только вместе:
	// позиция до каскадного переноса, нужна для undo.
	OriginalSlotID  *int `json:"original_slot_id,omitempty"`
	OriginalCourtID *int `json:"original_court_id,omitempty"`
}

// NewMatchState создаёт состояние со статусом по умолчанию.
func NewMatchState(matchID int) *MatchState {
	return &MatchState{MatchID: matchID, Status: StatusScheduled}
}

// Displaced сообщает, хранит ли состояние позицию до переноса.
func (s *MatchState) Displaced() bool {
	return s.OriginalSlotID != nil && s.OriginalCourtID != nil
}

// Clone возвращает глубокую копию состояния.
func (s *MatchState) Clone() *MatchState {
	if s == nil {
		return nil
	}
	c := *s
	c.ActualStartTime = cloneTime(s.ActualStartTime)
	c.ActualEndTime = cloneTime(s.ActualEndTime)
	c.ActualCourtID = cloneInt(s.ActualCourtID)
	c.DelayReason = cloneString(s.DelayReason)
	c.Score = cloneString(s.Score)
	c.OriginalSlotID = cloneInt(s.OriginalSlotID)
	c.OriginalCourtID = cloneInt(s.OriginalCourtID)
	if s.Confirmations != nil {
		c.Confirmations = make(map[int]bool, len(s.Confirmations))
		for k, v := range s.Confirmations {
			c.Confirmations[k] = v
		}
	}
	if s.SetScores != nil {
		c.SetScores = append([]SetScore(nil), s.SetScores...)
	}
	return &c
}

// StatePatch — ортогональные к таблице переходов поля MatchState,
// устанавливаемые из любого статуса. nil-поле означает "не трогать".
type StatePatch struct {
	Delayed       *bool        `json:"delayed,omitempty"`
	DelayReason   *string      `json:"delay_reason,omitempty"`
	Pinned        *bool        `json:"pinned,omitempty"`
	Postponed     *bool        `json:"postponed,omitempty"`
	Confirmations map[int]bool `json:"confirmations,omitempty"`
	Score         *string      `json:"score,omitempty"`
	SetScores     []SetScore   `json:"set_scores,omitempty"`
	ActualCourtID *int         `json:"actual_court_id,omitempty"`
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func cloneInt(i *int) *int {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
