package models

// Assignment — актуальная плановая позиция матча: один Assignment на матч.
// Создаётся солвером, перезаписывается каскадным движком при переносе.
type Assignment struct {
	MatchID       int `json:"match_id"`
	CourtID       int `json:"court_id"`
	SlotID        int `json:"slot_id"`
	DurationSlots int `json:"duration_slots"`
}

// EndSlot — первый слот после окончания матча (полуинтервал [SlotID, EndSlot)).
func (a Assignment) EndSlot() int {
	return a.SlotID + a.DurationSlots
}

// Overlaps проверяет пересечение интервала назначения с [start, end).
func (a Assignment) Overlaps(start, end int) bool {
	return a.SlotID < end && start < a.EndSlot()
}

// PreviousAssignment — подсказка солверу о предыдущей позиции матча.
// Locked-назначения солвер обязан сохранить как есть.
type PreviousAssignment struct {
	MatchID       int  `json:"match_id"`
	SlotID        int  `json:"slot_id"`
	CourtID       int  `json:"court_id"`
	Locked        bool `json:"locked"`
	PinnedSlotID  *int `json:"pinned_slot_id,omitempty"`
	PinnedCourtID *int `json:"pinned_court_id,omitempty"`
}
