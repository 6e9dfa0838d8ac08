package engine

import (
	"fmt"
	"sort"

	"github.com/Dosada05/tournament-liveops/models"
)

// CourtSuggestion — предложение оператору заполнить простаивающий корт.
type CourtSuggestion struct {
	CourtID     int    `json:"court_id"`
	CourtName   string `json:"court_name,omitempty"`
	MatchID     int    `json:"match_id"`
	MatchLabel  string `json:"match_label"`
	Reason      string `json:"reason"`
	FromCourtID int    `json:"from_court_id"` // исходная позиция кандидата, для контекста оператора
	FromSlotID  int    `json:"from_slot_id"`
}

// FreeCourts возвращает ID кортов, считающихся свободными: на корте нет
// started-матча, есть хотя бы один finished и нет called (вызванный матч
// вот-вот займёт корт). Порядок — по ID корта.
func FreeCourts(snap *models.Snapshot) []int {
	type courtUse struct {
		started, called, finished bool
	}
	use := make(map[int]*courtUse, len(snap.Config.Courts))
	for _, court := range snap.Config.Courts {
		use[court.ID] = &courtUse{}
	}
	for _, a := range snap.Assignments {
		courtID, ok := snap.EffectiveCourt(a.MatchID)
		if !ok {
			courtID = a.CourtID
		}
		u, ok := use[courtID]
		if !ok {
			u = &courtUse{}
			use[courtID] = u
		}
		switch snap.StatusOf(a.MatchID) {
		case models.StatusStarted:
			u.started = true
		case models.StatusCalled:
			u.called = true
		case models.StatusFinished:
			u.finished = true
		}
	}

	var free []int
	for courtID, u := range use {
		if !u.started && !u.called && u.finished {
			free = append(free, courtID)
		}
	}
	sort.Ints(free)
	return free
}

// SuggestCourtFills предлагает для каждого свободного корта лучший готовый
// (green) матч: незакреплённый, не started/finished, не отложенный и не
// стоящий уже на этом корте. Из кандидатов берётся самый ранний по плановому
// слоту, при равенстве — с меньшим ID (детерминизм). Один матч не попадает в
// два предложения одновременно.
func SuggestCourtFills(snap *models.Snapshot, verdicts map[int]ConflictResult) []CourtSuggestion {
	free := FreeCourts(snap)
	if len(free) == 0 {
		return nil
	}

	taken := make(map[int]bool) // матчи, уже предложенные другому корту
	var suggestions []CourtSuggestion
	for _, courtID := range free {
		candidate, ok := pickCandidate(snap, verdicts, courtID, taken)
		if !ok {
			continue
		}
		taken[candidate.MatchID] = true
		suggestions = append(suggestions, CourtSuggestion{
			CourtID:     courtID,
			CourtName:   snap.Config.CourtName(courtID),
			MatchID:     candidate.MatchID,
			MatchLabel:  snap.MatchLabel(candidate.MatchID),
			Reason:      fillReason(snap, courtID),
			FromCourtID: candidate.CourtID,
			FromSlotID:  candidate.SlotID,
		})
	}
	return suggestions
}

func pickCandidate(snap *models.Snapshot, verdicts map[int]ConflictResult, courtID int, taken map[int]bool) (models.Assignment, bool) {
	best := models.Assignment{}
	found := false
	for _, a := range snap.Assignments {
		if taken[a.MatchID] || a.CourtID == courtID {
			continue
		}
		if v, ok := verdicts[a.MatchID]; !ok || v.Status != VerdictGreen {
			continue // вердикт есть только у scheduled-матчей; прочие отпадают здесь же
		}
		if st, ok := snap.States[a.MatchID]; ok && (st.Pinned || st.Postponed) {
			continue
		}
		if !found || a.SlotID < best.SlotID || (a.SlotID == best.SlotID && a.MatchID < best.MatchID) {
			best = a
			found = true
		}
	}
	return best, found
}

// fillReason: если последний завершённый матч корта закончился раньше
// планового конца — называем его, иначе нейтральная формулировка.
func fillReason(snap *models.Snapshot, courtID int) string {
	lastID := 0
	lastEnd := -1
	for _, a := range snap.Assignments {
		if a.CourtID != courtID || snap.StatusOf(a.MatchID) != models.StatusFinished {
			continue
		}
		if a.EndSlot() > lastEnd {
			lastEnd = a.EndSlot()
			lastID = a.MatchID
		}
	}
	if lastID != 0 {
		if st, ok := snap.States[lastID]; ok && st.ActualEndTime != nil {
			scheduledEnd := snap.Config.SlotEnd(lastEnd - 1)
			if st.ActualEndTime.Before(scheduledEnd) {
				return fmt.Sprintf("%s finished early", snap.MatchLabel(lastID))
			}
		}
	}
	return "Court is available"
}
