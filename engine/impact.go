package engine

import (
	"errors"
	"sort"
	"time"

	"github.com/Dosada05/tournament-liveops/models"
)

var ErrMatchNotFound = errors.New("match not found")

// Рекомендованное действие по итогам анализа влияния.
const (
	ActionWait         = "wait"
	ActionManualAdjust = "manual_adjust"
	ActionReoptimize   = "reoptimize"
)

// Overrun — матч, фактический конец которого вышел за плановый интервал.
type Overrun struct {
	MatchID          int `json:"match_id"`
	ScheduledEndSlot int `json:"scheduled_end_slot"`
	ActualEndSlot    int `json:"actual_end_slot"`
	OverrunSlots     int `json:"overrun_slots"`
}

// ImpactReport — радиус поражения перерасхода времени одним матчем.
type ImpactReport struct {
	MatchID          int    `json:"match_id"`
	ActualEndSlot    int    `json:"actual_end_slot"`
	OverrunSlots     int    `json:"overrun_slots"`
	DirectlyImpacted []int  `json:"directly_impacted"`
	SuggestedAction  string `json:"suggested_action"`
}

// OverrunMatches возвращает назначения с записанным фактическим концом,
// вышедшим за плановый слот окончания. Порядок — по величине перерасхода,
// затем по ID.
func OverrunMatches(snap *models.Snapshot) []Overrun {
	var overruns []Overrun
	for _, a := range snap.Assignments {
		st, ok := snap.States[a.MatchID]
		if !ok || st.ActualEndTime == nil {
			continue
		}
		actualEnd := actualEndSlot(snap, *st, a)
		if actualEnd <= a.EndSlot() {
			continue
		}
		overruns = append(overruns, Overrun{
			MatchID:          a.MatchID,
			ScheduledEndSlot: a.EndSlot(),
			ActualEndSlot:    actualEnd,
			OverrunSlots:     actualEnd - a.EndSlot(),
		})
	}
	sort.Slice(overruns, func(i, j int) bool {
		if overruns[i].OverrunSlots != overruns[j].OverrunSlots {
			return overruns[i].OverrunSlots > overruns[j].OverrunSlots
		}
		return overruns[i].MatchID < overruns[j].MatchID
	})
	return overruns
}

// AnalyzeImpact классифицирует последствия (наблюдаемого или прогнозного)
// фактического конца матча: собираются все прочие ещё scheduled назначения,
// начинающиеся не раньше этого конца и имеющие общего игрока с матчем.
// 0 затронутых — wait, 1–2 — manual_adjust (оператор поправит руками),
// больше — рекомендация полного пересчёта.
func AnalyzeImpact(snap *models.Snapshot, matchID int) (*ImpactReport, error) {
	match, ok := snap.Matches[matchID]
	if !ok {
		return nil, ErrMatchNotFound
	}
	assignment, ok := snap.AssignmentOf(matchID)
	if !ok {
		return nil, ErrAssignmentNotFound
	}

	endSlot := projectedEndSlot(snap, matchID, assignment)
	overrun := endSlot - assignment.EndSlot()
	if overrun < 0 {
		overrun = 0
	}

	var impacted []int
	for otherID, other := range snap.Matches {
		if otherID == matchID || snap.StatusOf(otherID) != models.StatusScheduled {
			continue
		}
		otherAssignment, ok := snap.AssignmentOf(otherID)
		if !ok || otherAssignment.SlotID < endSlot {
			continue
		}
		if match.SharesPlayer(other) {
			impacted = append(impacted, otherID)
		}
	}
	sort.Ints(impacted)

	action := ActionWait
	switch {
	case len(impacted) > 2:
		action = ActionReoptimize
	case len(impacted) >= 1:
		action = ActionManualAdjust
	}

	return &ImpactReport{
		MatchID:          matchID,
		ActualEndSlot:    endSlot,
		OverrunSlots:     overrun,
		DirectlyImpacted: impacted,
		SuggestedAction:  action,
	}, nil
}

// projectedEndSlot: записанный фактический конец, если он есть; для ещё
// идущего матча — прогноз не раньше текущего слота и планового конца.
func projectedEndSlot(snap *models.Snapshot, matchID int, a models.Assignment) int {
	if st, ok := snap.States[matchID]; ok && st.ActualEndTime != nil {
		return actualEndSlot(snap, *st, a)
	}
	end := a.EndSlot()
	if snap.StatusOf(matchID) == models.StatusStarted {
		if cur := snap.CurrentSlot(); cur > end {
			end = cur
		}
	}
	return end
}

// actualEndSlot переводит фактическое время окончания в слот, округляя вверх:
// матч, занявший часть слота, занимает его целиком.
func actualEndSlot(snap *models.Snapshot, st models.MatchState, a models.Assignment) int {
	if st.ActualEndTime == nil {
		return a.EndSlot()
	}
	cfg := snap.Config
	if cfg.SlotMinutes <= 0 || !st.ActualEndTime.After(cfg.StartTime) {
		return 0
	}
	slotLen := time.Duration(cfg.SlotMinutes) * time.Minute
	elapsed := st.ActualEndTime.Sub(cfg.StartTime)
	end := int(elapsed / slotLen)
	if elapsed%slotLen != 0 {
		end++
	}
	return end
}
