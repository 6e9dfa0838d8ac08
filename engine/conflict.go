package engine

import (
	"fmt"
	"time"

	"github.com/Dosada05/tournament-liveops/models"
)

// Verdict — вердикт светофора для запланированного матча.
type Verdict string

const (
	VerdictGreen  Verdict = "green"
	VerdictYellow Verdict = "yellow"
	VerdictRed    Verdict = "red"
)

type ConflictResult struct {
	Status Verdict `json:"status"`
	Reason string  `json:"reason,omitempty"`
}

// blockingEntry — где именно занят игрок.
type blockingEntry struct {
	matchID int
	courtID int
}

// EvaluateConflicts вычисляет вердикт для каждого матча в статусе scheduled.
// Red: игрок матча сейчас занят на другом матче (started; при CalledBlocks —
// и called). Yellow: игрок ещё не отдохнул после последнего завершённого
// матча. Green: ни того, ни другого. Red > yellow > green, red вычисляется
// первым и завершает проверку матча.
//
// Функция чистая: работает только по снимку, ничего не мутирует, её можно
// дёргать на каждый тик таймера консоли.
func EvaluateConflicts(snap *models.Snapshot) map[int]ConflictResult {
	busy := busyPlayers(snap)
	lastEnd := lastFinishedEnds(snap)

	results := make(map[int]ConflictResult)
	for matchID, match := range snap.Matches {
		if snap.StatusOf(matchID) != models.StatusScheduled {
			continue
		}
		results[matchID] = evaluateMatch(snap, match, busy, lastEnd)
	}
	return results
}

func evaluateMatch(snap *models.Snapshot, match *models.Match, busy map[int]blockingEntry, lastEnd map[int]time.Time) ConflictResult {
	// Red: короткое замыкание на первом занятом игроке.
	for _, playerID := range match.PlayerIDs() {
		entry, ok := busy[playerID]
		if !ok || entry.matchID == match.ID {
			continue
		}
		return ConflictResult{
			Status: VerdictRed,
			Reason: fmt.Sprintf("%s is on %s (%s)",
				playerName(snap, playerID),
				snap.MatchLabel(entry.matchID),
				courtLabel(snap, entry.courtID)),
		}
	}

	// Yellow: берём игрока с наибольшим остатком отдыха.
	var worstPlayer int
	var worstRemaining time.Duration
	for _, playerID := range match.PlayerIDs() {
		end, ok := lastEnd[playerID]
		if !ok {
			// Первый матч турнира для игрока — считается полностью отдохнувшим.
			continue
		}
		var required time.Duration
		if p, exists := snap.Players[playerID]; exists {
			required = time.Duration(p.RestMinutes(snap.Config.DefaultRestMinutes)) * time.Minute
		} else {
			required = time.Duration(snap.Config.DefaultRestMinutes) * time.Minute
		}
		elapsed := snap.Now.Sub(end)
		if elapsed >= required {
			continue
		}
		remaining := required - elapsed
		if remaining > worstRemaining {
			worstRemaining = remaining
			worstPlayer = playerID
		}
	}
	if worstRemaining > 0 {
		minutes := int(worstRemaining.Minutes())
		if worstRemaining%time.Minute != 0 {
			minutes++ // округляем вверх, чтобы не обещать готовность раньше срока
		}
		return ConflictResult{
			Status: VerdictYellow,
			Reason: fmt.Sprintf("%s needs %d more min of rest", playerName(snap, worstPlayer), minutes),
		}
	}

	return ConflictResult{Status: VerdictGreen}
}

// busyPlayers собирает игроков, занятых на идущих матчах.
func busyPlayers(snap *models.Snapshot) map[int]blockingEntry {
	busy := make(map[int]blockingEntry)
	for matchID, match := range snap.Matches {
		status := snap.StatusOf(matchID)
		blocking := status == models.StatusStarted ||
			(snap.Config.CalledBlocks && status == models.StatusCalled)
		if !blocking {
			continue
		}
		courtID, _ := snap.EffectiveCourt(matchID)
		for _, playerID := range match.PlayerIDs() {
			busy[playerID] = blockingEntry{matchID: matchID, courtID: courtID}
		}
	}
	return busy
}

// lastFinishedEnds — момент окончания последнего завершённого матча каждого
// игрока: фактический конец, если записан, иначе плановый конец по слотам.
func lastFinishedEnds(snap *models.Snapshot) map[int]time.Time {
	ends := make(map[int]time.Time)
	for matchID, match := range snap.Matches {
		if snap.StatusOf(matchID) != models.StatusFinished {
			continue
		}
		var end time.Time
		if st, ok := snap.States[matchID]; ok && st.ActualEndTime != nil {
			end = *st.ActualEndTime
		} else if a, ok := snap.AssignmentOf(matchID); ok {
			end = snap.Config.SlotEnd(a.EndSlot() - 1)
		} else {
			continue
		}
		for _, playerID := range match.PlayerIDs() {
			if prev, ok := ends[playerID]; !ok || end.After(prev) {
				ends[playerID] = end
			}
		}
	}
	return ends
}

func playerName(snap *models.Snapshot, playerID int) string {
	if p, ok := snap.Players[playerID]; ok && p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("player %d", playerID)
}

func courtLabel(snap *models.Snapshot, courtID int) string {
	if name := snap.Config.CourtName(courtID); name != "" {
		return name
	}
	return fmt.Sprintf("court %d", courtID)
}
