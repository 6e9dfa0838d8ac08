package engine

import (
	"fmt"
	"time"

	"github.com/Dosada05/tournament-liveops/models"
)

// Общие строители снимков для тестов движка.

func testConfig() models.TournamentConfig {
	return models.TournamentConfig{
		ID:                 1,
		Name:               "City Open",
		StartTime:          time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC),
		SlotMinutes:        30,
		DefaultRestMinutes: 30,
		FreezeHorizonSlots: 2,
		Courts: []models.Court{
			{ID: 1, Name: "Court 1"},
			{ID: 2, Name: "Court 2"},
			{ID: 3, Name: "Court 3"},
		},
	}
}

func newTestSnapshot() *models.Snapshot {
	cfg := testConfig()
	return &models.Snapshot{
		Config:  cfg,
		Players: make(map[int]*models.Player),
		Matches: make(map[int]*models.Match),
		States:  make(map[int]*models.MatchState),
		Now:     cfg.StartTime,
	}
}

func addPlayer(snap *models.Snapshot, id int, name string) {
	snap.Players[id] = &models.Player{ID: id, Name: name}
}

// addMatch регистрирует матч и его игроков (если их ещё нет).
func addMatch(snap *models.Snapshot, id int, sideA, sideB []int, durationSlots int) {
	snap.Matches[id] = &models.Match{
		ID:            id,
		SideA:         sideA,
		SideB:         sideB,
		DurationSlots: durationSlots,
	}
	for _, side := range [][]int{sideA, sideB} {
		for _, playerID := range side {
			if _, ok := snap.Players[playerID]; !ok {
				addPlayer(snap, playerID, fmt.Sprintf("Player %d", playerID))
			}
		}
	}
}

func assignMatch(snap *models.Snapshot, matchID, courtID, slotID int) {
	duration := 1
	if m, ok := snap.Matches[matchID]; ok && m.DurationSlots > 0 {
		duration = m.DurationSlots
	}
	for i, a := range snap.Assignments {
		if a.MatchID == matchID {
			snap.Assignments[i] = models.Assignment{MatchID: matchID, CourtID: courtID, SlotID: slotID, DurationSlots: duration}
			return
		}
	}
	snap.Assignments = append(snap.Assignments, models.Assignment{
		MatchID:       matchID,
		CourtID:       courtID,
		SlotID:        slotID,
		DurationSlots: duration,
	})
}

func setStatus(snap *models.Snapshot, matchID int, status models.MatchStatus) *models.MatchState {
	st, ok := snap.States[matchID]
	if !ok {
		st = models.NewMatchState(matchID)
		snap.States[matchID] = st
	}
	st.Status = status
	return st
}

func timeAt(snap *models.Snapshot, minutesFromStart int) time.Time {
	return snap.Config.StartTime.Add(time.Duration(minutesFromStart) * time.Minute)
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }
