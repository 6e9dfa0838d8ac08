package services

import (
	"testing"
	"time"

	"github.com/Dosada05/tournament-liveops/models"
)

// stubLive подменяет командный сервис фиксированным снимком.
type stubLive struct {
	LiveOpsService
	snap *models.Snapshot
}

func (s *stubLive) Snapshot() *models.Snapshot { return s.snap }

func boardSnapshot() *models.Snapshot {
	cfg := models.TournamentConfig{
		ID:                 1,
		StartTime:          time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC),
		SlotMinutes:        30,
		DefaultRestMinutes: 30,
		Courts: []models.Court{
			{ID: 1, Name: "Court 1"},
			{ID: 2, Name: "Court 2"},
			{ID: 3, Name: "Court 3"},
		},
	}
	finished := models.NewMatchState(1)
	finished.Status = models.StatusFinished
	return &models.Snapshot{
		Config: cfg,
		Players: map[int]*models.Player{
			10: {ID: 10}, 11: {ID: 11}, 20: {ID: 20}, 21: {ID: 21},
		},
		Matches: map[int]*models.Match{
			1: {ID: 1, SideA: []int{10}, SideB: []int{11}, DurationSlots: 2},
			2: {ID: 2, SideA: []int{20}, SideB: []int{21}, DurationSlots: 2},
		},
		Assignments: []models.Assignment{
			{MatchID: 1, CourtID: 1, SlotID: 0, DurationSlots: 2},
			{MatchID: 2, CourtID: 2, SlotID: 4, DurationSlots: 2},
		},
		States: map[int]*models.MatchState{1: finished},
		Now:    cfg.StartTime,
	}
}

func TestBoardSuggestionsSkip(t *testing.T) {
	live := &stubLive{snap: boardSnapshot()}
	board := NewBoardService(live, nil)

	suggestions := board.Suggestions()
	if len(suggestions) != 1 || suggestions[0].CourtID != 1 {
		t.Fatalf("suggestions = %+v, want one for court 1", suggestions)
	}

	// Skip подавляет подсказку для корта, пока состав свободных кортов прежний.
	board.SkipSuggestion(1)
	if got := board.Suggestions(); len(got) != 0 {
		t.Fatalf("suggestions after skip = %+v, want none", got)
	}

	// Состав свободных кортов меняется: корт 3 тоже освободился.
	finished3 := models.NewMatchState(3)
	finished3.Status = models.StatusFinished
	live.snap.Matches[3] = &models.Match{ID: 3, SideA: []int{30}, SideB: []int{31}, DurationSlots: 2}
	live.snap.Assignments = append(live.snap.Assignments, models.Assignment{MatchID: 3, CourtID: 3, SlotID: 0, DurationSlots: 2})
	live.snap.States[3] = finished3

	suggestions = board.Suggestions()
	courts := make(map[int]bool)
	for _, s := range suggestions {
		courts[s.CourtID] = true
	}
	if !courts[1] {
		t.Errorf("skip must expire when the free-court set changes: %+v", suggestions)
	}
}

func TestBoardConflictsAndOverruns(t *testing.T) {
	snap := boardSnapshot()
	// Матч 1 перебрал время: план 0-2, фактический конец в слоте 3.
	end := snap.Config.StartTime.Add(80 * time.Minute)
	snap.States[1].ActualEndTime = &end

	board := NewBoardService(&stubLive{snap: snap}, nil)

	conflicts := board.Conflicts()
	if _, ok := conflicts[2]; !ok {
		t.Error("scheduled match 2 must have a verdict")
	}
	if _, ok := conflicts[1]; ok {
		t.Error("finished match must not have a verdict")
	}

	overruns := board.Overruns()
	if len(overruns) != 1 || overruns[0].MatchID != 1 {
		t.Fatalf("overruns = %+v, want match 1", overruns)
	}
}
