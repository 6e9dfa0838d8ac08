package services

import (
	"context"
	"sync"
	"time"

	"github.com/Dosada05/tournament-liveops/models"
	"github.com/Dosada05/tournament-liveops/repositories"
	"github.com/Dosada05/tournament-liveops/solver"
)

// Фейки зависимостей командного сервиса.

type fakeTournamentRepo struct {
	data *repositories.TournamentData
}

func (f *fakeTournamentRepo) GetConfig(ctx context.Context, tournamentID int) (*models.TournamentConfig, error) {
	cfg := f.data.Config
	return &cfg, nil
}

func (f *fakeTournamentRepo) ListPlayers(ctx context.Context, tournamentID int) ([]*models.Player, error) {
	var players []*models.Player
	for _, p := range f.data.Players {
		players = append(players, p)
	}
	return players, nil
}

func (f *fakeTournamentRepo) ListMatches(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	var matches []*models.Match
	for _, m := range f.data.Matches {
		matches = append(matches, m)
	}
	return matches, nil
}

func (f *fakeTournamentRepo) ListAssignments(ctx context.Context, tournamentID int) ([]models.Assignment, error) {
	return append([]models.Assignment(nil), f.data.Assignments...), nil
}

func (f *fakeTournamentRepo) ListMatchStates(ctx context.Context, tournamentID int) ([]*models.MatchState, error) {
	var states []*models.MatchState
	for _, st := range f.data.States {
		states = append(states, st)
	}
	return states, nil
}

func (f *fakeTournamentRepo) LoadAll(ctx context.Context, tournamentID int) (*repositories.TournamentData, error) {
	return f.data, nil
}

type fakeStateRepo struct {
	mu           sync.Mutex
	states       map[int]*models.MatchState
	assignments  []models.Assignment
	replaceCalls int
}

func newFakeStateRepo() *fakeStateRepo {
	return &fakeStateRepo{states: make(map[int]*models.MatchState)}
}

func (f *fakeStateRepo) UpsertMatchState(ctx context.Context, tournamentID int, state *models.MatchState) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.states[state.MatchID] = state.Clone()
	return nil
}

func (f *fakeStateRepo) UpsertAssignment(ctx context.Context, tournamentID int, a models.Assignment) error {
	return nil
}

func (f *fakeStateRepo) UpdateMatchSides(ctx context.Context, tournamentID, matchID int, sideA, sideB []int) error {
	return nil
}

func (f *fakeStateRepo) ReplaceAssignments(ctx context.Context, tournamentID int, assignments []models.Assignment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assignments = append([]models.Assignment(nil), assignments...)
	f.replaceCalls++
	return nil
}

type fakeSolver struct {
	solveFn func(ctx context.Context, req solver.SolveRequest) (*models.Schedule, error)
}

func (f *fakeSolver) Solve(ctx context.Context, req solver.SolveRequest) (*models.Schedule, error) {
	return f.solveFn(ctx, req)
}

// testData — компактный турнирный день: корт 1 освободился после матча 4,
// матч 5 вызван, матчи 6 и 7 стоят на корте 1 друг за другом.
func testData() *repositories.TournamentData {
	cfg := models.TournamentConfig{
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

	players := make(map[int]*models.Player)
	for id := 40; id <= 71; id++ {
		players[id] = &models.Player{ID: id}
	}

	matches := map[int]*models.Match{
		4: {ID: 4, SideA: []int{40}, SideB: []int{41}, DurationSlots: 2},
		5: {ID: 5, SideA: []int{50}, SideB: []int{51}, DurationSlots: 2},
		6: {ID: 6, SideA: []int{60}, SideB: []int{61}, DurationSlots: 2},
		7: {ID: 7, SideA: []int{70}, SideB: []int{71}, DurationSlots: 2},
	}

	assignments := []models.Assignment{
		{MatchID: 4, CourtID: 1, SlotID: 8, DurationSlots: 2},
		{MatchID: 5, CourtID: 2, SlotID: 20, DurationSlots: 2},
		{MatchID: 6, CourtID: 1, SlotID: 10, DurationSlots: 2},
		{MatchID: 7, CourtID: 1, SlotID: 11, DurationSlots: 2},
	}

	finished := models.NewMatchState(4)
	finished.Status = models.StatusFinished
	called := models.NewMatchState(5)
	called.Status = models.StatusCalled

	return &repositories.TournamentData{
		Config:      cfg,
		Players:     players,
		Matches:     matches,
		Assignments: assignments,
		States:      map[int]*models.MatchState{4: finished, 5: called},
	}
}

func newTestService(stateRepo *fakeStateRepo, sv solver.Solver) (LiveOpsService, error) {
	svc := NewLiveOpsService(1, &fakeTournamentRepo{data: testData()}, stateRepo, sv, nil, nil)
	if err := svc.Bootstrap(context.Background()); err != nil {
		return nil, err
	}
	return svc, nil
}

func assignmentOf(snap *models.Snapshot, matchID int) (models.Assignment, bool) {
	return snap.AssignmentOf(matchID)
}
