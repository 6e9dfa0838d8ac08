package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Dosada05/tournament-liveops/engine"
	"github.com/Dosada05/tournament-liveops/models"
	"github.com/Dosada05/tournament-liveops/repositories"
	"github.com/Dosada05/tournament-liveops/solver"
)

// SyncNotifier — исходящее best-effort зеркалирование изменений MatchState
// во внешнее хранилище. Вызов не должен блокировать командный путь.
type SyncNotifier interface {
	NotifyMatchState(tournamentID int, state *models.MatchState)
}

// MoveReport — итог startOnCourt: все перемещённые назначения, включая
// инициирующий матч.
type MoveReport struct {
	MovedAssignments []engine.MovedAssignment `json:"moved_assignments"`
}

// RestoreReport — итог undoStart.
type RestoreReport struct {
	RestoredAssignments []engine.MovedAssignment `json:"restored_assignments"`
}

// StateExport — плоская выгрузка живого состояния: назначения списком по
// matchId и MatchState по matchId. Должна без потерь проходить экспорт/импорт.
type StateExport struct {
	TournamentID int                         `json:"tournament_id"`
	Assignments  []models.Assignment         `json:"assignments"`
	States       map[int]*models.MatchState  `json:"states"`
}

// LiveOpsService — единственный писатель живой модели турнира. Все мутации
// сериализуются внутренним мьютексом; чтения получают согласованный снимок
// и безопасны для периодического перезапуска по таймеру.
type LiveOpsService interface {
	Bootstrap(ctx context.Context) error
	Snapshot() *models.Snapshot

	Transition(ctx context.Context, matchID int, newStatus models.MatchStatus, patch *models.StatePatch) (*models.MatchState, error)
	UndoTransition(ctx context.Context, matchID int) (*models.MatchState, error)
	PatchState(ctx context.Context, matchID int, patch *models.StatePatch) (*models.MatchState, error)
	UpdateSides(ctx context.Context, matchID int, sideA, sideB []int) (*models.Match, error)

	StartOnCourt(ctx context.Context, matchID, courtID int) (*MoveReport, error)
	UndoStart(ctx context.Context, matchID int) (*RestoreReport, error)

	AnalyzeImpact(matchID int) (*engine.ImpactReport, error)
	Overruns() []engine.Overrun
	TriggerReoptimize(ctx context.Context) (*models.Schedule, error)

	ExportState() *StateExport
	ImportState(ctx context.Context, in *StateExport) error
}

type liveOpsService struct {
	mu           sync.Mutex
	tournamentID int
	cfg          models.TournamentConfig
	players      map[int]*models.Player
	matches      map[int]*models.Match
	assignments  map[int]models.Assignment
	states       map[int]*models.MatchState

	repo      repositories.TournamentRepository
	stateRepo repositories.StateRepository
	solver    solver.Solver
	hub       *engine.Hub
	notifier  SyncNotifier

	reoptInFlight atomic.Bool
	now           func() time.Time
}

func NewLiveOpsService(
	tournamentID int,
	repo repositories.TournamentRepository,
	stateRepo repositories.StateRepository,
	solverClient solver.Solver,
	hub *engine.Hub,
	notifier SyncNotifier,
) LiveOpsService {
	return &liveOpsService{
		tournamentID: tournamentID,
		players:      make(map[int]*models.Player),
		matches:      make(map[int]*models.Match),
		assignments:  make(map[int]models.Assignment),
		states:       make(map[int]*models.MatchState),
		repo:         repo,
		stateRepo:    stateRepo,
		solver:       solverClient,
		hub:          hub,
		notifier:     notifier,
		now:          time.Now,
	}
}

func (s *liveOpsService) Bootstrap(ctx context.Context) error {
	data, err := s.repo.LoadAll(ctx, s.tournamentID)
	if err != nil {
		return fmt.Errorf("failed to bootstrap tournament %d: %w", s.tournamentID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = data.Config
	s.players = data.Players
	s.matches = data.Matches
	s.states = data.States
	s.assignments = make(map[int]models.Assignment, len(data.Assignments))
	for _, a := range data.Assignments {
		s.assignments[a.MatchID] = a
	}
	return nil
}

// Snapshot возвращает глубокую копию живой модели. Читатели никогда не видят
// промежуточного состояния: снимок делается только между командами.
func (s *liveOpsService) Snapshot() *models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *liveOpsService) snapshotLocked() *models.Snapshot {
	snap := &models.Snapshot{
		Config:      s.cfg,
		Players:     make(map[int]*models.Player, len(s.players)),
		Matches:     make(map[int]*models.Match, len(s.matches)),
		Assignments: make([]models.Assignment, 0, len(s.assignments)),
		States:      make(map[int]*models.MatchState, len(s.states)),
		Now:         s.now(),
	}
	for id, p := range s.players {
		snap.Players[id] = p // игроки неизменяемы по ходу live-операций
	}
	for id, m := range s.matches {
		c := *m
		c.SideA = append([]int(nil), m.SideA...)
		c.SideB = append([]int(nil), m.SideB...)
		snap.Matches[id] = &c
	}
	for _, a := range s.assignments {
		snap.Assignments = append(snap.Assignments, a)
	}
	sort.Slice(snap.Assignments, func(i, j int) bool {
		return snap.Assignments[i].MatchID < snap.Assignments[j].MatchID
	})
	for id, st := range s.states {
		snap.States[id] = st.Clone()
	}
	return snap
}

// stateFor лениво создаёт MatchState со статусом scheduled.
func (s *liveOpsService) stateFor(matchID int) *models.MatchState {
	st, ok := s.states[matchID]
	if !ok {
		st = models.NewMatchState(matchID)
		s.states[matchID] = st
	}
	return st
}

func (s *liveOpsService) Transition(ctx context.Context, matchID int, newStatus models.MatchStatus, patch *models.StatePatch) (*models.MatchState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.matches[matchID]; !ok {
		return nil, ErrMatchNotFound
	}
	st := s.stateFor(matchID)
	if err := engine.ApplyTransition(st, newStatus, s.now()); err != nil {
		return nil, err
	}
	engine.ApplyPatch(st, patch)

	s.afterStateChange(ctx, st)
	return st.Clone(), nil
}

func (s *liveOpsService) UndoTransition(ctx context.Context, matchID int) (*models.MatchState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[matchID]
	if !ok {
		return nil, ErrInvalidTransition // нечего откатывать
	}
	if err := engine.ApplyUndo(st); err != nil {
		if errors.Is(err, engine.ErrNoUndoTarget) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	s.afterStateChange(ctx, st)
	return st.Clone(), nil
}

func (s *liveOpsService) PatchState(ctx context.Context, matchID int, patch *models.StatePatch) (*models.MatchState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.matches[matchID]; !ok {
		return nil, ErrMatchNotFound
	}
	st := s.stateFor(matchID)
	engine.ApplyPatch(st, patch)

	s.afterStateChange(ctx, st)
	return st.Clone(), nil
}

// UpdateSides — живая правка составов (замена, снятие игрока). Зафиксированные
// назначения не трогаются, меняются только последующие вычисления конфликтов.
func (s *liveOpsService) UpdateSides(ctx context.Context, matchID int, sideA, sideB []int) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	match, ok := s.matches[matchID]
	if !ok {
		return nil, ErrMatchNotFound
	}
	match.SideA = append([]int(nil), sideA...)
	match.SideB = append([]int(nil), sideB...)

	if s.stateRepo != nil {
		if err := s.stateRepo.UpdateMatchSides(ctx, s.tournamentID, matchID, sideA, sideB); err != nil {
			log.Printf("WARN: failed to persist sides for match %d: %v (local state remains authoritative)", matchID, err)
		}
	}

	if s.hub != nil {
		s.hub.BroadcastToRoom(s.roomID(), engine.LiveMessage{
			Type:    engine.MessageMatchUpdated,
			Payload: match,
		})
	}
	c := *match
	return &c, nil
}

func (s *liveOpsService) StartOnCourt(ctx context.Context, matchID, courtID int) (*MoveReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.matches[matchID]; !ok {
		return nil, ErrMatchNotFound
	}
	if !s.knownCourt(courtID) {
		return nil, ErrCourtNotFound
	}
	st := s.stateFor(matchID)
	if !engine.CanTransition(st.Status, models.StatusStarted) {
		return nil, ErrInvalidTransition
	}

	snap := s.snapshotLocked()
	plan, err := engine.PlanStartOnCourt(snap, matchID, courtID)
	if err != nil {
		return nil, err
	}

	// Сначала стэш исходных позиций (идемпотентно: уже записанный original
	// не перезаписывается), затем атомарная замена назначений, и только
	// потом — перевод статуса. Читатель не увидит started-матч с
	// конфликтующим назначением.
	for id, original := range plan.Stash {
		victim := s.stateFor(id)
		slot, court := original.SlotID, original.CourtID
		victim.OriginalSlotID = &slot
		victim.OriginalCourtID = &court
	}
	for _, move := range plan.Moves {
		s.assignments[move.MatchID] = move.To
	}
	actualCourt := courtID
	st.ActualCourtID = &actualCourt
	if err := engine.ApplyTransition(st, models.StatusStarted, s.now()); err != nil {
		return nil, err // недостижимо после проверки выше
	}

	s.persistAssignmentsLocked(ctx)
	for id := range plan.Stash {
		s.persistStateLocked(ctx, s.states[id])
	}
	s.afterStateChange(ctx, st)
	if s.hub != nil {
		s.hub.BroadcastToRoom(s.roomID(), engine.LiveMessage{
			Type:    engine.MessageAssignmentsReplaced,
			Payload: plan.Moves,
		})
	}

	return &MoveReport{MovedAssignments: plan.Moves}, nil
}

func (s *liveOpsService) UndoStart(ctx context.Context, matchID int) (*RestoreReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.states[matchID]
	if !ok || !st.Displaced() {
		return &RestoreReport{}, nil // нет записанной исходной позиции — no-op
	}

	snap := s.snapshotLocked()
	plan := engine.PlanUndoStart(snap, matchID)

	for _, move := range plan.Moves {
		s.assignments[move.MatchID] = move.To
	}
	for _, id := range plan.ClearStash {
		victim := s.states[id]
		if victim == nil {
			continue
		}
		victim.OriginalSlotID = nil
		victim.OriginalCourtID = nil
	}
	st.ActualCourtID = nil
	if st.Status == models.StatusStarted {
		if err := engine.ApplyUndo(st); err != nil {
			return nil, err
		}
	}

	s.persistAssignmentsLocked(ctx)
	for _, id := range plan.ClearStash {
		if victim := s.states[id]; victim != nil {
			s.persistStateLocked(ctx, victim)
		}
	}
	s.afterStateChange(ctx, st)
	if s.hub != nil {
		s.hub.BroadcastToRoom(s.roomID(), engine.LiveMessage{
			Type:    engine.MessageAssignmentsReplaced,
			Payload: plan.Moves,
		})
	}

	return &RestoreReport{RestoredAssignments: plan.Moves}, nil
}

func (s *liveOpsService) AnalyzeImpact(matchID int) (*engine.ImpactReport, error) {
	report, err := engine.AnalyzeImpact(s.Snapshot(), matchID)
	if err != nil {
		switch {
		case errors.Is(err, engine.ErrMatchNotFound):
			return nil, ErrMatchNotFound
		case errors.Is(err, engine.ErrAssignmentNotFound):
			return nil, ErrAssignmentNotFound
		}
		return nil, err
	}
	return report, nil
}

func (s *liveOpsService) Overruns() []engine.Overrun {
	return engine.OverrunMatches(s.Snapshot())
}

// TriggerReoptimize запускает полный пересчёт у внешнего солвера.
// Повторный запрос при незавершённом — отклоняется, не ставится в очередь.
// Started/finished назначения замораживаются и гарантированно сохраняют
// позицию; на infeasible/model_invalid таблица назначений не трогается.
func (s *liveOpsService) TriggerReoptimize(ctx context.Context) (*models.Schedule, error) {
	if !s.reoptInFlight.CompareAndSwap(false, true) {
		return nil, ErrReoptimizeInProgress
	}
	defer s.reoptInFlight.Store(false)

	req, frozen := s.buildSolveRequest()

	// Солвер — долгий блокирующий вызов (секунды): мьютекс на это время
	// не удерживается, команды оператора не стопорятся.
	schedule, err := s.solver.Solve(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSolverFailure, err)
	}
	if !schedule.Status.Actionable() {
		if len(schedule.InfeasibleReasons) > 0 {
			return nil, fmt.Errorf("%w (%s): %v", ErrSolverInfeasible, schedule.Status, schedule.InfeasibleReasons)
		}
		return nil, fmt.Errorf("%w (%s)", ErrSolverInfeasible, schedule.Status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Замена таблицы целиком; замороженные позиции принудительно сохраняются,
	// даже если солвер их тронул.
	next := make(map[int]models.Assignment, len(schedule.Assignments))
	for _, a := range schedule.Assignments {
		next[a.MatchID] = a
	}
	for matchID, prev := range frozen {
		next[matchID] = prev
	}
	s.assignments = next

	// Новая таблица полностью заменяет старую — накопленные каскадные
	// вытеснения незамороженных матчей теряют смысл.
	for matchID, st := range s.states {
		if _, isFrozen := frozen[matchID]; isFrozen {
			continue
		}
		if st.Displaced() {
			st.OriginalSlotID = nil
			st.OriginalCourtID = nil
			s.persistStateLocked(ctx, st)
		}
	}

	s.persistAssignmentsLocked(ctx)
	if s.hub != nil {
		s.hub.BroadcastToRoom(s.roomID(), engine.LiveMessage{
			Type:    engine.MessageScheduleReoptimized,
			Payload: schedule,
		})
	}

	return schedule, nil
}

// buildSolveRequest собирает вход солвера: полный состав плюс подсказки по
// текущим позициям. Started/finished — locked, pinned — с жёсткой позицией.
func (s *liveOpsService) buildSolveRequest() (solver.SolveRequest, map[int]models.Assignment) {
	s.mu.Lock()
	defer s.mu.Unlock()

	frozen := make(map[int]models.Assignment)
	previous := make([]models.PreviousAssignment, 0, len(s.assignments))
	for matchID, a := range s.assignments {
		prev := models.PreviousAssignment{
			MatchID: matchID,
			SlotID:  a.SlotID,
			CourtID: a.CourtID,
		}
		st := s.states[matchID]
		status := models.StatusScheduled
		if st != nil {
			status = st.Status
		}
		if status == models.StatusStarted || status == models.StatusFinished {
			prev.Locked = true
			frozen[matchID] = a
		}
		if st != nil && st.Pinned {
			slot, court := a.SlotID, a.CourtID
			prev.PinnedSlotID = &slot
			prev.PinnedCourtID = &court
		}
		previous = append(previous, prev)
	}
	sort.Slice(previous, func(i, j int) bool { return previous[i].MatchID < previous[j].MatchID })

	players := make([]*models.Player, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })
	matches := make([]*models.Match, 0, len(s.matches))
	for _, m := range s.matches {
		matches = append(matches, m)
	}
	sort.Slice(matches, func(i, j int) bool { return matches[i].ID < matches[j].ID })

	horizon := s.cfg.FreezeHorizonSlots
	if horizon < 2 {
		horizon = 2 // минимальный защитный горизонт
	}

	return solver.SolveRequest{
		Config:              s.cfg,
		Players:             players,
		Matches:             matches,
		PreviousAssignments: previous,
		FreezeHorizonSlots:  horizon,
	}, frozen
}

func (s *liveOpsService) ExportState() *StateExport {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := &StateExport{
		TournamentID: s.tournamentID,
		Assignments:  make([]models.Assignment, 0, len(s.assignments)),
		States:       make(map[int]*models.MatchState, len(s.states)),
	}
	for _, a := range s.assignments {
		out.Assignments = append(out.Assignments, a)
	}
	sort.Slice(out.Assignments, func(i, j int) bool { return out.Assignments[i].MatchID < out.Assignments[j].MatchID })
	for id, st := range s.states {
		out.States[id] = st.Clone()
	}
	return out
}

func (s *liveOpsService) ImportState(ctx context.Context, in *StateExport) error {
	if in == nil {
		return ErrImportInvalid
	}
	seen := make(map[int]bool, len(in.Assignments))
	for _, a := range in.Assignments {
		if a.SlotID < 0 || a.DurationSlots < 1 || seen[a.MatchID] {
			return fmt.Errorf("%w: assignment for match %d", ErrImportInvalid, a.MatchID)
		}
		seen[a.MatchID] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.assignments = make(map[int]models.Assignment, len(in.Assignments))
	for _, a := range in.Assignments {
		s.assignments[a.MatchID] = a
	}
	s.states = make(map[int]*models.MatchState, len(in.States))
	for id, st := range in.States {
		c := st.Clone()
		c.MatchID = id
		s.states[id] = c
		s.persistStateLocked(ctx, c)
	}
	s.persistAssignmentsLocked(ctx)
	return nil
}

func (s *liveOpsService) knownCourt(courtID int) bool {
	for _, court := range s.cfg.Courts {
		if court.ID == courtID {
			return true
		}
	}
	return false
}

func (s *liveOpsService) roomID() string {
	return strconv.Itoa(s.tournamentID)
}

// afterStateChange — побочные эффекты зафиксированной мутации: best-effort
// запись в БД, рассылка на табло и зеркалирование во внешний стор. Всё
// fire-and-forget, локальное состояние уже является источником истины.
func (s *liveOpsService) afterStateChange(ctx context.Context, st *models.MatchState) {
	s.persistStateLocked(ctx, st)
	if s.hub != nil {
		s.hub.BroadcastToRoom(s.roomID(), engine.LiveMessage{
			Type:    engine.MessageMatchStateUpdated,
			Payload: st.Clone(),
		})
	}
	if s.notifier != nil {
		s.notifier.NotifyMatchState(s.tournamentID, st.Clone())
	}
}

func (s *liveOpsService) persistStateLocked(ctx context.Context, st *models.MatchState) {
	if s.stateRepo == nil || st == nil {
		return
	}
	if err := s.stateRepo.UpsertMatchState(ctx, s.tournamentID, st); err != nil {
		log.Printf("failed to persist match state %d (local state remains authoritative): %v", st.MatchID, err)
	}
}

func (s *liveOpsService) persistAssignmentsLocked(ctx context.Context) {
	if s.stateRepo == nil {
		return
	}
	assignments := make([]models.Assignment, 0, len(s.assignments))
	for _, a := range s.assignments {
		assignments = append(assignments, a)
	}
	sort.Slice(assignments, func(i, j int) bool { return assignments[i].MatchID < assignments[j].MatchID })
	if err := s.stateRepo.ReplaceAssignments(ctx, s.tournamentID, assignments); err != nil {
		log.Printf("failed to persist assignments (local state remains authoritative): %v", err)
	}
}
