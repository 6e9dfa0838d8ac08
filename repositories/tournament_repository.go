package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-liveops/models"
	"github.com/lib/pq"
	"golang.org/x/sync/errgroup"
)

var ErrTournamentNotFound = errors.New("tournament not found")

// TournamentData — всё, что нужно движку при старте: конфигурация дня,
// составы и последняя сохранённая живая картина.
type TournamentData struct {
	Config      models.TournamentConfig
	Players     map[int]*models.Player
	Matches     map[int]*models.Match
	Assignments []models.Assignment
	States      map[int]*models.MatchState
}

type TournamentRepository interface {
	GetConfig(ctx context.Context, tournamentID int) (*models.TournamentConfig, error)
	ListPlayers(ctx context.Context, tournamentID int) ([]*models.Player, error)
	ListMatches(ctx context.Context, tournamentID int) ([]*models.Match, error)
	ListAssignments(ctx context.Context, tournamentID int) ([]models.Assignment, error)
	ListMatchStates(ctx context.Context, tournamentID int) ([]*models.MatchState, error)
	LoadAll(ctx context.Context, tournamentID int) (*TournamentData, error)
}

type postgresTournamentRepository struct {
	db *sql.DB
}

func NewPostgresTournamentRepository(db *sql.DB) TournamentRepository {
	return &postgresTournamentRepository{db: db}
}

func (r *postgresTournamentRepository) GetConfig(ctx context.Context, tournamentID int) (*models.TournamentConfig, error) {
	query := `
		SELECT id, name, start_time, slot_minutes, default_rest_minutes,
		       freeze_horizon_slots, called_blocks
		FROM tournaments
		WHERE id = $1`

	cfg := &models.TournamentConfig{}
	err := r.db.QueryRowContext(ctx, query, tournamentID).Scan(
		&cfg.ID,
		&cfg.Name,
		&cfg.StartTime,
		&cfg.SlotMinutes,
		&cfg.DefaultRestMinutes,
		&cfg.FreezeHorizonSlots,
		&cfg.CalledBlocks,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to scan tournament %d: %w", tournamentID, err)
	}

	courts, err := r.listCourts(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	cfg.Courts = courts
	return cfg, nil
}

func (r *postgresTournamentRepository) listCourts(ctx context.Context, tournamentID int) ([]models.Court, error) {
	query := `SELECT id, name FROM courts WHERE tournament_id = $1 ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query courts for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	courts := make([]models.Court, 0)
	for rows.Next() {
		var court models.Court
		if scanErr := rows.Scan(&court.ID, &court.Name); scanErr != nil {
			return nil, fmt.Errorf("failed to scan court row: %w", scanErr)
		}
		courts = append(courts, court)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during court rows iteration: %w", err)
	}
	return courts, nil
}

func (r *postgresTournamentRepository) ListPlayers(ctx context.Context, tournamentID int) ([]*models.Player, error) {
	query := `
		SELECT id, name, group_id, tags, min_rest_minutes, availability
		FROM players
		WHERE tournament_id = $1
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query players for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	players := make([]*models.Player, 0)
	for rows.Next() {
		var player models.Player
		var tags pq.StringArray
		var availabilityJSON []byte
		if scanErr := rows.Scan(
			&player.ID,
			&player.Name,
			&player.GroupID,
			&tags,
			&player.MinRestMinutes,
			&availabilityJSON,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan player row: %w", scanErr)
		}
		player.Tags = tags
		if len(availabilityJSON) > 0 {
			if unmarshalErr := json.Unmarshal(availabilityJSON, &player.Availability); unmarshalErr != nil {
				return nil, fmt.Errorf("failed to decode availability for player %d: %w", player.ID, unmarshalErr)
			}
		}
		players = append(players, &player)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during player rows iteration: %w", err)
	}
	return players, nil
}

func (r *postgresTournamentRepository) ListMatches(ctx context.Context, tournamentID int) ([]*models.Match, error) {
	query := `
		SELECT id, label, side_a, side_b, duration_slots, preferred_court_id
		FROM matches
		WHERE tournament_id = $1
		ORDER BY id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		var match models.Match
		var sideA, sideB pq.Int64Array
		if scanErr := rows.Scan(
			&match.ID,
			&match.Label,
			&sideA,
			&sideB,
			&match.DurationSlots,
			&match.PreferredCourtID,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", scanErr)
		}
		match.SideA = int64sToInt(sideA)
		match.SideB = int64sToInt(sideB)
		matches = append(matches, &match)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match rows iteration: %w", err)
	}
	return matches, nil
}

func (r *postgresTournamentRepository) ListAssignments(ctx context.Context, tournamentID int) ([]models.Assignment, error) {
	query := `
		SELECT match_id, court_id, slot_id, duration_slots
		FROM assignments
		WHERE tournament_id = $1
		ORDER BY match_id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query assignments for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	assignments := make([]models.Assignment, 0)
	for rows.Next() {
		var a models.Assignment
		if scanErr := rows.Scan(&a.MatchID, &a.CourtID, &a.SlotID, &a.DurationSlots); scanErr != nil {
			return nil, fmt.Errorf("failed to scan assignment row: %w", scanErr)
		}
		assignments = append(assignments, a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during assignment rows iteration: %w", err)
	}
	return assignments, nil
}

func (r *postgresTournamentRepository) ListMatchStates(ctx context.Context, tournamentID int) ([]*models.MatchState, error) {
	query := `
		SELECT match_id, status, actual_start_time, actual_end_time, actual_court_id,
		       delayed, delay_reason, pinned, postponed, confirmations, score,
		       set_scores, original_slot_id, original_court_id
		FROM match_states
		WHERE tournament_id = $1
		ORDER BY match_id ASC`

	rows, err := r.db.QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query match states for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	states := make([]*models.MatchState, 0)
	for rows.Next() {
		var st models.MatchState
		var confirmationsJSON, setScoresJSON []byte
		if scanErr := rows.Scan(
			&st.MatchID,
			&st.Status,
			&st.ActualStartTime,
			&st.ActualEndTime,
			&st.ActualCourtID,
			&st.Delayed,
			&st.DelayReason,
			&st.Pinned,
			&st.Postponed,
			&confirmationsJSON,
			&st.Score,
			&setScoresJSON,
			&st.OriginalSlotID,
			&st.OriginalCourtID,
		); scanErr != nil {
			return nil, fmt.Errorf("failed to scan match state row: %w", scanErr)
		}
		if len(confirmationsJSON) > 0 {
			if unmarshalErr := json.Unmarshal(confirmationsJSON, &st.Confirmations); unmarshalErr != nil {
				return nil, fmt.Errorf("failed to decode confirmations for match %d: %w", st.MatchID, unmarshalErr)
			}
		}
		if len(setScoresJSON) > 0 {
			if unmarshalErr := json.Unmarshal(setScoresJSON, &st.SetScores); unmarshalErr != nil {
				return nil, fmt.Errorf("failed to decode set scores for match %d: %w", st.MatchID, unmarshalErr)
			}
		}
		states = append(states, &st)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during match state rows iteration: %w", err)
	}
	return states, nil
}

// LoadAll собирает полную картину турнира параллельно.
func (r *postgresTournamentRepository) LoadAll(ctx context.Context, tournamentID int) (*TournamentData, error) {
	data := &TournamentData{
		Players: make(map[int]*models.Player),
		Matches: make(map[int]*models.Match),
		States:  make(map[int]*models.MatchState),
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		cfg, err := r.GetConfig(gCtx, tournamentID)
		if err != nil {
			return err
		}
		data.Config = *cfg
		return nil
	})

	g.Go(func() error {
		players, err := r.ListPlayers(gCtx, tournamentID)
		if err != nil {
			return err
		}
		for _, p := range players {
			data.Players[p.ID] = p
		}
		return nil
	})

	g.Go(func() error {
		matches, err := r.ListMatches(gCtx, tournamentID)
		if err != nil {
			return err
		}
		for _, m := range matches {
			data.Matches[m.ID] = m
		}
		return nil
	})

	g.Go(func() error {
		assignments, err := r.ListAssignments(gCtx, tournamentID)
		if err != nil {
			return err
		}
		data.Assignments = assignments
		return nil
	})

	g.Go(func() error {
		states, err := r.ListMatchStates(gCtx, tournamentID)
		if err != nil {
			return err
		}
		for _, st := range states {
			data.States[st.MatchID] = st
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, err)
	}
	return data, nil
}
