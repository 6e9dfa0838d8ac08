package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dosada05/tournament-liveops/models"
	"github.com/lib/pq"
)

var (
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrMatchNotFound      = errors.New("match not found")
)

// StateRepository сохраняет живую картину турнира. Запись best-effort:
// источник истины на время сессии — память, ошибки записи логируются
// вызывающим, но не откатывают локальную мутацию.
type StateRepository interface {
	UpsertMatchState(ctx context.Context, tournamentID int, state *models.MatchState) error
	UpsertAssignment(ctx context.Context, tournamentID int, assignment models.Assignment) error
	// UpdateMatchSides фиксирует живую правку составов матча.
	UpdateMatchSides(ctx context.Context, tournamentID, matchID int, sideA, sideB []int) error
	// ReplaceAssignments атомарно заменяет всю таблицу назначений турнира
	// (итог каскада или результата солвера) в одной транзакции.
	ReplaceAssignments(ctx context.Context, tournamentID int, assignments []models.Assignment) error
}

type postgresStateRepository struct {
	db *sql.DB
}

func NewPostgresStateRepository(db *sql.DB) StateRepository {
	return &postgresStateRepository{db: db}
}

func (r *postgresStateRepository) UpsertMatchState(ctx context.Context, tournamentID int, state *models.MatchState) error {
	confirmationsJSON, err := json.Marshal(state.Confirmations)
	if err != nil {
		return fmt.Errorf("failed to encode confirmations for match %d: %w", state.MatchID, err)
	}
	setScoresJSON, err := json.Marshal(state.SetScores)
	if err != nil {
		return fmt.Errorf("failed to encode set scores for match %d: %w", state.MatchID, err)
	}

	query := `
		INSERT INTO match_states
			(tournament_id, match_id, status, actual_start_time, actual_end_time,
			 actual_court_id, delayed, delay_reason, pinned, postponed,
			 confirmations, score, set_scores, original_slot_id, original_court_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (match_id) DO UPDATE SET
			status = EXCLUDED.status,
			actual_start_time = EXCLUDED.actual_start_time,
			actual_end_time = EXCLUDED.actual_end_time,
			actual_court_id = EXCLUDED.actual_court_id,
			delayed = EXCLUDED.delayed,
			delay_reason = EXCLUDED.delay_reason,
			pinned = EXCLUDED.pinned,
			postponed = EXCLUDED.postponed,
			confirmations = EXCLUDED.confirmations,
			score = EXCLUDED.score,
			set_scores = EXCLUDED.set_scores,
			original_slot_id = EXCLUDED.original_slot_id,
			original_court_id = EXCLUDED.original_court_id`

	_, err = r.db.ExecContext(ctx, query,
		tournamentID,
		state.MatchID,
		state.Status,
		state.ActualStartTime,
		state.ActualEndTime,
		state.ActualCourtID,
		state.Delayed,
		state.DelayReason,
		state.Pinned,
		state.Postponed,
		confirmationsJSON,
		state.Score,
		setScoresJSON,
		state.OriginalSlotID,
		state.OriginalCourtID,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert match state %d: %w", state.MatchID, err)
	}
	return nil
}

func (r *postgresStateRepository) UpsertAssignment(ctx context.Context, tournamentID int, a models.Assignment) error {
	return upsertAssignment(ctx, r.db, tournamentID, a)
}

func upsertAssignment(ctx context.Context, exec SQLExecutor, tournamentID int, a models.Assignment) error {
	query := `
		INSERT INTO assignments (tournament_id, match_id, court_id, slot_id, duration_slots)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (match_id) DO UPDATE SET
			court_id = EXCLUDED.court_id,
			slot_id = EXCLUDED.slot_id,
			duration_slots = EXCLUDED.duration_slots`

	_, err := exec.ExecContext(ctx, query, tournamentID, a.MatchID, a.CourtID, a.SlotID, a.DurationSlots)
	if err != nil {
		return fmt.Errorf("failed to upsert assignment for match %d: %w", a.MatchID, err)
	}
	return nil
}

func (r *postgresStateRepository) UpdateMatchSides(ctx context.Context, tournamentID, matchID int, sideA, sideB []int) error {
	query := `
		UPDATE matches
		SET side_a = $1, side_b = $2
		WHERE tournament_id = $3 AND id = $4`

	result, err := r.db.ExecContext(ctx, query,
		pq.Int64Array(intsToInt64(sideA)),
		pq.Int64Array(intsToInt64(sideB)),
		tournamentID,
		matchID,
	)
	if err != nil {
		return fmt.Errorf("failed to update sides for match %d: %w", matchID, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresStateRepository) ReplaceAssignments(ctx context.Context, tournamentID int, assignments []models.Assignment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	var txErr error
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			_ = tx.Rollback()
		}
	}()

	if _, txErr = tx.ExecContext(ctx, `DELETE FROM assignments WHERE tournament_id = $1`, tournamentID); txErr != nil {
		return fmt.Errorf("failed to clear assignments for tournament %d: %w", tournamentID, txErr)
	}

	for _, a := range assignments {
		if txErr = upsertAssignment(ctx, tx, tournamentID, a); txErr != nil {
			return txErr
		}
	}

	if txErr = tx.Commit(); txErr != nil {
		return fmt.Errorf("failed to commit assignment replacement: %w", txErr)
	}
	return nil
}
