package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Dosada05/tournament-liveops/engine"
	"github.com/Dosada05/tournament-liveops/models"
	"github.com/Dosada05/tournament-liveops/storage"
)

// ExportService публикует публичный JSON табло в объектное хранилище,
// откуда его раздаёт CDN. Зрители не ходят в API движка напрямую.
type ExportService interface {
	PublishBoard(ctx context.Context) (*storage.UploadResult, error)
}

// BoardDocument — публичное представление турнирного дня.
type BoardDocument struct {
	TournamentID int              `json:"tournament_id"`
	Name         string           `json:"name"`
	GeneratedAt  time.Time        `json:"generated_at"`
	Courts       []models.Court   `json:"courts"`
	Matches      []BoardMatchView `json:"matches"`
}

type BoardMatchView struct {
	MatchID    int                `json:"match_id"`
	Label      string             `json:"label"`
	Status     models.MatchStatus `json:"status"`
	CourtID    int                `json:"court_id"`
	CourtName  string             `json:"court_name,omitempty"`
	SlotID     int                `json:"slot_id"`
	StartsAt   time.Time          `json:"starts_at"`
	Score      *string            `json:"score,omitempty"`
	SetScores  []models.SetScore  `json:"set_scores,omitempty"`
	Delayed    bool               `json:"delayed,omitempty"`
	Postponed  bool               `json:"postponed,omitempty"`
	Conflict       string         `json:"conflict,omitempty"`
	ConflictReason string         `json:"conflict_reason,omitempty"`
}

type exportService struct {
	board    BoardService
	uploader storage.FileUploader
}

func NewExportService(board BoardService, uploader storage.FileUploader) ExportService {
	return &exportService{board: board, uploader: uploader}
}

func (s *exportService) PublishBoard(ctx context.Context) (*storage.UploadResult, error) {
	snap := s.board.Schedule()
	verdicts := s.board.Conflicts()
	doc := buildBoardDocument(snap, verdicts)

	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode board document: %w", err)
	}

	key := fmt.Sprintf("boards/tournament-%d.json", snap.Config.ID)
	result, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to publish board: %w", err)
	}
	return result, nil
}

func buildBoardDocument(snap *models.Snapshot, verdicts map[int]engine.ConflictResult) *BoardDocument {
	doc := &BoardDocument{
		TournamentID: snap.Config.ID,
		Name:         snap.Config.Name,
		GeneratedAt:  snap.Now,
		Courts:       snap.Config.Courts,
		Matches:      make([]BoardMatchView, 0, len(snap.Assignments)),
	}
	for _, a := range snap.Assignments {
		view := BoardMatchView{
			MatchID:  a.MatchID,
			Label:    snap.MatchLabel(a.MatchID),
			Status:   snap.StatusOf(a.MatchID),
			CourtID:  a.CourtID,
			SlotID:   a.SlotID,
			StartsAt: snap.Config.SlotStart(a.SlotID),
		}
		if courtID, ok := snap.EffectiveCourt(a.MatchID); ok {
			view.CourtID = courtID
		}
		view.CourtName = snap.Config.CourtName(view.CourtID)
		if st, ok := snap.States[a.MatchID]; ok {
			view.Score = st.Score
			view.SetScores = st.SetScores
			view.Delayed = st.Delayed
			view.Postponed = st.Postponed
		}
		if v, ok := verdicts[a.MatchID]; ok {
			view.Conflict = string(v.Status)
			view.ConflictReason = v.Reason
		}
		doc.Matches = append(doc.Matches, view)
	}
	return doc
}
