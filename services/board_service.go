package services

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Dosada05/tournament-liveops/engine"
	"github.com/Dosada05/tournament-liveops/models"
)

// BoardService — read-only вычисления для табло и консоли оператора:
// светофор конфликтов, подсказки по свободным кортам, овертаймы.
// Все методы работают по снимку и не мутируют живую модель.
type BoardService interface {
	Conflicts() map[int]engine.ConflictResult
	Suggestions() []engine.CourtSuggestion
	// SkipSuggestion подавляет подсказки для корта, пока состав свободных
	// кортов не изменится. Повторный skip того же корта — no-op.
	SkipSuggestion(courtID int)
	Overruns() []engine.Overrun
	Schedule() *models.Snapshot
	// PushSuggestions пересчитывает подсказки и рассылает их на табло.
	// Вызывается периодическим тикером из main.
	PushSuggestions()
}

type boardService struct {
	live LiveOpsService
	hub  *engine.Hub

	mu sync.Mutex
	// courtID → отпечаток состава свободных кортов на момент skip.
	// Запись устаревает, как только состав меняется.
	skipped map[int]string
}

func NewBoardService(live LiveOpsService, hub *engine.Hub) BoardService {
	return &boardService{
		live:    live,
		hub:     hub,
		skipped: make(map[int]string),
	}
}

func (s *boardService) Conflicts() map[int]engine.ConflictResult {
	return engine.EvaluateConflicts(s.live.Snapshot())
}

func (s *boardService) Suggestions() []engine.CourtSuggestion {
	snap := s.live.Snapshot()
	verdicts := engine.EvaluateConflicts(snap)
	suggestions := engine.SuggestCourtFills(snap, verdicts)
	fingerprint := freeCourtFingerprint(snap)

	s.mu.Lock()
	defer s.mu.Unlock()
	for courtID, skippedAt := range s.skipped {
		if skippedAt != fingerprint {
			delete(s.skipped, courtID)
		}
	}

	filtered := suggestions[:0]
	for _, suggestion := range suggestions {
		if _, skip := s.skipped[suggestion.CourtID]; skip {
			continue
		}
		filtered = append(filtered, suggestion)
	}
	return filtered
}

func (s *boardService) SkipSuggestion(courtID int) {
	fingerprint := freeCourtFingerprint(s.live.Snapshot())
	s.mu.Lock()
	defer s.mu.Unlock()
	s.skipped[courtID] = fingerprint
}

func (s *boardService) Overruns() []engine.Overrun {
	return engine.OverrunMatches(s.live.Snapshot())
}

func (s *boardService) Schedule() *models.Snapshot {
	return s.live.Snapshot()
}

func (s *boardService) PushSuggestions() {
	if s.hub == nil {
		return
	}
	suggestions := s.Suggestions()
	if len(suggestions) == 0 {
		return
	}
	snap := s.live.Snapshot()
	s.hub.BroadcastToRoom(fmt.Sprint(snap.Config.ID), engine.LiveMessage{
		Type:    engine.MessageCourtSuggestions,
		Payload: suggestions,
	})
}

// freeCourtFingerprint — стабильный отпечаток состава свободных кортов.
func freeCourtFingerprint(snap *models.Snapshot) string {
	free := engine.FreeCourts(snap)
	ids := make([]string, 0, len(free))
	for _, courtID := range free {
		ids = append(ids, fmt.Sprint(courtID))
	}
	sort.Strings(ids)
	return strings.Join(ids, ",")
}
