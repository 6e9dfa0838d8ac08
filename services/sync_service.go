package services

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/Dosada05/tournament-liveops/models"
)

// SyncService зеркалирует изменения MatchState во внешнее хранилище
// (федеративная система, бэкап-стор). Доставка best-effort: очередь
// ограничена, переполнение приводит к дропу события с логом, ошибки
// доставки не ретраятся — источник истины остаётся в памяти движка.
type SyncService struct {
	targetURL    string
	serviceToken string
	client       *http.Client
	queue        chan syncEvent
}

type syncEvent struct {
	TournamentID int                `json:"tournament_id"`
	State        *models.MatchState `json:"state"`
	SentAt       time.Time          `json:"sent_at"`
}

func NewSyncService(targetURL, serviceToken string) *SyncService {
	return &SyncService{
		targetURL:    targetURL,
		serviceToken: serviceToken,
		client:       &http.Client{Timeout: 10 * time.Second},
		queue:        make(chan syncEvent, 256),
	}
}

// NotifyMatchState ставит событие в очередь, никогда не блокируя командный
// путь. При переполнении очереди событие теряется.
func (s *SyncService) NotifyMatchState(tournamentID int, state *models.MatchState) {
	if s.targetURL == "" {
		return
	}
	select {
	case s.queue <- syncEvent{TournamentID: tournamentID, State: state, SentAt: time.Now()}:
	default:
		log.Printf("sync queue full, dropping match state event for match %d", state.MatchID)
	}
}

// Run — рабочий цикл доставки; запускается отдельной горутиной из main
// и завершается по отмене контекста.
func (s *SyncService) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-s.queue:
			s.deliver(ctx, event)
		}
	}
}

func (s *SyncService) deliver(ctx context.Context, event syncEvent) {
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("failed to encode sync event for match %d: %v", event.State.MatchID, err)
		return
	}

	reqCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, s.targetURL, bytes.NewReader(body))
	if err != nil {
		log.Printf("failed to build sync request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if s.serviceToken != "" {
		req.Header.Set("X-Service-Token", s.serviceToken)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		log.Printf("failed to deliver sync event for match %d: %v", event.State.MatchID, err)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("sync target rejected event for match %d: status %d", event.State.MatchID, resp.StatusCode)
	}
}
