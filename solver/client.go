package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/Dosada05/tournament-liveops/models"
)

var ErrSolverUnavailable = errors.New("solver service unavailable")

// SolveRequest — полный вход внешнего солвера: конфигурация, составы и
// подсказки по предыдущим позициям. Locked-назначения солвер обязан оставить
// на месте, FreezeHorizonSlots задаёт минимальный нетрогаемый горизонт.
type SolveRequest struct {
	Config              models.TournamentConfig     `json:"config"`
	Players             []*models.Player            `json:"players"`
	Matches             []*models.Match             `json:"matches"`
	PreviousAssignments []models.PreviousAssignment `json:"previous_assignments,omitempty"`
	FreezeHorizonSlots  int                         `json:"freeze_horizon_slots"`
	TimeLimitSeconds    int                         `json:"time_limit_seconds"`
}

// Solver — внешний генератор расписаний. Для движка это непрозрачная функция:
// сюда уходит модель, обратно приходит Schedule со статусом.
type Solver interface {
	Solve(ctx context.Context, req SolveRequest) (*models.Schedule, error)
}

type httpClient struct {
	baseURL      string
	serviceToken string
	timeLimit    time.Duration
	client       *http.Client
}

// NewHTTPClient создаёт клиента солвера. timeLimit передаётся солверу как
// его лимит на поиск и одновременно ограничивает сам HTTP-вызов (с запасом
// на сериализацию и сеть).
func NewHTTPClient(baseURL, serviceToken string, timeLimit time.Duration) Solver {
	return &httpClient{
		baseURL:      baseURL,
		serviceToken: serviceToken,
		timeLimit:    timeLimit,
		client: &http.Client{
			Timeout: timeLimit + 10*time.Second,
		},
	}
}

func (c *httpClient) Solve(ctx context.Context, req SolveRequest) (*models.Schedule, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid solver base URL %q: %w", c.baseURL, err)
	}
	endpoint := base.JoinPath("solve").String()

	req.TimeLimitSeconds = int(c.timeLimit.Seconds())
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode solve request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeLimit+10*time.Second)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create solve request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.serviceToken != "" {
		httpReq.Header.Set("X-Service-Token", c.serviceToken)
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSolverUnavailable, err)
	}
	defer func() {
		// Всегда дочитываем и закрываем тело, чтобы не текли соединения.
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("solver returned %d: %s", resp.StatusCode, string(msg))
	}

	var schedule models.Schedule
	if err := json.NewDecoder(resp.Body).Decode(&schedule); err != nil {
		return nil, fmt.Errorf("failed to decode solver response: %w", err)
	}
	return &schedule, nil
}
