package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Dosada05/tournament-liveops/models"
	"github.com/Dosada05/tournament-liveops/services"
)

// LiveOpsHandler — командные эндпоинты оператора: жизненный цикл матча,
// ручные перестановки по кортам, анализ влияния и переоптимизация.
type LiveOpsHandler struct {
	live services.LiveOpsService
}

func NewLiveOpsHandler(live services.LiveOpsService) *LiveOpsHandler {
	return &LiveOpsHandler{live: live}
}

func (h *LiveOpsHandler) Transition(w http.ResponseWriter, r *http.Request) {
	matchID, err := idParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Status models.MatchStatus `json:"status"`
		Patch  *models.StatePatch `json:"patch"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	switch input.Status {
	case models.StatusScheduled, models.StatusCalled, models.StatusStarted, models.StatusFinished:
	default:
		badRequestResponse(w, r, fmt.Errorf("unknown status %q", input.Status))
		return
	}

	state, err := h.live.Transition(r.Context(), matchID, input.Status, input.Patch)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"state": state}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LiveOpsHandler) UndoTransition(w http.ResponseWriter, r *http.Request) {
	matchID, err := idParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	state, err := h.live.UndoTransition(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"state": state}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LiveOpsHandler) PatchState(w http.ResponseWriter, r *http.Request) {
	matchID, err := idParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var patch models.StatePatch
	if err := readJSON(w, r, &patch); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	state, err := h.live.PatchState(r.Context(), matchID, &patch)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"state": state}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LiveOpsHandler) UpdatePlayers(w http.ResponseWriter, r *http.Request) {
	matchID, err := idParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		SideA []int `json:"side_a"`
		SideB []int `json:"side_b"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if len(input.SideA) == 0 || len(input.SideB) == 0 {
		badRequestResponse(w, r, errors.New("both sides must have at least one player"))
		return
	}

	match, err := h.live.UpdateSides(r.Context(), matchID, input.SideA, input.SideB)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LiveOpsHandler) StartOnCourt(w http.ResponseWriter, r *http.Request) {
	matchID, err := idParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		CourtID int `json:"court_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.CourtID <= 0 {
		badRequestResponse(w, r, errors.New("court_id is required"))
		return
	}

	report, err := h.live.StartOnCourt(r.Context(), matchID, input.CourtID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"report": report}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LiveOpsHandler) UndoStart(w http.ResponseWriter, r *http.Request) {
	matchID, err := idParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	report, err := h.live.UndoStart(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"report": report}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LiveOpsHandler) Impact(w http.ResponseWriter, r *http.Request) {
	matchID, err := idParam(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	report, err := h.live.AnalyzeImpact(matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"impact": report}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LiveOpsHandler) Reoptimize(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.live.TriggerReoptimize(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"schedule": schedule}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LiveOpsHandler) ExportState(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, h.live.ExportState(), nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *LiveOpsHandler) ImportState(w http.ResponseWriter, r *http.Request) {
	var input services.StateExport
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.live.ImportState(r.Context(), &input); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"imported": true}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
