package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/tournament-liveops/services"
)

// BoardHandler — read-only эндпоинты табло и консоли: светофор, подсказки
// по кортам, овертаймы, расписание и публикация публичного табло.
type BoardHandler struct {
	board  services.BoardService
	export services.ExportService // nil, если публикация не настроена
}

func NewBoardHandler(board services.BoardService, export services.ExportService) *BoardHandler {
	return &BoardHandler{board: board, export: export}
}

func (h *BoardHandler) Conflicts(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, jsonResponse{"conflicts": h.board.Conflicts()}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BoardHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, jsonResponse{"suggestions": h.board.Suggestions()}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BoardHandler) SkipSuggestion(w http.ResponseWriter, r *http.Request) {
	courtID, err := idParam(r, "courtID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	h.board.SkipSuggestion(courtID)

	if err := writeJSON(w, http.StatusOK, jsonResponse{"skipped": courtID}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BoardHandler) Overruns(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, jsonResponse{"overruns": h.board.Overruns()}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BoardHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, h.board.Schedule(), nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BoardHandler) Publish(w http.ResponseWriter, r *http.Request) {
	if h.export == nil {
		errorResponse(w, r, http.StatusServiceUnavailable, errors.New("board publishing is not configured").Error())
		return
	}

	result, err := h.export.PublishBoard(r.Context())
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"published": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
