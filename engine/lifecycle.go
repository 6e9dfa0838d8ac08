package engine

import (
	"errors"
	"time"

	"github.com/Dosada05/tournament-liveops/models"
)

var (
	// ErrInvalidTransition — запрошенный статус недостижим из текущего.
	// Отклоняется до любой мутации, вызывающий должен перечитать состояние.
	ErrInvalidTransition = errors.New("invalid match status transition")
	// ErrNoUndoTarget — из текущего статуса нет пути назад.
	ErrNoUndoTarget = errors.New("match status has no undo target")
)

// validNext — таблица допустимых переходов вперёд.
// scheduled -> scheduled покрывает пометку задержки без смены статуса.
var validNext = map[models.MatchStatus][]models.MatchStatus{
	models.StatusScheduled: {models.StatusCalled, models.StatusScheduled},
	models.StatusCalled:    {models.StatusStarted, models.StatusScheduled},
	models.StatusStarted:   {models.StatusFinished, models.StatusCalled},
	models.StatusFinished:  {models.StatusStarted},
}

// undoTarget — единственный допустимый статус отката для каждого статуса.
var undoTarget = map[models.MatchStatus]models.MatchStatus{
	models.StatusCalled:   models.StatusScheduled,
	models.StatusStarted:  models.StatusCalled,
	models.StatusFinished: models.StatusStarted,
}

// CanTransition проверяет переход по таблице, не применяя его.
func CanTransition(from, to models.MatchStatus) bool {
	for _, next := range validNext[from] {
		if next == to {
			return true
		}
	}
	return false
}

// UndoTargetOf возвращает статус, в который откатывается from.
func UndoTargetOf(from models.MatchStatus) (models.MatchStatus, bool) {
	to, ok := undoTarget[from]
	return to, ok
}

// ApplyTransition применяет переход вперёд к состоянию матча и проставляет
// временные метки: на started — ActualStartTime (если ещё нет), на finished —
// ActualEndTime. Откаты идут через ApplyUndo, не сюда.
func ApplyTransition(st *models.MatchState, to models.MatchStatus, now time.Time) error {
	if !CanTransition(st.Status, to) {
		return ErrInvalidTransition
	}
	switch to {
	case models.StatusStarted:
		if st.ActualStartTime == nil {
			t := now
			st.ActualStartTime = &t
		}
	case models.StatusFinished:
		if st.ActualEndTime == nil {
			t := now
			st.ActualEndTime = &t
		}
	}
	st.Status = to
	return nil
}

// ApplyUndo откатывает статус на один шаг назад и очищает поля,
// принадлежащие откатываемому статусу: started->called убирает время старта,
// finished->started убирает время окончания, счёт и детализацию по сетам.
func ApplyUndo(st *models.MatchState) error {
	to, ok := undoTarget[st.Status]
	if !ok {
		return ErrNoUndoTarget
	}
	switch st.Status {
	case models.StatusStarted:
		st.ActualStartTime = nil
	case models.StatusFinished:
		st.ActualEndTime = nil
		st.Score = nil
		st.SetScores = nil
	}
	st.Status = to
	return nil
}

// ApplyPatch применяет ортогональные side-channel поля. Они не проходят через
// таблицу переходов и допустимы в любом статусе.
func ApplyPatch(st *models.MatchState, patch *models.StatePatch) {
	if patch == nil {
		return
	}
	if patch.Delayed != nil {
		st.Delayed = *patch.Delayed
	}
	if patch.DelayReason != nil {
		st.DelayReason = patch.DelayReason
	}
	if patch.Pinned != nil {
		st.Pinned = *patch.Pinned
	}
	if patch.Postponed != nil {
		st.Postponed = *patch.Postponed
	}
	if patch.Confirmations != nil {
		if st.Confirmations == nil {
			st.Confirmations = make(map[int]bool, len(patch.Confirmations))
		}
		for playerID, confirmed := range patch.Confirmations {
			st.Confirmations[playerID] = confirmed
		}
	}
	if patch.Score != nil {
		st.Score = patch.Score
	}
	if patch.SetScores != nil {
		st.SetScores = append([]models.SetScore(nil), patch.SetScores...)
	}
	if patch.ActualCourtID != nil {
		st.ActualCourtID = patch.ActualCourtID
	}
}
