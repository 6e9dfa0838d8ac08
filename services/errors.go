package services

import (
	"errors"

	"github.com/Dosada05/tournament-liveops/engine"
)

// Общие ошибки сервисного слоя и маппинга HTTP.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Структурные ошибки live-операций: отклоняются до любой мутации,
	// вызывающий должен перечитать состояние и повторить с исправленным вводом.
	ErrInvalidTransition  = engine.ErrInvalidTransition
	ErrTargetOccupied     = engine.ErrTargetOccupied
	ErrMatchNotFound      = errors.New("match not found")
	ErrAssignmentNotFound = errors.New("assignment not found for match")
	ErrCourtNotFound      = errors.New("court not found")

	// Переоптимизация.
	ErrReoptimizeInProgress = errors.New("reoptimization already in progress")
	ErrSolverFailure        = errors.New("solver call failed")
	ErrSolverInfeasible     = errors.New("solver returned no actionable schedule")

	// Аутентификация оператора.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrOperatorNotFound   = errors.New("operator not found")
	ErrForbiddenOperation = errors.New("operation not allowed for the current user")

	// Импорт состояния.
	ErrImportInvalid = errors.New("imported state is invalid")
)
