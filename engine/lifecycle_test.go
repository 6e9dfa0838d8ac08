package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/Dosada05/tournament-liveops/models"
)

func TestCanTransition(t *testing.T) {
	statuses := []models.MatchStatus{
		models.StatusScheduled,
		models.StatusCalled,
		models.StatusStarted,
		models.StatusFinished,
	}
	allowed := map[[2]models.MatchStatus]bool{
		{models.StatusScheduled, models.StatusCalled}:    true,
		{models.StatusScheduled, models.StatusScheduled}: true,
		{models.StatusCalled, models.StatusStarted}:      true,
		{models.StatusCalled, models.StatusScheduled}:    true,
		{models.StatusStarted, models.StatusFinished}:    true,
		{models.StatusStarted, models.StatusCalled}:      true,
		{models.StatusFinished, models.StatusStarted}:    true,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			want := allowed[[2]models.MatchStatus{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestApplyTransition(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("started stamps start time", func(t *testing.T) {
		st := models.NewMatchState(1)
		st.Status = models.StatusCalled

		if err := ApplyTransition(st, models.StatusStarted, now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if st.Status != models.StatusStarted {
			t.Errorf("status = %s, want started", st.Status)
		}
		if st.ActualStartTime == nil || !st.ActualStartTime.Equal(now) {
			t.Errorf("ActualStartTime = %v, want %v", st.ActualStartTime, now)
		}
	})

	t.Run("finished stamps end time", func(t *testing.T) {
		st := models.NewMatchState(1)
		st.Status = models.StatusStarted

		if err := ApplyTransition(st, models.StatusFinished, now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if st.ActualEndTime == nil || !st.ActualEndTime.Equal(now) {
			t.Errorf("ActualEndTime = %v, want %v", st.ActualEndTime, now)
		}
	})

	t.Run("existing start time is preserved", func(t *testing.T) {
		st := models.NewMatchState(1)
		st.Status = models.StatusCalled
		earlier := now.Add(-time.Hour)
		st.ActualStartTime = &earlier

		if err := ApplyTransition(st, models.StatusStarted, now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !st.ActualStartTime.Equal(earlier) {
			t.Errorf("ActualStartTime = %v, want preserved %v", st.ActualStartTime, earlier)
		}
	})

	t.Run("invalid transition is rejected without mutation", func(t *testing.T) {
		st := models.NewMatchState(1)

		err := ApplyTransition(st, models.StatusFinished, now)
		if !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("error = %v, want ErrInvalidTransition", err)
		}
		if st.Status != models.StatusScheduled {
			t.Errorf("status mutated to %s on rejected transition", st.Status)
		}
		if st.ActualEndTime != nil {
			t.Error("ActualEndTime set on rejected transition")
		}
	})
}

func TestApplyUndo(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("called reverts to scheduled", func(t *testing.T) {
		st := models.NewMatchState(1)
		st.Status = models.StatusCalled

		if err := ApplyUndo(st); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if st.Status != models.StatusScheduled {
			t.Errorf("status = %s, want scheduled", st.Status)
		}
	})

	t.Run("started reverts to called and clears start time", func(t *testing.T) {
		st := models.NewMatchState(1)
		st.Status = models.StatusStarted
		st.ActualStartTime = &now

		if err := ApplyUndo(st); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if st.Status != models.StatusCalled {
			t.Errorf("status = %s, want called", st.Status)
		}
		if st.ActualStartTime != nil {
			t.Error("ActualStartTime not cleared")
		}
	})

	t.Run("finished reverts to started and clears result", func(t *testing.T) {
		st := models.NewMatchState(1)
		st.Status = models.StatusFinished
		st.ActualStartTime = &now
		st.ActualEndTime = &now
		score := "6:4 6:2"
		st.Score = &score
		st.SetScores = []models.SetScore{{A: 6, B: 4}, {A: 6, B: 2}}

		if err := ApplyUndo(st); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if st.Status != models.StatusStarted {
			t.Errorf("status = %s, want started", st.Status)
		}
		if st.ActualEndTime != nil || st.Score != nil || st.SetScores != nil {
			t.Error("finished fields not cleared on undo")
		}
		if st.ActualStartTime == nil {
			t.Error("ActualStartTime must survive undo of finished")
		}
	})

	t.Run("scheduled has no undo target", func(t *testing.T) {
		st := models.NewMatchState(1)
		if err := ApplyUndo(st); !errors.Is(err, ErrNoUndoTarget) {
			t.Fatalf("error = %v, want ErrNoUndoTarget", err)
		}
	})
}

func TestApplyPatch(t *testing.T) {
	t.Run("nil patch is a no-op", func(t *testing.T) {
		st := models.NewMatchState(1)
		ApplyPatch(st, nil)
		if st.Delayed || st.Pinned || st.Postponed {
			t.Error("nil patch mutated state")
		}
	})

	t.Run("fields are orthogonal to status", func(t *testing.T) {
		st := models.NewMatchState(1)
		st.Status = models.StatusFinished
		delayed := true
		reason := "rain"
		pinned := true

		ApplyPatch(st, &models.StatePatch{
			Delayed:     &delayed,
			DelayReason: &reason,
			Pinned:      &pinned,
		})

		if !st.Delayed || st.DelayReason == nil || *st.DelayReason != "rain" || !st.Pinned {
			t.Errorf("patch not applied: %+v", st)
		}
		if st.Status != models.StatusFinished {
			t.Errorf("status changed by patch: %s", st.Status)
		}
	})

	t.Run("confirmations merge instead of replacing", func(t *testing.T) {
		st := models.NewMatchState(1)
		ApplyPatch(st, &models.StatePatch{Confirmations: map[int]bool{10: true}})
		ApplyPatch(st, &models.StatePatch{Confirmations: map[int]bool{11: true}})

		if !st.Confirmations[10] || !st.Confirmations[11] {
			t.Errorf("confirmations = %v, want both 10 and 11", st.Confirmations)
		}
	})
}
