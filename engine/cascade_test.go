package engine

import (
	"errors"
	"testing"

	"github.com/Dosada05/tournament-liveops/models"
)

// Каскад: матч стартует на освободившемся корте, занятые слоты по цепочке
// сдвигаются вперёд.
func TestPlanStartOnCourtCascade(t *testing.T) {
	snap := newTestSnapshot()
	addMatch(snap, 4, []int{40}, []int{41}, 2) // завершён на корте 1, держит слоты 8-10
	addMatch(snap, 5, []int{50}, []int{51}, 2) // стартует на корте 1
	addMatch(snap, 6, []int{60}, []int{61}, 2)
	addMatch(snap, 7, []int{70}, []int{71}, 2)
	assignMatch(snap, 4, 1, 8)
	assignMatch(snap, 5, 2, 20)
	assignMatch(snap, 6, 1, 10)
	assignMatch(snap, 7, 1, 11)
	setStatus(snap, 4, models.StatusFinished)
	setStatus(snap, 5, models.StatusCalled)

	plan, err := PlanStartOnCourt(snap, 5, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := make(map[int]models.Assignment)
	for _, move := range plan.Moves {
		got[move.MatchID] = move.To
	}

	if a := got[5]; a.CourtID != 1 || a.SlotID != 10 {
		t.Errorf("match 5 moved to court %d slot %d, want court 1 slot 10", a.CourtID, a.SlotID)
	}
	if a := got[6]; a.SlotID != 12 {
		t.Errorf("match 6 pushed to slot %d, want 12", a.SlotID)
	}
	if a := got[7]; a.SlotID != 14 {
		t.Errorf("match 7 pushed to slot %d, want 14", a.SlotID)
	}

	// Ничто не потеряно: каждый перенос сохраняет длительность и корт блока.
	for _, move := range plan.Moves {
		if move.To.DurationSlots != move.From.DurationSlots {
			t.Errorf("match %d changed duration: %d -> %d", move.MatchID, move.From.DurationSlots, move.To.DurationSlots)
		}
	}

	// Исходные позиции записаны для всех перемещённых.
	for _, id := range []int{5, 6, 7} {
		if _, ok := plan.Stash[id]; !ok {
			t.Errorf("no stashed original for match %d", id)
		}
	}
	if plan.Stash[5].CourtID != 2 || plan.Stash[5].SlotID != 20 {
		t.Errorf("stash for match 5 = %+v, want court 2 slot 20", plan.Stash[5])
	}
}

func TestPlanStartOnCourtDoesNotOverwriteOriginal(t *testing.T) {
	snap := newTestSnapshot()
	addMatch(snap, 5, []int{50}, []int{51}, 2)
	addMatch(snap, 6, []int{60}, []int{61}, 2)
	assignMatch(snap, 5, 2, 3)
	assignMatch(snap, 6, 1, 0)

	// Матч 6 уже был вытеснен раньше: его настоящая позиция — корт 3 слот 5.
	st6 := setStatus(snap, 6, models.StatusScheduled)
	st6.OriginalSlotID = intPtr(5)
	st6.OriginalCourtID = intPtr(3)

	plan, err := PlanStartOnCourt(snap, 5, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := plan.Stash[6]; ok {
		t.Error("already displaced match must keep its recorded original")
	}
}

func TestPlanStartOnCourtTargetOccupied(t *testing.T) {
	snap := newTestSnapshot()
	addMatch(snap, 1, []int{10}, []int{11}, 2)
	addMatch(snap, 2, []int{20}, []int{21}, 2)
	assignMatch(snap, 1, 1, 0)
	assignMatch(snap, 2, 2, 3)
	setStatus(snap, 1, models.StatusStarted)

	if _, err := PlanStartOnCourt(snap, 2, 1); !errors.Is(err, ErrTargetOccupied) {
		t.Fatalf("error = %v, want ErrTargetOccupied", err)
	}
}

func TestPlanStartOnCourtNoAssignment(t *testing.T) {
	snap := newTestSnapshot()
	addMatch(snap, 1, []int{10}, []int{11}, 2)

	if _, err := PlanStartOnCourt(snap, 1, 1); !errors.Is(err, ErrAssignmentNotFound) {
		t.Fatalf("error = %v, want ErrAssignmentNotFound", err)
	}
}

func TestPlanStartOnCourtSkipsPinned(t *testing.T) {
	snap := newTestSnapshot()
	addMatch(snap, 5, []int{50}, []int{51}, 2)
	addMatch(snap, 6, []int{60}, []int{61}, 2)
	assignMatch(snap, 5, 2, 3)
	assignMatch(snap, 6, 1, 0)
	st6 := setStatus(snap, 6, models.StatusScheduled)
	st6.Pinned = true

	plan, err := PlanStartOnCourt(snap, 5, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, move := range plan.Moves {
		if move.MatchID == 6 {
			t.Fatal("pinned match was displaced")
		}
	}
}

func TestNextAvailableSlot(t *testing.T) {
	snap := newTestSnapshot()
	if got := NextAvailableSlot(snap, 1); got != 0 {
		t.Errorf("empty court: slot = %d, want 0", got)
	}

	addMatch(snap, 1, []int{10}, []int{11}, 2)
	addMatch(snap, 2, []int{20}, []int{21}, 3)
	assignMatch(snap, 1, 1, 0) // finished, занимает 0-2
	assignMatch(snap, 2, 1, 4) // scheduled: не блокирует
	setStatus(snap, 1, models.StatusFinished)

	if got := NextAvailableSlot(snap, 1); got != 2 {
		t.Errorf("slot = %d, want 2 (scheduled does not block)", got)
	}
}

func TestPlanUndoStartRestoresCascade(t *testing.T) {
	// Состояние после каскада из TestPlanStartOnCourtCascade.
	snap := newTestSnapshot()
	addMatch(snap, 5, []int{50}, []int{51}, 2)
	addMatch(snap, 6, []int{60}, []int{61}, 2)
	addMatch(snap, 7, []int{70}, []int{71}, 2)
	assignMatch(snap, 5, 1, 10)
	assignMatch(snap, 6, 1, 12)
	assignMatch(snap, 7, 1, 14)

	st5 := setStatus(snap, 5, models.StatusStarted)
	st5.OriginalSlotID = intPtr(20)
	st5.OriginalCourtID = intPtr(2)
	st6 := setStatus(snap, 6, models.StatusScheduled)
	st6.OriginalSlotID = intPtr(10)
	st6.OriginalCourtID = intPtr(1)
	st7 := setStatus(snap, 7, models.StatusScheduled)
	st7.OriginalSlotID = intPtr(11)
	st7.OriginalCourtID = intPtr(1)

	plan := PlanUndoStart(snap, 5)

	restored := make(map[int]models.Assignment)
	for _, move := range plan.Moves {
		restored[move.MatchID] = move.To
	}

	if a := restored[5]; a.CourtID != 2 || a.SlotID != 20 {
		t.Errorf("match 5 restored to court %d slot %d, want court 2 slot 20", a.CourtID, a.SlotID)
	}
	if a := restored[6]; a.CourtID != 1 || a.SlotID != 10 {
		t.Errorf("match 6 restored to court %d slot %d, want court 1 slot 10", a.CourtID, a.SlotID)
	}
	if a := restored[7]; a.CourtID != 1 || a.SlotID != 11 {
		t.Errorf("match 7 restored to court %d slot %d, want court 1 slot 11", a.CourtID, a.SlotID)
	}

	if len(plan.ClearStash) != 3 {
		t.Errorf("ClearStash = %v, want all three matches", plan.ClearStash)
	}
}

func TestPlanUndoStartIgnoresOtherCourt(t *testing.T) {
	snap := newTestSnapshot()
	addMatch(snap, 5, []int{50}, []int{51}, 2)
	addMatch(snap, 8, []int{80}, []int{81}, 2) // вытеснен другим стартом на корте 3
	assignMatch(snap, 5, 1, 10)
	assignMatch(snap, 8, 3, 7)

	st5 := setStatus(snap, 5, models.StatusStarted)
	st5.OriginalSlotID = intPtr(20)
	st5.OriginalCourtID = intPtr(2)
	st8 := setStatus(snap, 8, models.StatusScheduled)
	st8.OriginalSlotID = intPtr(5)
	st8.OriginalCourtID = intPtr(3)

	plan := PlanUndoStart(snap, 5)

	for _, move := range plan.Moves {
		if move.MatchID == 8 {
			t.Fatal("undo must not touch displacements of a different court")
		}
	}
}

func TestPlanUndoStartNoOriginal(t *testing.T) {
	snap := newTestSnapshot()
	addMatch(snap, 1, []int{10}, []int{11}, 2)
	assignMatch(snap, 1, 1, 0)
	setStatus(snap, 1, models.StatusStarted)

	plan := PlanUndoStart(snap, 1)
	if len(plan.Moves) != 0 || len(plan.ClearStash) != 0 {
		t.Errorf("no-op expected, got %+v", plan)
	}
}
