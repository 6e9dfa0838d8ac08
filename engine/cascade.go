package engine

import (
	"errors"
	"sort"

	"github.com/Dosada05/tournament-liveops/models"
)

var (
	// ErrTargetOccupied — на целевом корте идёт матч; отклоняется до мутаций.
	ErrTargetOccupied = errors.New("target court is occupied by a started match")
	// ErrAssignmentNotFound — у матча нет планового назначения.
	ErrAssignmentNotFound = errors.New("assignment not found for match")
)

// MovedAssignment — одно перемещение, выполненное каскадом.
type MovedAssignment struct {
	MatchID int               `json:"match_id"`
	From    models.Assignment `json:"from"`
	To      models.Assignment `json:"to"`
}

// CascadePlan — набор мутаций, которые вызывающий обязан применить как один
// атомарный батч до перевода инициирующего матча в started: читатель не должен
// увидеть started-матч, чьё назначение ещё конфликтует с невытесненными.
type CascadePlan struct {
	Moves []MovedAssignment
	// Stash: матчи, которым нужно записать позицию до переноса.
	// Уже записанный original не перезаписывается (повторный перенос до undo
	// не должен затереть настоящую исходную позицию).
	Stash map[int]models.Assignment
}

// RestorePlan — обратный набор для undoStart.
type RestorePlan struct {
	Moves      []MovedAssignment
	ClearStash []int // матчи, у которых очищаются original-поля
}

// slotBlock — полуинтервал слотов [Start, End), который нужно освободить.
type slotBlock struct {
	start, end int
}

// PlanStartOnCourt вычисляет каскадный перенос для старта матча matchID на
// корте targetCourt. Снимок не мутируется; план применяет вызывающий.
//
// Алгоритм работает через явный worklist блоков, а не рекурсию, с явным
// processed-набором: инициирующий матч ставится в первый свободный слот корта,
// каждый пересекающийся незакреплённый и не идущий матч сдвигается к концу
// освобождаемого блока, а его новый интервал становится следующим блоком.
// Завершается всегда: каждый вытесненный матч строго уходит вперёд по времени
// и обрабатывается не более одного раза.
func PlanStartOnCourt(snap *models.Snapshot, matchID, targetCourt int) (*CascadePlan, error) {
	initial, ok := snap.AssignmentOf(matchID)
	if !ok {
		return nil, ErrAssignmentNotFound
	}

	// Идущий матч на целевом корте — отказ до любых изменений.
	for otherID := range snap.Matches {
		if otherID == matchID || snap.StatusOf(otherID) != models.StatusStarted {
			continue
		}
		if court, ok := snap.EffectiveCourt(otherID); ok && court == targetCourt {
			return nil, ErrTargetOccupied
		}
	}

	// Рабочая копия позиций: план строится поверх неё.
	working := make(map[int]models.Assignment, len(snap.Assignments))
	for _, a := range snap.Assignments {
		working[a.MatchID] = a
	}

	plan := &CascadePlan{Stash: make(map[int]models.Assignment)}
	stashOriginal := func(id int, current models.Assignment) {
		if st, ok := snap.States[id]; ok && st.Displaced() {
			return // настоящий original уже записан
		}
		if _, ok := plan.Stash[id]; ok {
			return
		}
		plan.Stash[id] = current
	}

	// Шаг 1: первый доступный слот корта — конец последнего started/finished
	// назначения на нём. Scheduled/called не блокируют: их и вытесняем.
	next := NextAvailableSlot(snap, targetCourt)

	// Шаги 2–3: стэш и перенос инициирующего матча.
	stashOriginal(matchID, initial)
	moved := models.Assignment{
		MatchID:       matchID,
		CourtID:       targetCourt,
		SlotID:        next,
		DurationSlots: initial.DurationSlots,
	}
	working[matchID] = moved
	plan.Moves = append(plan.Moves, MovedAssignment{MatchID: matchID, From: initial, To: moved})

	// Шаг 4: освобождение блоков. Стек блоков, обход в глубину.
	processed := map[int]bool{matchID: true}
	stack := []slotBlock{{start: moved.SlotID, end: moved.EndSlot()}}

	for len(stack) > 0 {
		block := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		victim, ok := firstOverlap(snap, working, targetCourt, block, processed)
		if !ok {
			continue
		}

		current := working[victim]
		stashOriginal(victim, current)
		pushed := current
		pushed.SlotID = block.end
		working[victim] = pushed
		processed[victim] = true
		plan.Moves = append(plan.Moves, MovedAssignment{MatchID: victim, From: current, To: pushed})

		// Блок возвращается в стек: в нём могли остаться другие пересечения.
		// Новый интервал вытесненного матча разбирается первым.
		stack = append(stack, block, slotBlock{start: pushed.SlotID, end: pushed.EndSlot()})
	}

	return plan, nil
}

// NextAvailableSlot — максимум из 0 и концов всех started/finished назначений
// на корте. Закреплённые (pinned) матчи сюда не входят: их не двигают и через
// них не "перепрыгивают" — закрепление гарантирует место.
func NextAvailableSlot(snap *models.Snapshot, courtID int) int {
	next := 0
	for _, a := range snap.Assignments {
		if a.CourtID != courtID {
			continue
		}
		status := snap.StatusOf(a.MatchID)
		if status != models.StatusStarted && status != models.StatusFinished {
			continue
		}
		if end := a.EndSlot(); end > next {
			next = end
		}
	}
	return next
}

// firstOverlap находит самый ранний подходящий для вытеснения матч,
// пересекающий блок на корте: не обработанный, не закреплённый, не started и
// не finished. Порядок детерминирован: по слоту, затем по ID матча.
func firstOverlap(snap *models.Snapshot, working map[int]models.Assignment, courtID int, block slotBlock, processed map[int]bool) (int, bool) {
	candidates := make([]models.Assignment, 0, 4)
	for id, a := range working {
		if processed[id] || a.CourtID != courtID || !a.Overlaps(block.start, block.end) {
			continue
		}
		switch snap.StatusOf(id) {
		case models.StatusStarted, models.StatusFinished:
			continue
		}
		if st, ok := snap.States[id]; ok && st.Pinned {
			continue
		}
		candidates = append(candidates, a)
	}
	if len(candidates) == 0 {
		return 0, false
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].SlotID != candidates[j].SlotID {
			return candidates[i].SlotID < candidates[j].SlotID
		}
		return candidates[i].MatchID < candidates[j].MatchID
	})
	return candidates[0].MatchID, true
}

// PlanUndoStart восстанавливает назначения, затронутые последним startOnCourt
// инициирующего матча. Все его жертвы были вытеснены на корте, где он стартовал,
// и их original-позиции указывают на этот корт — при единственном писателе
// достаточно вернуть их все. Матч без записанного original — no-op.
func PlanUndoStart(snap *models.Snapshot, matchID int) *RestorePlan {
	st, ok := snap.States[matchID]
	if !ok || !st.Displaced() {
		return &RestorePlan{}
	}
	targetCourt, ok := snap.EffectiveCourt(matchID)
	if !ok {
		return &RestorePlan{}
	}

	plan := &RestorePlan{}
	restore := func(id int, state *models.MatchState) {
		current, ok := snap.AssignmentOf(id)
		if !ok {
			return
		}
		restored := current
		restored.SlotID = *state.OriginalSlotID
		restored.CourtID = *state.OriginalCourtID
		if restored != current {
			plan.Moves = append(plan.Moves, MovedAssignment{MatchID: id, From: current, To: restored})
		}
		plan.ClearStash = append(plan.ClearStash, id)
	}

	// Сначала — все прочие вытесненные с корта старта,
	// в детерминированном порядке.
	var others []int
	for id, other := range snap.States {
		if id == matchID || !other.Displaced() || *other.OriginalCourtID != targetCourt {
			continue
		}
		others = append(others, id)
	}
	sort.Ints(others)
	for _, id := range others {
		restore(id, snap.States[id])
	}
	restore(matchID, st)

	return plan
}
