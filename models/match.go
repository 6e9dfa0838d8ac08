package models

type MatchStatus string

const (
	StatusScheduled MatchStatus = "scheduled"
	StatusCalled    MatchStatus = "called"
	StatusStarted   MatchStatus = "started"
	StatusFinished  MatchStatus = "finished"
)

type Match struct {
	ID    int     `json:"id"`
	Label *string `json:"label,omitempty"` // отображаемый номер/разряд матча
	// Составы сторон, поддерживают пары (doubles). Могут редактироваться
	// по ходу турнира (замена, снятие), что влияет только на последующие
	// вычисления конфликтов, но не на уже зафиксированные назначения.
	SideA            []int `json:"side_a"`
	SideB            []int `json:"side_b"`
	DurationSlots    int   `json:"duration_slots"`
	PreferredCourtID *int  `json:"preferred_court_id,omitempty"`
}

// PlayerIDs возвращает всех игроков матча (обе стороны, без дубликатов).
func (m *Match) PlayerIDs() []int {
	seen := make(map[int]bool, len(m.SideA)+len(m.SideB))
	ids := make([]int, 0, len(m.SideA)+len(m.SideB))
	for _, side := range [][]int{m.SideA, m.SideB} {
		for _, id := range side {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// HasPlayer сообщает, участвует ли игрок в матче.
func (m *Match) HasPlayer(playerID int) bool {
	for _, side := range [][]int{m.SideA, m.SideB} {
		for _, id := range side {
			if id == playerID {
				return true
			}
		}
	}
	return false
}

// SharesPlayer сообщает, есть ли у двух матчей общий игрок.
func (m *Match) SharesPlayer(other *Match) bool {
	if other == nil {
		return false
	}
	for _, id := range m.PlayerIDs() {
		if other.HasPlayer(id) {
			return true
		}
	}
	return false
}

type Court struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
