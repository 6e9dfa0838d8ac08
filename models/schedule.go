package models

type SolveStatus string

const (
	SolveOptimal      SolveStatus = "optimal"
	SolveFeasible     SolveStatus = "feasible"
	SolveInfeasible   SolveStatus = "infeasible"
	SolveUnknown      SolveStatus = "unknown"
	SolveModelInvalid SolveStatus = "model_invalid"
)

// Actionable сообщает, можно ли применять результат солвера к таблице назначений.
func (s SolveStatus) Actionable() bool {
	return s == SolveOptimal || s == SolveFeasible
}

// Schedule — результат внешнего солвера. На infeasible/model_invalid
// существующая таблица назначений не трогается.
type Schedule struct {
	Status             SolveStatus  `json:"status"`
	Assignments        []Assignment `json:"assignments"`
	SoftViolations     []string     `json:"soft_violations,omitempty"`
	InfeasibleReasons  []string     `json:"infeasible_reasons,omitempty"`
	UnscheduledMatches []int        `json:"unscheduled_matches,omitempty"`
	ObjectiveScore     float64      `json:"objective_score"`
}
