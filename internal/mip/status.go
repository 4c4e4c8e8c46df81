package mip

// Status is the solver outcome contract: every backend and the outer
// approximation coordinator report exactly one of these.
type Status int

const (
	StatusOptimal Status = iota
	StatusInfeasible
	StatusUserLimit
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "Optimal"
	case StatusInfeasible:
		return "Infeasible"
	case StatusUserLimit:
		return "UserLimit"
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Solution carries the primal point and objective on StatusOptimal, plus
// progress counters for the iterative coordinator.
type Solution struct {
	Status     Status
	X          []float64
	Objective  float64
	Gap        float64
	Iterations int
}
