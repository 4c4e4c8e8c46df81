package control

import (
	"gonum.org/v1/gonum/mat"

	"github.com/huckl3b3rry87/ctrlab/internal/dynamo"
)

// StateFeedback implements u = -K (x - target), full state feedback toward
// a target operating point.
type StateFeedback struct {
	K      *mat.Dense
	Target dynamo.State
}

func NewStateFeedback(k *mat.Dense, target dynamo.State) *StateFeedback {
	return &StateFeedback{K: k, Target: target}
}

func (s *StateFeedback) Compute(x dynamo.State, t float64) dynamo.Input {
	nu, nx := s.K.Dims()
	u := make(dynamo.Input, nu)
	for i := 0; i < nu; i++ {
		for j := 0; j < nx && j < len(x); j++ {
			target := 0.0
			if j < len(s.Target) {
				target = s.Target[j]
			}
			u[i] -= s.K.At(i, j) * (x[j] - target)
		}
	}
	return u
}

// None is the passthrough controller producing zero input.
type None struct {
	dim int
}

func NewNone(dim int) *None {
	return &None{dim: dim}
}

func (n *None) Compute(x dynamo.State, t float64) dynamo.Input {
	return make(dynamo.Input, n.dim)
}
