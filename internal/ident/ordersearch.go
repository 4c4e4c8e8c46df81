package ident

import (
	"fmt"
	"math"

	"github.com/huckl3b3rry87/ctrlab/internal/store"
)

// OrderSearch fits every (na, nb) combination from the given ranges on the
// identification set and returns the model with the lowest one-step
// prediction RMSE on the validation set.
func OrderSearch(idSet, valSet *store.Dataset, naRange, nbRange []int, delay int) (*Model, Report, error) {
	if len(naRange) == 0 || len(nbRange) == 0 {
		return nil, Report{}, fmt.Errorf("ident: empty order range")
	}

	best := math.Inf(1)
	var bestModel *Model
	var bestReport Report

	for _, na := range naRange {
		for _, nb := range nbRange {
			m, err := FitARX(idSet, na, nb, delay)
			if err != nil {
				continue
			}
			rep := Evaluate(m, valSet)
			if rep.RMSE < best {
				best = rep.RMSE
				bestModel = m
				bestReport = rep
			}
		}
	}

	if bestModel == nil {
		return nil, Report{}, fmt.Errorf("ident: no order candidate could be fitted")
	}
	return bestModel, bestReport, nil
}
