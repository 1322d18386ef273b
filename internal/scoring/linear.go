package scoring

import (
	"context"
	"fmt"
)

// LinearModel is a local linear regression over the feature vector. It is used
// when no remote model is configured.
type LinearModel struct {
	intercept float64
	weights   Features
}

// NewLinearModel creates a model from an intercept and exactly FeatureCount weights.
func NewLinearModel(intercept float64, weights []float64) (*LinearModel, error) {
	if len(weights) != FeatureCount {
		return nil, fmt.Errorf("linear model needs %d weights, got %d", FeatureCount, len(weights))
	}
	m := &LinearModel{intercept: intercept}
	copy(m.weights[:], weights)
	return m, nil
}

// DefaultLinearModel sums the three teams' FSM, i.e. predicts the heuristic score.
func DefaultLinearModel() *LinearModel {
	m := &LinearModel{}
	for i := 0; i < 3; i++ {
		m.weights[i*perTeamFeatures] = 1
	}
	return m
}

// Predict returns intercept + weights·features.
func (m *LinearModel) Predict(ctx context.Context, features Features) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if err := features.Validate(); err != nil {
		return 0, err
	}
	out := m.intercept
	for i, w := range m.weights {
		out += w * features[i]
	}
	return out, nil
}
