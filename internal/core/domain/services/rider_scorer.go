package services

import (
	"math"

	"orderdispatch/internal/core/domain/model/order"
	"orderdispatch/internal/core/domain/model/rider"
)

// RiderScorer ranks a candidate rider for an order. Higher is better.
type RiderScorer interface {
	Score(candidate *rider.Rider, o *order.Order) float64
}

// ScoreWeights are the coefficients of WeightedScorer.
type ScoreWeights struct {
	Rating     float64
	Completion float64
	Proximity  float64
	OnTime     float64
}

// DefaultScoreWeights returns 0.4 rating, 0.3 completion, 0.2 proximity, 0.1 on-time.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{Rating: 0.4, Completion: 0.3, Proximity: 0.2, OnTime: 0.1}
}

// WeightedScorer is the default scoring strategy:
//
//	score = wR×(rating/5) + wC×completionRate + wP×max(0, (radius-distance)/radius) + wO×onTimeRate
//
// Distance is measured from the rider's last position to the order pickup point.
// A rider without a position scores no proximity.
type WeightedScorer struct {
	weights  ScoreWeights
	radiusKm float64
}

// NewWeightedScorer creates a scorer for the given weights and search radius.
func NewWeightedScorer(weights ScoreWeights, radiusKm float64) WeightedScorer {
	return WeightedScorer{weights: weights, radiusKm: radiusKm}
}

// Score implements RiderScorer.
func (s WeightedScorer) Score(candidate *rider.Rider, o *order.Order) float64 {
	perf := candidate.Performance()

	proximity := 0.0
	if d, err := candidate.DistanceToKm(o.PickupLocation()); err == nil && s.radiusKm > 0 {
		proximity = math.Max(0, (s.radiusKm-d)/s.radiusKm)
	}

	return s.weights.Rating*(perf.AverageRating/5) +
		s.weights.Completion*perf.CompletionRate() +
		s.weights.Proximity*proximity +
		s.weights.OnTime*perf.OnTimeRate()
}
