package calculator

import (
	"ecommerce-kpi/pkg/models"
)

const baseScore = 70.0

// Weights of the health score components.
const (
	WeightRevenue            = 0.30
	WeightCustomerExperience = 0.25
	WeightOperational        = 0.20
	WeightFulfillment        = 0.25
)

// HealthWeightSum is the total of the component weights (1.0).
func HealthWeightSum() float64 {
	return WeightRevenue + WeightCustomerExperience + WeightOperational + WeightFulfillment
}

// HealthScore combines revenue growth, review scores, delivery speed and
// fulfillment into a weighted score. Every component stays within [0,100] and
// falls back to 70 when its input is unavailable.
func HealthScore(rs models.RecordSet, comparison *models.RecordSet) models.HealthScoreBreakdown {
	revenue := RevenueMetrics(rs, comparison)
	cx := CustomerExperience(rs)

	h := models.HealthScoreBreakdown{
		RevenueScore:            revenueScore(revenue),
		CustomerExperienceScore: customerExperienceScore(cx.AvgReviewScore()),
		OperationalScore:        operationalScore(cx.AvgDeliveryDays()),
		FulfillmentScore:        fulfillmentScore(rs),
	}
	h.OverallHealthScore = round1(h.RevenueScore*WeightRevenue +
		h.CustomerExperienceScore*WeightCustomerExperience +
		h.OperationalScore*WeightOperational +
		h.FulfillmentScore*WeightFulfillment)
	return h
}

// revenueScore moves the base by the growth percentage, capped at ±30.
// Revenue against a zero-revenue baseline is unbounded growth and takes the
// full +30; no revenue in either period leaves the base.
func revenueScore(m models.RevenueMetrics) float64 {
	score := baseScore
	switch {
	case m.Growth == nil:
	case m.Growth.RevenueGrowthRate.Valid:
		pct := m.Growth.RevenueGrowthRate.Float64 * 100
		if pct >= 0 {
			score += min(pct, 30)
		} else {
			score += max(pct, -30)
		}
	case m.TotalRevenue.IsPositive():
		score += 30
	}
	return clamp(score, 0, 100)
}

// customerExperienceScore keeps the historical formula as is:
// 70 + ((avg-1)/4)*30 - 30, i.e. 40 at a 1-star average and 70 at 5 stars.
func customerExperienceScore(avgReview models.NullFloat) float64 {
	score := baseScore
	if avgReview.Valid {
		contribution := ((avgReview.Float64 - 1) / 4) * 30
		score = baseScore + contribution - 30
	}
	return clamp(score, 0, 100)
}

func operationalScore(avgDays models.NullFloat) float64 {
	if !avgDays.Valid {
		return baseScore
	}
	switch d := avgDays.Float64; {
	case d <= 5:
		return 90
	case d <= 10:
		return 80
	case d <= 15:
		return 70
	default:
		return 50
	}
}

func fulfillmentScore(rs models.RecordSet) float64 {
	if !rs.Capabilities().OrderStatus || rs.Len() == 0 {
		return baseScore
	}
	delivered := rs.Filter(func(it models.SalesLineItem) bool {
		return it.OrderStatus == models.StatusDelivered
	}).Len()
	return clamp(float64(delivered)/float64(rs.Len())*100, 0, 100)
}
