package calculator

import (
	"sort"

	"ecommerce-kpi/pkg/models"
)

// CustomerExperience summarises review scores and delivery times. Blocks whose
// column is absent are omitted; a present column with no usable rows yields
// undefined statistics.
func CustomerExperience(rs models.RecordSet) models.CustomerExperience {
	caps := rs.Capabilities()
	var cx models.CustomerExperience

	if caps.ReviewScore {
		cx.Reviews = reviewStats(rs)
	}

	if caps.DeliveryDays {
		delivered := rs.Filter(func(it models.SalesLineItem) bool { return it.DeliveryDays != nil })
		days := make([]float64, 0, delivered.Len())
		delivered.Each(func(it models.SalesLineItem) {
			days = append(days, float64(*it.DeliveryDays))
		})
		cx.Delivery = &models.DeliveryStats{
			AvgDeliveryDays:    mean(days),
			MedianDeliveryDays: median(days),
			DeliveredRows:      len(days),
		}

		if caps.DeliveryCategory && delivered.Len() > 0 {
			cx.DeliverySatisfaction = deliverySatisfaction(delivered)
		}
	}
	return cx
}

func reviewStats(rs models.RecordSet) *models.ReviewStats {
	counts := make(map[int]int)
	var scores []float64
	var promoters, detractors int
	rs.Each(func(it models.SalesLineItem) {
		if it.ReviewScore == nil {
			return
		}
		s := *it.ReviewScore
		scores = append(scores, float64(s))
		counts[s]++
		switch {
		case s == 5:
			promoters++
		case s == 1 || s == 2:
			detractors++
		}
	})

	total := len(scores)
	stats := &models.ReviewStats{
		AvgReviewScore: mean(scores),
		NPSScore:       models.Ratio(float64(promoters-detractors)*100, float64(total)),
		ScoredRows:     total,
	}
	keys := make([]int, 0, len(counts))
	for score := range counts {
		keys = append(keys, score)
	}
	sort.Ints(keys)
	for _, score := range keys {
		stats.Distribution = append(stats.Distribution, models.ScoreShare{
			Score: score,
			Share: float64(counts[score]) / float64(total),
		})
	}
	return stats
}

func deliverySatisfaction(delivered models.RecordSet) []models.DeliverySatisfaction {
	groups := groupBy(delivered, optionalKey(func(it models.SalesLineItem) *string {
		return it.DeliveryCategory
	}), []aggSpec{
		meanOf("review_score", models.FieldReviewScore),
		distinctOf("order_id", models.FieldOrderID),
	})

	out := make([]models.DeliverySatisfaction, 0, len(groups))
	for _, g := range groups {
		out = append(out, models.DeliverySatisfaction{
			DeliveryCategory: g.key,
			AvgReviewScore:   g.mean("review_score"),
			UniqueOrders:     g.count("order_id"),
		})
	}
	return out
}
