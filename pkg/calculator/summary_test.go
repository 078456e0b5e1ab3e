package calculator

import (
	"encoding/json"
	"testing"

	"ecommerce-kpi/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutiveSummary(t *testing.T) {
	rs := catalogSet(t)
	s := ExecutiveSummary(rs, nil, "Q1 2023")

	assert.Equal(t, "Q1 2023", s.Period)
	assert.Equal(t, RevenueMetrics(rs, nil), s.RevenueMetrics)
	assert.Equal(t, []string{"garden", "books", "toys"}, s.TopCategories)
	assert.Empty(t, s.TopStates)
	assert.Equal(t, HealthScore(rs, nil).OverallHealthScore, s.HealthScore)
	assert.Equal(t, CustomerExperience(rs), s.CustomerExperience)
}

func TestExecutiveSummary_JSONFlattensSections(t *testing.T) {
	prev := recordSet(t, models.AllCapabilities())
	s := ExecutiveSummary(threeOrders(t), &prev, "Jan")
	b, err := json.Marshal(s)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "Jan", out["period"])
	assert.Contains(t, out, "total_revenue")
	assert.Contains(t, out, "health_score")
	growth, ok := out["growth"].(map[string]any)
	require.True(t, ok)
	assert.Nil(t, growth["revenue_growth_rate"], "undefined encodes as null")
}

func TestDescribe(t *testing.T) {
	rs := recordSet(t, models.AllCapabilities(),
		row{order: "o1", customer: "c1", price: "10", freight: "0", at: day(2022, 12, 1)},
		row{order: "o2", customer: "c2", price: "20", freight: "0", at: day(2023, 1, 1), status: "shipped"},
		row{order: "o3", customer: "c3", price: "30", freight: "0", at: day(2023, 2, 1)},
	)
	d := Describe(rs)
	assert.Equal(t, 3, d.Records)
	assert.Equal(t, map[int]int{2022: 1, 2023: 2}, d.RecordsByYear)
	assert.Equal(t, day(2022, 12, 1), d.FirstPurchase)
	assert.Equal(t, day(2023, 2, 1), d.LastPurchase)
	require.Len(t, d.StatusBreakdown, 2)
	assert.Equal(t, models.StatusDelivered, d.StatusBreakdown[0].Status)
	assert.InDelta(t, 200.0/3, d.StatusBreakdown[0].Percent, 1e-9)
	assert.InDelta(t, 20.0, d.AverageOrderValue.Float64, 1e-9)
}
