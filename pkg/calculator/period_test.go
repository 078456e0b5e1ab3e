package calculator

import (
	"testing"
	"time"

	"ecommerce-kpi/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func periodSet(t *testing.T) models.RecordSet {
	return recordSet(t, models.AllCapabilities(),
		row{order: "o1", item: 1, customer: "c1", price: "10", freight: "1", at: day(2023, 1, 2)}, // Monday
		row{order: "o1", item: 2, customer: "c1", price: "20", freight: "1", at: day(2023, 1, 2)},
		row{order: "o2", customer: "c1", price: "30", freight: "0", at: day(2023, 1, 8)}, // Sunday
		row{order: "o3", customer: "c2", price: "40", freight: "0", at: day(2023, 1, 9)},
		row{order: "o4", customer: "c3", price: "50", freight: "0", at: day(2023, 5, 20)},
	)
}

func TestAggregateByPeriod_Month(t *testing.T) {
	rows, err := AggregateByPeriod(periodSet(t), Month, nil)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "2023-01", rows[0].Period)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), rows[0].Start)
	assert.Equal(t, 102.0, rows[0].Values["total_revenue"])
	assert.Equal(t, 3.0, rows[0].Values["order_id"])
	assert.Equal(t, 2.0, rows[0].Values["customer_id"])

	assert.Equal(t, "2023-05", rows[1].Period)
	assert.Equal(t, 1.0, rows[1].Values["order_id"])
}

func TestAggregateByPeriod_Week(t *testing.T) {
	rows, err := AggregateByPeriod(periodSet(t), Week, []models.Field{models.FieldOrderID, models.FieldPrice})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "2023-01-02/2023-01-08", rows[0].Period)
	assert.Equal(t, 2.0, rows[0].Values["order_id"])
	assert.Equal(t, 60.0, rows[0].Values["price"])
	assert.Equal(t, "2023-01-09/2023-01-15", rows[1].Period)
}

func TestAggregateByPeriod_Labels(t *testing.T) {
	cases := map[Granularity][]string{
		Day:     {"2023-01-02", "2023-01-08", "2023-01-09", "2023-05-20"},
		Quarter: {"2023Q1", "2023Q2"},
		Year:    {"2023"},
	}
	for g, want := range cases {
		rows, err := AggregateByPeriod(periodSet(t), g, nil)
		require.NoError(t, err)
		var got []string
		for _, r := range rows {
			got = append(got, r.Period)
		}
		assert.Equal(t, want, got, string(g))
	}
}

func TestAggregateByPeriod_Errors(t *testing.T) {
	_, err := AggregateByPeriod(periodSet(t), Granularity("fortnight"), nil)
	assert.ErrorIs(t, err, ErrUnknownGranularity)

	_, err = AggregateByPeriod(periodSet(t), Month, []models.Field{"margin"})
	assert.ErrorIs(t, err, ErrUnknownMetric)
}

func TestParseGranularity(t *testing.T) {
	g, err := ParseGranularity(" Quarter ")
	require.NoError(t, err)
	assert.Equal(t, Quarter, g)
	_, err = ParseGranularity("hour")
	assert.Error(t, err)
}

func TestComparePeriods_MatchesManualGrowth(t *testing.T) {
	cur := threeOrders(t)
	prev := recordSet(t, models.AllCapabilities(),
		row{order: "x", customer: "c1", price: "150", freight: "50", at: day(2022, 1, 5)},
		row{order: "y", customer: "c2", price: "50", freight: "0", at: day(2022, 1, 6)},
	)
	rows, err := ComparePeriods(cur, prev, nil)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	a, b := RevenueMetrics(cur, nil), RevenueMetrics(prev, nil)
	for _, r := range rows {
		av, _ := a.Lookup(r.Metric)
		bv, _ := b.Lookup(r.Metric)
		assert.InDelta(t, (av.Float64-bv.Float64)/bv.Float64, r.ChangeRate.Float64, 1e-12, r.Metric)
		assert.InDelta(t, r.ChangeRate.Float64*100, r.PercentChange.Float64, 1e-9, r.Metric)
		assert.InDelta(t, av.Float64-bv.Float64, r.AbsoluteChange.Float64, 1e-9, r.Metric)
	}
	assert.Equal(t, models.MetricTotalRevenue, rows[0].Metric)
	assert.InDelta(t, 1.0, rows[0].ChangeRate.Float64, 1e-12)
}

func TestComparePeriods_ZeroBaseline(t *testing.T) {
	prev := recordSet(t, models.AllCapabilities())
	rows, err := ComparePeriods(threeOrders(t), prev, []string{models.MetricTotalRevenue, models.MetricAverageOrderValue})
	require.NoError(t, err)
	assert.False(t, rows[0].ChangeRate.Valid)
	assert.False(t, rows[0].PercentChange.Valid)
	assert.True(t, rows[0].AbsoluteChange.Valid)
	assert.InDelta(t, 500.0, rows[0].AbsoluteChange.Float64, 1e-9)

	// AOV of an empty period is itself undefined
	assert.False(t, rows[1].PreviousPeriod.Valid)
	assert.False(t, rows[1].AbsoluteChange.Valid)
}

func TestComparePeriods_UnknownMetric(t *testing.T) {
	_, err := ComparePeriods(threeOrders(t), threeOrders(t), []string{"margin"})
	assert.ErrorIs(t, err, ErrUnknownMetric)
}
