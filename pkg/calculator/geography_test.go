package calculator

import (
	"testing"

	"ecommerce-kpi/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeographicPerformance(t *testing.T) {
	rs := recordSet(t, models.AllCapabilities(),
		row{order: "o1", customer: "c1", price: "1000", freight: "0", at: day(2023, 1, 1), state: str("RJ")},
		row{order: "o2", customer: "c2", price: "10", freight: "0", at: day(2023, 1, 1), state: str("SP")},
		row{order: "o3", customer: "c3", price: "10", freight: "0", at: day(2023, 1, 1), state: str("SP")},
		row{order: "o4", customer: "c3", price: "20", freight: "0", at: day(2023, 1, 2), state: str("SP")},
		row{order: "o5", customer: "c4", price: "50", freight: "0", at: day(2023, 1, 2), state: str("MG")},
		row{order: "o6", customer: "c5", price: "50", freight: "0", at: day(2023, 1, 2)},
	)
	g := GeographicPerformance(rs, 10)

	require.Len(t, g.StatePerformance, 3)
	assert.Equal(t, "RJ", g.StatePerformance[0].State)
	assert.Equal(t, "MG", g.StatePerformance[1].State)
	assert.Equal(t, "SP", g.StatePerformance[2].State)

	sp := g.StatePerformance[2]
	assert.Equal(t, 3, sp.TotalOrders)
	assert.Equal(t, 2, sp.UniqueCustomers)
	assert.InDelta(t, 20.0, sp.RevenuePerCustomer.Float64, 1e-9)
	assert.InDelta(t, 40.0/3, sp.AvgItemPrice.Float64, 1e-9)

	// customer ranking disagrees with revenue ranking; MG and RJ tie on 1
	require.Len(t, g.TopCustomerStates, 3)
	assert.Equal(t, "SP", g.TopCustomerStates[0].State)
	assert.Equal(t, "MG", g.TopCustomerStates[1].State)
	assert.Equal(t, "RJ", g.TopCustomerStates[2].State)

	top1 := GeographicPerformance(rs, 1)
	assert.Len(t, top1.StatePerformance, 1)
	assert.Len(t, top1.TopCustomerStates, 1)
}

func TestGeographicPerformance_NoGeography(t *testing.T) {
	rs := recordSet(t, models.Capabilities{}, row{order: "o1", customer: "c1", price: "1", freight: "0", at: day(2023, 1, 1)})
	assert.Empty(t, GeographicPerformance(rs, 5).StatePerformance)
}
