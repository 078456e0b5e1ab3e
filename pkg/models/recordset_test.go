package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func toysRow() SalesLineItem {
	it := NewLineItem("o1", 1, "p1", "c1", decimal.NewFromInt(10), decimal.NewFromInt(2),
		time.Date(2023, 1, 5, 10, 0, 0, 0, time.UTC))
	cat, state, score := "toys", "SP", 5
	it.ProductCategory = &cat
	it.CustomerState = &state
	it.ReviewScore = &score
	it.SetDelivered(time.Date(2023, 1, 9, 10, 0, 0, 0, time.UTC))
	return it
}

func TestRecordSet_RowsHandedOutDoNotAlias(t *testing.T) {
	rs, err := NewRecordSet([]SalesLineItem{toysRow()}, AllCapabilities())
	require.NoError(t, err)

	it := rs.At(0)
	*it.ProductCategory = "garden"
	*it.ReviewScore = 1
	*it.DeliveryDays = 30
	*it.DeliveredTimestamp = time.Time{}

	rs.Each(func(it SalesLineItem) { *it.CustomerState = "RJ" })
	rs.Filter(func(it SalesLineItem) bool {
		*it.DeliveryCategory = DeliverySlow
		return true
	})

	got := rs.At(0)
	assert.Equal(t, "toys", *got.ProductCategory)
	assert.Equal(t, "SP", *got.CustomerState)
	assert.Equal(t, 5, *got.ReviewScore)
	assert.Equal(t, 4, *got.DeliveryDays)
	assert.Equal(t, DeliveryRegular, *got.DeliveryCategory)
	assert.False(t, got.DeliveredTimestamp.IsZero())
}

func TestRecordSet_InputChangesDoNotLeakIn(t *testing.T) {
	items := []SalesLineItem{toysRow()}
	rs, err := NewRecordSet(items, AllCapabilities())
	require.NoError(t, err)

	*items[0].ProductCategory = "garden"
	items[0].OrderID = "changed"

	assert.Equal(t, "toys", *rs.At(0).ProductCategory)
	assert.Equal(t, "o1", rs.At(0).OrderID)
}

func TestRecordSet_NilOptionalsStayNil(t *testing.T) {
	it := NewLineItem("o1", 1, "p1", "c1", decimal.NewFromInt(1), decimal.Zero,
		time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC))
	rs, err := NewRecordSet([]SalesLineItem{it}, Capabilities{})
	require.NoError(t, err)

	got := rs.At(0)
	assert.Nil(t, got.ProductCategory)
	assert.Nil(t, got.DeliveryDays)
	assert.Nil(t, got.DeliveredTimestamp)
}

func TestNewRecordSet_RejectsSchemaViolation(t *testing.T) {
	bad := toysRow()
	bad.CustomerID = ""
	_, err := NewRecordSet([]SalesLineItem{toysRow(), bad}, AllCapabilities())
	require.ErrorIs(t, err, ErrSchema)
	assert.Contains(t, err.Error(), "row 1")
}
