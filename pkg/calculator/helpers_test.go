package calculator

import (
	"testing"
	"time"

	"ecommerce-kpi/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 0, 0, 0, time.UTC)
}

func str(s string) *string { return &s }
func num(i int) *int       { return &i }

type row struct {
	order    string
	item     int
	customer string
	price    string
	freight  string
	at       time.Time
	category *string
	state    *string
	review   *int
	days     *int
	status   string
}

func (r row) lineItem() models.SalesLineItem {
	item := r.item
	if item == 0 {
		item = 1
	}
	it := models.NewLineItem(r.order, item, "p-"+r.order, r.customer,
		decimal.RequireFromString(r.price), decimal.RequireFromString(r.freight), r.at)
	it.ProductCategory = r.category
	it.CustomerState = r.state
	it.ReviewScore = r.review
	it.OrderStatus = r.status
	if r.status == "" {
		it.OrderStatus = models.StatusDelivered
	}
	if r.days != nil {
		it.SetDelivered(r.at.AddDate(0, 0, *r.days))
	}
	return it
}

func recordSet(t *testing.T, caps models.Capabilities, rows ...row) models.RecordSet {
	t.Helper()
	items := make([]models.SalesLineItem, len(rows))
	for i, r := range rows {
		items[i] = r.lineItem()
	}
	rs, err := models.NewRecordSet(items, caps)
	require.NoError(t, err)
	return rs
}

// threeOrders: revenues 100, 150 (two items) and 250.
func threeOrders(t *testing.T) models.RecordSet {
	return recordSet(t, models.AllCapabilities(),
		row{order: "o1", customer: "c1", price: "90", freight: "10", at: day(2023, 1, 5)},
		row{order: "o2", item: 1, customer: "c2", price: "60", freight: "5", at: day(2023, 1, 9)},
		row{order: "o2", item: 2, customer: "c2", price: "80", freight: "5", at: day(2023, 1, 9)},
		row{order: "o3", customer: "c3", price: "230", freight: "20", at: day(2023, 2, 1)},
	)
}
