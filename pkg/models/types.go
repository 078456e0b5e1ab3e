package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

/*
LOAD → one enriched row per order item, as produced by the ingestion collaborator.
*/

// Delivery speed buckets.
const (
	DeliveryFast    = "1-3 days"
	DeliveryRegular = "4-7 days"
	DeliverySlow    = "8+ days"
	DeliveryUnknown = "Unknown"
)

// StatusDelivered is the order_status value counted as fulfilled.
const StatusDelivered = "delivered"

// SalesLineItem is one order item joined with its order, product, customer and review.
// Optional columns are nil when the row has no value; whether the column exists at
// all is recorded once in the RecordSet's Capabilities.
type SalesLineItem struct {
	OrderID     string
	OrderItemID int
	ProductID   string
	CustomerID  string

	Price        decimal.Decimal
	FreightValue decimal.Decimal
	TotalRevenue decimal.Decimal // Price + FreightValue

	OrderStatus        string
	PurchaseTimestamp  time.Time
	DeliveredTimestamp *time.Time

	Year    int
	Month   int
	Quarter int

	ProductCategory  *string
	CustomerState    *string
	CustomerCity     *string
	ReviewScore      *int
	DeliveryDays     *int
	DeliveryCategory *string
}

// NewLineItem builds a row with total revenue and calendar fields derived.
func NewLineItem(orderID string, itemID int, productID, customerID string, price, freight decimal.Decimal, purchased time.Time) SalesLineItem {
	it := SalesLineItem{
		OrderID:           orderID,
		OrderItemID:       itemID,
		ProductID:         productID,
		CustomerID:        customerID,
		Price:             price,
		FreightValue:      freight,
		TotalRevenue:      price.Add(freight),
		PurchaseTimestamp: purchased,
	}
	it.DeriveCalendar()
	return it
}

// DeriveCalendar fills Year, Month and Quarter from the purchase timestamp.
func (it *SalesLineItem) DeriveCalendar() {
	it.Year = it.PurchaseTimestamp.Year()
	it.Month = int(it.PurchaseTimestamp.Month())
	it.Quarter = (it.Month-1)/3 + 1
}

// SetDelivered records the delivery time and derives delivery days and bucket.
// Days are whole elapsed days, truncated.
func (it *SalesLineItem) SetDelivered(at time.Time) {
	it.DeliveredTimestamp = &at
	days := int(at.Sub(it.PurchaseTimestamp) / (24 * time.Hour))
	it.DeliveryDays = &days
	cat := DeliveryCategoryFor(&days)
	it.DeliveryCategory = &cat
}

// clone returns a copy of it that shares no optional-field storage with it.
func (it SalesLineItem) clone() SalesLineItem {
	it.DeliveredTimestamp = clonePtr(it.DeliveredTimestamp)
	it.ProductCategory = clonePtr(it.ProductCategory)
	it.CustomerState = clonePtr(it.CustomerState)
	it.CustomerCity = clonePtr(it.CustomerCity)
	it.ReviewScore = clonePtr(it.ReviewScore)
	it.DeliveryDays = clonePtr(it.DeliveryDays)
	it.DeliveryCategory = clonePtr(it.DeliveryCategory)
	return it
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// DeliveryCategoryFor buckets delivery days: ≤3, ≤7, more, or Unknown when missing.
func DeliveryCategoryFor(days *int) string {
	switch {
	case days == nil:
		return DeliveryUnknown
	case *days <= 3:
		return DeliveryFast
	case *days <= 7:
		return DeliveryRegular
	default:
		return DeliverySlow
	}
}

// ErrSchema marks rows violating the required-field contract.
var ErrSchema = errors.New("schema violation")

// Validate checks the required fields and total = price + freight.
func (it SalesLineItem) Validate() error {
	switch {
	case it.OrderID == "":
		return fmt.Errorf("%w: order_id missing", ErrSchema)
	case it.CustomerID == "":
		return fmt.Errorf("%w: customer_id missing (order %s)", ErrSchema, it.OrderID)
	case it.PurchaseTimestamp.IsZero():
		return fmt.Errorf("%w: purchase_timestamp missing (order %s)", ErrSchema, it.OrderID)
	case !it.TotalRevenue.Equal(it.Price.Add(it.FreightValue)):
		return fmt.Errorf("%w: total_revenue != price + freight_value (order %s item %d)", ErrSchema, it.OrderID, it.OrderItemID)
	}
	return nil
}

// Capabilities records which optional columns exist in a collection.
// Checked once per RecordSet, never per row.
type Capabilities struct {
	Category         bool
	Geography        bool
	ReviewScore      bool
	DeliveryDays     bool
	DeliveryCategory bool
	OrderStatus      bool
}

// AllCapabilities marks every optional column present.
func AllCapabilities() Capabilities {
	return Capabilities{
		Category:         true,
		Geography:        true,
		ReviewScore:      true,
		DeliveryDays:     true,
		DeliveryCategory: true,
		OrderStatus:      true,
	}
}

/*
CONFIG → report parameters
*/

// ReportParams holds the inputs of a report run.
type ReportParams struct {
	StartMonthInclusive string // "MMYYYY", empty = unbounded
	EndMonthInclusive   string // "MMYYYY", empty = unbounded
	CompareStart        string // "MMYYYY", empty = the period just before a bounded one
	CompareEnd          string // "MMYYYY", empty = CompareStart
	PeriodLabel         string
	TopN                int
	DeliveredOnly       bool
	Verbose             bool // debug logging
}
