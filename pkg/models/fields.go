package models

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Field names a column of SalesLineItem for generic aggregation.
type Field string

const (
	FieldOrderID      Field = "order_id"
	FieldOrderItemID  Field = "order_item_id"
	FieldProductID    Field = "product_id"
	FieldCustomerID   Field = "customer_id"
	FieldPrice        Field = "price"
	FieldFreightValue Field = "freight_value"
	FieldTotalRevenue Field = "total_revenue"
	FieldReviewScore  Field = "review_score"
	FieldDeliveryDays Field = "delivery_days"
)

// IsIdentifier reports whether the field holds ids (aggregated by distinct count)
// rather than additive quantities.
func (f Field) IsIdentifier() bool {
	switch f {
	case FieldOrderID, FieldOrderItemID, FieldProductID, FieldCustomerID:
		return true
	}
	return false
}

// Known reports whether f names a column.
func (f Field) Known() bool {
	switch f {
	case FieldOrderID, FieldOrderItemID, FieldProductID, FieldCustomerID,
		FieldPrice, FieldFreightValue, FieldTotalRevenue, FieldReviewScore, FieldDeliveryDays:
		return true
	}
	return false
}

// Measure returns the numeric value of f for the row; false when missing or not numeric.
func (it SalesLineItem) Measure(f Field) (decimal.Decimal, bool) {
	switch f {
	case FieldPrice:
		return it.Price, true
	case FieldFreightValue:
		return it.FreightValue, true
	case FieldTotalRevenue:
		return it.TotalRevenue, true
	case FieldReviewScore:
		if it.ReviewScore == nil {
			return decimal.Zero, false
		}
		return decimal.NewFromInt(int64(*it.ReviewScore)), true
	case FieldDeliveryDays:
		if it.DeliveryDays == nil {
			return decimal.Zero, false
		}
		return decimal.NewFromInt(int64(*it.DeliveryDays)), true
	}
	return decimal.Zero, false
}

// Identifier returns the id value of f for the row.
func (it SalesLineItem) Identifier(f Field) (string, bool) {
	switch f {
	case FieldOrderID:
		return it.OrderID, it.OrderID != ""
	case FieldOrderItemID:
		// item ids repeat across orders
		return it.OrderID + "#" + strconv.Itoa(it.OrderItemID), true
	case FieldProductID:
		return it.ProductID, it.ProductID != ""
	case FieldCustomerID:
		return it.CustomerID, it.CustomerID != ""
	}
	return "", false
}
