package ingest

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"ecommerce-kpi/pkg/models"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
)

// File names of the Olist export.
const (
	OrdersFile    = "orders_dataset.csv"
	ItemsFile     = "order_items_dataset.csv"
	ProductsFile  = "products_dataset.csv"
	CustomersFile = "customers_dataset.csv"
	ReviewsFile   = "order_reviews_dataset.csv"
)

// ErrSchema is returned, wrapped, for missing required columns or values.
var ErrSchema = models.ErrSchema

// Options tunes Load.
type Options struct {
	Progress bool // progress bar on stderr while reading tables
}

type order struct {
	customerID string
	status     string
	purchased  time.Time
	delivered  *time.Time
}

type location struct {
	state *string
	city  *string
}

// Load reads the five tables from dir and joins them into one row per order
// item. Items without a matching order are dropped; products, customers and
// reviews are left joins and their files may be missing, in which case the
// matching capability is off.
func Load(dir string, opts Options) (models.RecordSet, error) {
	bar := newBar(5, opts.Progress, "reading tables")
	defer bar.Finish()

	read := func(file string, optional bool, required ...string) (table, error) {
		t, err := readTable(filepath.Join(dir, file), optional, required...)
		_ = bar.Add(1)
		if err != nil {
			return t, err
		}
		if t.absent {
			log.Warn().Str("table", file).Msg("table not found, dimension disabled")
		} else {
			log.Debug().Str("table", file).Int("rows", len(t.rows)).Int("columns", len(t.cols)).Msg("table loaded")
		}
		return t, nil
	}

	items, err := read(ItemsFile, false, "order_id", "order_item_id", "product_id", "price", "freight_value")
	if err != nil {
		return models.RecordSet{}, err
	}
	ordersTbl, err := read(OrdersFile, false, "order_id", "customer_id", "order_purchase_timestamp")
	if err != nil {
		return models.RecordSet{}, err
	}
	products, err := read(ProductsFile, true, "product_id")
	if err != nil {
		return models.RecordSet{}, err
	}
	customers, err := read(CustomersFile, true, "customer_id")
	if err != nil {
		return models.RecordSet{}, err
	}
	reviews, err := read(ReviewsFile, true, "order_id")
	if err != nil {
		return models.RecordSet{}, err
	}

	caps := models.Capabilities{
		OrderStatus:      ordersTbl.has("order_status"),
		DeliveryDays:     ordersTbl.has("order_delivered_customer_date"),
		DeliveryCategory: ordersTbl.has("order_delivered_customer_date"),
		Category:         !products.absent && products.has("product_category_name"),
		Geography:        !customers.absent && customers.has("customer_state"),
		ReviewScore:      !reviews.absent && reviews.has("review_score"),
	}

	orders, err := indexOrders(ordersTbl)
	if err != nil {
		return models.RecordSet{}, err
	}

	categories := make(map[string]*string)
	if caps.Category {
		for _, row := range products.rows {
			categories[products.get(row, "product_id")] = nonEmpty(products.get(row, "product_category_name"))
		}
	}

	locations := make(map[string]location)
	if caps.Geography {
		for _, row := range customers.rows {
			locations[customers.get(row, "customer_id")] = location{
				state: nonEmpty(customers.get(row, "customer_state")),
				city:  nonEmpty(customers.get(row, "customer_city")),
			}
		}
	}

	// first review per order, so multi-review orders do not duplicate items
	scores := make(map[string]int)
	if caps.ReviewScore {
		for i, row := range reviews.rows {
			id := reviews.get(row, "order_id")
			if _, seen := scores[id]; seen {
				continue
			}
			raw := reviews.get(row, "review_score")
			if raw == "" {
				continue
			}
			score, err := parseReviewScore(raw)
			if err != nil {
				return models.RecordSet{}, fmt.Errorf("%s line %d: %w", ReviewsFile, i+2, err)
			}
			scores[id] = score
		}
	}

	var (
		out                                                   []models.SalesLineItem
		unmatched, noCategory, noGeography, noReview, noDeliv int
	)
	for i, row := range items.rows {
		line := i + 2
		orderID := items.get(row, "order_id")
		o, ok := orders[orderID]
		if !ok {
			unmatched++
			continue
		}
		itemID, err := strconv.Atoi(items.get(row, "order_item_id"))
		if err != nil {
			return models.RecordSet{}, fmt.Errorf("%s line %d: %w: order_item_id %q", ItemsFile, line, ErrSchema, items.get(row, "order_item_id"))
		}
		price, err := parseMoney(items.get(row, "price"), "price")
		if err != nil {
			return models.RecordSet{}, fmt.Errorf("%s line %d: %w", ItemsFile, line, err)
		}
		freight, err := parseMoney(items.get(row, "freight_value"), "freight_value")
		if err != nil {
			return models.RecordSet{}, fmt.Errorf("%s line %d: %w", ItemsFile, line, err)
		}

		productID := items.get(row, "product_id")
		it := models.NewLineItem(orderID, itemID, productID, o.customerID, price, freight, o.purchased)
		it.OrderStatus = o.status

		if caps.DeliveryDays {
			if o.delivered != nil {
				it.SetDelivered(*o.delivered)
			} else {
				unknown := models.DeliveryUnknown
				it.DeliveryCategory = &unknown
				noDeliv++
			}
		}
		if caps.Category {
			it.ProductCategory = categories[productID]
			if it.ProductCategory == nil {
				noCategory++
			}
		}
		if caps.Geography {
			loc := locations[o.customerID]
			it.CustomerState, it.CustomerCity = loc.state, loc.city
			if it.CustomerState == nil {
				noGeography++
			}
		}
		if caps.ReviewScore {
			if s, ok := scores[orderID]; ok {
				it.ReviewScore = &s
			} else {
				noReview++
			}
		}
		out = append(out, it)
	}

	if unmatched > 0 {
		log.Warn().Int("records", unmatched).Msg("order items without a matching order dropped")
	}
	warnMissing(noCategory, "product category")
	warnMissing(noGeography, "customer geography")
	warnMissing(noReview, "review scores")
	warnMissing(noDeliv, "delivery data")

	rs, err := models.NewRecordSet(out, caps)
	if err != nil {
		return models.RecordSet{}, err
	}
	ev := log.Info().Int("records", rs.Len())
	if rs.Len() > 0 {
		first, last := dateRange(rs)
		ev = ev.Time("from", first).Time("to", last)
	}
	ev.Msg("sales dataset created")
	return rs, nil
}

func indexOrders(t table) (map[string]order, error) {
	orders := make(map[string]order, len(t.rows))
	for i, row := range t.rows {
		line := i + 2
		id := t.get(row, "order_id")
		purchased, err := parseTimestamp(t.get(row, "order_purchase_timestamp"))
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w: %v", OrdersFile, line, ErrSchema, err)
		}
		if purchased == nil {
			return nil, fmt.Errorf("%s line %d: %w: order_purchase_timestamp missing", OrdersFile, line, ErrSchema)
		}
		delivered, err := parseTimestamp(t.get(row, "order_delivered_customer_date"))
		if err != nil {
			log.Warn().Str("order_id", id).Err(err).Msg("unreadable delivery date ignored")
			delivered = nil
		}
		orders[id] = order{
			customerID: t.get(row, "customer_id"),
			status:     t.get(row, "order_status"),
			purchased:  *purchased,
			delivered:  delivered,
		}
	}
	return orders, nil
}

func warnMissing(n int, what string) {
	if n > 0 {
		log.Warn().Int("records", n).Msgf("records missing %s", what)
	}
}

func dateRange(rs models.RecordSet) (first, last time.Time) {
	rs.Each(func(it models.SalesLineItem) {
		ts := it.PurchaseTimestamp
		if first.IsZero() || ts.Before(first) {
			first = ts
		}
		if ts.After(last) {
			last = ts
		}
	})
	return first, last
}

func newBar(n int, visible bool, description string) *progressbar.ProgressBar {
	if !visible {
		return progressbar.DefaultSilent(int64(n), description)
	}
	return progressbar.Default(int64(n), description)
}

// parseReviewScore accepts whole stars from 1 to 5.
func parseReviewScore(raw string) (int, error) {
	score, err := strconv.Atoi(raw)
	if err != nil || score < 1 || score > 5 {
		return 0, fmt.Errorf("%w: review_score %q is not an integer from 1 to 5", ErrSchema, raw)
	}
	return score, nil
}
