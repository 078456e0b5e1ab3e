package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"ecommerce-kpi/pkg/models"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// DefaultTable holds one enriched row per order item.
const DefaultTable = "sales_line_items"

var tableNameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Open accepts mariadb://, mysql:// and sqlite:// URLs or a native MySQL DSN.
func Open(dsn string) (*sqlx.DB, string, error) {
	driver, driverDSN, err := toDriverDSN(dsn)
	if err != nil {
		return nil, "", err
	}
	db, err := sqlx.Open(driver, driverDSN)
	if err != nil {
		return nil, "", err
	}
	if driver == "sqlite" {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
	}
	return db, driverDSN, nil
}

func toDriverDSN(dsn string) (string, string, error) {
	if strings.HasPrefix(dsn, "sqlite://") {
		path := strings.TrimPrefix(dsn, "sqlite://")
		if path == "" {
			return "", "", fmt.Errorf("sqlite dsn without path")
		}
		return "sqlite", path, nil
	}
	mysqlDSN, err := toMySQLDSN(dsn)
	return "mysql", mysqlDSN, err
}

func toMySQLDSN(dsn string) (string, error) {
	if strings.HasPrefix(dsn, "mariadb://") || strings.HasPrefix(dsn, "mysql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("parse dsn: %w", err)
		}
		user := ""
		pass := ""
		if u.User != nil {
			user = u.User.Username()
			pw, _ := u.User.Password()
			pass = pw
		}
		host := u.Host
		db := strings.TrimPrefix(u.Path, "/")
		if user == "" || host == "" || db == "" {
			return "", fmt.Errorf("incomplete dsn (user/host/db)")
		}
		return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&interpolateParams=true",
			user, pass, host, db), nil
	}
	return dsn, nil
}

// optional columns and the capability each one grants
var optionalColumns = []struct {
	name  string
	grant func(*models.Capabilities)
}{
	{"order_status", func(c *models.Capabilities) { c.OrderStatus = true }},
	{"order_delivered_customer_date", func(c *models.Capabilities) { c.DeliveryDays, c.DeliveryCategory = true, true }},
	{"product_category_name", func(c *models.Capabilities) { c.Category = true }},
	{"customer_state", func(c *models.Capabilities) { c.Geography = true }},
	{"customer_city", nil},
	{"review_score", func(c *models.Capabilities) { c.ReviewScore = true }},
}

var requiredColumns = []string{
	"order_id", "order_item_id", "product_id", "customer_id",
	"price", "freight_value", "order_purchase_timestamp",
}

type lineItemRow struct {
	OrderID     string          `db:"order_id"`
	OrderItemID int             `db:"order_item_id"`
	ProductID   string          `db:"product_id"`
	CustomerID  string          `db:"customer_id"`
	Price       decimal.Decimal `db:"price"`
	Freight     decimal.Decimal `db:"freight_value"`
	Purchased   sqlTime         `db:"order_purchase_timestamp"`
	Status      sql.NullString  `db:"order_status"`
	Delivered   sqlTime         `db:"order_delivered_customer_date"`
	Category    sql.NullString  `db:"product_category_name"`
	State       sql.NullString  `db:"customer_state"`
	City        sql.NullString  `db:"customer_city"`
	ReviewScore sql.NullInt64   `db:"review_score"`
}

func (r lineItemRow) toModel(caps models.Capabilities) models.SalesLineItem {
	it := models.NewLineItem(r.OrderID, r.OrderItemID, r.ProductID, r.CustomerID, r.Price, r.Freight, r.Purchased.Time)
	it.OrderStatus = r.Status.String
	if r.Delivered.Valid {
		it.SetDelivered(r.Delivered.Time)
	} else if caps.DeliveryCategory {
		unknown := models.DeliveryUnknown
		it.DeliveryCategory = &unknown
	}
	if r.Category.Valid {
		it.ProductCategory = &r.Category.String
	}
	if r.State.Valid {
		it.CustomerState = &r.State.String
	}
	if r.City.Valid {
		it.CustomerCity = &r.City.String
	}
	if r.ReviewScore.Valid {
		score := int(r.ReviewScore.Int64)
		it.ReviewScore = &score
	}
	return it
}

// LoadLineItems reads the enriched line-item table into a RecordSet. Optional
// columns missing from the table are selected as NULL and their capability is
// left off.
func LoadLineItems(ctx context.Context, db *sqlx.DB, tableName string) (models.RecordSet, error) {
	if !tableNameRe.MatchString(tableName) {
		return models.RecordSet{}, fmt.Errorf("invalid table name %q", tableName)
	}

	present, err := columns(ctx, db, tableName)
	if err != nil {
		return models.RecordSet{}, fmt.Errorf("columns of %s: %w", tableName, err)
	}
	for _, c := range requiredColumns {
		if !present[c] {
			return models.RecordSet{}, fmt.Errorf("%w: %s has no %s column", models.ErrSchema, tableName, c)
		}
	}

	var caps models.Capabilities
	selects := append([]string(nil), requiredColumns...)
	for _, oc := range optionalColumns {
		if present[oc.name] {
			selects = append(selects, oc.name)
			if oc.grant != nil {
				oc.grant(&caps)
			}
			continue
		}
		selects = append(selects, "NULL AS "+oc.name)
	}

	q := fmt.Sprintf(`SELECT %s FROM %s ORDER BY order_purchase_timestamp, order_id, order_item_id`,
		strings.Join(selects, ", "), tableName)

	var rows []lineItemRow
	if err := db.SelectContext(ctx, &rows, q); err != nil {
		return models.RecordSet{}, fmt.Errorf("select %s: %w", tableName, err)
	}

	items := make([]models.SalesLineItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, r.toModel(caps))
	}
	log.Debug().Str("table", tableName).Int("rows", len(items)).Interface("capabilities", caps).Msg("line items loaded")

	return models.NewRecordSet(items, caps)
}

func columns(ctx context.Context, db *sqlx.DB, tableName string) (map[string]bool, error) {
	rows, err := db.QueryxContext(ctx, fmt.Sprintf(`SELECT * FROM %s LIMIT 0`, tableName))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[strings.ToLower(n)] = true
	}
	return present, rows.Err()
}
