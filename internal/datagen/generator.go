//-------------------------------------------------------------------------
//
// pgEdge ecomstats
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pgEdge/pgedge-ecomstats/internal/logging"
	"github.com/pgEdge/pgedge-ecomstats/internal/schema"
)

const timestampLayout = "2006-01-02 15:04:05"

var (
	purchaseStart = time.Date(2016, time.September, 1, 0, 0, 0, 0, time.UTC)
	purchaseEnd   = time.Date(2018, time.October, 1, 0, 0, 0, 0, time.UTC)
)

// Brazilian states weighted roughly by customer share.
var (
	states       = []string{"SP", "RJ", "MG", "RS", "PR", "SC", "BA", "DF", "ES", "GO", "PE", "CE"}
	stateWeights = []int{42, 13, 12, 6, 5, 4, 3, 2, 2, 2, 2, 1}

	orderStatuses      = []string{"delivered", "shipped", "canceled", "invoiced"}
	orderStatusWeights = []int{97, 1, 1, 1}

	paymentTypes   = []string{"credit_card", "boleto", "voucher", "debit_card"}
	paymentWeights = []int{74, 19, 5, 2}

	itemCounts       = []int{1, 2, 3}
	itemCountWeights = []int{88, 9, 3}
)

// TableSizeInfo scales a table's row count from the number of orders.
type TableSizeInfo struct {
	Name       string
	ScaleRatio float64
}

// sampleTables lists how each table scales with orders. Order items and
// payments follow from the orders themselves.
var sampleTables = []TableSizeInfo{
	{Name: "customers", ScaleRatio: 1},
	{Name: "sellers", ScaleRatio: 1.0 / 30},
	{Name: "products", ScaleRatio: 1.0 / 3},
}

// Config configures sample generation.
type Config struct {
	// Orders is the number of orders to generate.
	Orders int

	// Seed makes generation reproducible. Zero picks a random seed.
	Seed uint64
}

// Record is one generated row keyed by column name. Missing columns are
// written as empty cells.
type Record map[string]string

// Dataset holds generated rows per table.
type Dataset map[string][]Record

// RowCounts calculates row counts for the scaled tables.
func RowCounts(orders int) map[string]int {
	counts := make(map[string]int, len(sampleTables))
	for _, t := range sampleTables {
		counts[t.Name] = max(1, int(float64(orders)*t.ScaleRatio))
	}
	return counts
}

// Generate builds a referentially consistent dataset: every order has a
// customer, every item a product and seller, every order a payment equal
// to its item total.
func Generate(cfg Config) Dataset {
	f := NewFaker(cfg.Seed)
	orders := max(1, cfg.Orders)
	counts := RowCounts(orders)
	d := make(Dataset)

	for i := 0; i < orders; i++ {
		zip := f.ZipPrefix()
		city := f.City()
		state := ChooseWeighted(f, states, stateWeights)
		d["customers"] = append(d["customers"], Record{
			"customer_id":              f.ID(),
			"customer_unique_id":       f.ID(),
			"customer_zip_code_prefix": zip,
			"customer_city":            city,
			"customer_state":           state,
		})
		d["geolocation"] = append(d["geolocation"], Record{
			"geolocation_zip_code_prefix": zip,
			"geolocation_lat":             strconv.FormatFloat(f.Float64(-33.7, 5.2), 'f', 6, 64),
			"geolocation_lng":             strconv.FormatFloat(f.Float64(-73.9, -34.8), 'f', 6, 64),
			"geolocation_city":            city,
			"geolocation_state":           state,
		})
	}

	sellers := make([]string, counts["sellers"])
	for i := range sellers {
		sellers[i] = f.ID()
		d["sellers"] = append(d["sellers"], Record{
			"seller_id":              sellers[i],
			"seller_zip_code_prefix": f.ZipPrefix(),
			"seller_city":            f.City(),
			"seller_state":           ChooseWeighted(f, states, stateWeights),
		})
	}

	products := make([]string, counts["products"])
	for i := range products {
		products[i] = f.ID()
		category := f.ProductCategory()
		if f.Chance(0.02) {
			category = ""
		}
		d["products"] = append(d["products"], Record{
			"product_id":                 products[i],
			"product_category":           category,
			"product_name_length":        strconv.Itoa(f.Int(5, 76)),
			"product_description_length": strconv.Itoa(f.Int(4, 3992)),
			"product_photos_qty":         strconv.Itoa(f.Int(1, 6)),
			"product_weight_g":           strconv.Itoa(f.Int(50, 30000)),
			"product_length_cm":          strconv.Itoa(f.Int(7, 105)),
			"product_height_cm":          strconv.Itoa(f.Int(2, 105)),
			"product_width_cm":           strconv.Itoa(f.Int(6, 118)),
		})
	}

	for i := 0; i < orders; i++ {
		orderID := f.ID()
		customerID := d["customers"][i]["customer_id"]
		status := ChooseWeighted(f, orderStatuses, orderStatusWeights)
		purchased := f.DateRange(purchaseStart, purchaseEnd).Truncate(time.Second)

		approved := purchased.Add(time.Duration(f.Int(10, 48*60)) * time.Minute)
		carrier := approved.Add(time.Duration(f.Int(1, 5)) * 24 * time.Hour)
		delivered := carrier.Add(time.Duration(f.Int(1, 20)) * 24 * time.Hour)
		estimated := purchased.AddDate(0, 0, f.Int(20, 40)).Truncate(24 * time.Hour)

		order := Record{
			"order_id":                      orderID,
			"customer_id":                   customerID,
			"order_status":                  status,
			"order_purchase_timestamp":      purchased.Format(timestampLayout),
			"order_approved_at":             approved.Format(timestampLayout),
			"order_estimated_delivery_date": estimated.Format(timestampLayout),
		}
		switch status {
		case "delivered":
			order["order_delivered_carrier_date"] = carrier.Format(timestampLayout)
			order["order_delivered_customer_date"] = delivered.Format(timestampLayout)
		case "shipped":
			order["order_delivered_carrier_date"] = carrier.Format(timestampLayout)
		}
		d["orders"] = append(d["orders"], order)

		var total float64
		items := ChooseWeighted(f, itemCounts, itemCountWeights)
		for n := 1; n <= items; n++ {
			price := round2(f.Price(5, 500))
			freight := round2(f.Price(5, 60))
			total += price + freight
			d["order_items"] = append(d["order_items"], Record{
				"order_id":            orderID,
				"order_item_id":       strconv.Itoa(n),
				"product_id":          Choose(f, products),
				"seller_id":           Choose(f, sellers),
				"shipping_limit_date": purchased.AddDate(0, 0, 6).Format(timestampLayout),
				"price":               formatMoney(price),
				"freight_value":       formatMoney(freight),
			})
		}

		d["payments"] = append(d["payments"], payments(f, orderID, total)...)
	}

	return d
}

// payments splits an order total into one payment, or occasionally a
// voucher plus a second payment.
func payments(f *Faker, orderID string, total float64) []Record {
	kind := ChooseWeighted(f, paymentTypes, paymentWeights)
	installments := 1
	if kind == "credit_card" {
		installments = f.Int(1, 10)
	}

	if f.Chance(0.03) && total > 20 {
		voucher := 10.0
		return []Record{
			{
				"order_id":             orderID,
				"payment_sequential":   "1",
				"payment_type":         "voucher",
				"payment_installments": "1",
				"payment_value":        formatMoney(voucher),
			},
			{
				"order_id":             orderID,
				"payment_sequential":   "2",
				"payment_type":         kind,
				"payment_installments": strconv.Itoa(installments),
				"payment_value":        formatMoney(total - voucher),
			},
		}
	}

	return []Record{{
		"order_id":             orderID,
		"payment_sequential":   "1",
		"payment_type":         kind,
		"payment_installments": strconv.Itoa(installments),
		"payment_value":        formatMoney(total),
	}}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// WriteCSV writes the dataset as one CSV file per mapped table, with the
// header and column order taken from the mapping. It returns the number of
// rows written per table.
func WriteCSV(dir string, s *schema.Schema, d Dataset) (map[string]int, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	written := make(map[string]int, len(s.Tables))
	for _, t := range s.Tables {
		records, ok := d[t.Name]
		if !ok {
			return nil, fmt.Errorf("no sample data for table %s", t.Name)
		}
		path := filepath.Join(dir, t.File)
		if err := writeTable(path, t, records); err != nil {
			return nil, err
		}
		written[t.Name] = len(records)

		logging.Info().
			Str("table", t.Name).
			Str("path", path).
			Int("rows", len(records)).
			Msg("Sample file written")
	}
	return written, nil
}

func writeTable(path string, t schema.Table, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	cols := t.ColumnNames()
	if err := w.Write(cols); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	row := make([]string, len(cols))
	for _, rec := range records {
		for i, c := range cols {
			row[i] = rec[c]
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
