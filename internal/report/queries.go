//-------------------------------------------------------------------------
//
// pgEdge ecomstats
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package report

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pgEdge/pgedge-ecomstats/internal/db"
)

// ErrUnknownQuery is returned when a query name is not in the catalogue.
var ErrUnknownQuery = errors.New("unknown query")

// Chart file names.
const (
	ChartCustomersByState = "customers_by_state.png"
	ChartMonthlyOrders    = "monthly_orders_2018.png"
	ChartTopSellers       = "top_sellers.png"
	ChartCumulativeSales  = "cumulative_sales.png"
)

// Query is one analytic statement and how its result is presented.
type Query struct {
	// Name is the query identifier.
	Name string

	// Description describes what the query computes.
	Description string

	// Columns names the result columns in order.
	Columns []string

	// Chart is the image written for the result, empty when printed only.
	Chart string

	// SQL holds the statement text per dialect.
	SQL map[db.Dialect]string

	present presenter
}

// Statement returns the SQL text for the dialect.
func (q Query) Statement(d db.Dialect) (string, error) {
	s, ok := q.SQL[d]
	if !ok {
		return "", fmt.Errorf("query %s has no %s statement", q.Name, d)
	}
	return s, nil
}

// Output describes how the result is presented.
func (q Query) Output() string {
	if q.Chart != "" {
		return "chart " + q.Chart
	}
	return "print"
}

// Queries returns the report queries in run order.
func Queries() []Query {
	return catalogue
}

// Lookup returns the named query.
func Lookup(name string) (Query, error) {
	for _, q := range catalogue {
		if q.Name == name {
			return q, nil
		}
	}
	return Query{}, fmt.Errorf("%w: %s", ErrUnknownQuery, name)
}

// Select returns the named queries in run order. An empty list selects
// every query.
func Select(names []string) ([]Query, error) {
	if len(names) == 0 {
		return catalogue, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		if _, err := Lookup(n); err != nil {
			return nil, err
		}
		want[n] = true
	}
	selected := make([]Query, 0, len(names))
	for _, q := range catalogue {
		if want[q.Name] {
			selected = append(selected, q)
		}
	}
	return selected, nil
}

// SQLite stores timestamps as text, so calendar parts come from strftime.
const (
	sqliteYear      = "CAST(strftime('%Y', {col}) AS INTEGER)"
	sqliteMonth     = "CAST(strftime('%m', {col}) AS INTEGER)"
	sqliteMonthName = `CASE strftime('%m', {col})
        WHEN '01' THEN 'January' WHEN '02' THEN 'February' WHEN '03' THEN 'March'
        WHEN '04' THEN 'April' WHEN '05' THEN 'May' WHEN '06' THEN 'June'
        WHEN '07' THEN 'July' WHEN '08' THEN 'August' WHEN '09' THEN 'September'
        WHEN '10' THEN 'October' WHEN '11' THEN 'November' WHEN '12' THEN 'December'
    END`
)

func sqliteDatePart(expr, col string) string {
	return strings.ReplaceAll(expr, "{col}", col)
}

var catalogue = []Query{
	{
		Name:        "distinct_cities",
		Description: "Distinct customer cities",
		Columns:     []string{"customer_city"},
		SQL: map[db.Dialect]string{
			db.MySQL:    "SELECT DISTINCT customer_city FROM customers",
			db.Postgres: "SELECT DISTINCT customer_city FROM customers",
			db.SQLite:   "SELECT DISTINCT customer_city FROM customers",
		},
		present: printHead(5),
	},
	{
		Name:        "orders_2017",
		Description: "Total orders placed in 2017",
		Columns:     []string{"count"},
		SQL: map[db.Dialect]string{
			db.MySQL:    "SELECT COUNT(order_id) FROM orders WHERE YEAR(order_purchase_timestamp) = 2017",
			db.Postgres: "SELECT COUNT(order_id) FROM orders WHERE EXTRACT(YEAR FROM order_purchase_timestamp) = 2017",
			db.SQLite: "SELECT COUNT(order_id) FROM orders WHERE " +
				sqliteDatePart(sqliteYear, "order_purchase_timestamp") + " = 2017",
		},
		present: printScalar("Total orders placed in 2017:"),
	},
	{
		Name:        "sales_by_category",
		Description: "Sales by product category",
		Columns:     []string{"Category", "Sales"},
		SQL: map[db.Dialect]string{
			db.MySQL: `
SELECT UPPER(products.product_category) AS category, 
       ROUND(SUM(payments.payment_value), 2) AS sales
FROM products 
JOIN order_items ON products.product_id = order_items.product_id
JOIN payments ON payments.order_id = order_items.order_id
GROUP BY category
`,
			db.Postgres: `
SELECT UPPER(products.product_category) AS category,
       ROUND(SUM(payments.payment_value), 2) AS sales
FROM products
JOIN order_items ON products.product_id = order_items.product_id
JOIN payments ON payments.order_id = order_items.order_id
GROUP BY category
`,
			db.SQLite: `
SELECT UPPER(products.product_category) AS category,
       ROUND(SUM(payments.payment_value), 2) AS sales
FROM products
JOIN order_items ON products.product_id = order_items.product_id
JOIN payments ON payments.order_id = order_items.order_id
GROUP BY category
`,
		},
		present: printAll(),
	},
	{
		Name:        "installment_share",
		Description: "Percentage of orders paid in installments",
		Columns:     []string{"percentage"},
		SQL: map[db.Dialect]string{
			db.MySQL: `
SELECT ((SUM(CASE WHEN payment_installments >= 1 THEN 1 ELSE 0 END)) / COUNT(*)) * 100
FROM payments
`,
			db.Postgres: `
SELECT ((SUM(CASE WHEN payment_installments >= 1 THEN 1 ELSE 0 END))::numeric / COUNT(*)) * 100
FROM payments
`,
			db.SQLite: `
SELECT ((SUM(CASE WHEN payment_installments >= 1 THEN 1 ELSE 0 END)) * 1.0 / COUNT(*)) * 100
FROM payments
`,
		},
		present: printScalar("Percentage of orders paid in installments:"),
	},
	{
		Name:        "customers_by_state",
		Description: "Count of customers by state",
		Columns:     []string{"State", "Customer_Count"},
		Chart:       ChartCustomersByState,
		SQL: map[db.Dialect]string{
			db.MySQL:    "SELECT customer_state, COUNT(customer_id) FROM customers GROUP BY customer_state",
			db.Postgres: "SELECT customer_state, COUNT(customer_id) FROM customers GROUP BY customer_state",
			db.SQLite:   "SELECT customer_state, COUNT(customer_id) FROM customers GROUP BY customer_state",
		},
		present: presentCustomersByState,
	},
	{
		Name:        "monthly_orders_2018",
		Description: "Count of orders by month in 2018",
		Columns:     []string{"Months", "Order_Count"},
		Chart:       ChartMonthlyOrders,
		SQL: map[db.Dialect]string{
			db.MySQL: `
SELECT MONTHNAME(order_purchase_timestamp) AS months, COUNT(order_id) AS order_count
FROM orders
WHERE YEAR(order_purchase_timestamp) = 2018
GROUP BY months
`,
			db.Postgres: `
SELECT TO_CHAR(order_purchase_timestamp, 'FMMonth') AS months, COUNT(order_id) AS order_count
FROM orders
WHERE EXTRACT(YEAR FROM order_purchase_timestamp) = 2018
GROUP BY months
`,
			db.SQLite: `
SELECT ` + sqliteDatePart(sqliteMonthName, "order_purchase_timestamp") + ` AS months, COUNT(order_id) AS order_count
FROM orders
WHERE ` + sqliteDatePart(sqliteYear, "order_purchase_timestamp") + ` = 2018
GROUP BY months
`,
		},
		present: presentMonthlyOrders,
	},
	{
		Name:        "avg_products_per_order",
		Description: "Average products per order by customer city",
		Columns:     []string{"Customer City", "Average Products/Order"},
		SQL: map[db.Dialect]string{
			db.MySQL: `
WITH count_per_order AS (
    SELECT orders.order_id, orders.customer_id, COUNT(order_items.order_id) AS oc
    FROM orders 
    JOIN order_items ON orders.order_id = order_items.order_id
    GROUP BY orders.order_id, orders.customer_id
)
SELECT customers.customer_city, ROUND(AVG(count_per_order.oc), 2) AS average_orders
FROM customers 
JOIN count_per_order ON customers.customer_id = count_per_order.customer_id
GROUP BY customers.customer_city
ORDER BY average_orders DESC
`,
			db.Postgres: `
WITH count_per_order AS (
    SELECT orders.order_id, orders.customer_id, COUNT(order_items.order_id) AS oc
    FROM orders
    JOIN order_items ON orders.order_id = order_items.order_id
    GROUP BY orders.order_id, orders.customer_id
)
SELECT customers.customer_city, ROUND(AVG(count_per_order.oc), 2) AS average_orders
FROM customers
JOIN count_per_order ON customers.customer_id = count_per_order.customer_id
GROUP BY customers.customer_city
ORDER BY average_orders DESC
`,
			db.SQLite: `
WITH count_per_order AS (
    SELECT orders.order_id, orders.customer_id, COUNT(order_items.order_id) AS oc
    FROM orders
    JOIN order_items ON orders.order_id = order_items.order_id
    GROUP BY orders.order_id, orders.customer_id
)
SELECT customers.customer_city, ROUND(AVG(count_per_order.oc), 2) AS average_orders
FROM customers
JOIN count_per_order ON customers.customer_id = count_per_order.customer_id
GROUP BY customers.customer_city
ORDER BY average_orders DESC
`,
		},
		present: printHead(10),
	},
	{
		Name:        "sales_share_by_category",
		Description: "Percentage of sales by product category",
		Columns:     []string{"Category", "Percentage Distribution"},
		SQL: map[db.Dialect]string{
			db.MySQL: `
SELECT UPPER(products.product_category) AS category, 
ROUND((SUM(payments.payment_value) / (SELECT SUM(payment_value) FROM payments)) * 100, 2) AS sales_percentage
FROM products 
JOIN order_items ON products.product_id = order_items.product_id
JOIN payments ON payments.order_id = order_items.order_id
GROUP BY category 
ORDER BY sales_percentage DESC
`,
			db.Postgres: `
SELECT UPPER(products.product_category) AS category,
ROUND((SUM(payments.payment_value) / (SELECT SUM(payment_value) FROM payments)) * 100, 2) AS sales_percentage
FROM products
JOIN order_items ON products.product_id = order_items.product_id
JOIN payments ON payments.order_id = order_items.order_id
GROUP BY category
ORDER BY sales_percentage DESC
`,
			db.SQLite: `
SELECT UPPER(products.product_category) AS category,
ROUND((SUM(payments.payment_value) * 1.0 / (SELECT SUM(payment_value) FROM payments)) * 100, 2) AS sales_percentage
FROM products
JOIN order_items ON products.product_id = order_items.product_id
JOIN payments ON payments.order_id = order_items.order_id
GROUP BY category
ORDER BY sales_percentage DESC
`,
		},
		present: printHead(5),
	},
	{
		Name:        "order_count_price",
		Description: "Correlation between order count and average price per category",
		Columns:     []string{"Category", "Order_Count", "Price"},
		SQL: map[db.Dialect]string{
			db.MySQL: `
SELECT products.product_category, COUNT(order_items.product_id) AS order_count,
ROUND(AVG(order_items.price), 2) AS price
FROM products 
JOIN order_items ON products.product_id = order_items.product_id
GROUP BY products.product_category
`,
			db.Postgres: `
SELECT products.product_category, COUNT(order_items.product_id) AS order_count,
ROUND(AVG(order_items.price), 2) AS price
FROM products
JOIN order_items ON products.product_id = order_items.product_id
GROUP BY products.product_category
`,
			db.SQLite: `
SELECT products.product_category, COUNT(order_items.product_id) AS order_count,
ROUND(AVG(order_items.price), 2) AS price
FROM products
JOIN order_items ON products.product_id = order_items.product_id
GROUP BY products.product_category
`,
		},
		present: presentCorrelation,
	},
	{
		Name:        "top_sellers",
		Description: "Sellers ranked by revenue",
		Columns:     []string{"Seller_ID", "Revenue", "Rank"},
		Chart:       ChartTopSellers,
		SQL: map[db.Dialect]string{
			db.MySQL: `
SELECT *, DENSE_RANK() OVER (ORDER BY revenue DESC) AS rn 
FROM (
    SELECT order_items.seller_id, SUM(payments.payment_value) AS revenue 
    FROM order_items 
    JOIN payments ON order_items.order_id = payments.order_id
    GROUP BY order_items.seller_id
) AS a
`,
			db.Postgres: `
SELECT *, DENSE_RANK() OVER (ORDER BY revenue DESC) AS rn
FROM (
    SELECT order_items.seller_id, SUM(payments.payment_value) AS revenue
    FROM order_items
    JOIN payments ON order_items.order_id = payments.order_id
    GROUP BY order_items.seller_id
) AS a
`,
			db.SQLite: `
SELECT *, DENSE_RANK() OVER (ORDER BY revenue DESC) AS rn
FROM (
    SELECT order_items.seller_id, SUM(payments.payment_value) AS revenue
    FROM order_items
    JOIN payments ON order_items.order_id = payments.order_id
    GROUP BY order_items.seller_id
) AS a
`,
		},
		present: presentTopSellers,
	},
	{
		Name:        "moving_average",
		Description: "Moving average of payment values per order",
		Columns:     []string{"Order_ID", "Order_Timestamp", "Payment", "Moving_Avg"},
		SQL: map[db.Dialect]string{
			db.MySQL: `
SELECT order_id,
       order_purchase_timestamp,
       pay,
       AVG(pay) OVER (
           PARTITION BY order_id
           ORDER BY order_purchase_timestamp
           ROWS BETWEEN 2 PRECEDING AND CURRENT ROW
       ) AS mov_avg
FROM (
    SELECT od.order_id, od.order_purchase_timestamp, py.payment_value AS pay
    FROM orders od
    INNER JOIN payments py ON od.order_id = py.order_id
) AS a
`,
			db.Postgres: `
SELECT order_id,
       order_purchase_timestamp,
       pay,
       AVG(pay) OVER (
           PARTITION BY order_id
           ORDER BY order_purchase_timestamp
           ROWS BETWEEN 2 PRECEDING AND CURRENT ROW
       ) AS mov_avg
FROM (
    SELECT od.order_id, od.order_purchase_timestamp, py.payment_value AS pay
    FROM orders od
    INNER JOIN payments py ON od.order_id = py.order_id
) AS a
`,
			db.SQLite: `
SELECT order_id,
       order_purchase_timestamp,
       pay,
       AVG(pay) OVER (
           PARTITION BY order_id
           ORDER BY order_purchase_timestamp
           ROWS BETWEEN 2 PRECEDING AND CURRENT ROW
       ) AS mov_avg
FROM (
    SELECT od.order_id, od.order_purchase_timestamp, py.payment_value AS pay
    FROM orders od
    INNER JOIN payments py ON od.order_id = py.order_id
) AS a
`,
		},
		present: printHead(10),
	},
	{
		Name:        "cumulative_sales",
		Description: "Cumulative sales per month for each year",
		Columns:     []string{"Year", "Month_Num", "Month", "Sales", "Cumulative_Sales"},
		Chart:       ChartCumulativeSales,
		SQL: map[db.Dialect]string{
			db.MySQL: `
SELECT *,
       ROUND(SUM(paym) OVER (ORDER BY years, months), 2) AS cumulative_sales
FROM (
    SELECT YEAR(od.order_purchase_timestamp) AS years,
           MONTH(od.order_purchase_timestamp) AS month_num,
           MONTHNAME(od.order_purchase_timestamp) AS months,
           ROUND(SUM(pay.payment_value), 2) AS paym
    FROM orders od
    INNER JOIN payments pay ON od.order_id = pay.order_id
    GROUP BY years, month_num, months
    ORDER BY years, month_num
) AS a
`,
			db.Postgres: `
SELECT *,
       ROUND(SUM(paym) OVER (ORDER BY years, months), 2) AS cumulative_sales
FROM (
    SELECT EXTRACT(YEAR FROM od.order_purchase_timestamp)::int AS years,
           EXTRACT(MONTH FROM od.order_purchase_timestamp)::int AS month_num,
           TO_CHAR(od.order_purchase_timestamp, 'FMMonth') AS months,
           ROUND(SUM(pay.payment_value), 2) AS paym
    FROM orders od
    INNER JOIN payments pay ON od.order_id = pay.order_id
    GROUP BY years, month_num, months
    ORDER BY years, month_num
) AS a
`,
			db.SQLite: `
SELECT *,
       ROUND(SUM(paym) OVER (ORDER BY years, months), 2) AS cumulative_sales
FROM (
    SELECT ` + sqliteDatePart(sqliteYear, "od.order_purchase_timestamp") + ` AS years,
           ` + sqliteDatePart(sqliteMonth, "od.order_purchase_timestamp") + ` AS month_num,
           ` + sqliteDatePart(sqliteMonthName, "od.order_purchase_timestamp") + ` AS months,
           ROUND(SUM(pay.payment_value), 2) AS paym
    FROM orders od
    INNER JOIN payments pay ON od.order_id = pay.order_id
    GROUP BY years, month_num, months
    ORDER BY years, month_num
) AS a
`,
		},
		present: presentCumulativeSales,
	},
	{
		Name:        "yoy_growth",
		Description: "Year-over-year growth rate of total sales",
		Columns:     []string{"Year", "Total_Sales", "Previous_Sale", "Growth_Percentage"},
		SQL: map[db.Dialect]string{
			db.MySQL: `
WITH a AS (
    SELECT YEAR(od.order_purchase_timestamp) AS years,
           ROUND(SUM(pay.payment_value), 3) AS total_sales
    FROM orders od
    INNER JOIN payments pay ON od.order_id = pay.order_id
    GROUP BY years
    ORDER BY years
)
SELECT *,
       LAG(total_sales, 1) OVER (ORDER BY years) AS previous_sale,
       ROUND(((total_sales - LAG(total_sales, 1) OVER (ORDER BY years)) 
             / LAG(total_sales, 1) OVER (ORDER BY years)) * 100, 3) AS percentage
FROM a
`,
			db.Postgres: `
WITH a AS (
    SELECT EXTRACT(YEAR FROM od.order_purchase_timestamp)::int AS years,
           ROUND(SUM(pay.payment_value), 3) AS total_sales
    FROM orders od
    INNER JOIN payments pay ON od.order_id = pay.order_id
    GROUP BY years
    ORDER BY years
)
SELECT *,
       LAG(total_sales, 1) OVER (ORDER BY years) AS previous_sale,
       ROUND(((total_sales - LAG(total_sales, 1) OVER (ORDER BY years))
             / LAG(total_sales, 1) OVER (ORDER BY years)) * 100, 3) AS percentage
FROM a
`,
			db.SQLite: `
WITH a AS (
    SELECT ` + sqliteDatePart(sqliteYear, "od.order_purchase_timestamp") + ` AS years,
           ROUND(SUM(pay.payment_value), 3) AS total_sales
    FROM orders od
    INNER JOIN payments pay ON od.order_id = pay.order_id
    GROUP BY years
    ORDER BY years
)
SELECT *,
       LAG(total_sales, 1) OVER (ORDER BY years) AS previous_sale,
       ROUND(((total_sales - LAG(total_sales, 1) OVER (ORDER BY years))
             / LAG(total_sales, 1) OVER (ORDER BY years)) * 100, 3) AS percentage
FROM a
`,
		},
		present: printAll(),
	},
	{
		Name:        "top_customers_by_year",
		Description: "Top 3 customers by money spent in each year",
		Columns:     []string{"Year", "Customer_ID", "Money_Spent", "Rank"},
		SQL: map[db.Dialect]string{
			db.MySQL: `
WITH ranked AS (
    SELECT 
        YEAR(od.order_purchase_timestamp) AS years,
        od.customer_id,
        ROUND(SUM(pay.payment_value), 2) AS money_spent,
        DENSE_RANK() OVER (
            PARTITION BY YEAR(od.order_purchase_timestamp)
            ORDER BY SUM(pay.payment_value) DESC
        ) AS d_rank
    FROM orders od
    INNER JOIN payments pay 
        ON od.order_id = pay.order_id
    GROUP BY YEAR(od.order_purchase_timestamp), od.customer_id
)
SELECT *
FROM ranked
WHERE d_rank <= 3
ORDER BY years, d_rank, money_spent DESC
`,
			db.Postgres: `
WITH ranked AS (
    SELECT
        EXTRACT(YEAR FROM od.order_purchase_timestamp)::int AS years,
        od.customer_id,
        ROUND(SUM(pay.payment_value), 2) AS money_spent,
        DENSE_RANK() OVER (
            PARTITION BY EXTRACT(YEAR FROM od.order_purchase_timestamp)::int
            ORDER BY SUM(pay.payment_value) DESC
        ) AS d_rank
    FROM orders od
    INNER JOIN payments pay
        ON od.order_id = pay.order_id
    GROUP BY EXTRACT(YEAR FROM od.order_purchase_timestamp)::int, od.customer_id
)
SELECT *
FROM ranked
WHERE d_rank <= 3
ORDER BY years, d_rank, money_spent DESC
`,
			db.SQLite: `
WITH ranked AS (
    SELECT
        ` + sqliteDatePart(sqliteYear, "od.order_purchase_timestamp") + ` AS years,
        od.customer_id,
        ROUND(SUM(pay.payment_value), 2) AS money_spent,
        DENSE_RANK() OVER (
            PARTITION BY ` + sqliteDatePart(sqliteYear, "od.order_purchase_timestamp") + `
            ORDER BY SUM(pay.payment_value) DESC
        ) AS d_rank
    FROM orders od
    INNER JOIN payments pay
        ON od.order_id = pay.order_id
    GROUP BY ` + sqliteDatePart(sqliteYear, "od.order_purchase_timestamp") + `, od.customer_id
)
SELECT *
FROM ranked
WHERE d_rank <= 3
ORDER BY years, d_rank, money_spent DESC
`,
		},
		present: printHead(15),
	},
}
