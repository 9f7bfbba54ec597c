package dashboard

import "time"

// Summary holds the per-company aggregates shown on the dashboard.
type Summary struct {
	CompanyID        string    `json:"company_id" db:"company_id"`
	SalesCount       int       `json:"sales_count" db:"sales_count"`
	SalesTotal       float64   `json:"sales_total" db:"sales_total"`
	OpenInvoices     int       `json:"open_invoices" db:"open_invoices"`
	LowStockProducts int       `json:"low_stock_products" db:"low_stock_products"`
	GeneratedAt      time.Time `json:"generated_at" db:"generated_at"`
}
