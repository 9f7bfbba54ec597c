package report

import (
	"errors"
	"time"
)

// DateLayout is the accepted format for report range bounds.
const DateLayout = "2006-01-02"

// MaxRange bounds the span of a single report request.
const MaxRange = 366 * 24 * time.Hour

var (
	ErrInvalidRange  = errors.New("report range end is before start")
	ErrRangeTooLarge = errors.New("report range exceeds one year")
)

type DailySales struct {
	Day   time.Time `json:"day" db:"day"`
	Count int       `json:"count" db:"count"`
	Total float64   `json:"total" db:"total"`
}

type SalesReport struct {
	CompanyID string       `json:"company_id"`
	From      time.Time    `json:"from"`
	To        time.Time    `json:"to"`
	Days      []DailySales `json:"days"`
	Count     int          `json:"count"`
	Total     float64      `json:"total"`
}

// ValidateRange checks that [from, to] is ordered and not too wide.
func ValidateRange(from, to time.Time) error {
	if to.Before(from) {
		return ErrInvalidRange
	}
	if to.Sub(from) > MaxRange {
		return ErrRangeTooLarge
	}
	return nil
}

// NewSalesReport totals the given days.
func NewSalesReport(companyID string, from, to time.Time, days []DailySales) *SalesReport {
	r := &SalesReport{CompanyID: companyID, From: from, To: to, Days: days}
	if r.Days == nil {
		r.Days = []DailySales{}
	}
	for _, d := range days {
		r.Count += d.Count
		r.Total += d.Total
	}
	return r
}
