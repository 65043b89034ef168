package models

// ChartPoint is one bar of the daily reservations chart
type ChartPoint struct {
	Date  string `json:"date"` // YYYY-MM-DD format
	Value int    `json:"value"`
}
