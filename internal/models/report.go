package models

// ClassTotals is one row of the grouped per-class sum for a single day.
type ClassTotals struct {
	ClassName string `db:"class_name"`
	Paid      int64  `db:"paid"`
	Free      int64  `db:"free"`
}

// DayTotals is one row of the grouped per-day sum over a date range.
type DayTotals struct {
	Date Date  `db:"voucher_date"`
	Paid int64 `db:"paid"`
	Free int64 `db:"free"`
}

type DailyRow struct {
	ClassName string `json:"class_name"`
	PaidCount int64  `json:"paid_count"`
	FreeCount int64  `json:"free_count"`
	Total     int64  `json:"total"`
}

type DailySummary struct {
	TotalPaid int64 `json:"total_paid"`
	TotalFree int64 `json:"total_free"`
	TotalAll  int64 `json:"total_all"`
}

// DailyReport lists classes that submitted on Date, ordered by class name.
type DailyReport struct {
	Date    Date         `json:"date"`
	Rows    []DailyRow   `json:"rows"`
	Summary DailySummary `json:"summary"`
}

type WeekDay struct {
	Date      Date  `json:"date"`
	TotalPaid int64 `json:"total_paid"`
	TotalFree int64 `json:"total_free"`
	TotalAll  int64 `json:"total_all"`
}

// WeeklyReport always holds exactly seven days, StartDate through EndDate.
type WeeklyReport struct {
	StartDate      Date      `json:"start_date"`
	EndDate        Date      `json:"end_date"`
	Days           []WeekDay `json:"days"`
	GrandTotalPaid int64     `json:"grand_total_paid"`
	GrandTotalFree int64     `json:"grand_total_free"`
	GrandTotalAll  int64     `json:"grand_total_all"`
}
