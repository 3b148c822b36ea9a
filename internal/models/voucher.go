package models

// NoClassName is stored when a teacher submits without a class assigned.
const NoClassName = "N/A"

// Voucher is one teacher's meal count for one day.
type Voucher struct {
	ID        int64  `db:"id"`
	Date      Date   `db:"voucher_date"`
	PaidCount int64  `db:"paid_count"`
	FreeCount int64  `db:"free_count"`
	ClassName string `db:"class_name"`
	TeacherID int64  `db:"teacher_id"`
}

func (v *Voucher) Total() int64 {
	return v.PaidCount + v.FreeCount
}

func (v *Voucher) Out() VoucherOut {
	return VoucherOut{
		ID:        v.ID,
		Date:      v.Date,
		ClassName: v.ClassName,
		PaidCount: v.PaidCount,
		FreeCount: v.FreeCount,
		Total:     v.Total(),
	}
}

type VoucherOut struct {
	ID        int64  `json:"id"`
	Date      Date   `json:"date"`
	ClassName string `json:"class_name"`
	PaidCount int64  `json:"paid_count"`
	FreeCount int64  `json:"free_count"`
	Total     int64  `json:"total"`
}

// SubmitVoucherInput represents the teacher's daily submission. A missing
// date means today; both counts are required and zero is a valid count.
type SubmitVoucherInput struct {
	Date      *Date  `json:"date"`
	PaidCount *int64 `json:"paid_count" binding:"required,min=0"`
	FreeCount *int64 `json:"free_count" binding:"required,min=0"`
}
