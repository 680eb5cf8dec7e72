package attendance

import (
	"math"
	"time"

	"github.com/albamate/albamate-backend/internal/pkg/validator"
)

// ========================================
// ATTENDANCE DTOs
// ========================================

type CheckInRequest struct {
	EmployeeID string   `json:"employee_id" validate:"required"`
	StoreID    string   `json:"store_id" validate:"required"`
	Latitude   *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude  *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
}

func (r *CheckInRequest) Validate() error {
	return validator.Struct(r)
}

type CheckOutRequest struct {
	EmployeeID string   `json:"employee_id" validate:"required"`
	StoreID    string   `json:"store_id" validate:"required"`
	Latitude   *float64 `json:"latitude,omitempty" validate:"omitempty,gte=-90,lte=90"`
	Longitude  *float64 `json:"longitude,omitempty" validate:"omitempty,gte=-180,lte=180"`
}

func (r *CheckOutRequest) Validate() error {
	return validator.Struct(r)
}

// ManualAttendanceRequest is filled by a store master. RegisteredBy comes from
// the authenticated caller, never from the payload.
type ManualAttendanceRequest struct {
	EmployeeID   string     `json:"employee_id" validate:"required"`
	StoreID      string     `json:"store_id" validate:"required"`
	RegisteredBy string     `json:"-"`
	CheckInTime  time.Time  `json:"check_in_time" validate:"required"`
	CheckOutTime *time.Time `json:"check_out_time,omitempty"`
}

func (r *ManualAttendanceRequest) Validate() error {
	err := validator.Struct(r)
	if err != nil {
		return err
	}

	if r.CheckOutTime != nil && !r.CheckOutTime.After(r.CheckInTime) {
		return validator.Field("check_out_time", "must be after check_in_time")
	}
	return nil
}

type AttendanceResponse struct {
	ID                string   `json:"id"`
	EmployeeID        string   `json:"employee_id"`
	StoreID           string   `json:"store_id"`
	WorkDate          string   `json:"work_date"`
	State             State    `json:"state"`
	CheckInTime       string   `json:"check_in_time"`
	CheckOutTime      *string  `json:"check_out_time,omitempty"`
	CheckInLatitude   *float64 `json:"check_in_latitude,omitempty"`
	CheckInLongitude  *float64 `json:"check_in_longitude,omitempty"`
	CheckOutLatitude  *float64 `json:"check_out_latitude,omitempty"`
	CheckOutLongitude *float64 `json:"check_out_longitude,omitempty"`
	LocationVerified  bool     `json:"location_verified"`
	AppliedHourlyWage int64    `json:"applied_hourly_wage"`
	WorkingHours      *float64 `json:"working_hours,omitempty"`
	RegisteredBy      *string  `json:"registered_by,omitempty"`
	CreatedAt         string   `json:"created_at"`
	UpdatedAt         string   `json:"updated_at"`
}

// NewAttendanceResponse renders a record; instants are RFC3339 in loc.
func NewAttendanceResponse(a Attendance, loc *time.Location) AttendanceResponse {
	resp := AttendanceResponse{
		ID:                a.ID,
		EmployeeID:        a.EmployeeID,
		StoreID:           a.StoreID,
		WorkDate:          a.WorkDate.Format("2006-01-02"),
		State:             StateOf(&a),
		CheckInTime:       a.CheckInTime.In(loc).Format(time.RFC3339),
		CheckInLatitude:   a.CheckInLatitude,
		CheckInLongitude:  a.CheckInLongitude,
		CheckOutLatitude:  a.CheckOutLatitude,
		CheckOutLongitude: a.CheckOutLongitude,
		LocationVerified:  a.LocationVerified,
		AppliedHourlyWage: a.AppliedHourlyWage,
		RegisteredBy:      a.RegisteredBy,
		CreatedAt:         a.CreatedAt.In(loc).Format(time.RFC3339),
		UpdatedAt:         a.UpdatedAt.In(loc).Format(time.RFC3339),
	}
	if a.CheckOutTime != nil {
		out := a.CheckOutTime.In(loc).Format(time.RFC3339)
		resp.CheckOutTime = &out
	}
	if h := a.WorkingHours(); h != nil {
		rounded := math.Round(*h*100) / 100
		resp.WorkingHours = &rounded
	}
	return resp
}

type AttendanceFilter struct {
	EmployeeID *string `json:"employee_id,omitempty"`
	StoreID    *string `json:"store_id,omitempty"`
	StartDate  *string `json:"start_date,omitempty"` // YYYY-MM-DD
	EndDate    *string `json:"end_date,omitempty"`   // YYYY-MM-DD
	State      *string `json:"state,omitempty" validate:"omitempty,oneof=OPEN CLOSED"`

	// Pagination
	Page  int `json:"page" validate:"gte=0"`
	Limit int `json:"limit" validate:"gte=0,lte=100"`
}

func (f *AttendanceFilter) Validate() error {
	var errs validator.ValidationErrors

	if err := validator.Struct(f); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		errs = append(errs, verrs...)
	}

	if f.Page == 0 {
		f.Page = 1 // Default page
	}
	if f.Limit == 0 {
		f.Limit = 20 // Default limit
	}

	if f.StartDate != nil && *f.StartDate != "" {
		if _, valid := validator.IsValidDate(*f.StartDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "start_date",
				Message: "start_date must be in YYYY-MM-DD format",
			})
		}
	}

	if f.EndDate != nil && *f.EndDate != "" {
		if _, valid := validator.IsValidDate(*f.EndDate); !valid {
			errs = append(errs, validator.ValidationError{
				Field:   "end_date",
				Message: "end_date must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type ListAttendanceResponse struct {
	TotalCount  int64                `json:"total_count"`
	Page        int                  `json:"page"`
	Limit       int                  `json:"limit"`
	TotalPages  int                  `json:"total_pages"`
	Attendances []AttendanceResponse `json:"attendances"`
}
