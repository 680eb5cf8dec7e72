package attendance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/albamate/albamate-backend/internal/domain/attendance"
	"github.com/albamate/albamate-backend/internal/domain/employee"
	"github.com/albamate/albamate-backend/internal/domain/store"
	"github.com/albamate/albamate-backend/internal/domain/user"
	"github.com/albamate/albamate-backend/internal/pkg/apperror"
	"github.com/albamate/albamate-backend/internal/pkg/database"
	"github.com/albamate/albamate-backend/internal/pkg/geo"
	"github.com/albamate/albamate-backend/internal/pkg/lock"
)

// checkInLockTTL bounds how long a crashed request can block the same employee-day.
const checkInLockTTL = 10 * time.Second

type AttendanceServiceImpl struct {
	db database.Transactor
	attendance.AttendanceRepository
	employee.EmployeeRepository
	employee.WageAssignmentRepository
	store.StoreRepository
	user.AuthorizationChecker
	locker lock.Locker
	loc    *time.Location
	now    func() time.Time
}

func NewAttendanceService(
	db database.Transactor,
	attendanceRepo attendance.AttendanceRepository,
	employeeRepo employee.EmployeeRepository,
	wageRepo employee.WageAssignmentRepository,
	storeRepo store.StoreRepository,
	authz user.AuthorizationChecker,
	locker lock.Locker,
	loc *time.Location,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		db:                       db,
		AttendanceRepository:     attendanceRepo,
		EmployeeRepository:       employeeRepo,
		WageAssignmentRepository: wageRepo,
		StoreRepository:          storeRepo,
		AuthorizationChecker:     authz,
		locker:                   locker,
		loc:                      loc,
		now:                      time.Now,
	}
}

func checkInLockKey(employeeID string, workDate time.Time) string {
	return fmt.Sprintf("attendance:checkin:%s:%s", employeeID, workDate.Format("2006-01-02"))
}

// CheckIn implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckIn(ctx context.Context, req attendance.CheckInRequest) (attendance.AttendanceResponse, error) {
	return s.checkIn(ctx, req, false)
}

// CheckInWithVerification implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckInWithVerification(ctx context.Context, req attendance.CheckInRequest) (attendance.AttendanceResponse, error) {
	return s.checkIn(ctx, req, true)
}

func (s *AttendanceServiceImpl) checkIn(ctx context.Context, req attendance.CheckInRequest, verify bool) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if err := s.ensureEmployee(ctx, req.EmployeeID); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	location, err := s.StoreRepository.GetLocation(ctx, req.StoreID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	point := geo.NewCoordinate(req.Latitude, req.Longitude)
	if verify {
		if err := verifyLocation(location, point); err != nil {
			slog.Warn("check-in rejected by geofence",
				"employee_id", req.EmployeeID,
				"store_id", req.StoreID,
			)
			return attendance.AttendanceResponse{}, err
		}
	}

	nowUTC := s.now().UTC()
	workDate := attendance.WorkDateOf(nowUTC, s.loc)

	release, err := s.locker.Obtain(ctx, checkInLockKey(req.EmployeeID, workDate), checkInLockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrNotObtained) {
			return attendance.AttendanceResponse{}, apperror.Detail(attendance.ErrAlreadyCheckedIn, "a check-in for today is already in progress")
		}
		return attendance.AttendanceResponse{}, err
	}
	defer release()

	wage, err := s.WageAssignmentRepository.GetHourlyWage(ctx, req.EmployeeID, req.StoreID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	record := attendance.Attendance{
		EmployeeID:        req.EmployeeID,
		StoreID:           req.StoreID,
		WorkDate:          workDate,
		CheckInTime:       nowUTC,
		CheckInLatitude:   req.Latitude,
		CheckInLongitude:  req.Longitude,
		LocationVerified:  verify,
		AppliedHourlyWage: wage,
	}

	var created attendance.Attendance
	err = s.db.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.ensureNoRecordToday(txCtx, req.EmployeeID, workDate); err != nil {
			return err
		}

		open, err := s.AttendanceRepository.GetOpenRecord(txCtx, req.EmployeeID)
		if err != nil {
			return fmt.Errorf("failed to get open attendance: %w", err)
		}
		if open != nil {
			return apperror.Detail(attendance.ErrAlreadyCheckedIn, "you still have an open attendance, check out first")
		}

		created, err = s.create(txCtx, record)
		return err
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	slog.Info("employee checked in",
		"attendance_id", created.ID,
		"employee_id", created.EmployeeID,
		"store_id", created.StoreID,
		"location_verified", created.LocationVerified,
	)

	return attendance.NewAttendanceResponse(created, s.loc), nil
}

// CheckOut implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckOut(ctx context.Context, req attendance.CheckOutRequest) (attendance.AttendanceResponse, error) {
	return s.checkOut(ctx, req, false)
}

// CheckOutWithVerification implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) CheckOutWithVerification(ctx context.Context, req attendance.CheckOutRequest) (attendance.AttendanceResponse, error) {
	return s.checkOut(ctx, req, true)
}

func (s *AttendanceServiceImpl) checkOut(ctx context.Context, req attendance.CheckOutRequest, verify bool) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	location, err := s.StoreRepository.GetLocation(ctx, req.StoreID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	point := geo.NewCoordinate(req.Latitude, req.Longitude)
	if verify {
		if err := verifyLocation(location, point); err != nil {
			slog.Warn("check-out rejected by geofence",
				"employee_id", req.EmployeeID,
				"store_id", req.StoreID,
			)
			return attendance.AttendanceResponse{}, err
		}
	}

	nowUTC := s.now().UTC()

	var closed attendance.Attendance
	err = s.db.WithinTransaction(ctx, func(txCtx context.Context) error {
		// The most recent open record, which may have started yesterday for a night shift
		open, err := s.AttendanceRepository.GetOpenRecord(txCtx, req.EmployeeID)
		if err != nil {
			return fmt.Errorf("failed to get open attendance: %w", err)
		}

		if open == nil {
			today, err := s.AttendanceRepository.GetByEmployeeAndDate(txCtx, req.EmployeeID, attendance.WorkDateOf(nowUTC, s.loc))
			if err != nil {
				return fmt.Errorf("failed to get today's attendance: %w", err)
			}
			if today != nil {
				return attendance.ErrAlreadyCheckedOut
			}
			return attendance.ErrNotCheckedIn
		}

		if open.StoreID != req.StoreID {
			return apperror.Detail(attendance.ErrNotCheckedIn, "you are not checked in at this store")
		}
		if !nowUTC.After(open.CheckInTime) {
			return attendance.ErrInvalidAttendanceTime
		}

		open.CheckOutTime = &nowUTC
		open.CheckOutLatitude = req.Latitude
		open.CheckOutLongitude = req.Longitude
		open.UpdatedAt = nowUTC

		if err := s.AttendanceRepository.Update(txCtx, *open); err != nil {
			return fmt.Errorf("failed to update attendance: %w", err)
		}
		closed = *open
		return nil
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	slog.Info("employee checked out",
		"attendance_id", closed.ID,
		"employee_id", closed.EmployeeID,
		"store_id", closed.StoreID,
		"worked_minutes", closed.WorkedMinutes(),
	)

	return attendance.NewAttendanceResponse(closed, s.loc), nil
}

// RegisterManualAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) RegisterManualAttendance(ctx context.Context, req attendance.ManualAttendanceRequest) (attendance.AttendanceResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if req.RegisteredBy == "" {
		return attendance.AttendanceResponse{}, user.ErrUserIDRequired
	}

	isMaster, err := s.AuthorizationChecker.IsStoreMaster(ctx, req.RegisteredBy, req.StoreID)
	if err != nil {
		return attendance.AttendanceResponse{}, fmt.Errorf("failed to check store authority: %w", err)
	}
	if !isMaster {
		slog.Warn("manual attendance rejected, caller is not store master",
			"user_id", req.RegisteredBy,
			"store_id", req.StoreID,
		)
		return attendance.AttendanceResponse{}, user.ErrStoreMasterRequired
	}

	if err := s.ensureEmployee(ctx, req.EmployeeID); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	if _, err := s.StoreRepository.GetLocation(ctx, req.StoreID); err != nil {
		return attendance.AttendanceResponse{}, err
	}

	checkIn := req.CheckInTime.UTC()
	workDate := attendance.WorkDateOf(checkIn, s.loc)

	release, err := s.locker.Obtain(ctx, checkInLockKey(req.EmployeeID, workDate), checkInLockTTL)
	if err != nil {
		if errors.Is(err, lock.ErrNotObtained) {
			return attendance.AttendanceResponse{}, apperror.Detail(attendance.ErrAlreadyCheckedIn, "a check-in for this day is already in progress")
		}
		return attendance.AttendanceResponse{}, err
	}
	defer release()

	wage, err := s.WageAssignmentRepository.GetHourlyWage(ctx, req.EmployeeID, req.StoreID)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	registeredBy := req.RegisteredBy
	record := attendance.Attendance{
		EmployeeID:        req.EmployeeID,
		StoreID:           req.StoreID,
		WorkDate:          workDate,
		CheckInTime:       checkIn,
		AppliedHourlyWage: wage,
		RegisteredBy:      &registeredBy,
	}
	if req.CheckOutTime != nil {
		checkOut := req.CheckOutTime.UTC()
		record.CheckOutTime = &checkOut
	}

	var created attendance.Attendance
	err = s.db.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := s.ensureNoRecordToday(txCtx, req.EmployeeID, workDate); err != nil {
			return err
		}

		// An open record runs until now, so a manual record may only end before it began.
		open, err := s.AttendanceRepository.GetOpenRecord(txCtx, req.EmployeeID)
		if err != nil {
			return fmt.Errorf("failed to get open attendance: %w", err)
		}
		if open != nil && (record.CheckOutTime == nil || record.CheckOutTime.After(open.CheckInTime)) {
			return apperror.Detail(attendance.ErrAlreadyCheckedIn,
				fmt.Sprintf("employee still has an open attendance %s from %s", open.ID, open.CheckInTime.In(s.loc).Format(time.RFC3339)))
		}

		created, err = s.create(txCtx, record)
		return err
	})
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}

	slog.Info("manual attendance registered",
		"attendance_id", created.ID,
		"employee_id", created.EmployeeID,
		"store_id", created.StoreID,
		"registered_by", registeredBy,
	)

	return attendance.NewAttendanceResponse(created, s.loc), nil
}

// GetAttendance implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) GetAttendance(ctx context.Context, id string) (attendance.AttendanceResponse, error) {
	record, err := s.AttendanceRepository.GetByID(ctx, id)
	if err != nil {
		return attendance.AttendanceResponse{}, err
	}
	return attendance.NewAttendanceResponse(record, s.loc), nil
}

// ListAttendances implements attendance.AttendanceService.
func (s *AttendanceServiceImpl) ListAttendances(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListAttendanceResponse{}, err
	}

	records, total, err := s.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance: %w", err)
	}

	responses := make([]attendance.AttendanceResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, attendance.NewAttendanceResponse(record, s.loc))
	}

	totalPages := int(total) / filter.Limit
	if int(total)%filter.Limit != 0 {
		totalPages++
	}

	return attendance.ListAttendanceResponse{
		TotalCount:  total,
		Page:        filter.Page,
		Limit:       filter.Limit,
		TotalPages:  totalPages,
		Attendances: responses,
	}, nil
}

func (s *AttendanceServiceImpl) ensureEmployee(ctx context.Context, employeeID string) error {
	exists, err := s.EmployeeRepository.Exists(ctx, employeeID)
	if err != nil {
		return fmt.Errorf("failed to check employee: %w", err)
	}
	if !exists {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

func (s *AttendanceServiceImpl) ensureNoRecordToday(ctx context.Context, employeeID string, workDate time.Time) error {
	existing, err := s.AttendanceRepository.GetByEmployeeAndDate(ctx, employeeID, workDate)
	if err != nil {
		return fmt.Errorf("failed to get attendance for %s: %w", workDate.Format("2006-01-02"), err)
	}
	if existing != nil {
		return attendance.ErrAlreadyCheckedIn
	}
	return nil
}

func (s *AttendanceServiceImpl) create(ctx context.Context, record attendance.Attendance) (attendance.Attendance, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return attendance.Attendance{}, fmt.Errorf("failed to generate attendance id: %w", err)
	}
	record.ID = id.String()
	record.CreatedAt = s.now().UTC()
	record.UpdatedAt = record.CreatedAt

	created, err := s.AttendanceRepository.Create(ctx, record)
	if err != nil {
		if errors.Is(err, attendance.ErrAlreadyCheckedIn) {
			return attendance.Attendance{}, err
		}
		return attendance.Attendance{}, fmt.Errorf("failed to create attendance: %w", err)
	}
	return created, nil
}

func verifyLocation(location store.StoreLocation, point *geo.Coordinate) error {
	if point == nil {
		return apperror.Detail(attendance.ErrOutOfRange, "location is required to verify attendance")
	}
	if !location.Contains(point) {
		return attendance.ErrOutOfRange
	}
	return nil
}
