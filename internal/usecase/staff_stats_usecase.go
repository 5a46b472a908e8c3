package usecase

import (
	"context"

	"cleanhome-backend/internal/converter"
	"cleanhome-backend/internal/delivery/dto"
	"cleanhome-backend/internal/domain/entity"
	"cleanhome-backend/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type StaffStatsUsecase interface {
	Aggregate(ctx context.Context, actor entity.Actor, staffID uuid.UUID) (*dto.StaffStatsResponse, error)
	ListStaff(ctx context.Context, actor entity.Actor) (*dto.StaffListResponse, error)
}

type staffStatsUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	userRepo        repository.UserRepository
	bookingRepo     repository.BookingRepository
	bookingItemRepo repository.BookingItemRepository
	assignmentRepo  repository.StaffAssignmentRepository
}

func NewStaffStatsUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	bookingRepo repository.BookingRepository,
	bookingItemRepo repository.BookingItemRepository,
	assignmentRepo repository.StaffAssignmentRepository,
) StaffStatsUsecase {
	return &staffStatsUsecase{
		db:              db,
		log:             log,
		userRepo:        userRepo,
		bookingRepo:     bookingRepo,
		bookingItemRepo: bookingItemRepo,
		assignmentRepo:  assignmentRepo,
	}
}

func (u *staffStatsUsecase) Aggregate(ctx context.Context, actor entity.Actor, staffID uuid.UUID) (*dto.StaffStatsResponse, error) {
	if !actor.CanViewStaffStats(staffID) {
		return nil, ErrForbidden
	}
	return u.aggregate(ctx, staffID)
}

// aggregate merges the legacy bookings.staff_id links with the booking_staff
// table. A booking linked both ways counts once.
func (u *staffStatsUsecase) aggregate(ctx context.Context, staffID uuid.UUID) (*dto.StaffStatsResponse, error) {
	var legacyIDs, tableIDs []uuid.UUID

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ids, err := u.bookingRepo.FindIDsByStaffID(u.db.WithContext(gctx), staffID)
		if err != nil {
			return err
		}
		legacyIDs = ids
		return nil
	})
	g.Go(func() error {
		ids, err := u.assignmentRepo.FindBookingIDsByStaffID(u.db.WithContext(gctx), staffID)
		if err != nil {
			return err
		}
		tableIDs = ids
		return nil
	})
	if err := g.Wait(); err != nil {
		u.log.Warnf("Failed to collect bookings for staff %s: %+v", staffID, err)
		return nil, err
	}

	stats := &dto.StaffStatsResponse{
		StaffID:          staffID,
		AssignedServices: []string{},
	}

	bookingIDs := entity.UnionBookingIDs(legacyIDs, tableIDs)
	if len(bookingIDs) == 0 {
		return stats, nil
	}
	stats.TotalBookings = len(bookingIDs)

	db := u.db.WithContext(ctx)

	completed, err := u.bookingRepo.CountByIDsAndStatus(db, bookingIDs, entity.BookingStatusCompleted)
	if err != nil {
		u.log.Warnf("Failed to count completed bookings for staff %s: %+v", staffID, err)
		return nil, err
	}
	stats.CompletedBookings = completed

	names, err := u.bookingItemRepo.FindServiceNamesByBookingIDs(db, bookingIDs)
	if err != nil {
		u.log.Warnf("Failed to find services for staff %s: %+v", staffID, err)
		return nil, err
	}
	if names != nil {
		stats.AssignedServices = names
	}

	return stats, nil
}

func (u *staffStatsUsecase) ListStaff(ctx context.Context, actor entity.Actor) (*dto.StaffListResponse, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}

	staff, err := u.userRepo.FindByRole(u.db.WithContext(ctx), entity.RoleIDStaff)
	if err != nil {
		u.log.Warnf("Failed to find staff: %+v", err)
		return nil, err
	}

	summaries := make([]dto.StaffSummaryResponse, 0, len(staff))
	for i := range staff {
		stats, err := u.aggregate(ctx, staff[i].ID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, dto.StaffSummaryResponse{
			User:  *converter.UserToResponse(&staff[i]),
			Stats: *stats,
		})
	}

	return &dto.StaffListResponse{
		Staff: summaries,
		Total: len(summaries),
	}, nil
}
