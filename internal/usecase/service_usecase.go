package usecase

import (
	"context"
	"errors"

	"cleanhome-backend/internal/converter"
	"cleanhome-backend/internal/delivery/dto"
	"cleanhome-backend/internal/domain/entity"
	"cleanhome-backend/internal/domain/repository"
	"cleanhome-backend/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrServiceNotFound     = errors.New("service not found")
	ErrInvalidServicePrice = errors.New("service price must be positive")
)

type ServiceUsecase interface {
	ListActiveServices(ctx context.Context) (*dto.ServiceListResponse, error)
	GetService(ctx context.Context, id uuid.UUID) (*dto.ServiceResponse, error)
	CreateService(ctx context.Context, actor entity.Actor, req *dto.CreateServiceRequest) (*dto.ServiceResponse, error)
}

type serviceUsecase struct {
	db           *gorm.DB
	log          *logrus.Logger
	serviceRepo  repository.ServiceRepository
	auditService service.AuditService
}

func NewServiceUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	serviceRepo repository.ServiceRepository,
	auditService service.AuditService,
) ServiceUsecase {
	return &serviceUsecase{
		db:           db,
		log:          log,
		serviceRepo:  serviceRepo,
		auditService: auditService,
	}
}

func (u *serviceUsecase) ListActiveServices(ctx context.Context) (*dto.ServiceListResponse, error) {
	services, err := u.serviceRepo.FindActive(u.db.WithContext(ctx))
	if err != nil {
		u.log.Warnf("Failed to find active services: %+v", err)
		return nil, err
	}

	return &dto.ServiceListResponse{
		Services: converter.ServicesToResponses(services),
	}, nil
}

func (u *serviceUsecase) GetService(ctx context.Context, id uuid.UUID) (*dto.ServiceResponse, error) {
	svc, err := u.serviceRepo.FindByID(u.db.WithContext(ctx), id)
	if err != nil {
		u.log.Warnf("Failed to find service %s: %+v", id, err)
		return nil, err
	}
	if svc == nil {
		return nil, ErrServiceNotFound
	}

	resp := converter.ServiceToResponse(svc)
	return &resp, nil
}

func (u *serviceUsecase) CreateService(ctx context.Context, actor entity.Actor, req *dto.CreateServiceRequest) (*dto.ServiceResponse, error) {
	if !actor.IsAdmin() {
		return nil, ErrForbidden
	}
	if !req.Price.IsPositive() {
		return nil, ErrInvalidServicePrice
	}

	duration := req.DurationMinutes
	if duration == 0 {
		duration = 60
	}

	svc := &entity.Service{
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		DurationMinutes: duration,
		Status:          entity.ServiceStatusActive,
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.serviceRepo.Create(tx, svc); err != nil {
		u.log.Warnf("Failed to create service: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, &actor.UserID, entity.AuditActionServiceCreate, "service", svc.ID.String(), map[string]interface{}{
		"name":  svc.Name,
		"price": svc.Price.String(),
	}); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed commit transaction: %+v", err)
		return nil, err
	}

	resp := converter.ServiceToResponse(svc)
	return &resp, nil
}
