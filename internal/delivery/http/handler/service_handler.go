package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"cleanhome-backend/internal/delivery/dto"
	"cleanhome-backend/internal/delivery/http/middleware"
	"cleanhome-backend/internal/usecase"
	"cleanhome-backend/pkg/response"
	"cleanhome-backend/pkg/validator"
)

type ServiceHandler struct {
	serviceUsecase usecase.ServiceUsecase
	validator      *validator.CustomValidator
}

func NewServiceHandler(serviceUsecase usecase.ServiceUsecase, validator *validator.CustomValidator) *ServiceHandler {
	return &ServiceHandler{
		serviceUsecase: serviceUsecase,
		validator:      validator,
	}
}

// ListServices handles the public catalogue
// @Summary List active services
// @Tags Services
// @Produce json
// @Success 200 {object} response.Response
// @Router /services [get]
func (h *ServiceHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.serviceUsecase.ListActiveServices(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get services")
		return
	}

	response.Success(w, http.StatusOK, "Services retrieved successfully", services)
}

// @Summary Create a service
// @Tags Admin
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateServiceRequest true "Create Service Request"
// @Success 201 {object} response.Response
// @Router /admin/services [post]
func (h *ServiceHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "Invalid token")
		return
	}

	var req dto.CreateServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	service, err := h.serviceUsecase.CreateService(r.Context(), actor, &req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidServicePrice):
			response.BadRequest(w, err.Error())
		case errors.Is(err, usecase.ErrForbidden):
			response.Forbidden(w, "")
		default:
			response.InternalServerError(w, "Failed to create service")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Service created successfully", service)
}
