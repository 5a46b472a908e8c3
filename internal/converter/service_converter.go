package converter

import (
	"cleanhome-backend/internal/delivery/dto"
	"cleanhome-backend/internal/domain/entity"
)

func ServiceToResponse(service *entity.Service) dto.ServiceResponse {
	return dto.ServiceResponse{
		ID:              service.ID,
		Name:            service.Name,
		Description:     service.Description,
		Price:           service.Price,
		DurationMinutes: service.DurationMinutes,
		Status:          string(service.Status),
		CreatedAt:       service.CreatedAt,
		UpdatedAt:       service.UpdatedAt,
	}
}

func ServicesToResponses(services []entity.Service) []dto.ServiceResponse {
	responses := make([]dto.ServiceResponse, len(services))
	for i := range services {
		responses[i] = ServiceToResponse(&services[i])
	}
	return responses
}
