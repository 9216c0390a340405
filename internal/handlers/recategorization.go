package handlers

import (
	"estudio/internal/services/recategorization"
	"estudio/internal/utils"
	"estudio/internal/utils/response"
	"estudio/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type RecategorizationHandler struct {
	service recategorization.Service
}

func NewRecategorizationHandler(service recategorization.Service) *RecategorizationHandler {
	return &RecategorizationHandler{service: service}
}

// Report returns the recategorization of one client for a period.
func (h *RecategorizationHandler) Report(c *fiber.Ctx) error {
	claims, err := utils.GetStudioClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	clientID, err := c.ParamsInt("clientId")
	if err != nil || clientID <= 0 {
		return response.BadRequest(c, "Invalid client ID")
	}

	report, err := h.service.Report(c.UserContext(), claims.TenantSchema, c.Params("periodId"), uint(clientID))
	if err != nil {
		return response.Domain(c, err)
	}

	return response.Success(c, "Recategorization computed", report)
}

// Batch recategorizes the listed clients. Individual failures are reported
// per client; the request itself only fails on bad input or a missing period.
func (h *RecategorizationHandler) Batch(c *fiber.Ctx) error {
	claims, err := utils.GetStudioClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	var input struct {
		ClientIDs []uint `json:"client_ids"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	result, err := h.service.Batch(c.UserContext(), claims.TenantSchema, c.Params("periodId"), input.ClientIDs)
	if err != nil {
		return response.Domain(c, err)
	}

	return response.Success(c, "Batch processed", result)
}

// Listing returns the comparison table of every client for a period, one
// page at a time. The summary always covers every client.
func (h *RecategorizationHandler) Listing(c *fiber.Ctx) error {
	claims, err := utils.GetStudioClaims(c)
	if err != nil {
		return response.Unauthorized(c)
	}

	p := utils.GetPagination(c, 1, 50, validation.MaxBatchClients)

	result, err := h.service.Listing(c.UserContext(), claims.TenantSchema, c.Params("periodId"))
	if err != nil {
		return response.Domain(c, err)
	}

	p.SetTotal(int64(len(result.Outcomes)))
	start, end := p.Window(len(result.Outcomes))
	result.Outcomes = result.Outcomes[start:end]

	return c.JSON(fiber.Map{
		"message":    "Listing computed",
		"data":       result,
		"pagination": p,
	})
}
