package handlers

import (
	"estudio/internal/services/period"
	"estudio/internal/utils/response"

	"github.com/gofiber/fiber/v2"
)

type PeriodHandler struct {
	service period.Service
}

func NewPeriodHandler(service period.Service) *PeriodHandler {
	return &PeriodHandler{service: service}
}

func (h *PeriodHandler) List(c *fiber.Ctx) error {
	periods, err := h.service.List(c.UserContext())
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "Periods retrieved", periods)
}

func (h *PeriodHandler) Get(c *fiber.Ctx) error {
	p, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "Period retrieved", p)
}

// Active returns the period currently flagged active, as a default for
// period pickers.
func (h *PeriodHandler) Active(c *fiber.Ctx) error {
	p, err := h.service.ActivePeriod(c.UserContext())
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "Active period retrieved", p)
}

func (h *PeriodHandler) Create(c *fiber.Ctx) error {
	var input period.Input
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	p, err := h.service.Create(c.UserContext(), input)
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Created(c, "Period created", p)
}

func (h *PeriodHandler) Update(c *fiber.Ctx) error {
	var input period.Input
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	p, err := h.service.Update(c.UserContext(), c.Params("id"), input)
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "Period updated", p)
}

func (h *PeriodHandler) Activate(c *fiber.Ctx) error {
	p, err := h.service.Activate(c.UserContext(), c.Params("id"))
	if err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "Period activated", p)
}

func (h *PeriodHandler) ReplaceScales(c *fiber.Ctx) error {
	var input struct {
		Scales []period.ScaleInput `json:"scales"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	if err := h.service.ReplaceScales(c.UserContext(), c.Params("id"), input.Scales); err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "Scale table replaced", fiber.Map{"categories": len(input.Scales)})
}

func (h *PeriodHandler) ReplaceComponents(c *fiber.Ctx) error {
	var input struct {
		Components []period.ComponentInput `json:"components"`
	}
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request format")
	}

	if err := h.service.ReplaceComponents(c.UserContext(), c.Params("id"), input.Components); err != nil {
		return response.Domain(c, err)
	}
	return response.Success(c, "Fee table replaced", fiber.Map{"components": len(input.Components)})
}
