package server

import (
	"github.com/huzidev/dev-forum-api/internal/middleware"
	"github.com/huzidev/dev-forum-api/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ListPlans handles GET /api/plans
// @Summary List plans with their benefits
// @Tags plans
// @Produce json
// @Success 200 {array} models.Plan
// @Router /plans [get]
func (s *Server) ListPlans(c *fiber.Ctx) error {
	plans, err := s.plans.List(c.UserContext())
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(plans)
}

// GetPlan handles GET /api/plans/:id
func (s *Server) GetPlan(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	plan, err := s.plans.Get(c.UserContext(), id)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(plan)
}

// BuyPlan handles POST /api/plans/buy
func (s *Server) BuyPlan(c *fiber.Ctx) error {
	var req struct {
		PlanID uint `json:"planId"`
	}
	if err := bindJSON(c, &req); err != nil {
		return nil
	}
	if err := requireBodyID(c, req.PlanID, "planId"); err != nil {
		return nil
	}
	user, err := s.plans.Buy(c.UserContext(), middleware.CurrentUser(c), req.PlanID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(user)
}

// CreatePlan handles POST /api/plans/create-plan
func (s *Server) CreatePlan(c *fiber.Ctx) error {
	var in service.PlanInput
	if err := bindJSON(c, &in); err != nil {
		return nil
	}
	plan, err := s.plans.Create(c.UserContext(), in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(plan)
}

// UpdatePlan handles PUT /api/plans/:id
func (s *Server) UpdatePlan(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	var in service.PlanInput
	if err := bindJSON(c, &in); err != nil {
		return nil
	}
	plan, err := s.plans.Update(c.UserContext(), id, in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(plan)
}

// DeletePlan handles DELETE /api/plans/:id
func (s *Server) DeletePlan(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	if err := s.plans.Delete(c.UserContext(), id); err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Plan deleted successfully"})
}

// GetPointsTotal handles GET /api/points/:userId
func (s *Server) GetPointsTotal(c *fiber.Ctx) error {
	userID, err := s.userIDParam(c)
	if err != nil {
		return nil
	}
	total, err := s.points.Total(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"userId": userID, "totalPoints": total})
}

// AppendPoints handles POST /api/points/update-points
func (s *Server) AppendPoints(c *fiber.Ctx) error {
	var in service.PointEntryInput
	if err := bindJSON(c, &in); err != nil {
		return nil
	}
	if err := requireBodyID(c, in.UserID, "userId"); err != nil {
		return nil
	}
	entry, total, err := s.points.Append(c.UserContext(), in)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"entry": entry, "totalPoints": total})
}
