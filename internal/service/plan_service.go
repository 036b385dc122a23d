package service

import (
	"context"
	"strings"

	"github.com/huzidev/dev-forum-api/internal/models"
	"github.com/huzidev/dev-forum-api/internal/repository"
)

// PlanService manages subscription plans and their benefits.
type PlanService struct {
	core
}

func NewPlanService(d Deps) *PlanService {
	return &PlanService{core: newCore(d, "plans")}
}

type PlanInput struct {
	Title    string                `json:"title"`
	Info     string                `json:"info"`
	Price    float64               `json:"price"`
	Benefits []models.BenefitInput `json:"benefits"`
}

func (in PlanInput) validate() (PlanInput, error) {
	title, err := requireText(in.Title, "Title")
	if err != nil {
		return in, err
	}
	if in.Price < 0 {
		return in, models.NewValidationError("Price cannot be negative")
	}
	in.Title = title
	in.Info = strings.TrimSpace(in.Info)
	return in, nil
}

func (s *PlanService) List(ctx context.Context) ([]models.Plan, error) {
	return s.repos.Plans.List(ctx)
}

func (s *PlanService) Get(ctx context.Context, id uint) (*models.Plan, error) {
	return s.repos.Plans.GetByID(ctx, id)
}

// Buy subscribes the caller to a plan.
func (s *PlanService) Buy(ctx context.Context, buyer *models.User, planID uint) (*models.User, error) {
	if err := requireUser(buyer); err != nil {
		return nil, err
	}
	if _, err := s.repos.Plans.GetByID(ctx, planID); err != nil {
		return nil, err
	}
	if err := s.repos.Users.SetPlan(ctx, buyer.ID, planID); err != nil {
		return nil, err
	}
	return s.repos.Users.GetByID(ctx, buyer.ID)
}

// Create stores a plan and its benefits. Titles are unique.
func (s *PlanService) Create(ctx context.Context, in PlanInput) (*models.Plan, error) {
	in, err := in.validate()
	if err != nil {
		return nil, err
	}
	plan := &models.Plan{Title: in.Title, Info: in.Info, Price: in.Price}
	for _, b := range in.Benefits {
		if d := strings.TrimSpace(b.Description); d != "" {
			plan.Benefits = append(plan.Benefits, models.Benefit{Description: d})
		}
	}
	if err := s.repos.Plans.Create(ctx, plan); err != nil {
		if repository.IsDuplicate(err) {
			return nil, models.NewConflictError("A plan with this title already exists")
		}
		return nil, err
	}
	return s.repos.Plans.GetByID(ctx, plan.ID)
}

// Update writes the plan fields and reconciles its benefits against in.Benefits.
func (s *PlanService) Update(ctx context.Context, id uint, in PlanInput) (*models.Plan, error) {
	in, err := in.validate()
	if err != nil {
		return nil, err
	}
	for i := range in.Benefits {
		in.Benefits[i].Description = strings.TrimSpace(in.Benefits[i].Description)
	}

	err = s.tx.WithinTx(ctx, func(tx *repository.Repositories) error {
		plan, err := tx.Plans.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Plans.UpdateFields(ctx, id, in.Title, in.Info, in.Price); err != nil {
			return err
		}
		diff := models.DiffBenefits(id, plan.Benefits, in.Benefits)
		if diff.Empty() {
			return nil
		}
		return tx.Plans.ApplyBenefitDiff(ctx, diff)
	})
	if repository.IsDuplicate(err) {
		return nil, models.NewConflictError("A plan with this title already exists")
	}
	if err != nil {
		return nil, err
	}
	return s.repos.Plans.GetByID(ctx, id)
}

// Delete removes a plan. Subscribed users are left without a plan.
func (s *PlanService) Delete(ctx context.Context, id uint) error {
	return s.tx.WithinTx(ctx, func(tx *repository.Repositories) error {
		return tx.Plans.Delete(ctx, id)
	})
}

// EnsureCatalog creates the plans of catalog that do not exist yet, matched by
// title. It returns the number of plans created.
func (s *PlanService) EnsureCatalog(ctx context.Context, catalog []models.Plan) (int, error) {
	created := 0
	for _, p := range catalog {
		existing, err := s.repos.Plans.GetByTitle(ctx, p.Title)
		if err != nil {
			return created, err
		}
		if existing != nil {
			continue
		}
		plan := p
		if err := s.repos.Plans.Create(ctx, &plan); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
