package seed

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/huzidev/dev-forum-api/internal/models"

	"gopkg.in/yaml.v3"
)

//go:embed plans.yml
var plansYAML []byte

// PlanCatalog returns the built-in subscription plans.
func PlanCatalog() ([]models.Plan, error) {
	return ParsePlanCatalog(plansYAML)
}

// ParsePlanCatalog decodes a YAML list of plans. Titles must be present and unique.
func ParsePlanCatalog(raw []byte) ([]models.Plan, error) {
	var plans []models.Plan
	if err := yaml.Unmarshal(raw, &plans); err != nil {
		return nil, fmt.Errorf("decode plan catalog: %w", err)
	}

	seen := make(map[string]bool, len(plans))
	for i := range plans {
		title := strings.TrimSpace(plans[i].Title)
		if title == "" {
			return nil, fmt.Errorf("plan %d has no title", i)
		}
		if seen[title] {
			return nil, fmt.Errorf("duplicate plan title %q", title)
		}
		seen[title] = true
		plans[i].Title = title
	}
	return plans, nil
}
