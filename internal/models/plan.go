package models

import (
	"encoding/json"
	"time"
)

// Plan is a subscription tier.
type Plan struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"not null;uniqueIndex" json:"title" yaml:"title"`
	Info      string    `json:"info" yaml:"info"`
	Price     float64   `gorm:"not null;default:0" json:"price" yaml:"price"`
	Benefits  []Benefit `gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE" json:"benefits" yaml:"benefits"`
	CreatedAt time.Time `json:"createdAt" yaml:"-"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"-"`
}

// TableName specifies the table name for GORM
func (Plan) TableName() string {
	return "plans"
}

// Benefit is one line item of a plan.
type Benefit struct {
	ID          uint   `gorm:"primaryKey" json:"id" yaml:"-"`
	PlanID      uint   `gorm:"not null;index" json:"planId" yaml:"-"`
	Description string `gorm:"not null" json:"description" yaml:"description"`
}

// TableName specifies the table name for GORM
func (Benefit) TableName() string {
	return "benefits"
}

// BenefitInput is a benefit as sent by clients: an id when editing an
// existing row, or just a description.
type BenefitInput struct {
	ID          uint   `json:"id,omitempty"`
	Description string `json:"description"`
}

// UnmarshalJSON accepts either a bare description string or an object.
func (b *BenefitInput) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*b = BenefitInput{Description: text}
		return nil
	}
	type plain BenefitInput
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*b = BenefitInput(p)
	return nil
}

// BenefitDiff is the set of writes that reconciles a plan's benefits.
type BenefitDiff struct {
	Create []Benefit
	Update []Benefit
	Delete []uint
}

// Empty reports whether the diff has no writes.
func (d BenefitDiff) Empty() bool {
	return len(d.Create) == 0 && len(d.Update) == 0 && len(d.Delete) == 0
}

// DiffBenefits reconciles existing rows against the desired list. Inputs with an
// id match that row; inputs without one match the first unclaimed row with the
// same description. Unmatched rows are deleted and unmatched inputs created, so
// duplicate descriptions stay distinct rows.
func DiffBenefits(planID uint, existing []Benefit, desired []BenefitInput) BenefitDiff {
	var diff BenefitDiff
	claimed := make(map[uint]bool, len(existing))
	byID := make(map[uint]Benefit, len(existing))
	for _, b := range existing {
		byID[b.ID] = b
	}

	var unkeyed []BenefitInput
	for _, in := range desired {
		if in.Description == "" {
			continue
		}
		if in.ID == 0 {
			unkeyed = append(unkeyed, in)
			continue
		}
		b, ok := byID[in.ID]
		if !ok || claimed[in.ID] {
			unkeyed = append(unkeyed, BenefitInput{Description: in.Description})
			continue
		}
		claimed[in.ID] = true
		if b.Description != in.Description {
			b.Description = in.Description
			diff.Update = append(diff.Update, b)
		}
	}

	for _, in := range unkeyed {
		matched := false
		for _, b := range existing {
			if !claimed[b.ID] && b.Description == in.Description {
				claimed[b.ID] = true
				matched = true
				break
			}
		}
		if !matched {
			diff.Create = append(diff.Create, Benefit{PlanID: planID, Description: in.Description})
		}
	}

	for _, b := range existing {
		if !claimed[b.ID] {
			diff.Delete = append(diff.Delete, b.ID)
		}
	}
	return diff
}
