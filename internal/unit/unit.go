// Package unit converts stock quantities between the three packaging levels
// a product is sold in. A case holds BoxesPerCase case-boxes and a case-box
// holds BoxesPerSet boxes. The box is the canonical counting unit and every
// stored quantity is a box count.
package unit

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type Unit string

const (
	Case    Unit = "case"
	CaseBox Unit = "casebox"
	Box     Unit = "box"
)

var ErrInvalidUnit = errors.New("invalid_unit")

// ParseUnit accepts case, casebox and box. Empty input defaults to box.
func ParseUnit(raw string) (Unit, error) {
	switch Unit(strings.ToLower(strings.TrimSpace(raw))) {
	case Case:
		return Case, nil
	case CaseBox:
		return CaseBox, nil
	case Box, "":
		return Box, nil
	default:
		return "", ErrInvalidUnit
	}
}

func (u Unit) IsValid() bool {
	switch u {
	case Case, CaseBox, Box:
		return true
	}
	return false
}

// DisplayName returns the label used in formatted quantities.
func (u Unit) DisplayName() string {
	switch u {
	case Case:
		return "箱"
	case CaseBox:
		return "端盒"
	case Box:
		return "盒"
	default:
		return string(u)
	}
}

// Specs holds a product's packaging factors. Both factors are always >= 1.
type Specs struct {
	boxesPerCase int
	boxesPerSet  int
}

// NewSpecs normalizes optional packaging factors. Missing or non-positive
// values mean one box per unit.
func NewSpecs(boxesPerCase, boxesPerSet *int) Specs {
	return Specs{
		boxesPerCase: positiveOrOne(boxesPerCase),
		boxesPerSet:  positiveOrOne(boxesPerSet),
	}
}

// Of is NewSpecs for plain ints.
func Of(boxesPerCase, boxesPerSet int) Specs {
	return NewSpecs(&boxesPerCase, &boxesPerSet)
}

func positiveOrOne(v *int) int {
	if v == nil || *v <= 0 {
		return 1
	}
	return *v
}

// BoxesPerCase is the number of case-boxes in one case.
func (s Specs) BoxesPerCase() int { return s.normalized().boxesPerCase }

// BoxesPerSet is the number of boxes in one case-box.
func (s Specs) BoxesPerSet() int { return s.normalized().boxesPerSet }

// normalized guards against a zero-value Specs built without NewSpecs.
func (s Specs) normalized() Specs {
	if s.boxesPerCase <= 0 {
		s.boxesPerCase = 1
	}
	if s.boxesPerSet <= 0 {
		s.boxesPerSet = 1
	}
	return s
}

// factor returns how many boxes one u represents.
func (s Specs) factor(u Unit) int {
	s = s.normalized()
	switch u {
	case Case:
		return s.boxesPerCase * s.boxesPerSet
	case CaseBox:
		return s.boxesPerSet
	default:
		return 1
	}
}

// ToBoxes converts q units of u to boxes.
func ToBoxes(q float64, u Unit, s Specs) float64 {
	return q * float64(s.factor(u))
}

// ToBoxesInt is ToBoxes for whole quantities.
func ToBoxesInt(q int, u Unit, s Specs) int {
	return q * s.factor(u)
}

// FromBoxes converts a box count to units of u.
func FromBoxes(boxes float64, u Unit, s Specs) float64 {
	return boxes / float64(s.factor(u))
}

// Breakdown is a box count split into whole cases, case-boxes and loose boxes.
type Breakdown struct {
	Cases     int `json:"cases"`
	CaseBoxes int `json:"caseBoxes"`
	Boxes     int `json:"boxes"`
}

func (b Breakdown) IsZero() bool {
	return b.Cases == 0 && b.CaseBoxes == 0 && b.Boxes == 0
}

// BreakdownOf decomposes boxes greedily, largest unit first.
func BreakdownOf(boxes int, s Specs) Breakdown {
	perCase := s.factor(Case)
	perSet := s.factor(CaseBox)

	cases := boxes / perCase
	rest := boxes % perCase
	return Breakdown{
		Cases:     cases,
		CaseBoxes: rest / perSet,
		Boxes:     rest % perSet,
	}
}

// Format renders boxes as "N箱 M端盒 K盒", omitting zero parts.
// An all-zero breakdown renders as "0盒".
func Format(boxes int, s Specs) string {
	b := BreakdownOf(boxes, s)
	parts := make([]string, 0, 3)
	if b.Cases > 0 {
		parts = append(parts, fmt.Sprintf("%d%s", b.Cases, Case.DisplayName()))
	}
	if b.CaseBoxes > 0 {
		parts = append(parts, fmt.Sprintf("%d%s", b.CaseBoxes, CaseBox.DisplayName()))
	}
	if b.Boxes > 0 {
		parts = append(parts, fmt.Sprintf("%d%s", b.Boxes, Box.DisplayName()))
	}
	if len(parts) == 0 {
		return "0" + Box.DisplayName()
	}
	return strings.Join(parts, " ")
}

// ConvertUnitCost scales cost by the box count of one from-unit over the box
// count of one to-unit.
func ConvertUnitCost(cost decimal.Decimal, from, to Unit, s Specs) decimal.Decimal {
	fromBoxes := decimal.NewFromInt(int64(s.factor(from)))
	toBoxes := decimal.NewFromInt(int64(s.factor(to)))
	return cost.Mul(fromBoxes).Div(toBoxes)
}

// PerBoxCost returns the cost of a single box given the cost of one u.
func PerBoxCost(cost decimal.Decimal, u Unit, s Specs) decimal.Decimal {
	return ConvertUnitCost(cost, Box, u, s)
}
