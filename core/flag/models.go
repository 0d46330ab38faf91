package flag

import (
	"strconv"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/DARIENBATHALTER/wasabi/core"
)

// Category is one of the fixed data domains a rule can target. The set is
// closed: each category has its own aggregation logic (see metrics.go), rules
// cannot target arbitrary expressions.
type Category string

const (
	CategoryAttendance    Category = "attendance"
	CategoryGrades        Category = "grades"
	CategoryDiscipline    Category = "discipline"
	CategoryIReadyReading Category = "iready-reading"
	CategoryIReadyMath    Category = "iready-math"
	CategoryFASTMath      Category = "fast-math"
	CategoryFASTELA       Category = "fast-ela"
	CategoryFASTScience   Category = "fast-science"
	CategoryFASTWriting   Category = "fast-writing"
)

var AllCategories = []Category{
	CategoryAttendance,
	CategoryGrades,
	CategoryDiscipline,
	CategoryIReadyReading,
	CategoryIReadyMath,
	CategoryFASTMath,
	CategoryFASTELA,
	CategoryFASTScience,
	CategoryFASTWriting,
}

func (c Category) Valid() bool {
	for _, cat := range AllCategories {
		if c == cat {
			return true
		}
	}
	return false
}

// Label returns the category's display name, as used in evaluation messages.
func (c Category) Label() string {
	switch c {
	case CategoryAttendance:
		return "attendance"
	case CategoryGrades:
		return "grades"
	case CategoryDiscipline:
		return "discipline"
	case CategoryIReadyReading:
		return "iReady Reading"
	case CategoryIReadyMath:
		return "iReady Math"
	case CategoryFASTMath:
		return "FAST Math"
	case CategoryFASTELA:
		return "FAST ELA"
	case CategoryFASTScience:
		return "FAST Science"
	case CategoryFASTWriting:
		return "FAST Writing"
	}
	return string(c)
}

type Condition string

const (
	ConditionAbove  Condition = "above"
	ConditionBelow  Condition = "below"
	ConditionEquals Condition = "equals"
)

func (c Condition) Valid() bool {
	return c == ConditionAbove || c == ConditionBelow || c == ConditionEquals
}

type Color string

const (
	ColorRed    Color = "red"
	ColorOrange Color = "orange"
	ColorYellow Color = "yellow"
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
)

func (c Color) Valid() bool {
	switch c {
	case ColorRed, ColorOrange, ColorYellow, ColorGreen, ColorBlue:
		return true
	}
	return false
}

// Threshold is a rule threshold. The dashboard's rule editor historically
// saved thresholds as strings; both JSON numbers and numeric strings must
// decode to the same value.
type Threshold float64

func (t *Threshold) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		return errors.New("threshold is required")
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return errors.Wrapf(err, "parsing threshold %q", s)
	}
	*t = Threshold(f)
	return nil
}

type Criteria struct {
	Type      string    `json:"type"`
	Threshold Threshold `json:"threshold" validate:"required"`
	Condition Condition `json:"condition" validate:"required,flagcondition"`
}

// Filters restrict a rule to a cohort. Empty means the rule applies to all
// students.
type Filters struct {
	Grades  []string `json:"grades,omitempty"`
	Classes []string `json:"classes,omitempty"`
}

func (f Filters) IsEmpty() bool {
	return len(f.Grades) == 0 && len(f.Classes) == 0
}

type Rule struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    Category  `json:"category"`
	Criteria    Criteria  `json:"criteria"`
	Filters     Filters   `json:"filters,omitempty"`
	Color       Color     `json:"color"`
	Description string    `json:"description"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"` // UTC
}

// NewRule contains information needed to create a new Rule.
type NewRule struct {
	Name        string   `json:"name" validate:"required"`
	Category    Category `json:"category" validate:"required,flagcategory"`
	Criteria    Criteria `json:"criteria"`
	Filters     Filters  `json:"filters"`
	Color       Color    `json:"color" validate:"required,flagcolor"`
	Description string   `json:"description"`
}

func (nr *NewRule) Validate(validate *validator.Validate) error {
	nr.Name = core.CleanString(nr.Name)
	return validate.Struct(nr)
}

// UpdateRule defines what information may be provided to modify an existing
// Rule. Zero-valued fields keep the original values.
type UpdateRule struct {
	Name        string   `json:"name"`
	Category    Category `json:"category" validate:"omitempty,flagcategory"`
	Criteria    Criteria `json:"criteria"`
	Filters     Filters  `json:"filters"`
	Color       Color    `json:"color" validate:"omitempty,flagcolor"`
	Description string   `json:"description"`
	IsActive    *bool    `json:"isActive"`
}

func (ur *UpdateRule) Validate(origRule Rule, validate *validator.Validate) error {
	name := core.CleanString(ur.Name)
	if name != "" {
		ur.Name = name
	} else {
		ur.Name = origRule.Name
	}
	if ur.Category == "" {
		ur.Category = origRule.Category
	}
	if ur.Criteria.Condition == "" {
		ur.Criteria = origRule.Criteria
	}
	if ur.Color == "" {
		ur.Color = origRule.Color
	}
	if ur.Description == "" {
		ur.Description = origRule.Description
	}
	return validate.Struct(ur)
}

// custom validation tags & texts
var (
	categoryTag  = "flagcategory"
	categoryText = "not a valid flag category"

	conditionTag  = "flagcondition"
	conditionText = "must be one of: above, below, equals"

	colorTag  = "flagcolor"
	colorText = "must be one of: red, orange, yellow, green, blue"
)

// InitValidators registers this package's custom validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(categoryTag, func(fl validator.FieldLevel) bool {
		return Category(fl.Field().String()).Valid()
	})
	core.RegisterCustomTranslation(validate, translator, categoryTag, categoryText)

	_ = validate.RegisterValidation(conditionTag, func(fl validator.FieldLevel) bool {
		return Condition(fl.Field().String()).Valid()
	})
	core.RegisterCustomTranslation(validate, translator, conditionTag, conditionText)

	_ = validate.RegisterValidation(colorTag, func(fl validator.FieldLevel) bool {
		return Color(fl.Field().String()).Valid()
	})
	core.RegisterCustomTranslation(validate, translator, colorTag, colorText)
}
