package campaign

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"sync"

	"kickpredict/domain/core"

	"github.com/go-playground/validator/v10"
)

// Input is the flat record accepted by the inference entry point. Amounts are
// pointers so that an absent field is distinguishable from zero.
type Input struct {
	Name           string   `json:"name"`
	MainCategory   string   `json:"main_category" validate:"required"`
	Currency       string   `json:"currency,omitempty"`
	Country        string   `json:"country" validate:"required"`
	Deadline       string   `json:"deadline" validate:"required"`
	Launched       string   `json:"launched" validate:"required"`
	USDPledgedReal *float64 `json:"usd_pledged_real" validate:"required,finite,gte=0"`
	USDGoalReal    *float64 `json:"usd_goal_real" validate:"required,finite,gt=0"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func inputValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report JSON names so errors match the wire schema
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
		// gt and gte let +Inf through
		if err := validate.RegisterValidation("finite", isFinite); err != nil {
			panic(err)
		}
	})
	return validate
}

func isFinite(fl validator.FieldLevel) bool {
	switch fl.Field().Kind() {
	case reflect.Float32, reflect.Float64:
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	default:
		return true
	}
}

// Normalize trims text fields and normalizes the country
func (in Input) Normalize() Input {
	in.Name = strings.TrimSpace(in.Name)
	in.MainCategory = strings.TrimSpace(in.MainCategory)
	in.Currency = strings.ToUpper(strings.TrimSpace(in.Currency))
	in.Country = NormalizeCountry(in.Country)
	in.Deadline = strings.TrimSpace(in.Deadline)
	in.Launched = strings.TrimSpace(in.Launched)
	return in
}

// ValidateAmounts checks only the two amounts the short-circuit rule needs
func (in Input) ValidateAmounts() error {
	return translate(inputValidator().StructPartial(in, "USDPledgedReal", "USDGoalReal"))
}

// Validate checks every required field
func (in Input) Validate() error {
	return translate(inputValidator().Struct(in))
}

// GoalMet reports whether the pledged amount already covers the goal.
// Callers must run ValidateAmounts first.
func (in Input) GoalMet() bool {
	return *in.USDPledgedReal >= *in.USDGoalReal
}

// Record converts a validated input into a Record
func (in Input) Record() Record {
	rec := Record{
		Name:         in.Name,
		MainCategory: in.MainCategory,
		Currency:     in.Currency,
		Deadline:     in.Deadline,
		Launched:     in.Launched,
		Country:      in.Country,
	}
	if in.USDPledgedReal != nil {
		rec.USDPledgedReal = *in.USDPledgedReal
	}
	if in.USDGoalReal != nil {
		rec.USDGoalReal = *in.USDGoalReal
	}
	return rec
}

// translate maps the first validator failure to a domain error
func translate(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return core.NewMissingFieldError(fe.Field())
	case "gt":
		return &core.InvalidFieldError{Field: fe.Field(), Reason: "must be greater than " + fe.Param()}
	case "gte":
		return &core.InvalidFieldError{Field: fe.Field(), Reason: "must be at least " + fe.Param()}
	case "finite":
		return &core.InvalidFieldError{Field: fe.Field(), Reason: "must be a finite number"}
	default:
		return &core.InvalidFieldError{Field: fe.Field(), Reason: "failed " + fe.Tag()}
	}
}
