package validation

import (
	"errors"
	"fmt"
	"time"

	"github.com/liflo-ai/liflo/internal/model"
)

const (
	MinScale = 1
	MaxScale = 7
)

// ValidateScale checks a self-reported challenge or skill level.
func ValidateScale(name string, v int) error {
	if v < MinScale || v > MaxScale {
		return fmt.Errorf("%s must be between %d and %d", name, MinScale, MaxScale)
	}
	return nil
}

// ValidateDate requires a real calendar day in YYYY-MM-DD form.
func ValidateDate(date string) error {
	if date == "" {
		return errors.New("date is required")
	}

	t, err := time.Parse(model.DateLayout, date)
	if err != nil || t.Format(model.DateLayout) != date {
		return errors.New("date must be YYYY-MM-DD")
	}

	return nil
}
