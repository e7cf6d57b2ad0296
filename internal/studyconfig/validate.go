package studyconfig

import "fmt"

// ValidationError is a hard constraint violation.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks all required constraints of a study definition.
func Validate(cfg *Config) error {
	if cfg.Name == "" {
		return ValidationError{"name", "required"}
	}
	if len(cfg.Locations) == 0 {
		return ValidationError{"locations", "must not be empty"}
	}
	seen := make(map[string]bool, len(cfg.Locations))
	for i, loc := range cfg.Locations {
		if loc == "" {
			return ValidationError{fmt.Sprintf("locations[%d]", i), "must not be empty"}
		}
		if seen[loc] {
			return ValidationError{fmt.Sprintf("locations[%d]", i), fmt.Sprintf("duplicate location %q", loc)}
		}
		seen[loc] = true
	}

	start, err := cfg.StartDate()
	if err != nil {
		return ValidationError{"start", "must be YYYY-MM-DD"}
	}
	end, err := cfg.EndDate()
	if err != nil {
		return ValidationError{"end", "must be YYYY-MM-DD"}
	}
	if !start.Before(end) {
		return ValidationError{"start", "must be before end"}
	}

	// A trend line needs at least two points on each side.
	if cfg.PreWindow < 2 {
		return ValidationError{"pre_window", "must be >= 2"}
	}
	if cfg.PostWindow < 2 {
		return ValidationError{"post_window", "must be >= 2"}
	}

	for i, p := range cfg.Pivots {
		if p.Location == "" {
			return ValidationError{fmt.Sprintf("pivots[%d].location", i), "required"}
		}
		if !seen[p.Location] {
			return ValidationError{fmt.Sprintf("pivots[%d].location", i), fmt.Sprintf("%q is not in locations", p.Location)}
		}
		if p.Metric == "" {
			return ValidationError{fmt.Sprintf("pivots[%d].metric", i), "required"}
		}
		pivot, err := p.PivotDate()
		if err != nil {
			return ValidationError{fmt.Sprintf("pivots[%d].date", i), "must be YYYY-MM-DD"}
		}
		if pivot.Before(start) || pivot.After(end) {
			return ValidationError{
				Field:   fmt.Sprintf("pivots[%d].date", i),
				Message: fmt.Sprintf("must be within [%s, %s]", cfg.Start, cfg.End),
			}
		}
	}

	return nil
}
