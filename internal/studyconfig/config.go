// Package studyconfig defines the YAML study file: which locations to
// acquire, the date bounds, and the pivot events to score.
package studyconfig

import "time"

// Config is one study definition.
type Config struct {
	Name      string   `yaml:"name" json:"name"`
	Locations []string `yaml:"locations" json:"locations"`

	// Acquisition date bounds, YYYY-MM-DD.
	Start string `yaml:"start" json:"start"`
	End   string `yaml:"end" json:"end"`

	// Regression window sizes in valid days.
	PreWindow  int `yaml:"pre_window" json:"pre_window"`
	PostWindow int `yaml:"post_window" json:"post_window"`

	// Pivot events to score.
	Pivots []Pivot `yaml:"pivots" json:"pivots"`
}

// Pivot is one event to score: a location, the metric to analyze, and the
// pivot date.
type Pivot struct {
	Label    string `yaml:"label" json:"label"`
	Location string `yaml:"location" json:"location"`
	Metric   string `yaml:"metric" json:"metric"`
	Date     string `yaml:"date" json:"date"`
}

const dateLayout = "2006-01-02"

// StartDate returns the parsed acquisition start bound.
func (c *Config) StartDate() (time.Time, error) {
	return time.Parse(dateLayout, c.Start)
}

// EndDate returns the parsed acquisition end bound.
func (c *Config) EndDate() (time.Time, error) {
	return time.Parse(dateLayout, c.End)
}

// PivotDate returns the parsed pivot date.
func (p *Pivot) PivotDate() (time.Time, error) {
	return time.Parse(dateLayout, p.Date)
}

// Default returns the built-in baseline study: the standard location set
// over the first pandemic wave with two-week regression windows.
func Default() *Config {
	return &Config{
		Name:       "baseline",
		Locations:  defaultLocations(),
		Start:      "2020-02-15",
		End:        "2020-10-15",
		PreWindow:  14,
		PostWindow: 14,
	}
}

func defaultLocations() []string {
	return []string{
		"UnitedStates",
		"China",
		"Australia",
		"Austria",
		"Belgium",
		"Brazil",
		"Canada",
		"Denmark",
		"Finland",
		"France",
		"Germany",
		"Greece",
		"Indonesia",
		"India",
		"Italy",
		"Japan",
		"KoreaSouth",
		"Malaysia",
		"Mexico",
		"Netherlands",
		"NewZealand",
		"Norway",
		"Philippines",
		"Portugal",
		"Russia",
		"Singapore",
		"SouthAfrica",
		"Spain",
		"Sweden",
		"Switzerland",
		"Thailand",
		"Turkey",
		"UnitedKingdom",
		"HongKong_China",
	}
}
