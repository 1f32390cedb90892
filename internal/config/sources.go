package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"github.com/jasonmurdy-collab/MarketPulse/pkg/contracts/domain"
)

// SourceEntry is one region's pair of feed locators as written in the
// sources file.
type SourceEntry struct {
	Region  string `yaml:"region" validate:"required,region"`
	Weekly  string `yaml:"weekly" validate:"required,locator"`
	Monthly string `yaml:"monthly" validate:"required,locator"`
}

// SourcesFile is the on-disk layout of the feed sources file.
type SourcesFile struct {
	PriorityRegion string        `yaml:"priority_region" validate:"required,region"`
	Sources        []SourceEntry `yaml:"sources" validate:"required,unique=Region,dive"`
}

// Sources resolves feed locators by region and granularity.
type Sources struct {
	Priority domain.Region
	feeds    map[domain.Region]map[domain.Granularity]string
}

// NewSources builds a Sources value directly. It is mainly useful in tests
// and for callers that obtain locators from somewhere other than a file.
func NewSources(priority domain.Region, feeds map[domain.Region]map[domain.Granularity]string) *Sources {
	copied := make(map[domain.Region]map[domain.Granularity]string, len(feeds))
	for region, byGranularity := range feeds {
		inner := make(map[domain.Granularity]string, len(byGranularity))
		for g, loc := range byGranularity {
			inner[g] = loc
		}
		copied[region] = inner
	}
	return &Sources{Priority: priority, feeds: copied}
}

// Locator returns the feed location for region and granularity.
func (s *Sources) Locator(region domain.Region, g domain.Granularity) (string, error) {
	loc := s.feeds[region][g]
	if loc == "" {
		return "", fmt.Errorf("no %s feed configured for region %s", g, region)
	}
	return loc, nil
}

// Background lists the non priority regions in canonical order.
func (s *Sources) Background() []domain.Region {
	out := make([]domain.Region, 0, domain.RegionCount()-1)
	for _, r := range domain.AllRegions() {
		if r != s.Priority {
			out = append(out, r)
		}
	}
	return out
}

var sourcesValidator = newSourcesValidator()

func newSourcesValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("region", func(fl validator.FieldLevel) bool {
		_, err := domain.ParseRegion(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("locator", func(fl validator.FieldLevel) bool {
		loc := strings.TrimSpace(fl.Field().String())
		return loc != "" && !strings.ContainsAny(loc, " \t\n")
	})
	return v
}

// LoadSources reads and validates the sources file at path.
func LoadSources(path string) (*Sources, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file %s: %w", path, err)
	}
	return ParseSources(data)
}

// ParseSources decodes and validates a sources document. Every region must
// be listed exactly once with both a weekly and a monthly locator.
func ParseSources(data []byte) (*Sources, error) {
	var file SourcesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse sources: %w", err)
	}
	if err := sourcesValidator.Struct(file); err != nil {
		return nil, fmt.Errorf("invalid sources: %w", err)
	}

	priority, _ := domain.ParseRegion(file.PriorityRegion)
	feeds := make(map[domain.Region]map[domain.Granularity]string, len(file.Sources))
	for _, entry := range file.Sources {
		region, _ := domain.ParseRegion(entry.Region)
		if _, dup := feeds[region]; dup {
			return nil, fmt.Errorf("invalid sources: region %s listed more than once", region)
		}
		feeds[region] = map[domain.Granularity]string{
			domain.GranularityWeekly:  strings.TrimSpace(entry.Weekly),
			domain.GranularityMonthly: strings.TrimSpace(entry.Monthly),
		}
	}

	var missing []string
	for _, r := range domain.AllRegions() {
		if _, ok := feeds[r]; !ok {
			missing = append(missing, string(r))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("invalid sources: missing regions %s", strings.Join(missing, ", "))
	}

	return &Sources{Priority: priority, feeds: feeds}, nil
}
