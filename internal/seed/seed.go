// Package seed loads the reference catalog of habit types and achievements.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/TPerez13/MuchasVidas/internal/model"
	"github.com/TPerez13/MuchasVidas/internal/repository"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// HabitType is a catalog habit type.
type HabitType struct {
	Code        string `yaml:"code"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// Achievement is a catalog achievement.
type Achievement struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Criterion   string `yaml:"criterion"`
	Points      int    `yaml:"points"`
}

// Catalog is the reference data set.
type Catalog struct {
	HabitTypes   []HabitType   `yaml:"habitTypes"`
	Achievements []Achievement `yaml:"achievements"`
}

// Result counts what Apply wrote.
type Result struct {
	HabitTypes   int
	Achievements int
}

var knownCriteria = map[string]bool{
	model.CriterionFirstEntry:       true,
	model.CriterionSevenDayStreak:   true,
	model.CriterionFiveDayHydration: true,
}

// DefaultCatalog returns the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// ParseCatalog decodes and checks a YAML catalog. Every problem is reported.
func ParseCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	var problems []string
	codes := make(map[string]bool)
	for i, t := range catalog.HabitTypes {
		if t.Code == "" || t.Name == "" {
			problems = append(problems, fmt.Sprintf("habitTypes[%d]: code and name are required", i))
		}
		if codes[t.Code] {
			problems = append(problems, fmt.Sprintf("habitTypes[%d]: duplicate code %q", i, t.Code))
		}
		codes[t.Code] = true
	}

	names := make(map[string]bool)
	for i, a := range catalog.Achievements {
		if a.Name == "" {
			problems = append(problems, fmt.Sprintf("achievements[%d]: name is required", i))
		}
		if names[a.Name] {
			problems = append(problems, fmt.Sprintf("achievements[%d]: duplicate name %q", i, a.Name))
		}
		names[a.Name] = true
		if !knownCriteria[a.Criterion] {
			problems = append(problems, fmt.Sprintf("achievements[%d]: unknown criterion %q", i, a.Criterion))
		}
		if a.Points < 0 {
			problems = append(problems, fmt.Sprintf("achievements[%d]: points must not be negative", i))
		}
	}

	if len(problems) > 0 {
		return nil, errors.New("invalid catalog:\n- " + strings.Join(problems, "\n- "))
	}
	return &catalog, nil
}

// Apply upserts the catalog. Running it again updates descriptions and
// points in place without duplicating rows.
func Apply(ctx context.Context, habits repository.HabitRepository, achievements repository.AchievementRepository, catalog *Catalog) (Result, error) {
	var result Result

	for _, t := range catalog.HabitTypes {
		habitType := &model.HabitType{Code: t.Code, Name: t.Name, Description: t.Description}
		if err := habits.UpsertType(ctx, habitType); err != nil {
			return result, fmt.Errorf("upsert habit type %s: %w", t.Code, err)
		}
		result.HabitTypes++
	}

	for _, a := range catalog.Achievements {
		achievement := &model.Achievement{
			Name:        a.Name,
			Description: a.Description,
			Criterion:   a.Criterion,
			Points:      a.Points,
		}
		if err := achievements.Upsert(ctx, achievement); err != nil {
			return result, fmt.Errorf("upsert achievement %s: %w", a.Name, err)
		}
		result.Achievements++
	}

	return result, nil
}
