// Package lots resolves driver location input to candidate lots and
// answers capacity questions about them.
package lots

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/dnaclectic/lotline/internal/models"
	"gorm.io/gorm"
)

// MaxChoices caps how many candidate lots are offered to a driver. The
// list is numbered 1-based; matches past the cap are silently dropped.
const MaxChoices = 5

// Location is the parsed form of free-text driver input.
type Location struct {
	City  string
	State string // two-letter code or empty
}

// Resolver maps free-text driver input to candidate lots.
type Resolver struct {
	db *gorm.DB
}

// NewResolver creates a Resolver.
func NewResolver(db *gorm.DB) (*Resolver, error) {
	if db == nil {
		return nil, fmt.Errorf("lots: resolver: db is required")
	}
	return &Resolver{db: db}, nil
}

// Resolve returns candidate lots for the input, capped at MaxChoices.
// An exact-ish match on lot code or slug wins outright; otherwise the
// input is parsed as "<city> [<ST>]" and matched by city prefix.
func (r *Resolver) Resolve(input string) ([]models.Lot, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, nil
	}

	if lot, ok, err := r.byCodeOrSlug(input); err != nil {
		return nil, err
	} else if ok {
		return []models.Lot{lot}, nil
	}

	loc := ParseLocation(input)
	return r.byCity(loc)
}

// byCodeOrSlug attempts an exact case-insensitive match on lot code or
// slug. The slug candidate is derived by lowercasing and hyphenating
// whitespace in the input.
func (r *Resolver) byCodeOrSlug(input string) (models.Lot, bool, error) {
	var lot models.Lot
	err := r.db.Where("active = ?", true).
		Where("LOWER(code) = ? OR slug = ?", strings.ToLower(input), Slugify(input)).
		First(&lot).Error
	if err == gorm.ErrRecordNotFound {
		return models.Lot{}, false, nil
	}
	if err != nil {
		return models.Lot{}, false, fmt.Errorf("lots: lookup by code: %w", err)
	}
	return lot, true, nil
}

// byCity matches lots by city prefix and optional state.
func (r *Resolver) byCity(loc Location) ([]models.Lot, error) {
	if loc.City == "" {
		return nil, nil
	}
	q := r.db.Where("active = ?", true).
		Where("LOWER(city) LIKE ?", strings.ToLower(loc.City)+"%")
	if loc.State != "" {
		q = q.Where("UPPER(state) = ?", strings.ToUpper(loc.State))
	}

	var found []models.Lot
	if err := q.Order("city, code").Limit(MaxChoices).Find(&found).Error; err != nil {
		return nil, fmt.Errorf("lots: lookup by city: %w", err)
	}
	return found, nil
}

// Get fetches a single active lot by ID.
func (r *Resolver) Get(id uint) (*models.Lot, error) {
	var lot models.Lot
	if err := r.db.Where("active = ?", true).First(&lot, id).Error; err != nil {
		return nil, fmt.Errorf("lots: get %d: %w", id, err)
	}
	return &lot, nil
}

// ParseLocation parses driver input as "<city> [<ST>]". A trailing
// two-letter alphabetic token is treated as the state; everything before
// it is the city, so multi-word cities work. With no trailing
// state-shaped token the whole input is the city.
func ParseLocation(input string) Location {
	fields := strings.Fields(strings.TrimSpace(input))
	if len(fields) == 0 {
		return Location{}
	}
	last := fields[len(fields)-1]
	if len(fields) > 1 && isStateToken(last) {
		return Location{
			City:  strings.Join(fields[:len(fields)-1], " "),
			State: strings.ToUpper(last),
		}
	}
	return Location{City: strings.Join(fields, " ")}
}

// isStateToken reports whether a token looks like a two-letter state code.
func isStateToken(s string) bool {
	if len(s) != 2 {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// Slugify lowercases input and joins whitespace runs with hyphens,
// matching how lot slugs are derived from names.
func Slugify(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), "-"))
}
