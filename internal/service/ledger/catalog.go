package ledger

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/mamadbah2/gelateria/internal/domain/models"
)

const maxInitials = 5

// FlavorInput carries the administrative fields of a flavor.
type FlavorInput struct {
	Name        string   `json:"name"`
	Initials    string   `json:"initials"`
	CategoryIDs []string `json:"categoryIds"`
	Active      *bool    `json:"active,omitempty"`
}

func (in FlavorInput) normalize() (FlavorInput, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Initials = strings.ToUpper(strings.TrimSpace(in.Initials))

	if in.Name == "" {
		return in, fmt.Errorf("%w: name is required", ErrInvalidFlavor)
	}
	if in.Initials == "" || len([]rune(in.Initials)) > maxInitials {
		return in, fmt.Errorf("%w: initials must be 1-%d letters", ErrInvalidFlavor, maxInitials)
	}
	for _, r := range in.Initials {
		if !unicode.IsLetter(r) {
			return in, fmt.Errorf("%w: initials must be alphabetic", ErrInvalidFlavor)
		}
	}

	seen := make(map[string]struct{}, len(in.CategoryIDs))
	ids := make([]string, 0, len(in.CategoryIDs))
	for _, id := range in.CategoryIDs {
		if _, dup := seen[id]; dup || id == "" {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	in.CategoryIDs = ids
	return in, nil
}

// CreateFlavor registers a new flavor, active unless stated otherwise.
func (l *Ledger) CreateFlavor(ctx context.Context, in FlavorInput) (models.Flavor, error) {
	in, err := in.normalize()
	if err != nil {
		return models.Flavor{}, err
	}

	flavor := models.Flavor{
		Name:        in.Name,
		Initials:    in.Initials,
		CategoryIDs: in.CategoryIDs,
		Active:      in.Active == nil || *in.Active,
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	flavor.ID = l.newID()
	l.state.Flavors = append(l.state.Flavors, flavor)

	l.persist(ctx, "create_flavor")
	l.notify(models.SeveritySuccess, fmt.Sprintf("Flavor %s created", flavor.Name))
	return flavor, nil
}

// UpdateFlavor replaces a flavor's administrative fields. Historical buckets
// and logs keep referencing the same identifier.
func (l *Ledger) UpdateFlavor(ctx context.Context, id string, in FlavorInput) (models.Flavor, error) {
	in, err := in.normalize()
	if err != nil {
		return models.Flavor{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.state.Flavors {
		f := &l.state.Flavors[i]
		if f.ID != id {
			continue
		}
		f.Name = in.Name
		f.Initials = in.Initials
		f.CategoryIDs = in.CategoryIDs
		if in.Active != nil {
			f.Active = *in.Active
		}
		updated := *f

		l.persist(ctx, "update_flavor")
		l.notify(models.SeveritySuccess, fmt.Sprintf("Flavor %s updated", updated.Name))
		return updated, nil
	}
	return models.Flavor{}, fmt.Errorf("%w: %s", ErrFlavorNotFound, id)
}

// SetFlavorActive toggles whether the flavor is offered for production.
func (l *Ledger) SetFlavorActive(ctx context.Context, id string, active bool) (models.Flavor, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.state.Flavors {
		f := &l.state.Flavors[i]
		if f.ID != id {
			continue
		}
		f.Active = active
		updated := *f

		state := "deactivated"
		if active {
			state = "activated"
		}
		l.persist(ctx, "set_flavor_active")
		l.notify(models.SeverityInfo, fmt.Sprintf("Flavor %s %s", updated.Name, state))
		return updated, nil
	}
	return models.Flavor{}, fmt.Errorf("%w: %s", ErrFlavorNotFound, id)
}

// Flavors returns every flavor, including inactive ones.
func (l *Ledger) Flavors() []models.Flavor {
	return l.Snapshot().Flavors
}

// ActiveFlavors returns the flavors offered in production and distribution lists.
func (l *Ledger) ActiveFlavors() []models.Flavor {
	out := []models.Flavor{}
	for _, f := range l.Flavors() {
		if f.Active {
			out = append(out, f)
		}
	}
	return out
}

// CreateCategory adds a category label.
func (l *Ledger) CreateCategory(ctx context.Context, name string) (models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Category{}, fmt.Errorf("%w: name is required", ErrInvalidCategory)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	category := models.Category{ID: l.newID(), Name: name}
	l.state.Categories = append(l.state.Categories, category)

	l.persist(ctx, "create_category")
	l.notify(models.SeveritySuccess, fmt.Sprintf("Category %s created", name))
	return category, nil
}

// RenameCategory changes a category's label.
func (l *Ledger) RenameCategory(ctx context.Context, id, name string) (models.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Category{}, fmt.Errorf("%w: name is required", ErrInvalidCategory)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.state.Categories {
		if l.state.Categories[i].ID != id {
			continue
		}
		l.state.Categories[i].Name = name
		renamed := l.state.Categories[i]

		l.persist(ctx, "rename_category")
		l.notify(models.SeverityInfo, fmt.Sprintf("Category renamed to %s", name))
		return renamed, nil
	}
	return models.Category{}, fmt.Errorf("%w: %s", ErrCategoryNotFound, id)
}

// DeleteCategory removes a category. Flavors keep any reference to it.
func (l *Ledger) DeleteCategory(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, c := range l.state.Categories {
		if c.ID != id {
			continue
		}
		l.state.Categories = append(l.state.Categories[:i], l.state.Categories[i+1:]...)

		l.persist(ctx, "delete_category")
		l.notify(models.SeverityInfo, fmt.Sprintf("Category %s deleted", c.Name))
		return nil
	}
	return fmt.Errorf("%w: %s", ErrCategoryNotFound, id)
}

// Categories returns every category.
func (l *Ledger) Categories() []models.Category {
	return l.Snapshot().Categories
}
