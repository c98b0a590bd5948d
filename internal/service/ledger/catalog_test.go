package ledger

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/mamadbah2/gelateria/internal/domain/models"
)

func TestCreateFlavorValidation(t *testing.T) {
	tests := []struct {
		name    string
		in      FlavorInput
		wantErr bool
	}{
		{name: "valid", in: FlavorInput{Name: "Fior di Latte", Initials: "fdl"}},
		{name: "missingName", in: FlavorInput{Name: "  ", Initials: "X"}, wantErr: true},
		{name: "missingInitials", in: FlavorInput{Name: "Lemon"}, wantErr: true},
		{name: "digitsInInitials", in: FlavorInput{Name: "Lemon", Initials: "L1"}, wantErr: true},
		{name: "initialsTooLong", in: FlavorInput{Name: "Lemon", Initials: "LEMONS"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := newTestLedger(t)
			_, err := l.CreateFlavor(context.Background(), tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidFlavor) {
					t.Errorf("CreateFlavor() error = %v, want ErrInvalidFlavor", err)
				}
				return
			}
			if err != nil {
				t.Errorf("CreateFlavor() error = %v", err)
			}
		})
	}
}

func TestCreateFlavorNormalizes(t *testing.T) {
	l, gw := newTestLedger(t)

	flavor, err := l.CreateFlavor(context.Background(), FlavorInput{
		Name:        " Stracciatella ",
		Initials:    "str",
		CategoryIDs: []string{"c1", "c2", "c1", ""},
	})
	if err != nil {
		t.Fatalf("CreateFlavor() error = %v", err)
	}

	if flavor.Name != "Stracciatella" || flavor.Initials != "STR" || !flavor.Active {
		t.Errorf("flavor = %+v", flavor)
	}
	if !reflect.DeepEqual(flavor.CategoryIDs, []string{"c1", "c2"}) {
		t.Errorf("CategoryIDs = %v, want [c1 c2]", flavor.CategoryIDs)
	}
	if len(gw.last(t).Flavors) != 3 {
		t.Error("new flavor should be written through")
	}
}

func TestDeactivatedFlavorKeepsHistory(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	if _, err := l.Produce(ctx, productionDay, []ProductionEntry{{FlavorID: "f-pis", Weights: []float64{100}}}); err != nil {
		t.Fatalf("Produce() error = %v", err)
	}
	before := l.Snapshot()

	flavor, err := l.SetFlavorActive(ctx, "f-pis", false)
	if err != nil {
		t.Fatalf("SetFlavorActive() error = %v", err)
	}
	if flavor.Active {
		t.Error("flavor should be inactive")
	}

	for _, f := range l.ActiveFlavors() {
		if f.ID == "f-pis" {
			t.Error("inactive flavor listed among active flavors")
		}
	}
	if len(l.Flavors()) != 2 {
		t.Errorf("Flavors() = %d, inactive flavors must still be listed", len(l.Flavors()))
	}

	after := l.Snapshot()
	if !reflect.DeepEqual(before.Buckets, after.Buckets) || !reflect.DeepEqual(before.ProductionLogs, after.ProductionLogs) {
		t.Error("deactivation changed historical buckets or logs")
	}

	if _, err := l.SetFlavorActive(ctx, "nope", true); !errors.Is(err, ErrFlavorNotFound) {
		t.Errorf("SetFlavorActive(unknown) error = %v", err)
	}
}

func TestUpdateFlavor(t *testing.T) {
	l, _ := newTestLedger(t)
	inactive := false

	updated, err := l.UpdateFlavor(context.Background(), "f-cho", FlavorInput{Name: "Dark Chocolate", Initials: "dch", Active: &inactive})
	if err != nil {
		t.Fatalf("UpdateFlavor() error = %v", err)
	}
	if updated.Name != "Dark Chocolate" || updated.Initials != "DCH" || updated.Active {
		t.Errorf("updated = %+v", updated)
	}

	if _, err := l.UpdateFlavor(context.Background(), "missing", FlavorInput{Name: "x", Initials: "X"}); !errors.Is(err, ErrFlavorNotFound) {
		t.Errorf("UpdateFlavor(unknown) error = %v", err)
	}
}

func TestCategoryLifecycle(t *testing.T) {
	l, _ := newTestLedger(t)
	ctx := context.Background()

	nuts, err := l.CreateCategory(ctx, "Nuts")
	if err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}
	classic, err := l.CreateCategory(ctx, "Classic")
	if err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}

	if _, err := l.UpdateFlavor(ctx, "f-pis", FlavorInput{Name: "Pistachio", Initials: "PIS", CategoryIDs: []string{nuts.ID, classic.ID}}); err != nil {
		t.Fatalf("UpdateFlavor() error = %v", err)
	}

	renamed, err := l.RenameCategory(ctx, classic.ID, "Classics")
	if err != nil || renamed.Name != "Classics" {
		t.Fatalf("RenameCategory() = %+v, %v", renamed, err)
	}

	if err := l.DeleteCategory(ctx, nuts.ID); err != nil {
		t.Fatalf("DeleteCategory() error = %v", err)
	}
	if cats := l.Categories(); len(cats) != 1 || cats[0].ID != classic.ID {
		t.Errorf("Categories() = %+v", cats)
	}

	var pis models.Flavor
	for _, f := range l.Flavors() {
		if f.ID == "f-pis" {
			pis = f
		}
	}
	if !reflect.DeepEqual(pis.CategoryIDs, []string{nuts.ID, classic.ID}) {
		t.Errorf("flavor categories = %v, deletion must not cascade", pis.CategoryIDs)
	}

	if err := l.DeleteCategory(ctx, nuts.ID); !errors.Is(err, ErrCategoryNotFound) {
		t.Errorf("second DeleteCategory() error = %v", err)
	}
	if _, err := l.CreateCategory(ctx, ""); !errors.Is(err, ErrInvalidCategory) {
		t.Errorf("CreateCategory(empty) error = %v", err)
	}
}
