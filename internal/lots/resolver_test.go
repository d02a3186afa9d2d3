package lots

import (
	"testing"

	"github.com/dnaclectic/lotline/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openLotsTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.Lot{}, &models.Booking{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func seedLot(t *testing.T, db *gorm.DB, code, slug, name, city, state string, capacity int) *models.Lot {
	t.Helper()
	lot := &models.Lot{
		Code:             code,
		Slug:             slug,
		Name:             name,
		City:             city,
		State:            state,
		NightlyRateCents: 2500,
		Capacity:         capacity,
		Timezone:         "America/Denver",
		Active:           true,
	}
	if err := db.Create(lot).Error; err != nil {
		t.Fatalf("seed lot %s: %v", code, err)
	}
	return lot
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		input     string
		wantCity  string
		wantState string
	}{
		{"Kansas City MO", "Kansas City", "MO"},
		{"Bozeman", "Bozeman", ""},
		{"Bozeman MT", "Bozeman", "MT"},
		{"  salt lake city ut  ", "salt lake city", "UT"},
		{"OK", "OK", ""}, // single token is never a state
		{"Council Bluffs", "Council Bluffs", ""},
		{"Council Bl", "Council", "BL"}, // any trailing 2-letter word reads as a state
		{"", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseLocation(tt.input)
			if got.City != tt.wantCity {
				t.Errorf("City = %q, want %q", got.City, tt.wantCity)
			}
			if got.State != tt.wantState {
				t.Errorf("State = %q, want %q", got.State, tt.wantState)
			}
		})
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Big Sky Lot", "big-sky-lot"},
		{"  Bozeman   North ", "bozeman-north"},
		{"BZN1", "bzn1"},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolve_ByCode(t *testing.T) {
	db := openLotsTestDB(t)
	seedLot(t, db, "BZN1", "bozeman-north", "Bozeman North", "Bozeman", "MT", 10)
	r, err := NewResolver(db)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	for _, input := range []string{"BZN1", "bzn1", "Bozeman North", "bozeman-north"} {
		found, err := r.Resolve(input)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", input, err)
		}
		if len(found) != 1 {
			t.Fatalf("Resolve(%q) returned %d lots, want 1", input, len(found))
		}
		if found[0].Code != "BZN1" {
			t.Errorf("Resolve(%q) = %s, want BZN1", input, found[0].Code)
		}
	}
}

func TestResolve_ByCityAndState(t *testing.T) {
	db := openLotsTestDB(t)
	seedLot(t, db, "KCM1", "kc-east", "KC East", "Kansas City", "MO", 10)
	seedLot(t, db, "KCK1", "kc-west", "KC West", "Kansas City", "KS", 10)
	seedLot(t, db, "BZN1", "bozeman-north", "Bozeman North", "Bozeman", "MT", 10)
	r, _ := NewResolver(db)

	found, err := r.Resolve("Kansas City MO")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(found) != 1 || found[0].Code != "KCM1" {
		t.Fatalf("Resolve(Kansas City MO) = %v, want [KCM1]", codes(found))
	}

	// Without a state both Kansas City lots match.
	found, err = r.Resolve("Kansas City")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("Resolve(Kansas City) returned %d lots, want 2", len(found))
	}
}

func TestResolve_PrefixMatch(t *testing.T) {
	db := openLotsTestDB(t)
	seedLot(t, db, "BZN1", "bozeman-north", "Bozeman North", "Bozeman", "MT", 10)
	r, _ := NewResolver(db)

	found, err := r.Resolve("boz")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(found) != 1 || found[0].Code != "BZN1" {
		t.Fatalf("Resolve(boz) = %v, want [BZN1]", codes(found))
	}
}

func TestResolve_NoMatch(t *testing.T) {
	db := openLotsTestDB(t)
	seedLot(t, db, "BZN1", "bozeman-north", "Bozeman North", "Bozeman", "MT", 10)
	r, _ := NewResolver(db)

	found, err := r.Resolve("Fairbanks AK")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(found) != 0 {
		t.Fatalf("Resolve(Fairbanks AK) = %v, want none", codes(found))
	}
}

func TestResolve_CapsAtMaxChoices(t *testing.T) {
	db := openLotsTestDB(t)
	for i := 0; i < 8; i++ {
		seedLot(t, db, "DAL"+string(rune('1'+i)), "dallas-"+string(rune('a'+i)), "Dallas "+string(rune('A'+i)), "Dallas", "TX", 10)
	}
	r, _ := NewResolver(db)

	found, err := r.Resolve("Dallas TX")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(found) != MaxChoices {
		t.Fatalf("Resolve(Dallas TX) returned %d lots, want %d", len(found), MaxChoices)
	}
}

func TestResolve_IgnoresInactive(t *testing.T) {
	db := openLotsTestDB(t)
	lot := seedLot(t, db, "BZN1", "bozeman-north", "Bozeman North", "Bozeman", "MT", 10)
	db.Model(lot).Update("active", false)
	r, _ := NewResolver(db)

	found, err := r.Resolve("BZN1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(found) != 0 {
		t.Fatalf("inactive lot resolved: %v", codes(found))
	}
}

func codes(ls []models.Lot) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.Code
	}
	return out
}
