package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"eventvenue/internal/events"
	"eventvenue/internal/ledger"
	"eventvenue/internal/seats"
	"eventvenue/internal/settings"
	"eventvenue/internal/shared/config"
	"eventvenue/internal/shared/database"
	"eventvenue/internal/venues"

	"github.com/google/uuid"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting EventVenue Database Seeder...")

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	// Clean database
	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	// Seed data
	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in the correct order (respecting foreign key constraints)
func (s *Seeder) CleanDatabase() error {
	// Order matters due to foreign key constraints
	// Delete in reverse dependency order
	tables := []string{
		"cancellations",
		"bookings",
		"event_seats",
		"seat_categories",
		"events",
		"venues",
		"withdrawal_requests",
		"credit_requests",
		"points_history",
		"point_accounts",
		"system_settings",
	}

	tx := s.db.PostgreSQL.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// Disable foreign key constraints temporarily
	if err := tx.Exec("SET CONSTRAINTS ALL DEFERRED").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to defer constraints: %w", err)
	}

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	// Re-enable foreign key constraints
	if err := tx.Exec("SET CONSTRAINTS ALL IMMEDIATE").Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to restore constraints: %w", err)
	}

	return tx.Commit().Error
}

// SeedAll seeds all required data
func (s *Seeder) SeedAll() error {
	ctx := context.Background()

	// Conversion rate first so bookings can price immediately
	if err := s.SeedSettings(ctx); err != nil {
		return fmt.Errorf("failed to seed settings: %w", err)
	}

	// Point accounts with opening balances
	accounts, err := s.SeedAccounts(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed accounts: %w", err)
	}

	// Vendor-owned venues
	if err := s.SeedVenues(ctx, accounts["vendor1"], accounts["vendor2"]); err != nil {
		return fmt.Errorf("failed to seed venues: %w", err)
	}

	// Events, including one with a seat layout
	if err := s.SeedEvents(ctx, accounts["vendor1"], accounts["vendor2"]); err != nil {
		return fmt.Errorf("failed to seed events: %w", err)
	}

	// Clear Redis cache to ensure fresh state
	if s.db.Redis != nil {
		if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
			log.Printf("Warning: Failed to clear Redis cache: %v", err)
		}
	}

	return nil
}

// SeedSettings creates the single settings row with the default rate
func (s *Seeder) SeedSettings(ctx context.Context) error {
	fmt.Println("  ⚙️ Seeding settings...")

	row := settings.SystemSettings{
		ID:                    uuid.New(),
		PointsPerCurrencyUnit: 1,
	}
	if err := s.db.PostgreSQL.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to create settings row: %w", err)
	}
	fmt.Printf("    ✅ Conversion rate set to %d point(s) per currency unit\n", row.PointsPerCurrencyUnit)
	return nil
}

// SeedAccounts creates point accounts for two users and two vendors, with
// opening balances credited through the ledger so the history stays honest.
func (s *Seeder) SeedAccounts(ctx context.Context) (map[string]uuid.UUID, error) {
	fmt.Println("  👤 Seeding point accounts...")

	ledgerService := ledger.NewService(ledger.NewRepository(s.db.PostgreSQL))

	owners := []struct {
		key       string
		ownerType ledger.OwnerType
		opening   int64
	}{
		{"user1", ledger.OwnerUser, 5000},
		{"user2", ledger.OwnerUser, 1500},
		{"vendor1", ledger.OwnerVendor, 0},
		{"vendor2", ledger.OwnerVendor, 0},
	}

	ownerIDs := make(map[string]uuid.UUID)
	for _, o := range owners {
		ownerID := uuid.New()
		account, err := ledgerService.CreateAccount(ctx, o.ownerType, ownerID)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s account: %w", o.key, err)
		}
		if o.opening > 0 {
			if _, err := ledgerService.Credit(ctx, account.ID, o.opening, "Opening balance", nil); err != nil {
				return nil, fmt.Errorf("failed to credit %s opening balance: %w", o.key, err)
			}
		}
		ownerIDs[o.key] = ownerID
		fmt.Printf("    ✅ Created %s account (%s) with %d points\n", o.ownerType, o.key, o.opening)
	}

	return ownerIDs, nil
}

// SeedVenues creates hourly-bookable venues for both vendors
func (s *Seeder) SeedVenues(ctx context.Context, vendor1, vendor2 uuid.UUID) error {
	fmt.Println("  🏟️ Seeding venues...")

	venuesData := []struct {
		vendorID     uuid.UUID
		name         string
		description  string
		address      string
		capacity     int
		pricePerHour float64
	}{
		{vendor1, "Riverside Hall", "Mid-size hall with stage and sound system", "12 Riverside Road", 200, 120.0},
		{vendor1, "Loft Studio", "Compact studio for workshops and rehearsals", "4 Mill Lane, Floor 3", 40, 45.0},
		{vendor2, "Garden Pavilion", "Open-air pavilion for daytime gatherings", "88 Park Avenue", 150, 80.0},
	}

	for _, v := range venuesData {
		venue := venues.Venue{
			ID:           uuid.New(),
			VendorID:     v.vendorID,
			Name:         v.name,
			Description:  v.description,
			Address:      v.address,
			Capacity:     v.capacity,
			PricePerHour: v.pricePerHour,
			IsActive:     true,
		}
		if err := s.db.PostgreSQL.WithContext(ctx).Create(&venue).Error; err != nil {
			return fmt.Errorf("failed to create venue %s: %w", venue.Name, err)
		}
		fmt.Printf("    ✅ Created venue: %s (%.2f/hour)\n", venue.Name, venue.PricePerHour)
	}

	return nil
}

// SeedEvents creates quantity events plus one seat-selection event with a
// configured layout
func (s *Seeder) SeedEvents(ctx context.Context, vendor1, vendor2 uuid.UUID) error {
	fmt.Println("  🎪 Seeding events...")

	eventRepo := events.NewRepository(s.db.PostgreSQL)

	quantityEvents := []struct {
		vendorID    uuid.UUID
		name        string
		description string
		category    string
		location    string
		price       float64
		tickets     int
		daysFromNow int
	}{
		{vendor1, "Tech Conference 2026", "Annual technology conference with industry speakers.", "Technology", "Riverside Hall", 150.0, 200, 30},
		{vendor1, "Startup Pitch Night", "Early-stage founders pitch to a panel of investors.", "Business", "Loft Studio", 25.0, 40, 15},
		{vendor2, "Food & Wine Festival", "Local cuisine, tastings, and live cooking demos.", "Food", "Garden Pavilion", 60.0, 150, 60},
	}

	for _, e := range quantityEvents {
		event := &events.Event{
			ID:               uuid.New(),
			VendorID:         e.vendorID,
			Name:             e.name,
			Description:      e.description,
			Category:         e.category,
			EventDate:        time.Now().AddDate(0, 0, e.daysFromNow),
			Location:         e.location,
			PricePerTicket:   e.price,
			TotalTickets:     e.tickets,
			TicketsAvailable: e.tickets,
			BookingType:      events.BookingTypeQuantity,
			IsActive:         true,
		}
		if err := eventRepo.CreateEvent(ctx, event); err != nil {
			return fmt.Errorf("failed to create event %s: %w", event.Name, err)
		}
		fmt.Printf("    ✅ Created event: %s (%d tickets)\n", event.Name, event.TotalTickets)
	}

	// Seat-selection event with a two-tier layout
	seatEvent := &events.Event{
		ID:             uuid.New(),
		VendorID:       vendor2,
		Name:           "Classical Music Evening",
		Description:    "An evening of classical music by a chamber orchestra.",
		Category:       "Music",
		EventDate:      time.Now().AddDate(0, 0, 45),
		Location:       "Garden Pavilion",
		PricePerTicket: 0,
		BookingType:    events.BookingTypeSeatSelection,
		IsActive:       true,
	}
	if err := eventRepo.CreateEvent(ctx, seatEvent); err != nil {
		return fmt.Errorf("failed to create seat event: %w", err)
	}

	seatService := seats.NewService(
		seats.NewRepository(s.db.PostgreSQL),
		seats.NewEventStoreAdapter(eventRepo),
		seats.NewHoldStore(s.db.Redis),
	)
	layout, err := seatService.ConfigureLayout(ctx, seatEvent.ID, seats.ConfigureLayoutRequest{
		Categories: []seats.CategoryInput{
			{
				Name:        "Premium",
				Price:       80.0,
				Color:       "#8B5CF6",
				Rows:        []string{"A", "B"},
				SeatsPerRow: 10,
			},
			{
				Name:        "Standard",
				Price:       40.0,
				Color:       "#22c55e",
				Rows:        []string{"C", "D", "E"},
				SeatsPerRow: 12,
				AisleAfter:  []int{6},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to configure seat layout: %w", err)
	}
	fmt.Printf("    ✅ Created event: %s (%d seats)\n", seatEvent.Name, layout.TotalSeats)

	return nil
}
