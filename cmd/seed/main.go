package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/BruksfildServices01/barber-assistant/internal/config"
	"github.com/BruksfildServices01/barber-assistant/internal/db"
	"github.com/BruksfildServices01/barber-assistant/internal/directory"
	"github.com/BruksfildServices01/barber-assistant/internal/logging"
	"github.com/BruksfildServices01/barber-assistant/internal/models"
)

var catalogue = []models.Service{
	{Name: "Haircut", Description: "Classic cut and finish", DurationMin: 30, Price: 25, Category: "hair"},
	{Name: "Beard Trim", Description: "Shape and line-up", DurationMin: 20, Price: 15, Category: "beard"},
	{Name: "Haircut + Beard", Description: "Full service", DurationMin: 50, Price: 35, Category: "combo"},
	{Name: "Hot Towel Shave", Description: "Straight razor shave", DurationMin: 40, Price: 30, Category: "beard"},
	{Name: "Kids Cut", Description: "Under 12", DurationMin: 30, Price: 18, Category: "hair"},
}

var specialties = []string{"fades", "classic cuts", "beards", "shaves", "kids", "long hair"}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	barbers := flag.Int("barbers", 3, "number of barbers to create")
	customers := flag.Int("customers", 10, "number of customers to create")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log.Println("seed starting")

	if err := seedServices(ctx, store); err != nil {
		log.Fatalf("seed services: %v", err)
	}
	if err := seedBarbers(ctx, store, *barbers, cfg); err != nil {
		log.Fatalf("seed barbers: %v", err)
	}
	if err := seedCustomers(ctx, store, *customers); err != nil {
		log.Fatalf("seed customers: %v", err)
	}

	log.Println("seed complete")
}

func openStore(cfg *config.Config) (directory.Store, error) {
	if cfg.StoreDriver != "postgres" {
		return directory.NewMemoryStore(directory.WithDataDir(cfg.DataDir))
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	conn, err := db.NewDB(cfg, logger)
	if err != nil {
		return nil, err
	}
	return directory.NewGormStore(conn), nil
}

func seedServices(ctx context.Context, store directory.Store) error {
	log.Printf("seeding %d services", len(catalogue))

	for _, svc := range catalogue {
		svc.Active = true
		if _, err := store.CreateService(ctx, svc); err != nil {
			return err
		}
	}
	return nil
}

func seedBarbers(ctx context.Context, store directory.Store, count int, cfg *config.Config) error {
	log.Printf("seeding %d barbers", count)

	weekdays := []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}

	for i := 0; i < count; i++ {
		hours := make(map[string]*models.TimeRange, len(weekdays))
		for _, day := range weekdays {
			hours[day] = &models.TimeRange{Start: cfg.DefaultOpen, End: cfg.DefaultClose}
		}
		// one weekday off per barber
		delete(hours, weekdays[gofakeit.Number(0, len(weekdays)-2)])

		b := models.Barber{
			Name:         gofakeit.FirstName(),
			Phone:        gofakeit.Numerify("+1555#######"),
			Email:        gofakeit.Email(),
			Specialties:  []string{specialties[gofakeit.Number(0, len(specialties)-1)]},
			WorkingHours: hours,
			Active:       true,
		}
		if _, err := store.CreateBarber(ctx, b); err != nil {
			return err
		}
	}
	return nil
}

func seedCustomers(ctx context.Context, store directory.Store, count int) error {
	log.Printf("seeding %d customers", count)

	for i := 0; i < count; i++ {
		c := models.Customer{
			Name:  gofakeit.Name(),
			Phone: gofakeit.Numerify("+1444#######"),
			Email: gofakeit.Email(),
		}
		if _, err := store.CreateCustomer(ctx, c); err != nil {
			return err
		}
	}
	return nil
}
