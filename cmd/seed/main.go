package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/fleet-maintenance/internal/auth"
	"github.com/ukydev/fleet-maintenance/internal/config"
	"github.com/ukydev/fleet-maintenance/internal/db"
	"github.com/ukydev/fleet-maintenance/internal/models"
)

var vehicleTypes = []string{"Sedán", "SUV", "Pickup", "Van", "Camión Ligero"}

var brandModels = map[string][]string{
	"Nissan":     {"Versa", "March", "NP300"},
	"Toyota":     {"Corolla", "Hilux", "Hiace"},
	"Chevrolet":  {"Aveo", "S10", "Express"},
	"Ford":       {"Ranger", "Transit", "Escape"},
	"Volkswagen": {"Jetta", "Vento", "Crafter"},
}

// brandOrder keeps seeding deterministic for a given random source.
var brandOrder = []string{"Nissan", "Toyota", "Chevrolet", "Ford", "Volkswagen"}

var serviceTypes = []string{"Afinación", "Cambio de aceite", "Frenos", "Suspensión", "Llantas"}

var workshops = []models.CatalogItem{
	{Name: "Taller Central", ManagerName: "Luis Ortega", City: "Monterrey", State: "NL", Phone: "8180001111"},
	{Name: "Servicio Automotriz del Norte", ManagerName: "Carmen Ruiz", City: "Saltillo", State: "Coah", Phone: "8440002222"},
}

var incidentStatuses = []models.IncidentStatus{
	models.IncidentOpen,
	models.IncidentUnderEvaluation,
	models.IncidentAwaitingParts,
	models.IncidentInRepair,
	models.IncidentRepairedAwaitingPickup,
	models.IncidentClosed,
}

// summary counts what seedFleet wrote.
type summary struct {
	Vehicles  int
	Events    int
	Incidents int
	Rules     int
	Catalog   int
}

func intPtr(i int) *int { return &i }

func datePtr(t time.Time) *string {
	s := models.FormatDate(t)
	return &s
}

func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// seedFleet writes catalogs, size vehicles with maintenance history and
// incidents, and two maintenance rules. Dates are spread around today so the
// dashboard shows upcoming and overdue work.
func seedFleet(ctx context.Context, store db.Store, size int, today time.Time, rng *rand.Rand) (summary, error) {
	var sum summary
	today = models.Day(today)

	for _, name := range brandOrder {
		brand := models.CatalogItem{ID: uuid.New().String(), Name: name}
		if err := store.InsertCatalogItem(ctx, models.CatalogBrands, brand); err != nil {
			return sum, fmt.Errorf("insert brand: %w", err)
		}
		sum.Catalog++
		for _, model := range brandModels[name] {
			if err := store.InsertModel(ctx, models.ModelCatalogItem{ID: uuid.New().String(), Name: model, BrandID: brand.ID}); err != nil {
				return sum, fmt.Errorf("insert model: %w", err)
			}
			sum.Catalog++
		}
	}
	for _, w := range workshops {
		w.ID = uuid.New().String()
		if err := store.InsertCatalogItem(ctx, models.CatalogWorkshops, w); err != nil {
			return sum, fmt.Errorf("insert workshop: %w", err)
		}
		sum.Catalog++
	}
	for _, st := range serviceTypes {
		if err := store.InsertCatalogItem(ctx, models.CatalogServiceTypes, models.CatalogItem{ID: uuid.New().String(), Name: st}); err != nil {
			return sum, fmt.Errorf("insert service type: %w", err)
		}
		sum.Catalog++
	}

	for i := 0; i < size; i++ {
		brand := brandOrder[rng.Intn(len(brandOrder))]
		modelNames := brandModels[brand]
		current := 5000 + rng.Intn(145000)
		v := models.Vehicle{
			ID:              uuid.New().String(),
			Plate:           fmt.Sprintf("%c%c%c-%03d", 'A'+rng.Intn(26), 'A'+rng.Intn(26), 'A'+rng.Intn(26), i+1),
			Brand:           brand,
			Model:           modelNames[rng.Intn(len(modelNames))],
			Year:            2015 + rng.Intn(10),
			Type:            vehicleTypes[rng.Intn(len(vehicleTypes))],
			Status:          models.VehicleOperational,
			CurrentMileage:  current,
			InsurancePolicy: fmt.Sprintf("POL-%06d", rng.Intn(1000000)),
			LastUpdated:     stamp(today),
		}
		switch rng.Intn(10) {
		case 0:
			v.Status = models.VehicleInWorkshop
		case 1:
			v.Status = models.VehicleIncident
		case 2:
			v.Status = models.VehicleDecommissioned
		}
		// Roughly half the fleet carries explicit markers, the rest relies on rules.
		if rng.Intn(2) == 0 {
			v.NextServiceDate = datePtr(today.AddDate(0, 0, rng.Intn(60)-20))
		}
		if rng.Intn(4) == 0 {
			v.NextServiceMileage = intPtr(current + rng.Intn(4000) - 1000)
		}
		v.NextVerificationDate = datePtr(today.AddDate(0, 0, rng.Intn(120)))
		v.InsuranceExpiryDate = datePtr(today.AddDate(0, 0, rng.Intn(220)-20))

		if err := store.InsertVehicle(ctx, v); err != nil {
			return sum, fmt.Errorf("insert vehicle %s: %w", v.Plate, err)
		}
		sum.Vehicles++

		// Services going back in time, mileage decreasing with each step.
		date := today.AddDate(0, 0, -(10 + rng.Intn(60)))
		mileage := current - rng.Intn(3000)
		for n := 1 + rng.Intn(3); n > 0 && mileage > 0; n-- {
			cost := float64(1500 + rng.Intn(6000))
			e := models.MaintenanceEvent{
				ID:           uuid.New().String(),
				VehicleID:    v.ID,
				VehiclePlate: v.Plate,
				Date:         models.FormatDate(date),
				Mileage:      mileage,
				Type:         models.MaintenanceService,
				ServiceType:  serviceTypes[rng.Intn(len(serviceTypes))],
				Workshop:     workshops[rng.Intn(len(workshops))].Name,
				Cost:         &cost,
				LastUpdated:  stamp(date.Add(15 * time.Hour)),
			}
			if err := store.InsertMaintenanceEvent(ctx, e); err != nil {
				return sum, fmt.Errorf("insert event: %w", err)
			}
			sum.Events++
			date = date.AddDate(0, -(3 + rng.Intn(4)), 0)
			mileage -= 5000 + rng.Intn(10000)
		}

		verified := today.AddDate(0, -(1 + rng.Intn(5)), 0)
		if err := store.InsertMaintenanceEvent(ctx, models.MaintenanceEvent{
			ID:           uuid.New().String(),
			VehicleID:    v.ID,
			VehiclePlate: v.Plate,
			Date:         models.FormatDate(verified),
			Mileage:      current - rng.Intn(5000),
			Type:         models.MaintenanceVerification,
			ServiceType:  "Verificación vehicular",
			LastUpdated:  stamp(verified.Add(11 * time.Hour)),
		}); err != nil {
			return sum, fmt.Errorf("insert verification: %w", err)
		}
		sum.Events++

		if v.Status == models.VehicleIncident || rng.Intn(5) == 0 {
			reported := today.AddDate(0, 0, -rng.Intn(45))
			inc := models.Incident{
				ID:           uuid.New().String(),
				VehicleID:    v.ID,
				VehiclePlate: v.Plate,
				Date:         models.FormatDate(reported),
				Time:         fmt.Sprintf("%02d:%02d", 7+rng.Intn(12), rng.Intn(60)),
				Description:  "Daño reportado por el conductor durante la ruta asignada",
				DamageLevel:  models.DamageMinor,
				Status:       incidentStatuses[rng.Intn(len(incidentStatuses))],
				Location:     "Periférico Norte km 12",
				LastUpdated:  stamp(reported.Add(20 * time.Hour)),
			}
			if v.Status == models.VehicleIncident {
				inc.DamageLevel = models.DamageModerate
				inc.Status = models.IncidentInRepair
			}
			if err := store.InsertIncident(ctx, inc); err != nil {
				return sum, fmt.Errorf("insert incident: %w", err)
			}
			sum.Incidents++
		}
	}

	rules := []models.MaintenanceRule{
		{
			ID:                 uuid.New().String(),
			Name:               "Sedanes cada 10,000 km",
			VehicleType:        "Sedán",
			MileageInterval:    intPtr(10000),
			TimeIntervalMonths: intPtr(6),
			ServiceTasks:       "Cambio de aceite y filtro, revisión de frenos y niveles",
			LastUpdated:        stamp(today),
		},
		{
			ID:                 uuid.New().String(),
			Name:               "Flota completa semestral",
			VehicleType:        "Todos",
			TimeIntervalMonths: intPtr(6),
			ServiceTasks:       "Inspección general, rotación de llantas y afinación",
			LastUpdated:        stamp(today),
		},
	}
	for _, r := range rules {
		if err := r.Validate(); err != nil {
			return sum, err
		}
		if err := store.InsertRule(ctx, r); err != nil {
			return sum, fmt.Errorf("insert rule: %w", err)
		}
		sum.Rules++
	}
	return sum, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.MongoURI == "" {
		log.Fatal("MONGO_URI is required to seed the database")
	}

	fleetSize := 20
	if val := os.Getenv("FLEET_SIZE"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			fleetSize = n
		}
	}
	seed := time.Now().UnixNano()
	if val := os.Getenv("SEED"); val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			seed = n
		}
	}

	client, err := db.ConnectMongo(cfg.MongoURI)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store := db.NewMongoStore(client.Database(cfg.MongoDB), log.StandardLogger())
	if err := store.EnsureIndexes(ctx); err != nil {
		log.WithError(err).Warn("Failed to create indexes")
	}

	log.WithFields(log.Fields{
		"fleet_size": fleetSize,
		"database":   cfg.MongoDB,
		"seed":       seed,
	}).Info("Seeding fleet")

	sum, err := seedFleet(ctx, store, fleetSize, time.Now(), rand.New(rand.NewSource(seed)))
	if err != nil {
		log.WithError(err).Fatal("Seeding failed")
	}
	log.WithFields(log.Fields{
		"vehicles":  sum.Vehicles,
		"events":    sum.Events,
		"incidents": sum.Incidents,
		"rules":     sum.Rules,
		"catalog":   sum.Catalog,
	}).Info("Seeding completed")

	token, err := auth.NewService(cfg.JWTSecret, cfg.JWTExpiry).GenerateToken("seed-manager", "Seed Manager", models.RoleManager)
	if err != nil {
		log.WithError(err).Fatal("Failed to generate token")
	}
	fmt.Println(token)
}
