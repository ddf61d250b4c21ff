// Package main applies the schema and seeds demo tables, menu, customers and
// inventory. It also prints a development admin token.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"restopos/internal/config"
	"restopos/internal/core/id"
	"restopos/internal/core/types"
	"restopos/internal/domain/auth"
	"restopos/internal/domain/tables"
	"restopos/internal/infrastructure/storage/postgres"
	"restopos/internal/infrastructure/storage/postgres/catalog_repo"
	"restopos/pkg/logger"
)

type menuSeed struct {
	name       string
	price      string
	department string
	recipe     map[string]float64 // inventory item name -> quantity per unit
}

var demoMenu = []menuSeed{
	{"Chicken Momo", "180.00", "KITCHEN", map[string]float64{"Flour (kg)": 0.1, "Chicken (kg)": 0.15}},
	{"Veg Chowmein", "150.00", "KITCHEN", map[string]float64{"Noodles (kg)": 0.2}},
	{"Masala Tea", "40.00", "DRINK", map[string]float64{"Milk (l)": 0.15, "Tea Leaves (kg)": 0.005}},
	{"Lemon Soda", "90.00", "DRINK", nil},
	{"Croissant", "120.00", "BAKERY", map[string]float64{"Flour (kg)": 0.08, "Butter (kg)": 0.03}},
	{"Mint Hukka", "600.00", "HUKKA", map[string]float64{"Hukka Flavour (pack)": 1}},
}

var demoInventory = map[string]string{
	"Flour (kg)":           "kg",
	"Chicken (kg)":         "kg",
	"Noodles (kg)":         "kg",
	"Milk (l)":             "l",
	"Tea Leaves (kg)":      "kg",
	"Butter (kg)":          "kg",
	"Hukka Flavour (pack)": "pack",
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.SetDefault(log)

	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(cfg.DatabaseURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if err := postgres.ApplySchema(ctx, pool); err != nil {
		log.Fatalw("failed to apply schema", "error", err)
	}

	txManager := postgres.NewTxManager(pool, cfg.StatementTimeout)

	if err := seedTables(ctx, catalog_repo.NewTableRepo(txManager), log); err != nil {
		log.Fatalw("failed to seed tables", "error", err)
	}

	if err := seedDemoData(ctx, pool, txManager, log); err != nil {
		log.Fatalw("failed to seed demo data", "error", err)
	}

	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(cfg.JWTSecret))
	token, expiresAt, err := jwtService.GenerateAccessToken("seed-admin", "admin@restopos.local", auth.RoleAdmin)
	if err != nil {
		log.Fatalw("failed to issue admin token", "error", err)
	}
	log.Infow("development admin token issued", "expires_at", expiresAt)
	fmt.Println(token)

	log.Info("seeding completed successfully")
}

func seedTables(ctx context.Context, repo *catalog_repo.TableRepo, log *logger.Logger) error {
	now := time.Now()
	for i := 1; i <= 10; i++ {
		code := fmt.Sprintf("T%d", i)
		if _, err := repo.CreateIfAbsent(ctx, tables.NewTable(code, tables.TypePhysical, now)); err != nil {
			return fmt.Errorf("table %s: %w", code, err)
		}
	}
	if _, err := repo.CreateIfAbsent(ctx, tables.NewTable(tables.OnlineTableCode, tables.TypeOnline, now)); err != nil {
		return fmt.Errorf("online table: %w", err)
	}
	log.Infow("tables ready", "physical", 10)
	return nil
}

func seedDemoData(ctx context.Context, pool *postgres.Pool, txManager *postgres.TxManager, log *logger.Logger) error {
	var existing int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM menu_items`).Scan(&existing); err != nil {
		return fmt.Errorf("count menu items: %w", err)
	}
	if existing > 0 {
		log.Infow("menu already seeded, skipping demo data", "menu_items", existing)
		return nil
	}

	inserter := postgres.NewBatchInserter(txManager)
	executor := postgres.NewBatchExecutor(txManager)
	now := time.Now()

	return txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		inventoryIDs := make(map[string]id.ID, len(demoInventory))
		inventoryRows := make([][]any, 0, len(demoInventory))
		for name, unit := range demoInventory {
			itemID := id.New()
			inventoryIDs[name] = itemID
			stock := types.NewQuantityFromUnits(100)
			inventoryRows = append(inventoryRows, []any{itemID, name, unit, stock.Int64Scaled(), now})
		}
		if _, err := inserter.CopyFromSlice(ctx, "inventory_items",
			[]string{"id", "name", "unit", "quantity", "updated_at"}, inventoryRows); err != nil {
			return fmt.Errorf("copy inventory items: %w", err)
		}

		// Money columns go through regular statements; COPY is used for the
		// integer-valued inventory tables.
		var menuInserts []postgres.BatchQuery
		var recipeRows [][]any
		for _, m := range demoMenu {
			price, err := types.NewMoneyFromString(m.price)
			if err != nil {
				return fmt.Errorf("menu item %s: %w", m.name, err)
			}
			menuID := id.New()
			menuInserts = append(menuInserts, postgres.BatchQuery{
				SQL:  `INSERT INTO menu_items (id, name, price, department, is_available, created_at) VALUES ($1, $2, $3, $4, TRUE, $5)`,
				Args: []any{menuID, m.name, price, m.department, now},
			})
			for invName, qty := range m.recipe {
				recipeRows = append(recipeRows, []any{
					menuID, inventoryIDs[invName], types.NewQuantityFromFloat64(qty).Int64Scaled(),
				})
			}
		}

		customers := []postgres.BatchQuery{
			{
				SQL:  `INSERT INTO customers (id, full_name, phone_number, total_due, created_at) VALUES ($1, $2, $3, $4, $5)`,
				Args: []any{id.New(), "Sita Sharma", "9800000001", types.MustMoney("1200.00"), now},
			},
			{
				SQL:  `INSERT INTO customers (id, full_name, phone_number, total_due, created_at) VALUES ($1, $2, $3, $4, $5)`,
				Args: []any{id.New(), "Ram Thapa", "9800000002", types.Zero(), now},
			},
		}

		if _, err := executor.ExecuteBatch(ctx, append(menuInserts, customers...)); err != nil {
			return fmt.Errorf("insert menu and customers: %w", err)
		}
		if _, err := inserter.CopyFromSlice(ctx, "inventory_recipes",
			[]string{"menu_item_id", "inventory_item_id", "quantity"}, recipeRows); err != nil {
			return fmt.Errorf("copy recipes: %w", err)
		}

		log.Infow("demo data seeded",
			"menu_items", len(menuInserts),
			"inventory_items", len(inventoryRows),
			"recipes", len(recipeRows),
			"customers", len(customers),
		)
		return nil
	})
}
