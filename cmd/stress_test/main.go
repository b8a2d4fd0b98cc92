package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/rl1809/commerce-admin/internal/adapter/storage"
	"github.com/rl1809/commerce-admin/internal/core/domain"
	"github.com/rl1809/commerce-admin/internal/core/service"
)

const (
	initialStock  = 500
	totalRequests = 200
)

// stressRun holds one product's inventory under load.
type stressRun struct {
	db        *sqlx.DB
	inventory *service.InventoryService
	productID int64
}

type stressResult struct {
	success   int32
	conflicts int32
	fail      int32
	elapsed   time.Duration
}

// Hammers a single inventory row with concurrent adjustments and checks that
// every accepted write left exactly one ledger entry. Runs against a
// throwaway SQLite file unless DB_DRIVER and DATABASE_DSN point elsewhere.
func main() {
	ctx := context.Background()

	driver, dsn := os.Getenv("DB_DRIVER"), os.Getenv("DATABASE_DSN")
	if driver == "" || dsn == "" {
		dir, err := os.MkdirTemp("", "commerce-stress-*")
		if err != nil {
			log.Fatalf("failed to create temp dir: %v", err)
		}
		defer os.RemoveAll(dir)
		driver, dsn = storage.DriverSQLite, filepath.Join(dir, "stress.db")
	}

	run, err := setupStressRun(ctx, driver, dsn, initialStock)
	if err != nil {
		log.Fatalf("setup: %v", err)
	}
	defer run.db.Close()

	res := run.hammer(ctx, totalRequests)

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Driver:           %s\n", driver)
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Applied:          %d\n", res.success)
	fmt.Printf("Conflicts (409):  %d\n", res.conflicts)
	fmt.Printf("Failed:           %d\n", res.fail)
	fmt.Printf("Duration:         %v\n", res.elapsed)
	fmt.Println("==========================================")

	if err := run.verify(ctx, initialStock, res); err != nil {
		fmt.Printf("FAIL: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("PASS: ledger entries and deltas reconcile with applied writes")

	if res.fail != 0 {
		os.Exit(1)
	}
}

// setupStressRun migrates the store and creates a stocked product.
func setupStressRun(ctx context.Context, driver, dsn string, stock int) (*stressRun, error) {
	if err := storage.MigrateUp(driver, dsn, nil); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	db, err := storage.Open(ctx, driver, dsn, storage.PoolConfig{
		MaxOpenConns:    20,
		MaxIdleConns:    10,
		ConnMaxLifetime: time.Minute,
	})
	if err != nil {
		return nil, err
	}

	store := storage.NewSQLAdapter(db)
	settings := service.DefaultSettings()
	productService := service.NewProductService(store, settings, nil)
	inventoryService := service.NewInventoryService(store, store, settings, nil)

	product, err := productService.Create(ctx, domain.ProductInput{
		Name:     fmt.Sprintf("stress-%d", time.Now().UnixNano()),
		Price:    decimal.RequireFromString("1.00"),
		Category: "Others",
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create product: %w", err)
	}
	if _, err := inventoryService.Create(ctx, domain.InventoryInput{ProductID: product.ID, Quantity: stock}); err != nil {
		db.Close()
		return nil, fmt.Errorf("create inventory: %w", err)
	}

	return &stressRun{db: db, inventory: inventoryService, productID: product.ID}, nil
}

// hammer sends n concurrent quantity updates, each to a distinct value.
func (s *stressRun) hammer(ctx context.Context, n int) stressResult {
	var successCount atomic.Int32
	var conflictCount atomic.Int32
	var failCount atomic.Int32

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			quantity := initialStock - i - 1
			_, err := s.inventory.Update(ctx, s.productID, domain.InventoryUpdate{Quantity: &quantity})
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, service.ErrInventoryConflict):
				conflictCount.Add(1)
			default:
				failCount.Add(1)
				log.Printf("request %d: %v", i, err)
			}
		}(i)
	}

	wg.Wait()
	return stressResult{
		success:   successCount.Load(),
		conflicts: conflictCount.Load(),
		fail:      failCount.Load(),
		elapsed:   time.Since(start),
	}
}

// verify checks one ledger entry per applied write and that the deltas sum
// to the final quantity.
func (s *stressRun) verify(ctx context.Context, stock int, res stressResult) error {
	limit := service.MaxHistoryLimit
	history, err := s.inventory.History(ctx, s.productID, &limit)
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}
	inv, err := s.inventory.GetStatus(ctx, s.productID)
	if err != nil {
		return fmt.Errorf("read inventory: %w", err)
	}

	if len(history) != int(res.success) {
		return fmt.Errorf("expected %d ledger entries, got %d", res.success, len(history))
	}

	sum := 0
	for _, h := range history {
		sum += h.QuantityChange
	}
	if stock+sum != inv.Quantity {
		return fmt.Errorf("%d + %d != final quantity %d", stock, sum, inv.Quantity)
	}
	return nil
}
