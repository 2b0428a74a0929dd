package main

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/medflow/clinic-booking/internal/db"
)

// simulate hammers the reservation endpoint with concurrent bookings for the
// same slots to demonstrate the single-winner guarantee: per slot exactly
// one 201, everything else 409.
func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	_ = godotenv.Load()

	baseURL := getenv("API_BASE_URL", "http://localhost:8080")
	slotLimit := getenvInt("SIM_SLOTS", 20)
	workersPerSlot := getenvInt("SIM_WORKERS_PER_SLOT", 10)

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	slots, err := loadOpenSlots(ctx, pool, slotLimit)
	if err != nil {
		log.Fatalf("load open slots: %v", err)
	}
	if len(slots) == 0 {
		log.Fatal("no open slots, run cmd/seed first")
	}

	log.Printf("booking %d slots with %d concurrent workers each", len(slots), workersPerSlot)

	gofakeit.Seed(time.Now().UnixNano())

	client := &http.Client{Timeout: 10 * time.Second}

	var created, conflicts, failures atomic.Int64
	var wg sync.WaitGroup

	for _, slotID := range slots {
		for w := 0; w < workersPerSlot; w++ {
			wg.Add(1)
			go func(slotID uuid.UUID) {
				defer wg.Done()

				status, err := createReservation(client, baseURL, slotID)
				switch {
				case err != nil:
					failures.Add(1)
				case status == http.StatusCreated:
					created.Add(1)
				case status == http.StatusConflict:
					conflicts.Add(1)
				default:
					failures.Add(1)
				}
			}(slotID)
		}
	}

	wg.Wait()

	fmt.Printf("slots=%d workers_per_slot=%d created=%d conflicts=%d failures=%d\n",
		len(slots), workersPerSlot, created.Load(), conflicts.Load(), failures.Load())

	if got, want := created.Load(), int64(len(slots)); got != want {
		log.Printf("WARNING: expected %d winners, got %d", want, got)
	}
}

func loadOpenSlots(ctx context.Context, pool *pgxpool.Pool, limit int) ([]uuid.UUID, error) {
	rows, err := pool.Query(ctx, `
		SELECT id FROM slots WHERE status = 'open' ORDER BY start_time ASC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func createReservation(client *http.Client, baseURL string, slotID uuid.UUID) (int, error) {
	body, err := json.Marshal(map[string]string{
		"slot_id":       slotID.String(),
		"patient_name":  gofakeit.Name(),
		"patient_phone": gofakeit.Phone(),
	})
	if err != nil {
		return 0, err
	}

	resp, err := client.Post(baseURL+"/reservations", "application/json", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	return resp.StatusCode, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
