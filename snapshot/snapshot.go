// Package snapshot owns the in-memory copy of the equipment collection that
// barcode checks and snapshot pushes read from. A single refresh goroutine is
// the only writer; mutating handlers never touch the cache directly, they
// issue store writes and call Invalidate so the next refresh picks them up.
package snapshot

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	"github.com/inventario-app/inventario-api/databases"
	"github.com/inventario-app/inventario-api/models"
)

// Cache holds the last loaded equipment snapshot
type Cache struct {
	db       databases.EquipmentDatabase
	interval time.Duration

	mu         sync.RWMutex
	equipments []models.Equipment
	listeners  []func([]models.Equipment)

	notify chan struct{}
	done   chan struct{}
	once   sync.Once
}

// New creates a cache over the given equipment database. The interval is a
// safety net against missed invalidations; writes still show up promptly
// because every mutating handler invalidates explicitly.
func New(db databases.EquipmentDatabase, interval time.Duration) *Cache {
	return &Cache{
		db:       db,
		interval: interval,
		notify:   make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// OnUpdate registers a listener that receives every new snapshot. Must be
// called before Start.
func (c *Cache) OnUpdate(fn func([]models.Equipment)) {
	c.listeners = append(c.listeners, fn)
}

// Start performs the initial load and launches the refresh loop
func (c *Cache) Start(ctx context.Context) error {
	if err := c.refresh(ctx); err != nil {
		return err
	}
	go c.loop()
	return nil
}

// Stop terminates the refresh loop
func (c *Cache) Stop() {
	c.once.Do(func() { close(c.done) })
}

// Invalidate schedules a refresh. Non-blocking; coalesces with a pending one.
func (c *Cache) Invalidate() {
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// Equipments returns a copy of the current snapshot
func (c *Cache) Equipments() []models.Equipment {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Equipment, len(c.equipments))
	copy(out, c.equipments)
	return out
}

// MatchBarcode matches the scanned code against the snapshot by exact string
// equality after trimming, never by prefix or case-insensitive comparison.
// The match is only as fresh as the last refresh.
func (c *Cache) MatchBarcode(code string) (models.Equipment, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return models.Equipment{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, eq := range c.equipments {
		if eq.Details.Barcode == code {
			return eq, true
		}
	}
	return models.Equipment{}, false
}

func (c *Cache) loop() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-c.notify:
		case <-ticker.C:
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := c.refresh(ctx); err != nil {
			zap.S().Errorw("failed to refresh equipment snapshot", "error", err)
		}
		cancel()
	}
}

func (c *Cache) refresh(ctx context.Context) error {
	equipments, err := c.db.Find(ctx, bson.D{})
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.equipments = equipments
	c.mu.Unlock()

	for _, fn := range c.listeners {
		fn(equipments)
	}
	return nil
}
