package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/glazedv3/mods-backend/interfaces"
	"github.com/google/uuid"
)

// MemoryCatalog keeps the catalog in process memory. It exists for local
// development and tests; nothing survives a restart.
type MemoryCatalog struct {
	mu    sync.RWMutex
	rows  map[interfaces.ModID]memoryRow
	seq   uint64
	now   func() time.Time
	newID func() string
	log   *slog.Logger
}

type memoryRow struct {
	mod interfaces.Mod
	seq uint64
}

// NewMemoryCatalog returns an empty in-memory catalog.
func NewMemoryCatalog(log *slog.Logger) *MemoryCatalog {
	return &MemoryCatalog{
		rows:  make(map[interfaces.ModID]memoryRow),
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
		log:   log,
	}
}

// WithClock replaces the creation-time source.
func (c *MemoryCatalog) WithClock(now func() time.Time) *MemoryCatalog {
	c.now = now
	return c
}

// ListMods returns every entry, newest first. Entries created in the same
// instant are ordered by insertion, latest first.
func (c *MemoryCatalog) ListMods(ctx context.Context) ([]interfaces.Mod, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	rows := make([]memoryRow, 0, len(c.rows))
	for _, row := range c.rows {
		rows = append(rows, row)
	}
	c.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		if ti, tj := rows[i].mod.CreatedAt.Time, rows[j].mod.CreatedAt.Time; !ti.Equal(tj) {
			return ti.After(tj)
		}
		return rows[i].seq > rows[j].seq
	})

	mods := make([]interfaces.Mod, 0, len(rows))
	for _, row := range rows {
		mods = append(mods, cloneMod(row.mod))
	}
	return mods, nil
}

// CreateMod stores a new entry with a fresh uuid and creation time.
func (c *MemoryCatalog) CreateMod(ctx context.Context, in interfaces.ModInput) (interfaces.Mod, error) {
	if err := ctx.Err(); err != nil {
		return interfaces.Mod{}, err
	}

	mod := interfaces.Mod{
		ID:               interfaces.ModID(c.newID()),
		Name:             in.Name,
		Description:      in.Description,
		MinecraftVersion: in.MinecraftVersion,
		FabricRequired:   in.FabricRequired,
		Launchers:        append([]string{}, in.Launchers...),
		FileName:         in.FileName,
		FileURL:          in.FileURL,
		CreatedAt:        interfaces.NewTimestamp(c.now()),
	}

	c.mu.Lock()
	c.seq++
	c.rows[mod.ID] = memoryRow{mod: mod, seq: c.seq}
	c.mu.Unlock()

	c.log.Debug("Stored mod in memory", slog.String("id", mod.ID.String()))
	return cloneMod(mod), nil
}

// UpdateMod applies patch to the entry with the given id.
func (c *MemoryCatalog) UpdateMod(ctx context.Context, id interfaces.ModID, patch interfaces.ModPatch) (interfaces.Mod, error) {
	if err := ctx.Err(); err != nil {
		return interfaces.Mod{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	row, ok := c.rows[id]
	if !ok {
		return interfaces.Mod{}, interfaces.ErrModNotFound
	}
	patch.Apply(&row.mod)
	c.rows[id] = row

	return cloneMod(row.mod), nil
}

// DeleteMod removes the entry if present.
func (c *MemoryCatalog) DeleteMod(ctx context.Context, id interfaces.ModID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	delete(c.rows, id)
	c.mu.Unlock()
	return nil
}

// Available always reports true.
func (c *MemoryCatalog) Available(ctx context.Context) bool {
	return true
}

// Name returns a unique identifier for this backend.
func (c *MemoryCatalog) Name() string {
	return "memory"
}

// LocationURI returns the URI that identifies this backend.
func (c *MemoryCatalog) LocationURI() string {
	return fmt.Sprintf("memory://%p", c)
}

func cloneMod(m interfaces.Mod) interfaces.Mod {
	m.Launchers = append([]string{}, m.Launchers...)
	return m
}
