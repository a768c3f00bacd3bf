package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/glazedv3/mods-backend/interfaces"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// pgxQuerier is the subset of *pgxpool.Pool used by PostgresCatalog.
type pgxQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Ping(ctx context.Context) error
}

// PostgresCatalog stores the catalog directly in a Postgres table. The
// table is expected to carry the same columns as the hosted catalog; the id
// column may be any type with a text cast (bigint, uuid).
type PostgresCatalog struct {
	pool        pgxQuerier
	closer      func()
	table       string
	locationURI string
	log         *slog.Logger
}

// NewPostgresCatalog connects a pgx pool to dsn.
func NewPostgresCatalog(ctx context.Context, dsn, table string, log *slog.Logger) (*PostgresCatalog, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("%w: invalid table name %q", interfaces.ErrInvalidLocationURI, table)
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.ConnConfig.ConnectTimeout == 0 {
		cfg.ConnConfig.ConnectTimeout = 30 * time.Second
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	c := newPostgresCatalog(pool, table, log)
	c.closer = pool.Close
	c.locationURI = fmt.Sprintf("postgres://%s/%s?table=%s", cfg.ConnConfig.Host, cfg.ConnConfig.Database, table)
	return c, nil
}

func newPostgresCatalog(pool pgxQuerier, table string, log *slog.Logger) *PostgresCatalog {
	return &PostgresCatalog{
		pool:        pool,
		table:       quoteTable(table),
		locationURI: "postgres://?table=" + table,
		log:         log,
	}
}

// Close releases the pool.
func (c *PostgresCatalog) Close() {
	if c.closer != nil {
		c.closer()
	}
}

const modColumns = `id::text, name, coalesce(description, ''), minecraft_version, coalesce(fabric_required, false), coalesce(launchers, '{}'), file_name, file_url, created_at`

// ListMods returns all rows ordered by created_at descending.
func (c *PostgresCatalog) ListMods(ctx context.Context) ([]interfaces.Mod, error) {
	rows, err := c.pool.Query(ctx, fmt.Sprintf(`SELECT %s FROM %s ORDER BY created_at DESC`, modColumns, c.table))
	if err != nil {
		return nil, fmt.Errorf("list mods: %w", err)
	}
	mods, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (interfaces.Mod, error) {
		return scanMod(row)
	})
	if err != nil {
		return nil, fmt.Errorf("list mods: %w", err)
	}
	return mods, nil
}

// CreateMod inserts one row and returns it.
func (c *PostgresCatalog) CreateMod(ctx context.Context, in interfaces.ModInput) (interfaces.Mod, error) {
	launchers := in.Launchers
	if launchers == nil {
		launchers = []string{}
	}
	query := fmt.Sprintf(`INSERT INTO %s (name, description, minecraft_version, fabric_required, launchers, file_name, file_url)
VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING %s`, c.table, modColumns)

	mod, err := scanMod(c.pool.QueryRow(ctx, query,
		in.Name, in.Description, in.MinecraftVersion, in.FabricRequired, launchers, in.FileName, in.FileURL))
	if err != nil {
		return interfaces.Mod{}, fmt.Errorf("insert mod: %w", err)
	}
	c.log.Debug("Inserted mod", slog.String("id", mod.ID.String()), slog.String("table", c.table))
	return mod, nil
}

// UpdateMod applies patch and returns the updated row. An empty patch
// returns the current row.
func (c *PostgresCatalog) UpdateMod(ctx context.Context, id interfaces.ModID, patch interfaces.ModPatch) (interfaces.Mod, error) {
	query, args := buildUpdateQuery(c.table, id, patch)
	mod, err := scanMod(c.pool.QueryRow(ctx, query, args...))
	if isNoRows(err) {
		return interfaces.Mod{}, interfaces.ErrModNotFound
	}
	if err != nil {
		return interfaces.Mod{}, fmt.Errorf("update mod: %w", err)
	}
	return mod, nil
}

// DeleteMod removes rows matching id. Zero affected rows is not an error.
func (c *PostgresCatalog) DeleteMod(ctx context.Context, id interfaces.ModID) error {
	tag, err := c.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id::text = $1`, c.table), id.String())
	if err != nil {
		return fmt.Errorf("delete mod: %w", err)
	}
	c.log.Debug("Deleted mod", slog.String("id", id.String()), slog.Int64("rows", tag.RowsAffected()))
	return nil
}

// Available pings the database.
func (c *PostgresCatalog) Available(ctx context.Context) bool {
	if err := c.pool.Ping(ctx); err != nil {
		c.log.Warn("Postgres catalog unavailable", "err", err)
		return false
	}
	return true
}

// Name returns a unique identifier for this backend.
func (c *PostgresCatalog) Name() string {
	return "postgres-" + strings.ReplaceAll(c.table, `"`, "")
}

// LocationURI returns the URI that identifies this backend.
func (c *PostgresCatalog) LocationURI() string {
	return c.locationURI
}

// buildUpdateQuery assembles the UPDATE for patch. Columns are emitted in
// MutableModFields order so the statement is stable for a given key set.
func buildUpdateQuery(table string, id interfaces.ModID, patch interfaces.ModPatch) (string, []any) {
	args := []any{id.String()}
	var sets []string
	for _, field := range interfaces.MutableModFields {
		value, ok := patch[field]
		if !ok {
			continue
		}
		if field == interfaces.FieldLaunchers {
			if launchers, _ := value.([]string); launchers == nil {
				value = []string{}
			}
		}
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", field, len(args)))
	}

	if len(sets) == 0 {
		return fmt.Sprintf(`SELECT %s FROM %s WHERE id::text = $1`, modColumns, table), args
	}
	return fmt.Sprintf(`UPDATE %s SET %s WHERE id::text = $1 RETURNING %s`,
		table, strings.Join(sets, ", "), modColumns), args
}

func scanMod(row pgx.Row) (interfaces.Mod, error) {
	var (
		mod     interfaces.Mod
		id      string
		created *time.Time
	)
	err := row.Scan(&id, &mod.Name, &mod.Description, &mod.MinecraftVersion, &mod.FabricRequired,
		&mod.Launchers, &mod.FileName, &mod.FileURL, &created)
	if err != nil {
		return interfaces.Mod{}, err
	}
	mod.ID = interfaces.ModID(id)
	if created != nil {
		mod.CreatedAt = interfaces.NewTimestamp(*created)
	}
	return mod, nil
}

func quoteTable(table string) string {
	return pgx.Identifier(strings.Split(table, ".")).Sanitize()
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
