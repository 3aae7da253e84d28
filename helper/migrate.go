package helper

//nolint:revive
import (
	"errors"
	"fmt"
	"net/url"
	"taskboard/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
)

const migrationsSource = "file://migrations/postgres"

// Action is a migration command understood by Run.
type Action string

const (
	ActionUp     Action = "up"
	ActionStepUp Action = "step-up"
	ActionDown   Action = "down"
	ActionDrop   Action = "drop"
)

// ErrUnknownAction is returned by Run for anything but the Action constants.
var ErrUnknownAction = errors.New("unknown migration action, use up, step-up, down or drop")

func (a Action) valid() bool {
	switch a {
	case ActionUp, ActionStepUp, ActionDown, ActionDrop:
		return true
	}

	return false
}

func (a Action) apply(mig *migrate.Migrate) error {
	switch a {
	case ActionUp:
		return mig.Up()
	case ActionStepUp:
		return mig.Steps(1)
	case ActionDown:
		return mig.Steps(-1)
	case ActionDrop:
		return mig.Down()
	}

	return ErrUnknownAction
}

// Run applies action to the write database. Having nothing to do is not an error.
func Run(cfg *config.Config, action Action) error {
	if !action.valid() {
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}

	pg := cfg.DB.Postgres
	dsn := pg.Write.URL(pg.Prefix, url.Values{"x-migrations-table": {pg.MigrationTable}})

	mig, err := migrate.New(migrationsSource, dsn)
	if err != nil {
		return fmt.Errorf("creating migrate instance: %w", err)
	}

	defer func() {
		if srcErr, dbErr := mig.Close(); srcErr != nil || dbErr != nil {
			log.Warn().AnErr("source", srcErr).AnErr("database", dbErr).Msg("Failed to close migrations")
		}
	}()

	if err := action.apply(mig); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("running migration %s: %w", action, err)
	}

	version, dirty, err := mig.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("reading migration version: %w", err)
	}

	log.Info().Str("action", string(action)).Uint("version", version).Bool("dirty", dirty).Msg("Database migrations applied")

	return nil
}

// Up migrates to the latest version. The server runs it on start when
// DB_POSTGRES_AUTO_MIGRATE is set.
func Up(cfg *config.Config) error {
	return Run(cfg, ActionUp)
}
