package postgres

//nolint:revive
import (
	"taskboard/config"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	driverName      = "postgres"
	maxIdleConns    = 10
	maxOpenConns    = 10
	connMaxLifetime = 30 * time.Minute
)

// Connection holds the read replica and the primary. Todos and tags are read
// from Read and written through Write.
type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

func New(cfg *config.Config) *Connection {
	pg := cfg.DB.Postgres
	wait := time.Duration(pg.RetryWaitTime) * time.Second

	return &Connection{
		Read:  connect("read", pg.Read, pg.Prefix, pg.MaxRetry, wait),
		Write: connect("write", pg.Write, pg.Prefix, pg.MaxRetry, wait),
	}
}

// connect retries until the database answers or attempts run out. It returns
// nil when every attempt failed.
func connect(role string, conn config.PostgresConn, prefix string, attempts int, wait time.Duration) *sqlx.DB {
	logger := log.With().
		Str("role", role).
		Str("addr", conn.Host+":"+conn.Port).
		Str("dbName", prefix+conn.Name).
		Logger()

	for attempt := 1; attempt <= max(attempts, 1); attempt++ {
		db, err := sqlx.Connect(driverName, conn.URL(prefix, nil))
		if err == nil {
			db.SetMaxIdleConns(maxIdleConns)
			db.SetMaxOpenConns(maxOpenConns)
			db.SetConnMaxLifetime(connMaxLifetime)

			logger.Info().Msg("Connected to database")

			return db
		}

		logger.Error().Err(err).Int("attempt", attempt).Msg("Failed connecting to database, retrying")

		time.Sleep(wait)
	}

	logger.Error().Msg("Giving up connecting to database")

	return nil
}
