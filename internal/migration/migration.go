package migration

import (
	"database/sql"
	"embed"
	"errors"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rotisserie/eris"
	referencedomain "github.com/smallbiznis/tractionlens/internal/reference/domain"
	"github.com/smallbiznis/tractionlens/pkg/db"
	"gorm.io/gorm"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// Migrate brings the reference schema up to date. Postgres runs the versioned
// SQL migrations; the other dialects use gorm's AutoMigrate over the models.
func Migrate(conn *gorm.DB, dbType string) error {
	if conn == nil {
		return errors.New("migration database handle is required")
	}

	if dbType != db.TypePostgres {
		return AutoMigrate(conn)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return eris.Wrap(err, "resolve sql handle")
	}
	return RunMigrations(sqlDB)
}

// AutoMigrate creates the reference tables from their gorm models.
func AutoMigrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(referencedomain.Models()...); err != nil {
		return eris.Wrap(err, "auto migrate reference schema")
	}
	return nil
}

// RunMigrations applies the embedded SQL migrations against Postgres.
func RunMigrations(sqlDB *sql.DB) error {
	if sqlDB == nil {
		return errors.New("migration database handle is required")
	}

	sub, err := fs.Sub(embeddedMigrations, migrationsDir)
	if err != nil {
		return eris.Wrap(err, "open migrations")
	}

	source, err := iofs.New(sub, ".")
	if err != nil {
		return eris.Wrap(err, "create migration source")
	}

	driver, err := postgres.WithInstance(sqlDB, &postgres.Config{})
	if err != nil {
		return eris.Wrap(err, "create migration driver")
	}

	migrator, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return eris.Wrap(err, "create migrator")
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return eris.Wrap(upErr, "apply migrations")
	}
	// Do not call migrator.Close here because it would close the shared *sql.DB.

	return nil
}
