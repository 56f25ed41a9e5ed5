package relational

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	chmigrate "github.com/golang-migrate/migrate/v4/database/clickhouse"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
)

// ApplyFixtures provisions dataset tables by running the given DDL statements
// as migrations from an in-memory source. Statements execute in order; a
// database already carrying them is left untouched.
func ApplyFixtures(log logrus.FieldLogger, db *sql.DB, dialect Dialect, statements []string) error {
	log = log.WithField("component", "fixture_migrator")

	fsys := newMemFS()
	for i, stmt := range statements {
		fsys.writeFile(fmt.Sprintf("%06d_fixture.up.sql", i+1), stmt)
	}

	src, err := iofs.New(fsys, ".")
	if err != nil {
		return fmt.Errorf("building migration source: %w", err)
	}

	var driver database.Driver
	switch dialect.Name() {
	case "sqlite3":
		driver, err = sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	case "clickhouse":
		driver, err = chmigrate.WithInstance(db, &chmigrate.Config{})
	default:
		return fmt.Errorf("no migration driver for dialect %q", dialect.Name())
	}
	if err != nil {
		return fmt.Errorf("building %s migration driver: %w", dialect.Name(), err)
	}

	m, err := migrate.NewWithInstance("iofs", src, dialect.Name(), driver)
	if err != nil {
		return fmt.Errorf("building migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("applying fixtures: %w", err)
	}

	log.WithField("statements", len(statements)).Debug("fixtures applied")

	return nil
}
