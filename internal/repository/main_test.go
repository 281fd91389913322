package repository

import (
	"context"
	"database/sql"
	"log"
	"os"
	"testing"
	"time"

	"ecostore/internal/database"
	"ecostore/migrations"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// testDB is nil when no container runtime is available; integration tests
// call requireDB and skip in that case.
var testDB *sql.DB

func setupTestDB() (teardown func(context.Context, ...testcontainers.TerminateOption) error, err error) {
	defer func() {
		// testcontainers panics when no Docker host can be found
		if r := recover(); r != nil {
			log.Printf("container runtime unavailable: %v", r)
			teardown, err = nil, nil
		}
	}()

	var (
		dbName = "testdb"
		dbPwd  = "password"
		dbUser = "user"
	)

	dbContainer, err := postgres.Run(
		context.Background(),
		"postgres:15",
		postgres.WithDatabase(dbName),
		postgres.WithUsername(dbUser),
		postgres.WithPassword(dbPwd),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		return nil, err
	}

	connStr, err := dbContainer.ConnectionString(context.Background(), "sslmode=disable")
	if err != nil {
		return dbContainer.Terminate, err
	}

	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return dbContainer.Terminate, err
	}

	if err := database.RunMigrations(db, migrations.FS, ".", zap.NewNop()); err != nil {
		return dbContainer.Terminate, err
	}

	testDB = db
	return dbContainer.Terminate, nil
}

func TestMain(m *testing.M) {
	teardown, err := setupTestDB()
	if err != nil {
		log.Printf("could not start postgres container, integration tests will be skipped: %v", err)
	}

	code := m.Run()

	if testDB != nil {
		_ = testDB.Close()
	}
	if teardown != nil {
		if err := teardown(context.Background()); err != nil {
			log.Printf("could not teardown postgres container: %v", err)
		}
	}

	os.Exit(code)
}

func requireDB(t *testing.T) {
	t.Helper()
	if testDB == nil {
		t.Skip("postgres container not available")
	}
}
