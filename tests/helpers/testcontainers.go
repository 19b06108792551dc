// Helpers for running integration tests against a real MariaDB in a
// container. Used by tests/integration and by the cmd/testdb standalone
// executable. Expects environment variables, with .env defaults.
package helpers

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/go-sql-driver/mysql"
	"github.com/nutricart/nutricart-api/data"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// TestContainers tracks the containers one test run owns.
type TestContainers struct {
	DBContainer testcontainers.Container
	DSN         string
}

func (tc *TestContainers) Terminate(t *testing.T) {
	ctx := context.Background()
	if tc.DBContainer != nil {
		if err := tc.DBContainer.Terminate(ctx); err != nil {
			logMessage(t, "Failed to terminate MariaDB: %v", err)
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// CreateDBContainer starts a MariaDB container, creates the application
// database and user, and applies the embedded DDL and seed.
func CreateDBContainer(t *testing.T) (*TestContainers, error) {
	ctx := context.Background()
	tc := &TestContainers{}

	rootPassword := envOr("DB_ROOT_PASSWORD", "root-secret")
	database := envOr("DB_DATABASE", "nutricart")
	user := envOr("DB_USER", "nutricart")
	password := envOr("DB_PASSWORD", "nutricart-secret")

	tcpPort, err := nat.NewPort("tcp", "3306")
	if err != nil {
		exitWithError(t, err, "Failed to create DB port")
	}

	dbContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        envOr("DB_IMAGE", "mariadb:11"),
			ExposedPorts: []string{string(tcpPort)},
			Env: map[string]string{
				"MYSQL_ROOT_PASSWORD": rootPassword,
				"MYSQL_DATABASE":      database,
				"MYSQL_USER":          user,
				"MYSQL_PASSWORD":      password,
			},
			WaitingFor: wait.ForListeningPort(tcpPort).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		exitWithError(t, err, "Failed to start MariaDB")
	}
	tc.DBContainer = dbContainer

	host, _ := dbContainer.Host(ctx)
	mappedPort, _ := dbContainer.MappedPort(ctx, tcpPort)

	rootDSN := fmt.Sprintf("root:%s@tcp(%s:%s)/", rootPassword, host, mappedPort.Port())
	db, err := sql.Open("mysql", rootDSN)
	if err != nil {
		tc.Terminate(t)
		exitWithError(t, err, "Failed to connect to MariaDB for setup")
	}
	defer db.Close()

	for i := 0; i < 30; i++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(1 * time.Second)
	}
	if err != nil {
		tc.Terminate(t)
		exitWithError(t, err, "MariaDB not ready after 30 seconds")
	}

	if err := executeSQL(db, data.InitdbMariaDBTables); err != nil {
		tc.Terminate(t)
		exitWithError(t, err, "Failed to execute tables init sql")
	}
	if err := executeSQL(db, data.InitdbMariaDBSeed); err != nil {
		tc.Terminate(t)
		exitWithError(t, err, "Failed to execute seed sql")
	}

	tc.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		user, password, host, mappedPort.Port(), database)
	logMessage(t, "DB_DSN=%s", tc.DSN)

	return tc, nil
}

// OpenGorm connects GORM to the containerized database.
func (tc *TestContainers) OpenGorm(t *testing.T) *gorm.DB {
	db, err := gorm.Open(gormmysql.Open(tc.DSN), &gorm.Config{})
	if err != nil {
		exitWithError(t, err, "Failed to open gorm connection")
	}
	return db
}

// executeSQL runs a multi-statement script, stripping -- comments and
// splitting on semicolons. Statements in the init scripts never contain
// literal semicolons, so the naive split holds.
func executeSQL(db *sql.DB, script string) error {
	var cleaned []string
	for _, line := range strings.Split(script, "\n") {
		if idx := strings.Index(line, "--"); idx >= 0 {
			line = line[:idx]
		}
		cleaned = append(cleaned, line)
	}

	for _, stmt := range strings.Split(strings.Join(cleaned, "\n"), ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("%s : when executing > %s", err.Error(), stmt)
		}
	}
	return nil
}

func exitWithError(t *testing.T, err error, msg string) {
	if t != nil {
		t.Fatalf(msg+": %v", err)
	} else {
		fmt.Printf(msg+": %v\n", err)
		os.Exit(1)
	}
}

func logMessage(t *testing.T, format string, args ...any) {
	if t != nil {
		t.Logf(format, args...)
	} else {
		fmt.Printf(format+"\n", args...)
	}
}
