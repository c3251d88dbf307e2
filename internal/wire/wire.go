// Package wire provides dependency injection for the rollcall application.
// It creates singleton services with lazy initialization.
package wire

import (
	"database/sql"
	"io"
	"log"
	"log/slog"
	"os"
	"sync"

	"gorm.io/gorm"

	cliadapter "github.com/example/rollcall/internal/adapters/cli"
	"github.com/example/rollcall/internal/adapters/httpapi"
	"github.com/example/rollcall/internal/adapters/postgres"
	"github.com/example/rollcall/internal/adapters/sqlite"
	"github.com/example/rollcall/internal/app"
	"github.com/example/rollcall/internal/config"
	"github.com/example/rollcall/internal/db"
	"github.com/example/rollcall/internal/logging"
	"github.com/example/rollcall/internal/ports/secondary"
)

// stores groups the secondary ports of one storage backend.
type stores struct {
	workers     secondary.WorkerRepository
	projects    secondary.ProjectRepository
	assignments secondary.AssignmentRepository
	attendance  secondary.AttendanceRepository
	roster      secondary.RosterWriter
}

var (
	cfg         *config.Config
	logger      *slog.Logger
	repos       stores
	sqliteConn  *sql.DB
	gormConn    *gorm.DB
	attendance  *app.AttendanceServiceImpl
	sessionPool *app.SessionPool
	once        sync.Once
)

// Config returns the loaded configuration.
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// Logger returns the process logger.
func Logger() *slog.Logger {
	once.Do(initServices)
	return logger
}

// AttendanceService returns the singleton session used by the CLI.
// No worker is selected until the caller runs SelectWorker.
func AttendanceService() *app.AttendanceServiceImpl {
	once.Do(initServices)
	return attendance
}

// SessionPool returns the per-worker session pool used by the HTTP server.
func SessionPool() *app.SessionPool {
	once.Do(initServices)
	return sessionPool
}

// RosterWriter returns the directory writer of the configured backend.
func RosterWriter() secondary.RosterWriter {
	once.Do(initServices)
	return repos.roster
}

// SQLiteDB returns the sqlite connection, or nil when another driver is configured.
func SQLiteDB() *sql.DB {
	once.Do(initServices)
	return sqliteConn
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("failed to get working directory: %v", err)
	}
	cfg, err = config.Load(wd)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err = logging.New(os.Stderr, cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	slog.SetDefault(logger)

	switch cfg.Driver {
	case config.DriverPostgres:
		gormConn, err = postgres.Open(cfg.DSN)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		repos = stores{
			workers:     postgres.NewWorkerRepository(gormConn),
			projects:    postgres.NewProjectRepository(gormConn),
			assignments: postgres.NewAssignmentRepository(gormConn),
			attendance:  postgres.NewAttendanceRepository(gormConn),
			roster:      postgres.NewRosterWriter(gormConn),
		}
	default:
		sqliteConn, err = db.GetDB(cfg.DSN)
		if err != nil {
			log.Fatalf("failed to initialize database: %v", err)
		}
		repos = stores{
			workers:     sqlite.NewWorkerRepository(sqliteConn),
			projects:    sqlite.NewProjectRepository(sqliteConn),
			assignments: sqlite.NewAssignmentRepository(sqliteConn),
			attendance:  sqlite.NewAttendanceRepository(sqliteConn),
			roster:      sqlite.NewRosterWriter(sqliteConn),
		}
	}

	attendance = newAttendanceService()
	sessionPool = app.NewSessionPool(newAttendanceService)
}

func newAttendanceService() *app.AttendanceServiceImpl {
	return app.NewAttendanceService(repos.workers, repos.projects, repos.assignments, repos.attendance, logger)
}

// AttendanceAdapter returns a new AttendanceAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func AttendanceAdapter() *cliadapter.AttendanceAdapter {
	return AttendanceAdapterWithOutput(os.Stdout)
}

// AttendanceAdapterWithOutput returns a new AttendanceAdapter writing to the given output.
func AttendanceAdapterWithOutput(out io.Writer) *cliadapter.AttendanceAdapter {
	once.Do(initServices)
	return cliadapter.NewAttendanceAdapter(attendance, out)
}

// HTTPServer returns a new HTTP server over the session pool.
func HTTPServer() *httpapi.Server {
	once.Do(initServices)
	return httpapi.NewServer(sessionPool, logger.With("component", "http"))
}
