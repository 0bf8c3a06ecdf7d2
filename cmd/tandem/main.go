package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/tandemhq/tandem/internal/cli"
	"github.com/tandemhq/tandem/internal/db"
	"github.com/tandemhq/tandem/internal/identity"
	"github.com/tandemhq/tandem/internal/repository"
	"github.com/tandemhq/tandem/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Determine DB path: env var or default ~/.tandem/tandem.db
	dbPath := os.Getenv("TANDEM_DB")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".tandem", "tandem.db")
	}

	// Open database
	database, err := db.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	taskRepo := repository.NewSQLiteTaskRepo(database)
	weekRepo := repository.NewSQLiteWeekRepo(database)
	goalRepo := repository.NewSQLiteGoalRepo(database)
	profileRepo := repository.NewSQLiteProfileRepo(database)
	planningProgress := repository.NewSQLiteProgressRepo(database, repository.ProgressPlanning)
	reviewProgress := repository.NewSQLiteProgressRepo(database, repository.ProgressReview)

	// Wire unit of work for transactional operations
	uow := db.NewSQLiteUnitOfWork(database)

	// Optional use-case logging to stderr
	var observers []service.UseCaseObserver
	if os.Getenv("TANDEM_LOG") != "" {
		observers = append(observers, service.NewLogUseCaseObserver(os.Stderr))
	}

	app := &cli.App{
		Tasks:            taskRepo,
		Weeks:            weekRepo,
		Goals:            goalRepo,
		PlanningProgress: planningProgress,
		ReviewProgress:   reviewProgress,
		UoW:              uow,
		Streaks:          service.NewStreakService(weekRepo, profileRepo, observers...),
		Identity:         identity.NewProfileProvider(profileRepo),
	}

	// Detect interactive terminal for the wizard commands.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	// Execute root command
	rootCmd := cli.NewRootCmd(app)
	return rootCmd.Execute()
}
