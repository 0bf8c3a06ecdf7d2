package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tandemhq/tandem/internal/db"
	"github.com/tandemhq/tandem/internal/identity"
	"github.com/tandemhq/tandem/internal/repository"
	"github.com/tandemhq/tandem/internal/service"
)

// App holds the repositories and services CLI commands are built on.
type App struct {
	Tasks            repository.TaskRepo
	Weeks            repository.WeekRepo
	Goals            repository.GoalRepo
	PlanningProgress repository.ProgressRepo
	ReviewProgress   repository.ProgressRepo
	UoW              db.UnitOfWork
	Streaks          service.StreakService
	Identity         identity.Provider

	// IsInteractive reports whether stdin is a terminal; the wizard
	// commands refuse to run without one.
	IsInteractive func() bool

	// Out is where commands write; defaults to stdout.
	Out io.Writer
}

func (a *App) out() io.Writer {
	if a.Out != nil {
		return a.Out
	}
	return os.Stdout
}

// NewRootCmd creates the top-level "tandem" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "tandem",
		Short: "Weekly planning and review for two",
	}

	root.AddCommand(
		newPlanCmd(app),
		newReviewCmd(app),
		newStatusCmd(app),
	)

	return root
}
