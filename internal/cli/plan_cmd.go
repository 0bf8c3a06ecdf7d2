package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/tandemhq/tandem/internal/calendar"
	"github.com/tandemhq/tandem/internal/cli/formatter"
	"github.com/tandemhq/tandem/internal/domain"
	"github.com/tandemhq/tandem/internal/wizard"
)

// priorityFlag parses --priority into a TaskPriority.
type priorityFlag domain.TaskPriority

var _ pflag.Value = (*priorityFlag)(nil)

func (p *priorityFlag) String() string { return string(*p) }

func (p *priorityFlag) Type() string { return "priority" }

func (p *priorityFlag) Set(s string) error {
	switch domain.TaskPriority(s) {
	case domain.PriorityLow, domain.PriorityNormal, domain.PriorityHigh:
		*p = priorityFlag(s)
		return nil
	}
	return fmt.Errorf("priority must be low, normal, or high")
}

func newPlanCmd(app *App) *cobra.Command {
	var addTitle string
	var labels []string
	priority := priorityFlag(domain.PriorityNormal)

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Plan the current week",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if addTitle != "" {
				return quickAddTask(ctx, app, addTitle, domain.TaskPriority(priority), labels)
			}
			if app.IsInteractive != nil && !app.IsInteractive() {
				return fmt.Errorf("planning is interactive; use --add to add a task directly")
			}
			return runPlanning(ctx, app)
		},
	}

	cmd.Flags().StringVar(&addTitle, "add", "", "Add a single task without the wizard")
	cmd.Flags().Var(&priority, "priority", "Priority for --add (low, normal, high)")
	cmd.Flags().StringArrayVar(&labels, "label", nil, "Label for --add (repeatable)")

	return cmd
}

// quickAddTask drops a task into the current week without entering the
// wizard.
func quickAddTask(ctx context.Context, app *App, title string, priority domain.TaskPriority, labels []string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return wizard.ErrBlankTitle
	}

	id, err := app.Identity.Await(ctx)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	weekID := calendar.WeekIDFor(now)
	if _, err := app.Weeks.GetOrCreate(ctx, weekID, id.UserID); err != nil {
		return err
	}

	task := &domain.Task{
		ID:        uuid.NewString(),
		WeekID:    weekID,
		OwnerID:   id.UserID,
		Title:     title,
		Priority:  priority,
		Labels:    labels,
		Status:    domain.TaskPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := app.Tasks.Create(ctx, task); err != nil {
		return fmt.Errorf("adding task: %w", err)
	}
	fmt.Fprintf(app.out(), "Added %q to %s\n", title, weekID)
	return nil
}

// runPlanning drives the planning wizard with interactive forms.
func runPlanning(ctx context.Context, app *App) error {
	id, err := app.Identity.Await(ctx)
	if err != nil {
		return err
	}

	w := wizard.NewPlanningWizard(app.Tasks, app.Weeks, app.Goals, app.PlanningProgress, id)

	stop := formatter.StartSpinner("Loading your week...")
	err = w.Start(ctx)
	stop()
	if err != nil {
		return err
	}
	out := app.out()

	for {
		flushEffects(out, w.Effects())

		switch w.Step() {
		case wizard.PlanningRollover:
			candidate := w.CurrentCandidate()
			if candidate == nil {
				w.CompleteRolloverStep(ctx)
				continue
			}
			var carry bool
			if err := formConfirm(fmt.Sprintf("Carry over %q?", candidate.Title), &carry); err != nil {
				w.Exit(ctx)
				return err
			}
			if carry {
				if err := w.AddCandidate(ctx); err != nil {
					flushEffects(out, w.Effects())
				}
			} else {
				w.SkipCandidate(ctx)
			}
			if w.CurrentCandidate() == nil {
				w.CompleteRolloverStep(ctx)
			}

		case wizard.PlanningAddTasks:
			suggestions, err := w.GoalSuggestions(ctx)
			if err != nil {
				return err
			}
			var title, notes, goalID string
			var priority domain.TaskPriority
			if err := formNewTask(suggestions, &title, &notes, &priority, &goalID); err != nil {
				w.Exit(ctx)
				return err
			}
			if strings.TrimSpace(title) == "" {
				w.CompleteAddTasksStep(ctx)
				continue
			}
			if goalID != "" {
				w.SelectGoal(goalID)
			}
			if _, err := w.AddTask(ctx, title, notes, priority, nil); err != nil {
				flushEffects(out, w.Effects())
			}

		case wizard.PlanningPartnerRequests:
			request := w.CurrentRequest()
			if request == nil {
				w.CompletePartnerRequestsStep(ctx)
				continue
			}
			var accept bool
			if err := formRequestDecision(request, id.PartnerName, &accept); err != nil {
				w.Exit(ctx)
				return err
			}
			if accept {
				if err := w.AcceptRequest(ctx); err != nil {
					flushEffects(out, w.Effects())
				}
			} else {
				w.DiscussRequest(ctx)
			}

		case wizard.PlanningConfirmation:
			s := w.Summary()
			fmt.Fprintln(out, formatter.FormatPlanningSummary(w.WeekID(), s.TotalPlanned, s.RolloverAdded, s.NewTasks, s.AcceptedRequests))
			confirm := true
			if err := formConfirm("Lock in the week?", &confirm); err != nil {
				w.Exit(ctx)
				return err
			}
			if !confirm {
				w.Exit(ctx)
				fmt.Fprintln(out, formatter.Dim("Saved. Run `tandem plan` to pick up where you left off."))
				return nil
			}
			if err := w.CompletePlanning(ctx); err != nil {
				return err
			}
			fmt.Fprintln(out, formatter.StyleGreen.Render("Week planned. Good luck out there."))
			return nil
		}
	}
}
