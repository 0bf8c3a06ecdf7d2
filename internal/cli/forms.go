package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/tandemhq/tandem/internal/cli/formatter"
	"github.com/tandemhq/tandem/internal/domain"
	"github.com/tandemhq/tandem/internal/wizard"
)

// formConfirm runs a yes/no confirmation.
func formConfirm(title string, result *bool) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(result),
		),
	).WithTheme(tandemHuhTheme()).WithShowHelp(false).Run()
}

// formSelectMode asks solo or together.
func formSelectMode(result *domain.ReviewMode) error {
	var choice string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("How are you reviewing?").
				Options(
					huh.NewOption("Solo", string(domain.ReviewSolo)),
					huh.NewOption("Together", string(domain.ReviewTogether)),
				).
				Value(&choice),
		),
	).WithTheme(tandemHuhTheme()).WithShowHelp(false).Run()
	if err != nil {
		return err
	}
	*result = domain.ReviewMode(choice)
	return nil
}

// formRating collects a 1..5 week rating plus an optional note.
func formRating(rating *int, note *string) error {
	var raw string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("How was your week? (1-5)").
				Placeholder("3").
				Value(&raw).
				Validate(validateRating),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Anything to remember? (optional)").
				Value(note),
		),
	).WithTheme(tandemHuhTheme()).WithShowHelp(false).Run()
	if err != nil {
		return err
	}
	*rating, _ = strconv.Atoi(raw)
	return nil
}

func validateRating(s string) error {
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 || v > 5 {
		return fmt.Errorf("enter a number from 1 to 5")
	}
	return nil
}

// formNewTask collects a new task. A blank title means the user is done
// adding tasks.
func formNewTask(suggestions []*domain.Goal, title, notes *string, priority *domain.TaskPriority, goalID *string) error {
	var prio string = string(domain.PriorityNormal)

	groups := []*huh.Group{
		huh.NewGroup(
			huh.NewInput().
				Title("Task (leave blank to finish)").
				Value(title),
			huh.NewInput().
				Title("Notes (optional)").
				Value(notes),
			huh.NewSelect[string]().
				Title("Priority").
				Options(
					huh.NewOption("Normal", string(domain.PriorityNormal)),
					huh.NewOption("High", string(domain.PriorityHigh)),
					huh.NewOption("Low", string(domain.PriorityLow)),
				).
				Value(&prio),
		),
	}

	if len(suggestions) > 0 {
		options := make([]huh.Option[string], 0, len(suggestions)+1)
		options = append(options, huh.NewOption("None", ""))
		for _, g := range suggestions {
			label := fmt.Sprintf("%s (%d/%d)", g.Title, g.CurrentCount, g.TargetCount)
			options = append(options, huh.NewOption(label, g.ID))
		}
		groups = append(groups, huh.NewGroup(
			huh.NewSelect[string]().
				Title("Counts toward a goal?").
				Options(options...).
				Value(goalID),
		))
	}

	err := huh.NewForm(groups...).WithTheme(tandemHuhTheme()).WithShowHelp(false).Run()
	if err != nil {
		return err
	}
	*priority = domain.TaskPriority(prio)
	return nil
}

// formRequestDecision asks accept-or-discuss for one partner request.
func formRequestDecision(request *domain.Task, partnerName string, accept *bool) error {
	who := partnerName
	if who == "" {
		who = "Your partner"
	}
	var choice string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(fmt.Sprintf("%s asked: %s", who, request.Title)).
				Options(
					huh.NewOption("Take it on", "accept"),
					huh.NewOption("Discuss later", "discuss"),
				).
				Value(&choice),
		),
	).WithTheme(tandemHuhTheme()).WithShowHelp(false).Run()
	if err != nil {
		return err
	}
	*accept = choice == "accept"
	return nil
}

// flushEffects drains pending wizard effects without blocking, printing
// transient messages for the user.
func flushEffects(out io.Writer, effects <-chan wizard.Effect) {
	for {
		select {
		case eff := <-effects:
			if msg, ok := eff.(wizard.ShowMessage); ok {
				fmt.Fprintln(out, formatter.Dim(msg.Text))
			}
		default:
			return
		}
	}
}
