package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/tandemhq/tandem/internal/cli/formatter"
	"github.com/tandemhq/tandem/internal/domain"
	"github.com/tandemhq/tandem/internal/wizard"
)

type reviewKeyMap struct {
	Done        key.Binding
	Tried       key.Binding
	Skipped     key.Binding
	Note        key.Binding
	Next        key.Binding
	Prev        key.Binding
	QuickFinish key.Binding
	Quit        key.Binding
}

func defaultReviewKeys() reviewKeyMap {
	return reviewKeyMap{
		Done:        key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "done")),
		Tried:       key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "tried")),
		Skipped:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "skipped")),
		Note:        key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "note")),
		Next:        key.NewBinding(key.WithKeys("right", "enter"), key.WithHelp("→", "next")),
		Prev:        key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "back")),
		QuickFinish: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "finish rest")),
		Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "save & quit")),
	}
}

// taskReviewModel is the bubbletea model for the task-by-task review step.
// It drives the review wizard; when the wizard leaves TASK_REVIEW the
// program quits and the command picks up at the summary.
type taskReviewModel struct {
	ctx         context.Context
	w           *wizard.ReviewWizard
	keys        reviewKeyMap
	note        textinput.Model
	editingNote bool
	abandoned   bool
	errText     string
}

func newTaskReviewModel(ctx context.Context, w *wizard.ReviewWizard) taskReviewModel {
	ti := textinput.New()
	ti.Prompt = "  note: "
	ti.CharLimit = 280
	return taskReviewModel{
		ctx:  ctx,
		w:    w,
		keys: defaultReviewKeys(),
		note: ti,
	}
}

func (m taskReviewModel) Init() tea.Cmd {
	return nil
}

func (m taskReviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.editingNote {
		switch keyMsg.String() {
		case "enter", "esc":
			m.editingNote = false
			m.note.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.note, cmd = m.note.Update(keyMsg)
		m.w.EditTaskNote(m.ctx, m.note.Value())
		return m, cmd
	}

	m.errText = ""
	switch {
	case key.Matches(keyMsg, m.keys.Quit):
		m.abandoned = true
		return m, tea.Quit

	case key.Matches(keyMsg, m.keys.Done):
		return m.record(domain.TaskCompleted)
	case key.Matches(keyMsg, m.keys.Tried):
		return m.record(domain.TaskTried)
	case key.Matches(keyMsg, m.keys.Skipped):
		return m.record(domain.TaskSkipped)

	case key.Matches(keyMsg, m.keys.Note):
		if task := m.w.CurrentTask(); task != nil {
			m.note.SetValue(task.ReviewNote)
			m.editingNote = true
			m.note.Focus()
		}
		return m, textinput.Blink

	case key.Matches(keyMsg, m.keys.Next):
		m.w.Next(m.ctx)
	case key.Matches(keyMsg, m.keys.Prev):
		m.w.Previous(m.ctx)

	case key.Matches(keyMsg, m.keys.QuickFinish):
		if err := m.w.QuickFinish(m.ctx); err != nil {
			m.errText = "Couldn't finish the review. Try again."
			return m, nil
		}
	}

	if m.w.Step() != wizard.ReviewTaskReview {
		return m, tea.Quit
	}
	return m, nil
}

// record persists an outcome and moves to the next task.
func (m taskReviewModel) record(outcome domain.TaskStatus) (tea.Model, tea.Cmd) {
	if err := m.w.RecordOutcome(m.ctx, outcome); err != nil {
		m.errText = "Couldn't save the outcome. Try again."
		return m, nil
	}
	m.w.Next(m.ctx)
	if m.w.Step() != wizard.ReviewTaskReview {
		return m, tea.Quit
	}
	return m, nil
}

func (m taskReviewModel) View() string {
	task := m.w.CurrentTask()
	if task == nil {
		return ""
	}

	var b strings.Builder
	position := float64(m.w.TaskIndex()+1) / float64(m.w.TaskCount())
	b.WriteString(fmt.Sprintf("\n  %s %s\n\n",
		formatter.RenderProgress(position, 16),
		formatter.Dim(fmt.Sprintf("task %d of %d", m.w.TaskIndex()+1, m.w.TaskCount()))))

	b.WriteString("  " + formatter.Bold(task.Title) + "\n")
	if task.Notes != "" {
		b.WriteString("  " + formatter.Dim(task.Notes) + "\n")
	}
	if outcome, ok := m.w.Outcome(task.ID); ok {
		b.WriteString("  " + formatter.OutcomeBadge(outcome) + "\n")
	} else if task.Status.IsReviewed() {
		b.WriteString("  " + formatter.OutcomeBadge(task.Status) + "\n")
	}

	if m.editingNote {
		b.WriteString("\n" + m.note.View() + "\n")
		b.WriteString("  " + formatter.Dim("enter/esc to stop editing") + "\n")
		return b.String()
	}

	if m.errText != "" {
		b.WriteString("\n  " + formatter.StyleRed.Render(m.errText) + "\n")
	}

	b.WriteString("\n  " + formatter.Dim("d done · t tried · s skipped · n note · ←/→ move · f finish rest · q save & quit") + "\n")
	return b.String()
}
