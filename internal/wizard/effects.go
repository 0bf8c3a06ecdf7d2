// Package wizard implements the planning and review flows as explicit state
// machines. Each wizard instance owns its in-memory state, persists a
// checkpoint after every mutating event, and communicates with the hosting
// UI through a one-shot effect stream.
package wizard

// Effect is a one-shot instruction for the hosting UI. Delivery is
// at-most-once per emission; the consumer must not re-process a value.
type Effect interface {
	isEffect()
}

// NavigateToStep tells the host to render the named step.
type NavigateToStep struct {
	Step string
}

// NavigateBack tells the host to render the previous step.
type NavigateBack struct{}

// ExitWizard tells the host to leave the wizard entirely.
type ExitWizard struct{}

// ShowMessage surfaces a transient, non-blocking message.
type ShowMessage struct {
	Text string
}

// TriggerHaptic asks the host for a short haptic/audible cue.
type TriggerHaptic struct{}

// ClearInputFocus asks the host to drop focus from the active text field.
type ClearInputFocus struct{}

func (NavigateToStep) isEffect()  {}
func (NavigateBack) isEffect()    {}
func (ExitWizard) isEffect()      {}
func (ShowMessage) isEffect()     {}
func (TriggerHaptic) isEffect()   {}
func (ClearInputFocus) isEffect() {}

// StepPlanningEntry is the cross-wizard navigation target emitted when a
// finished review should roll straight into planning the next week.
const StepPlanningEntry = "planning"

type effectEmitter struct {
	ch chan Effect
}

func newEffectEmitter() *effectEmitter {
	return &effectEmitter{ch: make(chan Effect, 16)}
}

// emit never blocks; if the consumer has fallen far behind, the oldest
// pending effect is dropped to make room.
func (e *effectEmitter) emit(eff Effect) {
	for {
		select {
		case e.ch <- eff:
			return
		default:
			select {
			case <-e.ch:
			default:
			}
		}
	}
}

func (e *effectEmitter) stream() <-chan Effect {
	return e.ch
}
