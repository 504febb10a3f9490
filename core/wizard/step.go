package wizard

// Step is a page of the wizard.
type Step int

const (
	StepDetails Step = iota
	StepParticipants
	StepAttendance
	StepDocuments
)

const StepCount = 4

var stepNames = [StepCount]string{"details", "participants", "attendance", "documents"}

func (s Step) String() string {
	if !s.Valid() {
		return "unknown"
	}
	return stepNames[s]
}

func (s Step) Valid() bool { return s >= StepDetails && s < StepCount }

// ParseStep accepts a step name or its index.
func ParseStep(val string) (Step, bool) {
	for i, name := range stepNames {
		if val == name || (len(val) == 1 && val[0] == byte('0'+i)) {
			return Step(i), true
		}
	}
	return 0, false
}

// Unlocked reports whether step can be reached. Attendance and documents need a stored schedule.
func Unlocked(step Step, hasScheduled bool) bool {
	switch step {
	case StepDetails, StepParticipants:
		return true
	case StepAttendance, StepDocuments:
		return hasScheduled
	}
	return false
}

// StepMachine only keeps the current step within bounds: reachability is up to the caller,
// see Unlocked.
type StepMachine struct {
	current Step
}

func (m *StepMachine) Current() Step { return m.current }

// Set moves to step and reports whether it is a valid step.
func (m *StepMachine) Set(step Step) bool {
	if !step.Valid() {
		return false
	}
	m.current = step
	return true
}

func (m *StepMachine) Next() bool { return m.Set(m.current + 1) }

func (m *StepMachine) Back() bool { return m.Set(m.current - 1) }
