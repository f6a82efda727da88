package bot

// Step is where a chat is in the date → grade → class navigation.
type Step int

const (
	StepNone Step = iota
	StepDates
	StepGrades
	StepClasses
	StepShown
)

// State is the per-chat navigation state used by the back button.
type State struct {
	Step    Step
	Date    string
	SheetID string
	Grade   int
	Label   string
}
