package compiler

// Outcome is the result of one descriptor in one compile pass.
type Outcome struct {
	Name   FunctionName
	Status Status
	Errors []*DescriptorError
	// Calls is the number of native calls the descriptor issued.
	Calls int
}

// Messages returns the human-readable FAIL messages in the order they were found.
func (o Outcome) Messages() []string {
	if len(o.Errors) == 0 {
		return nil
	}
	msgs := make([]string, len(o.Errors))
	for i, err := range o.Errors {
		msgs[i] = err.Message
	}
	return msgs
}

// Result is the aggregated outcome of a compile pass.
type Result struct {
	// OK is false iff at least one outcome is FAIL.
	OK bool
	// Messages concatenates every FAIL message in execution order.
	Messages []string
	// Outcomes holds one entry per descriptor, in execution order.
	Outcomes []Outcome
}

// Aggregate folds outcomes into a Result. SUCCESS and IGNORE contribute
// no messages.
func Aggregate(outcomes []Outcome) Result {
	result := Result{
		OK:       true,
		Messages: []string{},
		Outcomes: append([]Outcome(nil), outcomes...),
	}
	for _, o := range outcomes {
		if !o.Status.IsFailure() {
			continue
		}
		result.OK = false
		result.Messages = append(result.Messages, o.Messages()...)
	}
	return result
}

// Outcome returns the outcome for name.
func (r Result) Outcome(name FunctionName) (Outcome, bool) {
	for _, o := range r.Outcomes {
		if o.Name == name {
			return o, true
		}
	}
	return Outcome{}, false
}

// Errors returns every descriptor error in execution order.
func (r Result) Errors() []*DescriptorError {
	var errs []*DescriptorError
	for _, o := range r.Outcomes {
		errs = append(errs, o.Errors...)
	}
	return errs
}

// Counts tallies outcomes by status.
func (r Result) Counts() map[Status]int {
	counts := map[Status]int{StatusSuccess: 0, StatusFail: 0, StatusIgnore: 0}
	for _, o := range r.Outcomes {
		counts[o.Status]++
	}
	return counts
}
