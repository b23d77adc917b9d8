package compiler

import (
	"github.com/felixgeelhaar/pactverify/internal/domain/config"
	"github.com/felixgeelhaar/pactverify/internal/ports"
)

// Input is everything a descriptor may read during one compile pass.
type Input struct {
	Engine  ports.VerifierSetup
	Handle  *ports.SessionHandle
	Options *config.Resolved
	FS      ports.FileSystem
}

// Descriptor binds validation and execution for one logical setup call.
type Descriptor interface {
	Name() FunctionName
	// ValidateAndExecute issues the native calls that are individually valid
	// and reports the outcome. A non-nil error aborts the whole compile pass.
	ValidateAndExecute(in Input) (Outcome, error)
}

// call is one planned native call. Validation produces calls; execution
// issues them.
type call struct {
	op     string
	invoke func(engine ports.VerifierSetup, h *ports.SessionHandle) error
}

// item is either a planned call or a rejected sub-item.
type item struct {
	call     *call
	rejected *DescriptorError
}

// validation is what a validator decided about the options. Items keep the
// order of the configured entries.
type validation struct {
	applicable bool
	items      []item
}

func notApplicable() validation {
	return validation{}
}

func applicable(calls ...call) validation {
	v := validation{applicable: true}
	for _, c := range calls {
		v.add(c)
	}
	return v
}

func (v *validation) add(c call) {
	v.items = append(v.items, item{call: &c})
}

func (v *validation) reject(err *DescriptorError) {
	v.items = append(v.items, item{rejected: err})
}

// validateFunc inspects options and plans calls. It must not touch the engine.
type validateFunc func(opts *config.Resolved, fs ports.FileSystem) (validation, error)

// descriptor is the table entry: a name plus a pure validator. Execution is
// shared by every descriptor.
type descriptor struct {
	name     FunctionName
	validate validateFunc
}

// Name implements Descriptor.
func (d descriptor) Name() FunctionName {
	return d.name
}

// ValidateAndExecute implements Descriptor.
func (d descriptor) ValidateAndExecute(in Input) (Outcome, error) {
	v, err := d.validate(in.Options, in.FS)
	if err != nil {
		return Outcome{}, err
	}

	outcome := Outcome{Name: d.name, Status: StatusIgnore}
	if !v.applicable {
		return outcome, nil
	}

	for _, it := range v.items {
		if it.rejected != nil {
			outcome.Errors = append(outcome.Errors, it.rejected)
			continue
		}
		outcome.Calls++
		if err := it.call.invoke(in.Engine, in.Handle); err != nil {
			outcome.Errors = append(outcome.Errors, NewEngineCallError(d.name, it.call.op, err))
		}
	}

	if len(outcome.Errors) > 0 {
		outcome.Status = StatusFail
	} else {
		outcome.Status = StatusSuccess
	}
	return outcome, nil
}
