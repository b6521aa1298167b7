package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/CodexForgeBR/testmate/internal/api"
	"github.com/CodexForgeBR/testmate/internal/logging"
	"github.com/CodexForgeBR/testmate/internal/prompt"
)

// GenerationBackend is the part of the API client the Level 1 flow needs.
type GenerationBackend interface {
	GenerationHealth(ctx context.Context) (*api.GenerationHealth, error)
	GenerateCode(ctx context.Context, description string) (*api.GeneratedCode, error)
}

// input is what the user typed or attached, checked before any network call.
type input struct {
	Description string `validate:"max=2000"`
	Attachment  string `validate:"max=2000"`
}

// Generator drives the describe-then-generate flow. One submission is in
// flight at a time.
type Generator struct {
	backend  GenerationBackend
	validate *validator.Validate

	mu           sync.Mutex
	phase        Phase
	availability Availability
	description  string
	attachment   *Attachment
	result       *api.GeneratedCode
	failure      *Failure
	submissions  int
	probes       int
	onPhase      func(Phase)
}

// NewGenerator returns an idle Generator with unknown availability.
func NewGenerator(backend GenerationBackend) *Generator {
	return &Generator{
		backend:  backend,
		validate: validator.New(),
		phase:    PhaseIdle,
	}
}

// OnPhase registers fn to hear every phase change. fn runs without the
// Generator's lock held.
func (g *Generator) OnPhase(fn func(Phase)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onPhase = fn
}

func (g *Generator) setPhase(p Phase) {
	g.mu.Lock()
	g.phase = p
	fn := g.onPhase
	g.mu.Unlock()
	if fn != nil {
		fn(p)
	}
}

// ----------------------------------------------------------------------------
// Inputs
// ----------------------------------------------------------------------------

// SetDescription replaces the free-text description.
func (g *Generator) SetDescription(s string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inFlightLocked() {
		return ErrBusy
	}
	g.description = s
	return nil
}

// Description returns the free-text description.
func (g *Generator) Description() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.description
}

// Attach sets the scenario file. It clears any shown failure, as picking a
// new file does in the web client.
func (g *Generator) Attach(a Attachment) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inFlightLocked() {
		return ErrBusy
	}
	g.attachment = &a
	g.failure = nil
	return nil
}

// Detach removes the scenario file.
func (g *Generator) Detach() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.inFlightLocked() {
		return ErrBusy
	}
	g.attachment = nil
	return nil
}

// Attachment returns the attached file, or nil.
func (g *Generator) Attachment() *Attachment {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.attachment == nil {
		return nil
	}
	a := *g.attachment
	return &a
}

// ----------------------------------------------------------------------------
// Observers
// ----------------------------------------------------------------------------

// Phase returns the current phase.
func (g *Generator) Phase() Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}

// Availability returns the cached backend availability.
func (g *Generator) Availability() Availability {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.availability
}

// Result returns the last successful result, or nil.
func (g *Generator) Result() *api.GeneratedCode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.result
}

// Failure returns the failure shown since the last submission, or nil.
func (g *Generator) Failure() *Failure {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.failure
}

// Submissions counts submissions that passed validation.
func (g *Generator) Submissions() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.submissions
}

// Probes counts availability probes sent.
func (g *Generator) Probes() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.probes
}

func (g *Generator) inFlightLocked() bool {
	switch g.phase {
	case PhaseValidating, PhaseProbing, PhaseSubmitting:
		return true
	}
	return false
}

// ----------------------------------------------------------------------------
// Transitions
// ----------------------------------------------------------------------------

// CheckAvailability probes the backend and caches the outcome. A failed
// probe is shown as the current failure.
func (g *Generator) CheckAvailability(ctx context.Context) Availability {
	avail, failure := g.probe(ctx)
	g.mu.Lock()
	defer g.mu.Unlock()
	g.availability = avail
	g.failure = failure
	return avail
}

func (g *Generator) probe(ctx context.Context) (Availability, *Failure) {
	g.mu.Lock()
	g.probes++
	g.mu.Unlock()

	health, err := g.backend.GenerationHealth(ctx)
	if err != nil {
		logging.Debug(fmt.Sprintf("generation health probe failed: %v", err))
		var apiErr *api.Error
		if !errors.As(err, &apiErr) {
			apiErr = &api.Error{Kind: api.KindNetwork, Err: err}
		}
		return AvailabilityUnavailable, &Failure{Message: msgCannotConnect, Err: apiErr}
	}
	if !health.Available {
		return AvailabilityUnavailable, &Failure{
			Message: msgProbeUnavailable,
			Err:     &api.Error{Kind: api.KindUnavailable, Detail: health.Message},
		}
	}
	return AvailabilityAvailable, nil
}

// Submit validates the inputs, probes the backend when its availability is
// unknown, and sends one generation request. An attached file wins over the
// description. Rejections and failures come back as *Failure and leave the
// Generator idle; success leaves it in PhaseSucceeded until Reset.
func (g *Generator) Submit(ctx context.Context) (*api.GeneratedCode, error) {
	g.mu.Lock()
	switch {
	case g.phase == PhaseSucceeded:
		g.mu.Unlock()
		return nil, ErrResultShown
	case g.phase != PhaseIdle:
		g.mu.Unlock()
		return nil, ErrBusy
	}
	g.phase = PhaseValidating
	g.failure = nil
	g.result = nil
	in := input{Description: g.description}
	attached := g.attachment != nil
	if attached {
		in.Attachment = g.attachment.Content
	}
	fn := g.onPhase
	g.mu.Unlock()
	if fn != nil {
		fn(PhaseValidating)
	}

	if f := g.check(in, attached); f != nil {
		return nil, g.fail(f)
	}

	payload := in.Description
	if attached {
		payload = prompt.BuildAttachedScenario(in.Attachment)
	}

	g.mu.Lock()
	avail := g.availability
	g.mu.Unlock()
	switch avail {
	case AvailabilityUnknown:
		g.setPhase(PhaseProbing)
		var f *Failure
		avail, f = g.probe(ctx)
		g.mu.Lock()
		g.availability = avail
		g.mu.Unlock()
		if f != nil {
			return nil, g.fail(f)
		}
	case AvailabilityUnavailable:
		return nil, g.fail(&Failure{
			Message: msgKnownUnavailable,
			Err:     &api.Error{Kind: api.KindUnavailable},
		})
	}

	g.mu.Lock()
	g.submissions++
	g.mu.Unlock()
	g.setPhase(PhaseSubmitting)

	out, err := g.backend.GenerateCode(ctx, payload)
	if err != nil {
		f := describe(err, msgGenerateFallback)
		if f.Kind() == api.KindUnavailable {
			g.mu.Lock()
			g.availability = AvailabilityUnavailable
			g.mu.Unlock()
		}
		return nil, g.fail(f)
	}

	g.mu.Lock()
	g.result = out
	g.availability = AvailabilityAvailable
	g.mu.Unlock()
	g.setPhase(PhaseSucceeded)
	return out, nil
}

// check applies the local rules. It never touches the network.
func (g *Generator) check(in input, attached bool) *Failure {
	if err := g.validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 && fieldErrs[0].Field() == "Attachment" {
			return validationFailure(msgAttachmentTooLong)
		}
		return validationFailure(msgDescriptionTooLong)
	}
	if strings.TrimSpace(in.Description) == "" && !attached {
		return validationFailure(msgEmptyInput)
	}
	return nil
}

func (g *Generator) fail(f *Failure) *Failure {
	g.mu.Lock()
	g.failure = f
	g.mu.Unlock()
	g.setPhase(PhaseIdle)
	return f
}

// Reset clears the description, attachment, result and failure. It is
// refused only while a request is in flight.
func (g *Generator) Reset() error {
	g.mu.Lock()
	if g.inFlightLocked() {
		g.mu.Unlock()
		return ErrBusy
	}
	g.description = ""
	g.attachment = nil
	g.result = nil
	g.failure = nil
	g.mu.Unlock()
	g.setPhase(PhaseIdle)
	return nil
}
