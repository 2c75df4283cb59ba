// Package degrade runs store and provider operations behind a single
// availability policy. A call either succeeds, degrades to a declared
// fallback value, or fails; which of the last two happens depends on the
// capability being configured, the kind of error, and the operation Mode.
package degrade

import (
	"context"
	"errors"
	"fmt"

	"bulkwala/internal/store"

	"go.uber.org/zap"
)

// ErrNotConfigured is returned in a Failure when a write needs a capability
// that the process was started without.
var ErrNotConfigured = errors.New("capability not configured")

// Capability names an external dependency that may be absent at runtime.
type Capability string

const (
	Database Capability = "database"
	Email    Capability = "email"
	SMS      Capability = "sms"
	Images   Capability = "images"
	Payments Capability = "payments"
)

// Checker answers whether a capability is usable right now.
type Checker interface {
	Configured(Capability) bool
}

// Capabilities is a fixed Checker built once from configuration.
type Capabilities map[Capability]bool

func (c Capabilities) Configured(capability Capability) bool {
	return c[capability]
}

// Mode selects what happens when the capability is missing or the primary
// operation returns an error.
type Mode int

const (
	// ModeRead degrades on both: reads never hard-fail when a default exists.
	ModeRead Mode = iota
	// ModeBestEffort is a write whose caller accepts a safe default.
	ModeBestEffort
	// ModeStandIn substitutes a stand-in when unconfigured but surfaces
	// errors from a configured provider.
	ModeStandIn
	// ModeWrite never degrades.
	ModeWrite
)

func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "read"
	case ModeBestEffort:
		return "best-effort"
	case ModeStandIn:
		return "stand-in"
	case ModeWrite:
		return "write"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

func (m Mode) degradesUnconfigured() bool { return m != ModeWrite }

func (m Mode) degradesOnError() bool { return m == ModeRead || m == ModeBestEffort }

// Op describes one call site.
type Op struct {
	Name       string
	Capability Capability
	Mode       Mode
}

// Read, Write, BestEffort and StandIn build an Op for the given capability.
func Read(name string, c Capability) Op {
	return Op{Name: name, Capability: c, Mode: ModeRead}
}

func Write(name string, c Capability) Op {
	return Op{Name: name, Capability: c, Mode: ModeWrite}
}

func BestEffort(name string, c Capability) Op {
	return Op{Name: name, Capability: c, Mode: ModeBestEffort}
}

func StandIn(name string, c Capability) Op {
	return Op{Name: name, Capability: c, Mode: ModeStandIn}
}

// Fallback produces the substitute value. Returning an error turns the
// outcome into a Failure, e.g. a slug that is absent from the mock catalog.
type Fallback[T any] func() (T, error)

// Value is a Fallback that always returns v.
func Value[T any](v T) Fallback[T] {
	return func() (T, error) { return v, nil }
}

// Executor applies the policy and logs every non-success path.
type Executor struct {
	caps   Checker
	logger *zap.SugaredLogger
}

func New(caps Checker, logger *zap.SugaredLogger) *Executor {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Executor{caps: caps, logger: logger}
}

// Configured exposes the capability check to call sites that need to branch
// before building an operation, e.g. to skip reading an upload body.
func (e *Executor) Configured(c Capability) bool {
	return e.caps != nil && e.caps.Configured(c)
}

// Run executes primary at most once under op's policy.
func Run[T any](ctx context.Context, e *Executor, op Op, primary func(context.Context) (T, error), fallback Fallback[T]) Outcome[T] {
	if !e.Configured(op.Capability) {
		reason := fmt.Sprintf("%s not configured", op.Capability)
		if !op.Mode.degradesUnconfigured() {
			e.logger.Warnw("operation refused: capability not configured",
				"op", op.Name, "capability", op.Capability, "mode", op.Mode)
			out := Failed[T](fmt.Errorf("%s: %w: %s", op.Name, ErrNotConfigured, op.Capability))
			out.Skipped = true
			return out
		}
		e.logger.Warnw("serving fallback: capability not configured",
			"op", op.Name, "capability", op.Capability, "mode", op.Mode)
		out := degradeWith(op, fallback, reason)
		out.Skipped = true
		return out
	}

	value, err := primary(ctx)
	if err == nil {
		return Succeeded(value)
	}

	if store.IsPermanent(err) {
		e.logger.Infow("operation rejected", "op", op.Name, "error", err)
		return Failed[T](err)
	}

	if !op.Mode.degradesOnError() {
		e.logger.Errorw("operation failed", "op", op.Name, "capability", op.Capability, "mode", op.Mode, "error", err)
		return Failed[T](err)
	}

	e.logger.Warnw("serving fallback: operation failed",
		"op", op.Name, "capability", op.Capability, "mode", op.Mode, "error", err)
	return degradeWith(op, fallback, err.Error())
}

func degradeWith[T any](op Op, fallback Fallback[T], reason string) Outcome[T] {
	if fallback == nil {
		var zero T
		return Degraded(zero, reason)
	}
	v, err := fallback()
	if err != nil {
		return Failed[T](fmt.Errorf("%s fallback: %w", op.Name, err))
	}
	return Degraded(v, reason)
}
