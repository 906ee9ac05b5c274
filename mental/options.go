package mental

import (
	"math"
	"time"

	"github.com/nasdf/household/errors"
	"github.com/nasdf/household/object"

	"go.uber.org/zap"
)

// Claim times are stored as Unix nanoseconds, which only cover this range.
var (
	MinTime = time.Unix(0, math.MinInt64).UTC()
	MaxTime = time.Unix(0, math.MaxInt64).UTC()
)

// checkTime returns an invalid argument error if t cannot be stored as Unix nanoseconds.
func checkTime(name string, t time.Time) error {
	if t.Before(MinTime) || t.After(MaxTime) {
		return errors.InvalidArgumentf("%s %s is outside %s to %s", name,
			t.UTC().Format(time.RFC3339Nano), MinTime.Format(time.RFC3339Nano), MaxTime.Format(time.RFC3339Nano))
	}
	return nil
}

// Timestamp is a point in time that may be left unset.
type Timestamp struct {
	t   time.Time
	set bool
}

// Now returns an unset timestamp, resolved to the current time when used.
func Now() Timestamp {
	return Timestamp{}
}

// At returns a timestamp set to t.
func At(t time.Time) Timestamp {
	return Timestamp{t: t, set: true}
}

// IsSet returns true if the timestamp holds an explicit time.
func (ts Timestamp) IsSet() bool {
	return ts.set
}

// Resolve returns the explicit time, or now if unset.
func (ts Timestamp) Resolve(now time.Time) time.Time {
	if ts.set {
		return ts.t
	}
	return now
}

// Period is a half open time range [Start, End).
//
// An unset Start is unbounded and an unset End means now. A Start before
// MinTime is also unbounded.
type Period struct {
	Start Timestamp
	End   Timestamp
}

type claimOptions struct {
	predicates []object.Object
	madeAt     Timestamp
}

// ClaimOption configures a single claim.
type ClaimOption func(*claimOptions)

// WithPredicates records the existence predicates that justify a claim.
func WithPredicates(predicates ...object.Object) ClaimOption {
	return func(o *claimOptions) {
		o.predicates = append(o.predicates, predicates...)
	}
}

// MadeAt sets the time a claim was made. Defaults to now.
func MadeAt(t time.Time) ClaimOption {
	return func(o *claimOptions) {
		o.madeAt = At(t)
	}
}

// Option configures a MentalSet.
type Option func(*MentalSet)

// WithLogger sets the logger used for replay diagnostics.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(m *MentalSet) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithClock sets the function used to resolve unset timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *MentalSet) {
		if now != nil {
			m.now = now
		}
	}
}
