package device

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/atinyakov/PassLock/internal/models"
	"github.com/atinyakov/PassLock/internal/service"
)

// scriptedInputs returns queued samples, then idle.
type scriptedInputs struct{ queue []Sample }

func (s *scriptedInputs) Poll() Sample {
	if len(s.queue) == 0 {
		return IdleSample
	}
	next := s.queue[0]
	s.queue = s.queue[1:]
	return next
}

func (s *scriptedInputs) press(samples ...Sample) {
	for _, p := range samples {
		s.queue = append(s.queue, p, IdleSample)
	}
}

type flash struct {
	mode    models.Mode
	verdict models.Verdict
}

type recorder struct {
	shown   []models.Passcode
	modes   []models.Mode
	flashes []flash
	offs    int
}

func (r *recorder) Show(code models.Passcode) { r.shown = append(r.shown, code) }
func (r *recorder) SetMode(mode models.Mode)  { r.modes = append(r.modes, mode) }
func (r *recorder) Off()                      { r.offs++ }
func (r *recorder) Flash(m models.Mode, v models.Verdict) {
	r.flashes = append(r.flashes, flash{m, v})
}

func (r *recorder) lastShown() models.Passcode { return r.shown[len(r.shown)-1] }

func keys(s string) []Sample {
	out := make([]Sample, 0, len(s))
	for _, c := range s {
		out = append(out, Sample{Key: models.Digit(c - '0')})
	}
	return out
}

var (
	modePress  = Sample{Mode: true, Key: models.Blank}
	resetPress = Sample{Reset: true, Key: models.Blank}
)

func newTestDevice(t *testing.T, capacity int) (*Device, *scriptedInputs, *recorder) {
	t.Helper()
	in := &scriptedInputs{}
	rec := &recorder{}
	d := New(Config{Capacity: capacity, Timing: DefaultTiming}, in, rec, rec, zap.NewNop())
	return d, in, rec
}

// drain ticks until the script is consumed and returns every non-idle event.
func drain(d *Device, in *scriptedInputs) []Event {
	var out []Event
	for len(in.queue) > 0 {
		if ev := d.Tick(); ev.Kind != EventIdle {
			out = append(out, ev)
		}
	}
	return out
}

func lastEval(t *testing.T, events []Event) Event {
	t.Helper()
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Evaluated {
			return events[i]
		}
	}
	t.Fatal("no evaluation in events")
	return Event{}
}

func TestNew_PowerOnState(t *testing.T) {
	d, _, rec := newTestDevice(t, 10)
	st := d.Status()
	assert.Equal(t, models.ModeCheck, st.Mode)
	assert.Equal(t, models.BlankPasscode, st.Entry)
	assert.Equal(t, 0, st.Stored)
	assert.Equal(t, 10, st.Capacity)
	assert.NotEmpty(t, d.ID())
	assert.Equal(t, models.BlankPasscode, rec.lastShown())
	assert.Equal(t, []models.Mode{models.ModeCheck}, rec.modes)
}

func TestTick_IdleDoesNothing(t *testing.T) {
	d, _, rec := newTestDevice(t, 10)
	shown := len(rec.shown)
	ev := d.Tick()
	assert.Equal(t, EventIdle, ev.Kind)
	assert.Len(t, rec.shown, shown)
}

func TestTick_MasterInCheck(t *testing.T) {
	d, in, rec := newTestDevice(t, 10)
	in.press(keys("0000")...)
	events := drain(d, in)

	require.Len(t, events, 4)
	ev := lastEval(t, events)
	assert.Equal(t, models.VerdictAccept, ev.Verdict)
	assert.Equal(t, service.EffectNone, ev.Effect)
	assert.Equal(t, 0, ev.Stored)
	assert.Equal(t, 0, ev.Entered)
	assert.Equal(t, []flash{{models.ModeCheck, models.VerdictAccept}}, rec.flashes)
	assert.Equal(t, models.BlankPasscode, rec.lastShown())
}

func TestTick_DisplayFollowsEntry(t *testing.T) {
	d, in, rec := newTestDevice(t, 10)
	in.press(keys("12")...)
	drain(d, in)
	assert.Equal(t, models.Passcode{1, 2, models.Blank, models.Blank}, rec.lastShown())
	assert.Equal(t, models.Passcode{1, 2, models.Blank, models.Blank}, d.Status().Entry)
}

func TestTick_HeldKeyCountsOnce(t *testing.T) {
	d, in, _ := newTestDevice(t, 10)
	in.queue = []Sample{{Key: 5}, {Key: 5}, {Key: 5}, IdleSample, {Key: 5}, {Key: 6}}
	drain(d, in)
	assert.Equal(t, models.Passcode{5, 5, 6, models.Blank}, d.Status().Entry)
}

func TestTick_SetThenDuplicate(t *testing.T) {
	d, in, _ := newTestDevice(t, 10)
	in.press(modePress)
	in.press(keys("1234")...)
	ev := lastEval(t, drain(d, in))
	assert.Equal(t, models.ModeSet, ev.Mode)
	assert.Equal(t, models.VerdictAccept, ev.Verdict)
	assert.Equal(t, service.EffectStore, ev.Effect)
	assert.Equal(t, 1, ev.Stored)

	in.press(keys("1234")...)
	ev = lastEval(t, drain(d, in))
	assert.Equal(t, models.VerdictReject, ev.Verdict)
	assert.Equal(t, 1, ev.Stored)
}

func TestTick_RemoveThenNotFound(t *testing.T) {
	d, in, _ := newTestDevice(t, 10)
	in.press(modePress)
	in.press(keys("1234")...)
	in.press(modePress)
	in.press(keys("1234")...)
	ev := lastEval(t, drain(d, in))
	assert.Equal(t, models.ModeRemove, ev.Mode)
	assert.Equal(t, models.VerdictAccept, ev.Verdict)
	assert.Equal(t, 0, ev.Stored)

	in.press(keys("1234")...)
	ev = lastEval(t, drain(d, in))
	assert.Equal(t, models.VerdictReject, ev.Verdict)
}

func TestTick_ModeToggleResetsEntry(t *testing.T) {
	d, in, rec := newTestDevice(t, 10)
	in.press(keys("98")...)
	in.press(modePress)
	events := drain(d, in)

	last := events[len(events)-1]
	assert.Equal(t, EventMode, last.Kind)
	assert.Equal(t, 0, last.Entered)
	assert.Equal(t, models.BlankPasscode, rec.lastShown())
	assert.Equal(t, []models.Mode{models.ModeCheck, models.ModeSet}, rec.modes)

	in.press(modePress, modePress)
	drain(d, in)
	assert.Equal(t, models.ModeCheck, d.Status().Mode)
}

func TestTick_ResetHeldThenReleased(t *testing.T) {
	d, in, rec := newTestDevice(t, 10)
	in.press(modePress)
	in.press(keys("4321")...)
	in.press(keys("12")...)
	drain(d, in)
	require.Equal(t, 1, d.Status().Stored)
	require.Equal(t, models.ModeSet, d.Status().Mode)

	in.queue = []Sample{resetPress, {Reset: true, Mode: true, Key: 3}, IdleSample}
	ev := d.Tick()
	assert.Equal(t, EventResetHeld, ev.Kind)
	assert.Equal(t, models.BlankPasscode, rec.lastShown())
	assert.Equal(t, 1, rec.offs)

	ev = d.Tick()
	assert.Equal(t, EventResetHeld, ev.Kind, "reset takes priority over mode and keypad")
	assert.Equal(t, models.ModeSet, ev.Mode)

	ev = d.Tick()
	assert.Equal(t, EventReset, ev.Kind)
	assert.Equal(t, models.ModeCheck, ev.Mode)
	assert.Equal(t, 0, ev.Stored)
	assert.Equal(t, 0, ev.Entered)
	assert.Equal(t, flash{models.ModeCheck, models.VerdictAccept}, rec.flashes[len(rec.flashes)-1])
}

func TestTick_ModeBeatsKeypad(t *testing.T) {
	d, in, _ := newTestDevice(t, 10)
	in.queue = []Sample{{Mode: true, Key: 7}}
	ev := d.Tick()
	assert.Equal(t, EventMode, ev.Kind)
	assert.Equal(t, 0, ev.Entered)
}

func TestTick_SetAtCapacity(t *testing.T) {
	d, in, _ := newTestDevice(t, 2)
	in.press(modePress)
	in.press(keys("11112222")...)
	drain(d, in)
	require.Equal(t, 2, d.Status().Stored)

	in.press(keys("3333")...)
	ev := lastEval(t, drain(d, in))
	assert.Equal(t, models.VerdictReject, ev.Verdict)
	assert.Equal(t, 2, ev.Stored)
}

func TestTick_EntryNeverFullAfterTick(t *testing.T) {
	d, in, _ := newTestDevice(t, 3)
	rng := rand.New(rand.NewSource(11))

	for i := 0; i < 5000; i++ {
		switch n := rng.Intn(20); {
		case n == 0:
			in.press(resetPress)
		case n < 3:
			in.press(modePress)
		default:
			in.press(Sample{Key: models.Digit(rng.Intn(10))})
		}
		for _, ev := range drain(d, in) {
			if ev.Kind == EventDigit {
				require.True(t, ev.Appended, "digit refused at step %d", i)
			}
			require.Less(t, ev.Entered, models.PasscodeLength, "entry left full at step %d", i)
		}
	}
}

func TestTick_LogsWithoutDigits(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	in := &scriptedInputs{}
	rec := &recorder{}
	d := New(Config{Capacity: 5, Timing: DefaultTiming}, in, rec, rec, zap.New(core))
	in.press(keys("0000")...)
	drain(d, in)

	evals := logs.FilterMessage("entry evaluated").All()
	require.Len(t, evals, 1)
	fields := evals[0].ContextMap()
	assert.Equal(t, "accept", fields["verdict"])
	assert.Equal(t, d.ID(), fields["session"])
	for _, e := range logs.All() {
		for k := range e.ContextMap() {
			assert.NotContains(t, []string{"code", "passcode", "digit"}, k)
		}
	}
}

type countingSleeper struct {
	calls  []time.Duration
	cancel context.CancelFunc
	limit  int
}

func (s *countingSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.calls = append(s.calls, d)
	if len(s.calls) >= s.limit {
		s.cancel()
	}
	return ctx.Err()
}

func TestRun_AppliesDelaysAndStops(t *testing.T) {
	d, in, _ := newTestDevice(t, 10)
	in.queue = []Sample{{Key: 1}, IdleSample, modePress, IdleSample, resetPress, IdleSample}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sl := &countingSleeper{cancel: cancel, limit: 6}

	err := d.Run(ctx, sl)
	require.True(t, errors.Is(err, context.Canceled), "err = %v", err)
	assert.Equal(t, []time.Duration{
		DefaultTiming.KeyDelay,
		DefaultTiming.Poll,
		DefaultTiming.ModeDelay,
		DefaultTiming.Poll,
		DefaultTiming.Poll,
		DefaultTiming.ResetDelay,
	}, sl.calls)
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	d, _, _ := newTestDevice(t, 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := d.Run(ctx, TimerSleeper{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTimerSleeper(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, TimerSleeper{}.Sleep(ctx, time.Millisecond))
	cancel()
	assert.ErrorIs(t, TimerSleeper{}.Sleep(ctx, time.Hour), context.Canceled)
}
