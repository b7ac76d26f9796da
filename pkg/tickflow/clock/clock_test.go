package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestExampleUses(t *testing.T) {
	m := New(DefaultResolution)

	oneTickAgo := m.Steady().Now()
	m.Advance()
	now := m.Steady().Now()

	assert.Equal(t, m.Resolution(), now.Sub(oneTickAgo))
	assert.NotEqual(t, oneTickAgo, now)
	assert.True(t, oneTickAgo.Before(now))
}

func TestAdvance(t *testing.T) {
	m := New(DefaultResolution)
	before := m.Steady().Now()
	for i := 0; i != 1000; i++ {
		m.Advance()
	}
	after := m.Steady().Now()

	assert.Equal(t, 1000*m.Resolution(), after.Sub(before))
	assert.Equal(t, int64(1000), m.Ticks())
	assert.Equal(t, 10*time.Second, m.Elapsed())
}

func TestNowStableWithoutAdvance(t *testing.T) {
	m := New(time.Millisecond)
	m.AdvanceBy(7)
	assert.Equal(t, m.Steady().Now(), m.Steady().Now())
	assert.Equal(t, m.System().Now(), m.System().Now())

	m.AdvanceBy(0)
	m.AdvanceBy(-3)
	assert.Equal(t, int64(7), m.Ticks())
}

func TestAdvanceProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		res := time.Duration(rapid.Int64Range(1, int64(time.Second)).Draw(rt, "resolution"))
		start := rapid.Int64Range(0, 10000).Draw(rt, "start")
		n := rapid.IntRange(0, 500).Draw(rt, "n")

		m := New(res)
		m.AdvanceBy(start)
		before := m.Steady().Now()
		for i := 0; i < n; i++ {
			m.Advance()
		}
		require.Equal(rt, time.Duration(n)*res, m.Steady().Now().Sub(before))
	})
}

func TestUnixConversion(t *testing.T) {
	m := New(DefaultResolution)
	sys := m.System()
	m.AdvanceBy(37)

	now := sys.Now()
	sec := sys.ToUnix(now)
	back := sys.FromUnix(sec)
	assert.Equal(t, now.Truncate(time.Second), back.Truncate(time.Second))
	assert.Equal(t, now.Unix(), back.Unix())

	for i := 0; i != 1000; i++ {
		m.Advance()
	}

	now2 := sys.Now()
	assert.NotEqual(t, now, now2)

	sec2 := sys.ToUnix(now2)
	assert.NotEqual(t, sec, sec2)
	assert.Equal(t, now2.Truncate(time.Second), sys.FromUnix(sec2).Truncate(time.Second))
}

func TestEpoch(t *testing.T) {
	epoch := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	m := New(time.Second, WithEpoch(epoch))
	assert.Equal(t, epoch, m.System().Now())

	m.AdvanceBy(90)
	assert.Equal(t, epoch.Add(90*time.Second), m.System().Now())
	assert.Equal(t, epoch.Unix()+90, m.System().ToUnix(m.System().Now()))
}

func TestNewRejectsNonPositiveResolution(t *testing.T) {
	assert.PanicsWithValue(t, "clock: resolution must be positive", func() { New(0) })
}

func TestForResolutionShared(t *testing.T) {
	a := ForResolution(time.Microsecond)
	b := ForResolution(time.Microsecond)
	require.Same(t, a, b)
	assert.NotSame(t, a, ForResolution(2*time.Microsecond))
	assert.Same(t, Default(), ForResolution(DefaultResolution))
}

func TestDefaultFacades(t *testing.T) {
	before := SteadyNow()
	beforeSys := SystemNow()
	Advance()
	assert.Equal(t, DefaultResolution, SteadyNow().Sub(before))
	assert.Equal(t, DefaultResolution, SystemNow().Sub(beforeSys))
}

func TestPoint(t *testing.T) {
	p := Point(0).Add(1500 * time.Millisecond)
	assert.Equal(t, "1.5s", p.String())
	assert.Equal(t, time.Second, p.Sub(Point(500*time.Millisecond)))
}
