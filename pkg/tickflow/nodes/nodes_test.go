package nodes

import (
	"bytes"
	"log/slog"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/tickflow/pkg/tickflow/condition"
	"github.com/randalmurphal/tickflow/pkg/tickflow/connect"
	"github.com/randalmurphal/tickflow/pkg/tickflow/port"
	"github.com/randalmurphal/tickflow/pkg/tickflow/region"
	"github.com/randalmurphal/tickflow/pkg/tickflow/settings"
)

func TestTransform(t *testing.T) {
	scale := Transform(func(in int, factor float64) float64 { return float64(in) * factor })
	factor := port.NewStateValue(2.0)
	scale.Param().Bind(factor.Source())

	assert.Equal(t, 6.0, scale.Call(3))
	factor.Set(0.5)
	assert.Equal(t, 1.5, scale.Call(3), "parameter is read on every call")

	// a transform sits in the middle of a chain like any callable
	chain := connect.Connect(connect.Supplier(func() int { return 4 }), scale)
	assert.Equal(t, 2.0, connect.Pull(chain))

	assert.PanicsWithValue(t, "nodes: nil transform operation", func() {
		Transform[int, int, int](nil)
	})
}

func TestTransformUnboundParamPanics(t *testing.T) {
	add := Transform(func(a, b int) int { return a + b })
	err, ok := recoverValue(func() { add.Call(1) }).(error)
	require.True(t, ok)
	assert.ErrorIs(t, err, port.ErrUnbound)
}

func TestTransformSetting(t *testing.T) {
	quiet := settings.WithLogger(slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil)))
	b := settings.Map{"offset": 10}

	add := TransformSetting(func(a, b int) int { return a + b }, b, "offset", 1, quiet)
	assert.Equal(t, 15, add.Call(5))

	fallback := TransformSetting(func(a, b int) int { return a + b }, b, "missing", 1, quiet)
	assert.Equal(t, 6, fallback.Call(5))
}

func TestStateSwitch(t *testing.T) {
	sw := NewStateSwitch[string, int]()
	sw.In("a").Bind(connect.Supplier(func() int { return 1 }))
	sw.In("b").Bind(connect.Supplier(func() int { return 2 }))
	sel := port.NewStateValue("a")
	sw.Control().Bind(sel.Source())

	out := port.NewStateSink[int]()
	out.Bind(sw.Out())
	assert.Equal(t, 1, out.Get())

	sel.Set("b")
	assert.Equal(t, 2, out.Get())

	assert.Equal(t, sw.In("b"), sw.In("b"), "In returns the same port per key")

	sel.Set("c")
	v, ok := sw.Lookup()
	assert.False(t, ok)
	assert.Zero(t, v)

	err, isErr := recoverValue(func() { out.Get() }).(error)
	require.True(t, isErr)
	assert.ErrorIs(t, err, ErrNoInput)
	assert.Contains(t, err.Error(), "switch key c")
}

func TestEventSwitch(t *testing.T) {
	sw := NewEventSwitch[int, string]()
	sel := port.NewStateValue(0)
	sw.Control().Bind(sel.Source())

	var got []string
	sw.Out().Subscribe(func(s string) { got = append(got, s) })

	first, second := sw.In(0), sw.In(1)
	first.Receive("a0")
	second.Receive("b0")
	sel.Set(1)
	first.Receive("a1")
	second.Receive("b1")

	assert.Equal(t, []string{"a0", "b1"}, got)
}

func TestWatch(t *testing.T) {
	value := port.NewStateValue(0)
	w := Watch(func(v int) bool { return v > 10 })
	w.In().Bind(value.Source())

	var fired []int
	w.Out().Subscribe(func(v int) { fired = append(fired, v) })

	tick := port.NewEventSource[connect.Void]()
	port.ConnectEvent(tick, w.CheckTick())

	for _, v := range []int{5, 11, 11, 3, 20} {
		value.Set(v)
		tick.Fire(connect.Void{})
	}
	assert.Equal(t, []int{11, 11, 20}, fired, "fires on every matching check")
}

func TestWatchCondition(t *testing.T) {
	value := port.NewStateValue(18.0)
	w := WatchCondition[float64](condition.MustCompile("value >= 22 and value < 30"))
	w.In().Bind(value.Source())

	var fired []float64
	w.Out().Subscribe(func(v float64) { fired = append(fired, v) })

	for _, v := range []float64{18, 22, 25.5, 31, 21.9} {
		value.Set(v)
		w.Check()
	}
	assert.Equal(t, []float64{22, 25.5}, fired)
}

func TestWatchConditionOnMap(t *testing.T) {
	value := port.NewStateValue(map[string]any{"mode": "auto", "value": 3})
	w := WatchCondition[map[string]any](condition.MustCompile("mode == 'manual'"))
	w.In().Bind(value.Source())

	var fired int
	w.Out().Subscribe(func(map[string]any) { fired++ })

	w.Check()
	value.Set(map[string]any{"mode": "manual"})
	w.Check()
	assert.Equal(t, 1, fired)
}

func TestOnChanged(t *testing.T) {
	value := port.NewStateValue("idle")
	w := OnChanged[string]()
	w.In().Bind(value.Source())

	var fired []string
	w.Out().Subscribe(func(s string) { fired = append(fired, s) })

	w.Check()
	assert.Empty(t, fired, "first sample never fires")

	w.Check()
	assert.Empty(t, fired)

	value.Set("busy")
	w.Check()
	w.Check()
	value.Set("idle")
	w.Check()
	assert.Equal(t, []string{"busy", "idle"}, fired)
}

// TestWatchAcrossRegions watches a state produced in another region: the
// watch only sees values delivered on its own work tick.
func TestWatchAcrossRegions(t *testing.T) {
	producer := region.New("producer")
	consumer := region.New("consumer")

	temp := port.NewStateValue(20)
	w := OnChanged[int]()
	region.States(region.Bind(producer, temp.Source())).Into(region.Bind(consumer, w.In()))
	region.Events(region.Bind(consumer, consumer.WorkTick())).To(w.CheckTick())

	var alarms []int
	w.Out().Subscribe(func(v int) { alarms = append(alarms, v) })

	producer.Switch()
	consumer.Work()
	temp.Set(25)
	consumer.Work()
	assert.Empty(t, alarms, "25 not committed yet")

	producer.Switch()
	consumer.Work()
	assert.Equal(t, []int{25}, alarms)

	runtime.KeepAlive(producer)
	runtime.KeepAlive(consumer)
}

func TestNilPredicatePanics(t *testing.T) {
	assert.Panics(t, func() { Watch[int](nil) })
	assert.PanicsWithValue(t, "nodes: nil watch condition", func() { WatchCondition[int](nil) })
}

func recoverValue(f func()) (v any) {
	defer func() { v = recover() }()
	f()
	return nil
}
