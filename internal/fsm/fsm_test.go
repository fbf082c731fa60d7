package fsm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	calls []string
}

type testState struct {
	name string
	rec  *recorder
}

func (s *testState) Enter(o *recorder)   { o.calls = append(o.calls, "enter:"+s.name) }
func (s *testState) Execute(o *recorder) { o.calls = append(o.calls, "exec:"+s.name) }
func (s *testState) Exit(o *recorder)    { o.calls = append(o.calls, "exit:"+s.name) }

func TestConfigureEntersGlobalThenInitial(t *testing.T) {
	rec := &recorder{}
	idle := &testState{name: "idle"}
	global := &testState{name: "global"}

	m := New[*recorder]()
	m.Configure(rec, idle, global)

	assert.Equal(t, []string{"enter:global", "enter:idle"}, rec.calls)
	assert.Same(t, rec, m.Owner())
	assert.True(t, m.IsInState(idle))
	assert.Nil(t, m.Previous())
}

func TestUpdateRunsGlobalBeforeCurrent(t *testing.T) {
	rec := &recorder{}
	m := New[*recorder]()
	m.Configure(rec, &testState{name: "a"}, &testState{name: "g"})
	rec.calls = nil

	m.Update()
	assert.Equal(t, []string{"exec:g", "exec:a"}, rec.calls)
}

func TestUpdateUnconfigured(t *testing.T) {
	m := New[*recorder]()
	m.Update()
	assert.Nil(t, m.Current())
}

func TestChangeStateExitsBeforeEnter(t *testing.T) {
	rec := &recorder{}
	a := &testState{name: "a"}
	b := &testState{name: "b"}
	m := New[*recorder]()
	m.Configure(rec, a, nil)
	rec.calls = nil

	require.True(t, m.ChangeState(b, false))
	assert.Equal(t, []string{"exit:a", "enter:b"}, rec.calls)
	assert.Same(t, a, m.Previous())
	assert.Same(t, b, m.Current())
}

func TestChangeStateSameIsNoop(t *testing.T) {
	rec := &recorder{}
	a := &testState{name: "a"}
	m := New[*recorder]()
	m.Configure(rec, a, nil)
	rec.calls = nil

	assert.False(t, m.ChangeState(a, false))
	assert.Empty(t, rec.calls)
	assert.Nil(t, m.Previous())

	assert.True(t, m.ChangeState(a, true))
	assert.Equal(t, []string{"exit:a", "enter:a"}, rec.calls)
}

func TestChangeGlobalState(t *testing.T) {
	rec := &recorder{}
	g1 := &testState{name: "g1"}
	g2 := &testState{name: "g2"}
	m := New[*recorder]()
	m.Configure(rec, nil, g1)
	rec.calls = nil

	assert.False(t, m.ChangeGlobalState(nil))
	assert.Same(t, g1, m.Global())

	assert.True(t, m.ChangeGlobalState(g2))
	assert.Equal(t, []string{"exit:g1", "enter:g2"}, rec.calls)
	assert.Same(t, g2, m.Global())
}

func TestRevertToPrevious(t *testing.T) {
	rec := &recorder{}
	a := &testState{name: "a"}
	b := &testState{name: "b"}
	m := New[*recorder]()
	m.Configure(rec, a, nil)

	assert.False(t, m.RevertToPrevious())
	m.ChangeState(b, false)
	assert.True(t, m.RevertToPrevious())
	assert.Same(t, a, m.Current())
}
