// Package fsm provides a generic finite state machine bound to an owner.
package fsm

// State is one behavior of an owner of type T. Implementations are compared
// by identity, so they should be pointer types.
type State[T any] interface {
	Enter(owner T)
	Execute(owner T)
	Exit(owner T)
}

// Machine holds the current, previous and global state of one owner.
// The zero value is an unconfigured machine.
type Machine[T any] struct {
	owner    T
	current  State[T]
	previous State[T]
	global   State[T]
}

// New returns an unconfigured machine.
func New[T any]() *Machine[T] {
	return &Machine[T]{}
}

// Configure binds the owner, enters the global state (if any) and forces a
// change into the initial state.
func (m *Machine[T]) Configure(owner T, initial, global State[T]) {
	m.owner = owner
	if global != nil {
		m.global = global
		m.global.Enter(owner)
	}
	m.ChangeState(initial, true)
}

// Update executes the global state, then the current state.
func (m *Machine[T]) Update() {
	if m.global != nil {
		m.global.Execute(m.owner)
	}
	if m.current != nil {
		m.current.Execute(m.owner)
	}
}

// ChangeState switches to next. It returns false and does nothing when next
// is already the current state and force is not set. The old state is
// always exited before the new one is entered.
func (m *Machine[T]) ChangeState(next State[T], force bool) bool {
	if next == m.current && !force {
		return false
	}

	m.previous = m.current
	if m.previous != nil {
		m.previous.Exit(m.owner)
	}

	m.current = next
	if m.current != nil {
		m.current.Enter(m.owner)
	}
	return true
}

// ChangeGlobalState replaces the global state. A nil state is rejected.
func (m *Machine[T]) ChangeGlobalState(next State[T]) bool {
	if next == nil {
		return false
	}
	if m.global != nil {
		m.global.Exit(m.owner)
	}
	next.Enter(m.owner)
	m.global = next
	return true
}

// RevertToPrevious changes back to the previous state, if there is one.
func (m *Machine[T]) RevertToPrevious() bool {
	if m.previous == nil {
		return false
	}
	return m.ChangeState(m.previous, false)
}

func (m *Machine[T]) Current() State[T]  { return m.current }
func (m *Machine[T]) Previous() State[T] { return m.previous }
func (m *Machine[T]) Global() State[T]   { return m.global }
func (m *Machine[T]) Owner() T           { return m.owner }

// IsInState reports whether s is the current state.
func (m *Machine[T]) IsInState(s State[T]) bool {
	return m.current != nil && m.current == s
}
