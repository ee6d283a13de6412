// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/sessionwatch/internal/session"
)

// Activity fans terminal input out to monitor subscriptions. It implements
// session.ActivitySource.
type Activity struct {
	mu   sync.Mutex
	subs map[int]func(session.ActivityKind)
	next int
}

// NewActivity creates an empty activity source.
func NewActivity() *Activity {
	return &Activity{subs: make(map[int]func(session.ActivityKind))}
}

// Subscribe registers fn and returns a function that removes it.
func (a *Activity) Subscribe(fn func(session.ActivityKind)) func() {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := a.next
	a.next++
	a.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			a.mu.Lock()
			defer a.mu.Unlock()
			delete(a.subs, id)
		})
	}
}

// Emit delivers kind to every subscriber. Subscribers run on the caller's
// goroutine, outside the lock.
func (a *Activity) Emit(kind session.ActivityKind) {
	a.mu.Lock()
	fns := make([]func(session.ActivityKind), 0, len(a.subs))
	for _, fn := range a.subs {
		fns = append(fns, fn)
	}
	a.mu.Unlock()

	for _, fn := range fns {
		fn(kind)
	}
}

// Len returns the number of subscribers.
func (a *Activity) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.subs)
}

// ActivityFor maps a terminal message to the activity it represents.
func ActivityFor(msg tea.Msg) (session.ActivityKind, bool) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return session.ActivityKeyPress, true
	case tea.MouseMsg:
		switch msg.Type {
		case tea.MouseMotion:
			return session.ActivityMouseMove, true
		case tea.MouseWheelUp, tea.MouseWheelDown:
			return session.ActivityScroll, true
		case tea.MouseRelease:
			return session.ActivityClick, true
		case tea.MouseLeft, tea.MouseRight, tea.MouseMiddle:
			return session.ActivityMouseDown, true
		}
	}
	return 0, false
}
