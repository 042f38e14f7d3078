package eventclient

import (
	"context"
	"errors"
	"sync"
)

// State is the client-observable registration state of one event.
type State int

const (
	StateUnknown State = iota
	StateUnregistered
	// StatePending: attempted while anonymous, waiting for login.
	StatePending
	// StateRegistered is never re-sent; only a Load without the event clears it.
	StateRegistered
)

func (s State) String() string {
	switch s {
	case StateUnregistered:
		return "unregistered"
	case StatePending:
		return "pending"
	case StateRegistered:
		return "registered"
	default:
		return "unknown"
	}
}

// RegistrationView tracks which events the current user may still register for.
// The server's registration set is authoritative whenever a session exists.
type RegistrationView struct {
	client *Client

	mu     sync.Mutex
	authed bool
	states map[string]State
	links  map[string]string
}

func NewRegistrationView(client *Client) *RegistrationView {
	return &RegistrationView{
		client: client,
		states: make(map[string]State),
		links:  make(map[string]string),
	}
}

// Track makes events known to the view; they start Unknown until Load.
func (v *RegistrationView) Track(eventNames ...string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	for _, name := range eventNames {
		if _, ok := v.states[name]; !ok {
			v.states[name] = StateUnknown
		}
	}
}

func (v *RegistrationView) State(eventName string) State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.states[eventName]
}

// CanRegister reports whether a Register affordance should be offered.
func (v *RegistrationView) CanRegister(eventName string) bool {
	s := v.State(eventName)
	return s == StateUnknown || s == StateUnregistered
}

// Load replaces local state with the server's view. Anonymous callers see every
// event unregistered except attempts still pending login.
func (v *RegistrationView) Load(ctx context.Context) error {
	status, err := v.client.AuthStatus(ctx)
	if err != nil {
		return err
	}

	var registered []string
	if status.IsAuthenticated {
		if registered, err = v.client.Registrations(ctx); err != nil {
			return err
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	v.authed = status.IsAuthenticated

	// The server set replaces local state; only attempts still awaiting login survive.
	set := make(map[string]bool, len(registered))
	for _, name := range registered {
		set[name] = true
		v.states[name] = StateRegistered
	}
	for name, s := range v.states {
		if !set[name] && s != StatePending {
			v.states[name] = StateUnregistered
		}
	}
	return nil
}

// Register attempts a registration. Registered events are not re-sent.
func (v *RegistrationView) Register(ctx context.Context, eventName, link string) (State, error) {
	if v.State(eventName) == StateRegistered {
		return StateRegistered, nil
	}

	err := v.client.Register(ctx, eventName, link)

	v.mu.Lock()
	defer v.mu.Unlock()
	switch {
	case err == nil:
		v.states[eventName] = StateRegistered
		delete(v.links, eventName)
		return StateRegistered, nil
	case errors.Is(err, ErrPending):
		v.states[eventName] = StatePending
		v.links[eventName] = link
		return StatePending, nil
	default:
		return v.states[eventName], err
	}
}

// AfterLogin reloads the server view so replayed registrations show up, then
// re-sends any attempt the server did not replay.
func (v *RegistrationView) AfterLogin(ctx context.Context) error {
	if err := v.Load(ctx); err != nil {
		return err
	}

	v.mu.Lock()
	if !v.authed {
		v.mu.Unlock()
		return ErrUnauthorized
	}
	pending := make(map[string]string)
	for name, s := range v.states {
		if s == StatePending {
			pending[name] = v.links[name]
		}
	}
	v.mu.Unlock()

	for name, link := range pending {
		if _, err := v.Register(ctx, name, link); err != nil {
			return err
		}
	}
	return nil
}
