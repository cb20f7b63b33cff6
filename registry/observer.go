package registry

import "time"

// Provider kinds reported to an Observer.
const (
	KindTraceStore     = "trace_store"
	KindFlowStateStore = "flow_state_store"
)

// Observer receives registry events. Implementations must be safe for
// concurrent use; internal/metrics provides a Prometheus-backed one.
type Observer interface {
	// ActionLookup is called once per top-level LookupAction.
	ActionLookup(key string, found bool)
	// PluginInitialized is called when a plugin initializer finishes.
	PluginInitialized(name string, took time.Duration, err error)
	// ProviderConstructed is called when a store provider finishes.
	ProviderConstructed(kind, env string, took time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) ActionLookup(string, bool)                                {}
func (nopObserver) PluginInitialized(string, time.Duration, error)           {}
func (nopObserver) ProviderConstructed(string, string, time.Duration, error) {}

// MultiObserver fans every event out to each of obs, in order.
func MultiObserver(obs ...Observer) Observer {
	return multiObserver(obs)
}

type multiObserver []Observer

func (m multiObserver) ActionLookup(key string, found bool) {
	for _, o := range m {
		o.ActionLookup(key, found)
	}
}

func (m multiObserver) PluginInitialized(name string, took time.Duration, err error) {
	for _, o := range m {
		o.PluginInitialized(name, took, err)
	}
}

func (m multiObserver) ProviderConstructed(kind, env string, took time.Duration, err error) {
	for _, o := range m {
		o.ProviderConstructed(kind, env, took, err)
	}
}
