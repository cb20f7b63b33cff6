package mocks

import (
	"sync"
	"time"

	"github.com/BaSui01/flowreg/registry"
)

// PluginInit is one recorded plugin initialization.
type PluginInit struct {
	Name string
	Err  error
}

// Construction is one recorded store construction.
type Construction struct {
	Kind string
	Env  string
	Err  error
}

// RecordingObserver records every registry event it receives.
type RecordingObserver struct {
	mu            sync.Mutex
	lookups       map[string]int
	misses        map[string]int
	plugins       []PluginInit
	constructions []Construction
}

// NewRecordingObserver returns an empty RecordingObserver.
func NewRecordingObserver() *RecordingObserver {
	return &RecordingObserver{
		lookups: make(map[string]int),
		misses:  make(map[string]int),
	}
}

func (o *RecordingObserver) ActionLookup(key string, found bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.lookups[key]++
	if !found {
		o.misses[key]++
	}
}

func (o *RecordingObserver) PluginInitialized(name string, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.plugins = append(o.plugins, PluginInit{Name: name, Err: err})
}

func (o *RecordingObserver) ProviderConstructed(kind, env string, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.constructions = append(o.constructions, Construction{Kind: kind, Env: env, Err: err})
}

// Lookups returns how often key was looked up and how often it missed.
func (o *RecordingObserver) Lookups(key string) (total, misses int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lookups[key], o.misses[key]
}

// Plugins returns the recorded plugin initializations.
func (o *RecordingObserver) Plugins() []PluginInit {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]PluginInit(nil), o.plugins...)
}

// Constructions returns the recorded store constructions.
func (o *RecordingObserver) Constructions() []Construction {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Construction(nil), o.constructions...)
}

var _ registry.Observer = (*RecordingObserver)(nil)
