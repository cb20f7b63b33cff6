package registry

import (
	"fmt"
	"strings"
)

// ActionType is the category an action is registered under.
type ActionType string

const (
	ActionTypeCustom    ActionType = "custom"
	ActionTypeRetriever ActionType = "retriever"
	ActionTypeIndexer   ActionType = "indexer"
	ActionTypeEmbedder  ActionType = "embedder"
	ActionTypeEvaluator ActionType = "evaluator"
	ActionTypeFlow      ActionType = "flow"
	ActionTypeModel     ActionType = "model"
	ActionTypePrompt    ActionType = "prompt"
	ActionTypeTool      ActionType = "tool"
)

var actionTypes = map[ActionType]struct{}{
	ActionTypeCustom:    {},
	ActionTypeRetriever: {},
	ActionTypeIndexer:   {},
	ActionTypeEmbedder:  {},
	ActionTypeEvaluator: {},
	ActionTypeFlow:      {},
	ActionTypeModel:     {},
	ActionTypePrompt:    {},
	ActionTypeTool:      {},
}

// Valid reports whether t belongs to the closed set of action types.
func (t ActionType) Valid() bool {
	_, ok := actionTypes[t]
	return ok
}

// Action is an invokable unit of work. The registry only needs its name;
// invocation happens elsewhere.
type Action interface {
	Name() string
}

// Describer is implemented by actions that can describe themselves to
// tooling such as the reflection API.
type Describer interface {
	Desc() ActionDesc
}

// ActionDesc is the descriptive metadata of an action.
type ActionDesc struct {
	Key          string         `json:"key"`
	Name         string         `json:"name"`
	Type         ActionType     `json:"type,omitempty"`
	Description  string         `json:"description,omitempty"`
	InputSchema  map[string]any `json:"inputSchema,omitempty"`
	OutputSchema map[string]any `json:"outputSchema,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

type action struct {
	name string
	desc ActionDesc
}

// NewAction returns a plain action value carrying only metadata. The name
// and description fields of desc are filled in from name when empty.
func NewAction(name string, desc ActionDesc) Action {
	if desc.Name == "" {
		desc.Name = name
	}
	return &action{name: name, desc: desc}
}

func (a *action) Name() string { return a.name }

func (a *action) Desc() ActionDesc { return a.desc }

// DescribeAction returns the description of a, deriving a minimal one when a
// does not implement Describer. The key is always the one it is stored under.
func DescribeAction(key string, a Action) ActionDesc {
	var d ActionDesc
	if ds, ok := a.(Describer); ok {
		d = ds.Desc()
	}
	if d.Name == "" {
		d.Name = a.Name()
	}
	d.Key = key
	if typ, _, ok := ParseActionKey(key); ok {
		d.Type = typ
	}
	return d
}

// ActionKey returns the registry key of an action: /<type>/<name>.
func ActionKey(typ ActionType, name string) string {
	return fmt.Sprintf("/%s/%s", typ, name)
}

// ParseActionKey splits a key produced by ActionKey back into its type and
// name. The name may itself contain slashes.
func ParseActionKey(key string) (ActionType, string, bool) {
	rest, ok := strings.CutPrefix(key, "/")
	if !ok {
		return "", "", false
	}
	typ, name, ok := strings.Cut(rest, "/")
	if !ok || name == "" || !ActionType(typ).Valid() {
		return "", "", false
	}
	return ActionType(typ), name, true
}

// pluginNameFromKey infers the plugin that owns a key shaped like
// /<type>/<plugin>/<name>. Any other segment count yields no plugin; an
// empty middle segment names the plugin "".
func pluginNameFromKey(key string) (string, bool) {
	tokens := strings.Split(key, "/")
	if len(tokens) != 4 {
		return "", false
	}
	return tokens[2], true
}
