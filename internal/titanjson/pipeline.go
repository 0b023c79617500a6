package titanjson

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/khulnasoft/titan/internal/types"
)

// RawTaskDefinition is a task entry as written, before any defaults or
// inheritance are applied. Unset fields are nil.
type RawTaskDefinition struct {
	DependsOn      []string       `json:"dependsOn,omitempty" yaml:"dependsOn,omitempty"`
	Env            []string       `json:"env,omitempty" yaml:"env,omitempty"`
	PassThroughEnv []string       `json:"passThroughEnv,omitempty" yaml:"passThroughEnv,omitempty"`
	Inputs         []string       `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Outputs        []string       `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	OutputLogs     string         `json:"outputLogs,omitempty" yaml:"outputLogs,omitempty"`
	Cache          *Spanned[bool] `json:"cache,omitempty" yaml:"cache,omitempty"`
	Persistent     *bool          `json:"persistent,omitempty" yaml:"persistent,omitempty"`
	Interactive    *bool          `json:"interactive,omitempty" yaml:"interactive,omitempty"`
	EnvMode        *types.EnvMode `json:"envMode,omitempty" yaml:"envMode,omitempty"`
}

// Pipeline maps task names to their raw definitions. Iteration through
// Keys is in sorted order, so output is stable.
type Pipeline map[TaskName]Spanned[RawTaskDefinition]

// Insert adds or replaces a task definition.
func (p Pipeline) Insert(name TaskName, def Spanned[RawTaskDefinition]) {
	p[name] = def
}

// Get returns the definition for name.
func (p Pipeline) Get(name TaskName) (Spanned[RawTaskDefinition], bool) {
	def, ok := p[name]
	return def, ok
}

// Has reports whether name is defined.
func (p Pipeline) Has(name TaskName) bool {
	_, ok := p[name]
	return ok
}

// Len returns the number of tasks.
func (p Pipeline) Len() int { return len(p) }

// Keys returns the task names in sorted order.
func (p Pipeline) Keys() []TaskName {
	keys := make([]TaskName, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// MarshalJSON encodes the tasks in Keys order. Only definition values are
// written; source locations are dropped.
func (p Pipeline) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range p.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(string(name))
		if err != nil {
			return nil, err
		}
		def, err := json.Marshal(p[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(def)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
