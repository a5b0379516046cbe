package bridge

import (
	"sort"

	"github.com/samber/lo"

	"whisper-bridge/internal/app/api/provider"
	"whisper-bridge/internal/app/config"
)

// EngineStatus describes one registered engine as it would be built right now.
type EngineStatus struct {
	Name    string                 `json:"name"`
	Type    string                 `json:"type"`
	Default bool                   `json:"default"`
	Ready   bool                   `json:"ready"`
	Info    *provider.ProviderInfo `json:"info,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// DescribeEngines builds every registered engine with its configured settings and
// reports whether construction and validation succeeded. Engines are closed again.
func DescribeEngines(engines *config.EnginesConfig, defaultEngine string, factory ProviderFactory) []EngineStatus {
	if factory == nil {
		factory = provider.NewProvider
	}
	names := provider.ListRegisteredProviders()
	if engines != nil {
		names = lo.Uniq(append(names, lo.Keys(engines.Engines)...))
	}

	statuses := lo.Map(names, func(name string, _ int) EngineStatus {
		st := EngineStatus{Name: name, Type: name, Default: name == defaultEngine}

		engineType, cfg, err := engines.Resolve(name)
		if err != nil {
			st.Error = err.Error()
			return st
		}
		st.Type = engineType

		p, err := factory(engineType, cfg)
		if err != nil {
			st.Error = err.Error()
			return st
		}
		defer p.Close()

		info := p.GetProviderInfo()
		st.Info = &info
		st.Ready = true
		return st
	})

	// config keys are map-ordered
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })
	return statuses
}
