package catalog

import "strings"

// Model is one record of the scraped catalog.
type Model struct {
	// Name is the Hugging Face repository id, e.g. "meta-llama/Llama-3.1-8B".
	Name string `json:"name"`
	// Provider is the publishing organisation.
	Provider string `json:"provider"`
	// ParameterCount is the human readable size, e.g. "8B".
	ParameterCount string `json:"parameter_count"`
	// ParametersRaw is the exact parameter count when known.
	ParametersRaw *uint64 `json:"parameters_raw,omitempty"`
	// MinRAMGB is the minimum system memory to run the model.
	MinRAMGB float64 `json:"min_ram_gb"`
	// RecommendedRAMGB is the comfortable system memory.
	RecommendedRAMGB float64 `json:"recommended_ram_gb"`
	// MinVRAMGB is the minimum GPU memory, nil for CPU-friendly models.
	MinVRAMGB *float64 `json:"min_vram_gb,omitempty"`
	// Quantization is the weight format, e.g. "Q4_K_M".
	Quantization string `json:"quantization"`
	// ContextLength is the maximum context window in tokens.
	ContextLength uint32 `json:"context_length"`
	// UseCase is a short free-form description.
	UseCase string `json:"use_case"`
	// IsMoE marks mixture-of-experts models.
	IsMoE bool `json:"is_moe,omitempty"`
	// NumExperts is the total number of experts of a MoE model.
	NumExperts *uint32 `json:"num_experts,omitempty"`
	// ActiveExperts is the number of experts used per token.
	ActiveExperts *uint32 `json:"active_experts,omitempty"`
	// ActiveParameters is the parameter count active per token.
	ActiveParameters *uint64 `json:"active_parameters,omitempty"`
}

// Names returns the distinct non-empty model names in catalog order.
func Names(models []Model) []string {
	seen := make(map[string]struct{}, len(models))
	names := make([]string, 0, len(models))

	for _, m := range models {
		name := strings.TrimSpace(m.Name)
		if name == "" {
			continue
		}

		if _, dup := seen[name]; dup {
			continue
		}

		seen[name] = struct{}{}
		names = append(names, name)
	}

	return names
}
