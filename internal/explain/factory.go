package explain

import (
	"fmt"

	"riskstream/internal/config"
)

// NewExplainer creates an explanation provider from configuration.
// "template" is the only shipped provider; the factory exists so external
// providers can be added without touching call sites.
func NewExplainer(cfg config.ExplainConfig) (Explainer, error) {
	switch cfg.Provider {
	case "template", "":
		return NewTemplateExplainer(), nil
	default:
		return nil, fmt.Errorf("unsupported explain provider: %s (supported: template)", cfg.Provider)
	}
}
