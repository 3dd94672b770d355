package explain

import (
	"fmt"
	"strings"

	"riskstream/internal/types"
)

// TemplateExplainer renders deterministic explanations from event fields
// and recent context. It is the default provider.
type TemplateExplainer struct{}

// NewTemplateExplainer creates the template provider
func NewTemplateExplainer() *TemplateExplainer {
	return &TemplateExplainer{}
}

// Name identifies the provider
func (te *TemplateExplainer) Name() string {
	return "template"
}

// Explain renders a one-paragraph explanation of the event
func (te *TemplateExplainer) Explain(event types.RiskEvent, context []types.MetricsSnapshot) (string, error) {
	var sb strings.Builder

	switch event.Kind {
	case types.EventDeltaSpike:
		fmt.Fprintf(&sb, "%s delta moved from %.4f to %.4f (%.1f%% change), past the spike threshold.",
			event.InstrumentID, event.OldValue, event.NewValue, event.ChangePct)
	case types.EventGammaSpike:
		fmt.Fprintf(&sb, "%s gamma moved from %.6f to %.6f (%.1f%% change), past the spike threshold.",
			event.InstrumentID, event.OldValue, event.NewValue, event.ChangePct)
	case types.EventRegimeChange:
		fmt.Fprintf(&sb, "%s risk regime shifted: %s", event.InstrumentID, event.Description)
	default:
		return "", fmt.Errorf("no template for event kind %q", event.Kind)
	}

	fmt.Fprintf(&sb, " Severity %s.", event.Severity)

	if trend := describeTrend(context); trend != "" {
		sb.WriteString(" ")
		sb.WriteString(trend)
	}

	return sb.String(), nil
}

// describeTrend summarizes the recent score path, oldest first
func describeTrend(context []types.MetricsSnapshot) string {
	if len(context) < 2 {
		return ""
	}

	first := context[0]
	last := context[len(context)-1]
	diff := last.RiskScore - first.RiskScore

	direction := "held steady"
	if diff > 1 {
		direction = "been rising"
	} else if diff < -1 {
		direction = "been falling"
	}

	return fmt.Sprintf("Over the last %d ticks the risk score has %s (%.1f to %.1f), currently %s.",
		len(context), direction, first.RiskScore, last.RiskScore, last.Regime)
}
