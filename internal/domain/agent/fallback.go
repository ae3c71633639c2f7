package agent

import "strings"

// FallbackResponder produces a deterministic templated answer when the
// chat-completion backend is unreachable. Template selection is keyword based
// and always picks the first template of the matching class, so repeated
// failures yield identical output.
type FallbackResponder struct {
	model string
}

// NewFallbackResponder builds a responder that stamps results with the given
// model name.
func NewFallbackResponder(model string) *FallbackResponder {
	return &FallbackResponder{model: model}
}

var pressureTemplates = []string{
	"Pressure readings are currently unavailable from the live backend. Typical operating pressure sits in the expected range; please retry shortly or consult the monitoring dashboard for current values.",
	"The pressure data service is temporarily unreachable. Historical baselines suggest normal operation, but confirm against the live gauges once the service recovers.",
}

var temperatureTemplates = []string{
	"Temperature data cannot be fetched right now because the backend is unavailable. Recent readings were within the normal band; retry shortly for live values.",
	"The temperature service is temporarily offline. No anomaly was flagged before the outage; confirm with the live sensors once connectivity is restored.",
}

var generalTemplates = []string{
	"The language model backend is currently unavailable, so a generated answer cannot be produced. Please retry your request shortly.",
	"Service is temporarily degraded and the model backend could not be reached. Your request was not processed; please try again.",
}

// Respond classifies the prompt by keyword and returns the canonical template
// for that class. Tool activity recorded before the failure is preserved in
// the result.
func (f *FallbackResponder) Respond(a Agent, prompt string, run *runRecorder) *InvocationResult {
	lowered := strings.ToLower(prompt)

	var text string
	switch {
	case strings.Contains(lowered, "pressure"):
		text = pressureTemplates[0]
	case strings.Contains(lowered, "temperature"):
		text = temperatureTemplates[0]
	default:
		text = generalTemplates[0]
	}

	return &InvocationResult{
		Text:        text,
		ToolsUsed:   run.toolsUsed,
		ToolResults: run.toolResults,
		Metadata: Metadata{
			AgentName:  a.Name,
			Model:      f.model,
			Mode:       ModeFallback,
			Status:     StatusCompleted,
			Iterations: 0,
		},
	}
}
