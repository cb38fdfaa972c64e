package driver

import (
	"encoding/json"
	"fmt"

	"signcheck/internal/diag"
	"signcheck/internal/observ"
	"signcheck/internal/source"
)

type timingPayload struct {
	Kind    string               `json:"kind"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// TimingDiagnostic packs the timer's report into an info diagnostic whose
// single note carries the phases as JSON, for machine-readable output.
func TimingDiagnostic(timer *observ.Timer) (diag.Diagnostic, bool) {
	rep := timer.Report()
	if len(rep.Phases) == 0 {
		return diag.Diagnostic{}, false
	}
	payload := timingPayload{Kind: "check", TotalMS: rep.TotalMS, Phases: rep.Phases}
	data, err := json.Marshal(payload)
	if err != nil {
		return diag.Diagnostic{}, false
	}
	d := diag.New(diag.SevInfo, diag.ObsTimings, source.Span{},
		fmt.Sprintf("timings (%s): total %.2f ms", payload.Kind, payload.TotalMS))
	return d.WithNote(source.Span{}, string(data)), true
}
