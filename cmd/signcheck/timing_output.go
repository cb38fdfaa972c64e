package main

import (
	"fmt"
	"io"
	"time"

	"signcheck/internal/pipeline"
)

func printStageTimings(out io.Writer, timings pipeline.Timings) {
	if out == nil {
		return
	}
	for _, stage := range []pipeline.Stage{pipeline.StageLoad, pipeline.StageParse, pipeline.StageCheck} {
		if d := timings.Duration(stage); d > 0 {
			fmt.Fprintf(out, "%-6s %.1f ms\n", stage, toMillis(d))
		}
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
