package driver

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"signcheck/internal/annot"
	"signcheck/internal/qual"
	"signcheck/internal/source"
)

// scenario is one entry of testdata/scenarios.yaml.
type scenario struct {
	Name   string      `yaml:"name"`
	Source string      `yaml:"source"`
	Stubs  string      `yaml:"stubs,omitempty"`
	Expect []string    `yaml:"expect,omitempty"`
	Quals  []qualCheck `yaml:"quals,omitempty"`
}

type qualCheck struct {
	Text string         `yaml:"text"`
	Nth  int            `yaml:"nth,omitempty"`
	Want qual.Qualifier `yaml:"want"`
}

func loadScenarios(t *testing.T, path string) []scenario {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var out []scenario
	require.NoError(t, yaml.Unmarshal(data, &out))
	require.NotEmpty(t, out)
	return out
}

func TestScenarios(t *testing.T) {
	for _, sc := range loadScenarios(t, "testdata/scenarios.yaml") {
		t.Run(sc.Name, func(t *testing.T) {
			opts := Options{}
			if sc.Stubs != "" {
				store, err := annot.DecodeStub(sc.Name, sc.Stubs)
				require.NoError(t, err)
				opts.Store = store
			}

			report, err := CheckSources(context.Background(), []Source{{Path: "scenario.sgn", Content: []byte(sc.Source)}}, opts)
			require.NoError(t, err)
			fr := &report.Files[0]

			kinds := []string{}
			for _, d := range fr.Diagnostics() {
				kinds = append(kinds, d.Code.Kind())
			}
			want := sc.Expect
			if want == nil {
				want = []string{}
			}
			assert.Equal(t, want, kinds)

			for _, qc := range sc.Quals {
				sp := occurrence(t, fr.FileID, sc.Source, qc.Text, qc.Nth)
				var got qual.Qualifier
				var found bool
				for _, u := range fr.Units {
					if q, ok := u.FinalQualifierAt(sp); ok {
						got, found = q, true
						break
					}
				}
				require.True(t, found, "no expression at %q", qc.Text)
				assert.Equal(t, qc.Want, got, "qualifier of %q", qc.Text)
			}
		})
	}
}

// occurrence returns the span of the nth occurrence of text in src.
func occurrence(t *testing.T, file source.FileID, src, text string, nth int) source.Span {
	t.Helper()
	offset := 0
	for i := 0; ; i++ {
		idx := strings.Index(src[offset:], text)
		require.GreaterOrEqual(t, idx, 0, "occurrence %d of %q not found", nth, text)
		if i == nth {
			start := offset + idx
			return source.Span{File: file, Start: uint32(start), End: uint32(start + len(text))}
		}
		offset += idx + len(text)
	}
}
