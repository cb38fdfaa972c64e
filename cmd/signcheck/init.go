package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"signcheck/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create a signcheck.toml with an example fixture",
	Long: `Create signcheck.toml, an annotation stub file (stubs.toml) and an example
fixture (example.sgn) in path, or in the current directory when path is omitted.
Existing stub and fixture files are left alone.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

const (
	stubsFileName   = "stubs.toml"
	exampleFileName = "example.sgn"
)

func runInit(_ *cobra.Command, args []string) error {
	target := "."
	if len(args) > 0 && args[0] != "" {
		target = args[0]
	}
	target, err := filepath.Abs(target)
	if err != nil {
		return err
	}
	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err = os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	created, err := writeProjectFiles(target)
	if err != nil {
		return err
	}

	rel := target
	if wd, err := os.Getwd(); err == nil {
		if r, err2 := filepath.Rel(wd, target); err2 == nil {
			rel = r
		}
	}
	fmt.Fprintf(os.Stdout, "Initialized signcheck project in %s\n", rel)
	for _, name := range []string{project.ManifestName, stubsFileName, exampleFileName} {
		if created[name] {
			fmt.Fprintf(os.Stdout, "  - %s\n", name)
		} else {
			fmt.Fprintf(os.Stdout, "  - %s (existing)\n", name)
		}
	}
	return nil
}

// writeProjectFiles creates the manifest, refusing to overwrite one, plus the
// stub and example files when they are missing.
func writeProjectFiles(dir string) (map[string]bool, error) {
	manifestPath := filepath.Join(dir, project.ManifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return nil, fmt.Errorf("project already initialized: %s exists", manifestPath)
	}
	if err := os.WriteFile(manifestPath, []byte(defaultManifest), 0o600); err != nil {
		return nil, fmt.Errorf("failed to write manifest: %w", err)
	}
	created := map[string]bool{project.ManifestName: true}

	for name, content := range map[string]string{stubsFileName: defaultStubs, exampleFileName: defaultExample} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", name, err)
		}
		created[name] = true
	}
	return created, nil
}

const defaultManifest = `# signcheck project manifest
[check]
# format = "pretty"   # pretty | json | short
# jobs = 0            # 0 uses every CPU
stubs = ["stubs.toml"]
paths = ["."]
`

const defaultStubs = `# Qualifiers for declarations that carry no annotation.
# "return" names the result of the function.
[units.checksum]
seed = "bitpattern"
return = "bitpattern"
`

const defaultExample = `// Every integer carries a signedness qualifier. Annotate parameters, locals
// and results with @signed, @unsigned or @bitpattern.
fn checksum(seed: int, data: @bitpattern) -> int {
    return seed ^ data;
}

fn clamp(x: @signed, limit: @unsigned) -> @unsigned {
    if x < 0 {
        return 0;
    }
    // x is known to be non-negative here, so comparing with an unsigned is fine
    if x > limit {
        return limit;
    }
    return x to @unsigned;
}
`
