package harness

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/rw1nkler/xls/ir"
	"github.com/rw1nkler/xls/sim"
)

// RunSpec is the file form of a harness invocation: an IR source, a
// backend, a tick schedule, and per-channel stream files.  Relative paths
// resolve against the spec file's directory.
type RunSpec struct {
	IR       string            `yaml:"ir"`
	Backend  string            `yaml:"backend"`
	Ticks    string            `yaml:"ticks"`
	Inputs   map[string]string `yaml:"inputs"`
	Expected map[string]string `yaml:"expected"`
}

// LoadRunSpec reads and decodes a YAML run spec.
func LoadRunSpec(path string) (*RunSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	rs := &RunSpec{Backend: BackendInterpreter}
	if err := yaml.Unmarshal(data, rs); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if rs.IR == "" {
		return nil, fmt.Errorf("%s: run spec has no ir path", path)
	}
	if rs.Ticks == "" {
		return nil, fmt.Errorf("%s: run spec has no tick schedule", path)
	}
	return rs, nil
}

// Resolve loads the package, backend, and run config a spec describes.
// baseDir anchors the spec's relative paths.
func (rs *RunSpec) Resolve(baseDir string) (*ir.Package, sim.Backend, Config, error) {
	src, err := os.ReadFile(join(baseDir, rs.IR))
	if err != nil {
		return nil, nil, Config{}, err
	}
	pkg, err := ir.LoadPackage(string(src))
	if err != nil {
		return nil, nil, Config{}, err
	}
	backend, err := NewBackend(rs.Backend)
	if err != nil {
		return nil, nil, Config{}, err
	}
	sched, err := sim.ParseSchedule(rs.Ticks)
	if err != nil {
		return nil, nil, Config{}, err
	}
	cfg := Config{Schedule: sched}
	if cfg.Inputs, err = readStreams(baseDir, pkg, rs.Inputs); err != nil {
		return nil, nil, Config{}, err
	}
	if cfg.Expected, err = readStreams(baseDir, pkg, rs.Expected); err != nil {
		return nil, nil, Config{}, err
	}
	return pkg, backend, cfg, nil
}

func readStreams(baseDir string, pkg *ir.Package, paths map[string]string) (map[string][]ir.Value, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	out := make(map[string][]ir.Value, len(paths))
	for name, path := range paths {
		c := pkg.Chan(name)
		if c == nil {
			return nil, &ChannelMismatchError{Channel: name, Msg: "no such channel in package"}
		}
		vals, err := ReadStreamFile(join(baseDir, path), c.Elem)
		if err != nil {
			return nil, err
		}
		out[name] = vals
	}
	return out, nil
}

func join(baseDir, path string) string {
	if baseDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}
