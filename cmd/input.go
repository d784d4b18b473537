package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/dealscore/internal/benchmark"
	"github.com/sells-group/dealscore/internal/export"
	"github.com/sells-group/dealscore/internal/model"
)

// loadProjects reads projects from a CSV or XLSX sheet, or from a YAML/JSON
// document holding either a single project or a list of them. Every project
// is validated.
func loadProjects(path string) ([]model.Project, error) {
	var (
		projects []model.Project
		err      error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".xlsx":
		projects, err = export.ReadProjects(path)
	default:
		projects, err = decodeProjectsFile(path)
	}
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, eris.Errorf("no projects in %s", path)
	}
	for i, p := range projects {
		if err := p.Validate(); err != nil {
			return nil, eris.Wrapf(err, "%s: project %d", path, i+1)
		}
	}
	return projects, nil
}

func decodeProjectsFile(path string) ([]model.Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "open projects file")
	}
	defer f.Close() //nolint:errcheck
	return decodeProjects(f)
}

func decodeProjects(r io.Reader) ([]model.Project, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, eris.Wrap(err, "decode projects")
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var projects []model.Project
		if err := root.Decode(&projects); err != nil {
			return nil, eris.Wrap(err, "decode project list")
		}
		return projects, nil
	case yaml.MappingNode:
		var p model.Project
		if err := root.Decode(&p); err != nil {
			return nil, eris.Wrap(err, "decode project")
		}
		return []model.Project{p}, nil
	default:
		return nil, eris.New("decode projects: expected a project or a list of projects")
	}
}

// loadModuleInputs reads per-module metric values keyed by module name.
func loadModuleInputs(path string) (map[model.Module]benchmark.ModuleInput, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "open metrics file")
	}
	defer f.Close() //nolint:errcheck

	var inputs map[model.Module]benchmark.ModuleInput
	if err := yaml.NewDecoder(f).Decode(&inputs); err != nil && err != io.EOF {
		return nil, eris.Wrap(err, "decode metrics")
	}
	return inputs, nil
}

// openOutput returns the writer for command output. Binary formats require
// an output path.
func openOutput(path string, f export.Format) (io.Writer, func() error, error) {
	if path == "" {
		if f.Binary() {
			return nil, nil, eris.Errorf("--output is required for %s output", f)
		}
		return os.Stdout, func() error { return nil }, nil
	}
	out, err := os.Create(path)
	if err != nil {
		return nil, nil, eris.Wrap(err, "create output file")
	}
	return out, out.Close, nil
}
