package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/imishinist/mlflow-adsp/internal/models"
)

// ManifestName is the project manifest file name; lookup is case-insensitive.
const ManifestName = "MLproject"

// Parameter types understood in entry point declarations.
const (
	ParamTypeString = "string"
	ParamTypeFloat  = "float"
	ParamTypePath   = "path"
	ParamTypeURI    = "uri"
)

// genericCommands maps script extensions to the interpreter used when the entry
// point is a file in the project rather than a declared entry point.
var genericCommands = map[string]string{
	".py": "python",
	".sh": "${SHELL:-bash}",
}

// Project is a fetched project tree and its entry point catalog.
type Project struct {
	Name        string
	Dir         string
	EntryPoints map[string]*EntryPoint
}

// EntryPoint is a named, parameterized command template.
type EntryPoint struct {
	Name       string
	Command    string
	Parameters map[string]Parameter
}

// Parameter is a declared entry point parameter.
type Parameter struct {
	Name    string
	Type    string
	Default *string
}

type manifest struct {
	Name        string                   `yaml:"name"`
	EntryPoints map[string]manifestEntry `yaml:"entry_points"`
}

type manifestEntry struct {
	Parameters map[string]Parameter `yaml:"parameters"`
	Command    string               `yaml:"command"`
}

// UnmarshalYAML accepts both `name: type` and `name: {type: ..., default: ...}`.
func (p *Parameter) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		p.Type = node.Value
		return nil
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, value := node.Content[i].Value, node.Content[i+1]
			switch key {
			case "type":
				if value.Kind != yaml.ScalarNode {
					return fmt.Errorf("line %d: parameter type must be a scalar", value.Line)
				}
				p.Type = value.Value
			case "default":
				if value.Kind != yaml.ScalarNode {
					return fmt.Errorf("line %d: parameter default must be a scalar", value.Line)
				}
				if value.Tag != "!!null" {
					v := value.Value
					p.Default = &v
				}
			}
		}
		return nil
	default:
		return fmt.Errorf("line %d: parameter must be a type name or a mapping", node.Line)
	}
}

// Load reads the project manifest in dir. A directory without a manifest is a
// project with no declared entry points.
func Load(dir string) (*Project, error) {
	p := &Project{
		Name:        filepath.Base(dir),
		Dir:         dir,
		EntryPoints: map[string]*EntryPoint{},
	}

	path, err := findManifest(dir)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return p, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project manifest: %w", err)
	}

	var m manifest
	if err := yaml.Unmarshal(content, &m); err != nil {
		return nil, &models.ConfigurationError{Message: "invalid project manifest " + path, Err: err}
	}
	if m.Name != "" {
		p.Name = m.Name
	}

	for name, entry := range m.EntryPoints {
		if strings.TrimSpace(entry.Command) == "" {
			return nil, &models.ConfigurationError{Message: fmt.Sprintf("entry point %q has no command", name)}
		}
		ep := &EntryPoint{
			Name:       name,
			Command:    entry.Command,
			Parameters: make(map[string]Parameter, len(entry.Parameters)),
		}
		for pname, param := range entry.Parameters {
			param.Name = pname
			if param.Type == "" {
				param.Type = ParamTypeString
			}
			switch param.Type {
			case ParamTypeString, ParamTypeFloat, ParamTypePath, ParamTypeURI:
			default:
				return nil, &models.ConfigurationError{
					Message: fmt.Sprintf("entry point %q: parameter %q has unsupported type %q", name, pname, param.Type),
				}
			}
			ep.Parameters[pname] = param
		}
		p.EntryPoints[name] = ep
	}

	return p, nil
}

func findManifest(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read project directory: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(e.Name(), ManifestName) {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", nil
}

// EntryPoint returns the named entry point. An undeclared name ending in .py or
// .sh that exists in the project directory yields a generic entry point.
func (p *Project) EntryPoint(name string) (*EntryPoint, error) {
	if ep, ok := p.EntryPoints[name]; ok {
		return ep, nil
	}

	if interp, ok := genericCommands[filepath.Ext(name)]; ok {
		_, err := os.Stat(filepath.Join(p.Dir, name))
		if err == nil {
			return &EntryPoint{
				Name:       name,
				Command:    interp + " " + shellQuote(name),
				Parameters: map[string]Parameter{},
			}, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat entry point file: %w", err)
		}
	}

	return nil, &models.ConfigurationError{
		Message: fmt.Sprintf("could not find %s among entry points %v or relative to project root %s",
			name, p.EntryPointNames(), p.Dir),
	}
}

// EntryPointNames returns the declared entry point names, sorted.
func (p *Project) EntryPointNames() []string {
	names := make([]string, 0, len(p.EntryPoints))
	for name := range p.EntryPoints {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
