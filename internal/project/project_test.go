package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/imishinist/mlflow-adsp/internal/models"
)

const testManifest = `name: demo
entry_points:
  main:
    parameters:
      lr: {type: float, default: 0.1}
      epochs: {type: float}
      data: path
    command: "python train.py --lr {lr} --epochs {epochs} --data {data} --out {storage_dir}"
  simple:
    command: "python simple.py"
`

// writeProject creates a project tree with the given manifest and files
func writeProject(t *testing.T, manifest string, files ...string) string {
	t.Helper()
	dir := t.TempDir()
	if manifest != "" {
		if err := os.WriteFile(filepath.Join(dir, "MLproject"), []byte(manifest), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f), []byte("#\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

// TestLoad tests manifest parsing
func TestLoad(t *testing.T) {
	dir := writeProject(t, testManifest)
	p, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() err=%v", err)
	}
	if p.Name != "demo" {
		t.Fatalf("Name=%q", p.Name)
	}
	main, err := p.EntryPoint("main")
	if err != nil {
		t.Fatalf("EntryPoint(main) err=%v", err)
	}
	lr := main.Parameters["lr"]
	if lr.Type != ParamTypeFloat || lr.Default == nil || *lr.Default != "0.1" {
		t.Fatalf("lr=%+v", lr)
	}
	if data := main.Parameters["data"]; data.Type != ParamTypePath || data.Default != nil {
		t.Fatalf("data=%+v", data)
	}
	if names := p.EntryPointNames(); len(names) != 2 || names[0] != "main" || names[1] != "simple" {
		t.Fatalf("EntryPointNames()=%v", names)
	}
}

// TestLoadLowercaseManifest tests case-insensitive manifest lookup
func TestLoadLowercaseManifest(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "mlproject"), []byte(testManifest), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() err=%v", err)
	}
	if len(p.EntryPoints) != 2 {
		t.Fatalf("expected 2 entry points, got %d", len(p.EntryPoints))
	}
}

// TestLoadUnsupportedType tests rejection of unknown parameter types
func TestLoadUnsupportedType(t *testing.T) {
	dir := writeProject(t, "entry_points:\n  main:\n    parameters:\n      x: int\n    command: echo {x}\n")
	_, err := Load(dir)
	var cfgErr *models.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

// TestEntryPointUndeclared tests the error for unknown entry points
func TestEntryPointUndeclared(t *testing.T) {
	p, err := Load(writeProject(t, testManifest))
	if err != nil {
		t.Fatal(err)
	}
	_, err = p.EntryPoint("missing")
	var cfgErr *models.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
	if _, err := p.EntryPoint("nope.py"); !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError for absent script, got %v", err)
	}
}

// TestEntryPointGenericScript tests entry points that name a script file
func TestEntryPointGenericScript(t *testing.T) {
	p, err := Load(writeProject(t, "", "train.py", "run.sh"))
	if err != nil {
		t.Fatal(err)
	}
	ep, err := p.EntryPoint("train.py")
	if err != nil {
		t.Fatalf("EntryPoint(train.py) err=%v", err)
	}
	if ep.Command != "python train.py" {
		t.Fatalf("Command=%q", ep.Command)
	}
	ep, err = p.EntryPoint("run.sh")
	if err != nil {
		t.Fatalf("EntryPoint(run.sh) err=%v", err)
	}
	if ep.Command != "${SHELL:-bash} run.sh" {
		t.Fatalf("Command=%q", ep.Command)
	}
}

// TestLoadParameterDefaults tests scalar, quoted and null defaults
func TestLoadParameterDefaults(t *testing.T) {
	dir := writeProject(t, `entry_points:
  main:
    parameters:
      lr: {type: float, default: 0.1}
      tag: {type: string, default: abc}
      note:
        type: string
        default: "x y"
      seed: {type: float, default: ~}
      data: path
    command: "python train.py"
`)
	p, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() err=%v", err)
	}
	params := p.EntryPoints["main"].Parameters
	for name, want := range map[string]string{"lr": "0.1", "tag": "abc", "note": "x y"} {
		got := params[name].Default
		if got == nil || *got != want {
			t.Fatalf("%s default=%v, want %q", name, got, want)
		}
	}
	if params["seed"].Default != nil || params["seed"].Type != ParamTypeFloat {
		t.Fatalf("seed=%+v", params["seed"])
	}
	if params["data"].Type != ParamTypePath || params["data"].Default != nil {
		t.Fatalf("data=%+v", params["data"])
	}

	bad := writeProject(t, "entry_points:\n  main:\n    parameters:\n      x: {type: float, default: [1]}\n    command: echo\n")
	if _, err := Load(bad); err == nil {
		t.Fatalf("Load() expected error for non-scalar default")
	}
}
