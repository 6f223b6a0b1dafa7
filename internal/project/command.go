package project

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/imishinist/mlflow-adsp/internal/models"
)

// StorageDirPlaceholder is substituted with the storage directory unless the
// entry point declares a parameter of the same name.
const StorageDirPlaceholder = "storage_dir"

var shellSafe = regexp.MustCompile(`^[\w@%+=:,./-]+$`)

// StagingItem is a URI-valued path parameter that must be downloaded to Dest
// before the command can run.
type StagingItem struct {
	Param string
	URI   string
	Dest  string
}

type resolution struct {
	params  map[string]string
	extra   map[string]string
	staging []StagingItem
}

// BuildCommand computes the shell command for running entryPoint with params.
// It has no side effects.
func BuildCommand(p *Project, entryPoint string, params map[string]string, storageDir string) (string, error) {
	ep, err := p.EntryPoint(entryPoint)
	if err != nil {
		return "", err
	}
	return ep.ComputeCommand(params, storageDir)
}

// StagingPlan lists the URI path parameters of entryPoint that have to be
// materialised under storageDir.
func StagingPlan(p *Project, entryPoint string, params map[string]string, storageDir string) ([]StagingItem, error) {
	ep, err := p.EntryPoint(entryPoint)
	if err != nil {
		return nil, err
	}
	res, err := ep.resolve(params, storageDir)
	if err != nil {
		return nil, err
	}
	return res.staging, nil
}

// ComputeCommand substitutes the resolved parameters into the command template
// and appends undeclared parameters as --key value.
func (e *EntryPoint) ComputeCommand(params map[string]string, storageDir string) (string, error) {
	res, err := e.resolve(params, storageDir)
	if err != nil {
		return "", err
	}

	values := make(map[string]string, len(res.params)+1)
	values[StorageDirPlaceholder] = shellQuote(storageDir)
	for k, v := range res.params {
		values[k] = v
	}

	cmd, err := formatTemplate(e.Command, values)
	if err != nil {
		return "", err
	}

	keys := make([]string, 0, len(res.extra))
	for k := range res.extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(cmd)
	for _, k := range keys {
		fmt.Fprintf(&b, " --%s %s", k, res.extra[k])
	}
	return b.String(), nil
}

// ValidateParameters checks that every declared parameter without a default
// has a value.
func (e *EntryPoint) ValidateParameters(params map[string]string) error {
	missing := e.missingParameters(params)
	if len(missing) == 0 {
		return nil
	}
	return &models.ParameterError{
		Name:    missing[0],
		Message: fmt.Sprintf("no value given for missing parameters: %s", strings.Join(missing, ", ")),
	}
}

func (e *EntryPoint) missingParameters(params map[string]string) []string {
	var missing []string
	for name, p := range e.Parameters {
		if _, ok := params[name]; ok {
			continue
		}
		if p.Default == nil {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

func (e *EntryPoint) resolve(params map[string]string, storageDir string) (*resolution, error) {
	if err := e.ValidateParameters(params); err != nil {
		return nil, err
	}

	res := &resolution{
		params: make(map[string]string, len(e.Parameters)),
		extra:  map[string]string{},
	}

	names := make([]string, 0, len(e.Parameters))
	for name := range e.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		decl := e.Parameters[name]
		value, ok := params[name]
		if !ok {
			value = *decl.Default
		}

		switch decl.Type {
		case ParamTypeFloat:
			if _, err := strconv.ParseFloat(value, 64); err != nil {
				return nil, &models.ParameterError{Name: name, Message: fmt.Sprintf("value %q must be float", value)}
			}
		case ParamTypePath:
			if localPath, isLocal := localPathOf(value); isLocal {
				abs, err := filepath.Abs(localPath)
				if err != nil {
					return nil, &models.ParameterError{Name: name, Message: err.Error()}
				}
				if !pathExists(abs) {
					return nil, &models.ParameterError{
						Name:    name,
						Message: fmt.Sprintf("got value %s but no such file or directory was found", value),
					}
				}
				value = abs
			} else {
				dest := filepath.Join(storageDir, uriBase(value))
				res.staging = append(res.staging, StagingItem{Param: name, URI: value, Dest: dest})
				value = dest
			}
		case ParamTypeURI:
			if localPath, isLocal := localPathOf(value); isLocal {
				abs, err := filepath.Abs(localPath)
				if err != nil {
					return nil, &models.ParameterError{Name: name, Message: err.Error()}
				}
				value = abs
			}
		}
		res.params[name] = shellQuote(value)
	}

	for name, value := range params {
		if _, declared := e.Parameters[name]; !declared {
			res.extra[name] = shellQuote(value)
		}
	}

	return res, nil
}

// formatTemplate replaces {name} fields with values. {{ and }} are literal braces.
func formatTemplate(tmpl string, values map[string]string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		switch c {
		case '{':
			if i+1 < len(tmpl) && tmpl[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(tmpl[i+1:], '}')
			if end < 0 {
				return "", &models.ConfigurationError{Message: "unbalanced '{' in command: " + tmpl}
			}
			field := tmpl[i+1 : i+1+end]
			v, ok := values[field]
			if !ok {
				return "", &models.ParameterError{Name: field, Message: "referenced by the command but has no value"}
			}
			b.WriteString(v)
			i += end + 1
		case '}':
			if i+1 < len(tmpl) && tmpl[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			return "", &models.ConfigurationError{Message: "single '}' in command: " + tmpl}
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

// shellQuote quotes s for a POSIX shell. Strings made only of safe characters
// are returned unchanged.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if shellSafe.MatchString(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

// localPathOf returns the filesystem path for plain paths and file:// URIs.
func localPathOf(value string) (string, bool) {
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" {
		return value, true
	}
	// single-letter schemes are Windows drive letters
	if len(u.Scheme) == 1 {
		return value, true
	}
	if u.Scheme == "file" && (u.Host == "" || u.Host == "localhost") {
		return u.Path, true
	}
	return "", false
}

func uriBase(value string) string {
	u, err := url.Parse(value)
	if err != nil {
		return path.Base(value)
	}
	base := path.Base(u.Path)
	if base == "/" || base == "." {
		return ""
	}
	return base
}
