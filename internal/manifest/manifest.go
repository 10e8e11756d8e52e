// Package manifest reads YAML type manifests and replays them as
// definition sessions.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	dynerrors "github.com/toyz/dynapi/internal/errors"
	"github.com/toyz/dynapi/internal/utils"
)

// Manifest is the root document
type Manifest struct {
	Types []TypeSpec `yaml:"types" validate:"required,min=1,dive"`
}

// TypeSpec describes one type to materialize
type TypeSpec struct {
	Name           string         `yaml:"name" validate:"required"`
	Profile        string         `yaml:"profile" validate:"omitempty,oneof=object endpoint reactive webflux"`
	Base           string         `yaml:"base" validate:"excluded_with=Profile"`
	Reuse          bool           `yaml:"reuse"`
	Controller     string         `yaml:"controller"`
	RestController string         `yaml:"restController"`
	Mapping        *MappingSpec   `yaml:"mapping"`
	Binding        *BindingSpec   `yaml:"binding"`
	Docs           *DocsSpec      `yaml:"docs"`
	Dispatcher     *InjectSpec    `yaml:"dispatcher"`
	Fields         []FieldSpec    `yaml:"fields" validate:"dive"`
	Methods        []MethodSpec   `yaml:"methods" validate:"dive"`
	Accessors      AccessorSpec   `yaml:"accessors"`
	Remove         RemoveSpec     `yaml:"remove"`
	Component      *ComponentSpec `yaml:"component"`
}

// FieldSpec declares a field either from source or by type and name
type FieldSpec struct {
	Source string      `yaml:"source"`
	Type   string      `yaml:"type" validate:"required_without=Source"`
	Name   string      `yaml:"name" validate:"required_without=Source"`
	Value  *string     `yaml:"value"`
	Inject *InjectSpec `yaml:"inject"`
}

// InjectSpec requests autowiring records
type InjectSpec struct {
	Required  bool   `yaml:"required"`
	Qualifier string `yaml:"qualifier"`
}

// MethodSpec declares a compiled or synthesized method
type MethodSpec struct {
	Source       string       `yaml:"source"`
	Name         string       `yaml:"name" validate:"required_without=Source"`
	Returns      string       `yaml:"returns"`
	ResponseBody bool         `yaml:"responseBody"`
	Mapping      MappingSpec  `yaml:"mapping"`
	Binding      *BindingSpec `yaml:"binding"`
	Params       []ParamSpec  `yaml:"params" validate:"dive"`
}

// MappingSpec mirrors descriptor.Mapping
type MappingSpec struct {
	Name     string   `yaml:"name"`
	Paths    []string `yaml:"paths"`
	Verbs    []string `yaml:"verbs"`
	Params   []string `yaml:"params"`
	Headers  []string `yaml:"headers"`
	Consumes []string `yaml:"consumes"`
	Produces []string `yaml:"produces"`
}

// BindingSpec mirrors descriptor.Binding
type BindingSpec struct {
	UID   string `yaml:"uid" validate:"required"`
	JSON  string `yaml:"json" validate:"omitempty,json"`
	Notes string `yaml:"notes"`
}

// ParamSpec mirrors descriptor.Parameter. Required defaults to true
// unless a default value is given.
type ParamSpec struct {
	Name        string `yaml:"name" validate:"required"`
	Type        string `yaml:"type" validate:"required"`
	Source      string `yaml:"source" validate:"omitempty,oneof=param query cookie matrix path attribute attr body header part multipart"`
	Default     string `yaml:"default"`
	Required    *bool  `yaml:"required"`
	Description string `yaml:"description"`
}

// DocsSpec switches documentation records on or off for the type
type DocsSpec struct {
	Enabled bool     `yaml:"enabled"`
	Tags    []string `yaml:"tags"`
}

// AccessorSpec adds the reactive mono and flux accessors
type AccessorSpec struct {
	Single  bool         `yaml:"single"`
	Multi   bool         `yaml:"multi"`
	Binding *BindingSpec `yaml:"binding"`
}

// RemoveSpec drops fields, methods or accessors after everything is added.
// Methods are named by signature, e.g. "find(int)"; a bare name means no
// parameters.
type RemoveSpec struct {
	Fields    []string `yaml:"fields"`
	Methods   []string `yaml:"methods"`
	Accessors bool     `yaml:"accessors"`
}

// ComponentSpec holds registry options for the materialized type
type ComponentSpec struct {
	Name              string `yaml:"name"`
	Scope             string `yaml:"scope" validate:"omitempty,oneof=singleton prototype"`
	Lazy              bool   `yaml:"lazy"`
	AutowireCandidate *bool  `yaml:"autowireCandidate"`
}

var validate = validator.New()

// Parse decodes and validates a manifest. Unknown keys are rejected.
func Parse(data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, dynerrors.WrapConfigurationError("manifest", fmt.Errorf("manifest is empty"))
		}
		return nil, dynerrors.WrapConfigurationError("manifest", err)
	}
	if err := validate.Struct(&m); err != nil {
		return nil, dynerrors.WrapConfigurationError("manifest", err)
	}

	seen := make(map[string]bool, len(m.Types))
	for _, t := range m.Types {
		if seen[t.Name] && !t.Reuse {
			return nil, dynerrors.WrapConfigurationError("manifest",
				fmt.Errorf("type '%s' is declared more than once", t.Name))
		}
		seen[t.Name] = true
	}
	return &m, nil
}

// Loader reads manifest files, reparsing only when a file changes
type Loader struct {
	cache *utils.FileCache[*Manifest]
}

// NewLoader creates a loader with an empty cache
func NewLoader() *Loader {
	return &Loader{cache: utils.NewFileCache[*Manifest]()}
}

// Load returns the parsed manifest at path
func (l *Loader) Load(path string) (*Manifest, error) {
	if m, ok := l.cache.Get(path); ok {
		return m, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, utils.WrapLoadError(path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if err := l.cache.Put(path, m); err != nil {
		return nil, err
	}
	return m, nil
}
