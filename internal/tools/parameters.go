// Copyright 2025 The Agentspace Neo4j Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tools

import (
	"encoding/json"
	"fmt"
	"math"
)

// Parameter type strings as they appear in manifests.
const (
	typeString  = "string"
	typeInteger = "integer"
	typeFloat   = "float"
	typeBoolean = "boolean"
	typeMap     = "map"
	typeArray   = "array"
)

// Parameter describes one input a tool accepts. Parse converts a raw decoded
// JSON value to the parameter's Go type, rejecting mismatches.
type Parameter interface {
	GetName() string
	GetType() string
	GetRequired() bool
	Parse(v any) (any, error)
	Manifest() ParameterManifest
	McpManifest() ParameterMcpManifest
}

type Parameters []Parameter

// Manifest returns the manifests of each of the parameters.
func (ps Parameters) Manifest() []ParameterManifest {
	rtn := make([]ParameterManifest, 0, len(ps))
	for _, p := range ps {
		rtn = append(rtn, p.Manifest())
	}
	return rtn
}

// McpManifest returns the JSON Schema object for the parameters.
func (ps Parameters) McpManifest() McpToolsSchema {
	properties := make(map[string]ParameterMcpManifest, len(ps))
	required := make([]string, 0)
	for _, p := range ps {
		properties[p.GetName()] = p.McpManifest()
		if p.GetRequired() {
			required = append(required, p.GetName())
		}
	}
	return McpToolsSchema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

// ParameterManifest is the representation of parameters sent to client SDKs.
type ParameterManifest struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Required    bool   `json:"required"`
	Description string `json:"description"`
}

// ParameterMcpManifest is the representation of a parameter in a JSON Schema.
type ParameterMcpManifest struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// McpToolsSchema is the representation of an input schema in a tool manifest.
type McpToolsSchema struct {
	Type       string                          `json:"type"`
	Properties map[string]ParameterMcpManifest `json:"properties"`
	Required   []string                        `json:"required"`
}

// ParamValue represents the parsed value of a single parameter.
type ParamValue struct {
	Name  string
	Value any
}

// ParamValues is an ordered list of ParamValue.
type ParamValues []ParamValue

// AsMap returns a map of ParamValue's names to values.
func (p ParamValues) AsMap() map[string]any {
	params := make(map[string]any, len(p))
	for _, v := range p {
		params[v.Name] = v.Value
	}
	return params
}

// Get returns the value of the named parameter and whether it was provided.
func (p ParamValues) Get(name string) (any, bool) {
	for _, v := range p {
		if v.Name == name {
			return v.Value, true
		}
	}
	return nil, false
}

// GetString returns the named parameter as a string, or the empty string.
func (p ParamValues) GetString(name string) string {
	if v, ok := p.Get(name); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// GetInt returns the named parameter as an int, or 0.
func (p ParamValues) GetInt(name string) int {
	if v, ok := p.Get(name); ok {
		if i, ok := v.(int); ok {
			return i
		}
	}
	return 0
}

// GetBool returns the named parameter as a bool, or false.
func (p ParamValues) GetBool(name string) bool {
	if v, ok := p.Get(name); ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return false
}

// GetMap returns the named parameter as a map, or nil.
func (p ParamValues) GetMap(name string) map[string]any {
	if v, ok := p.Get(name); ok {
		if m, ok := v.(map[string]any); ok {
			return m
		}
	}
	return nil
}

// GetStrings returns the named parameter as a string slice, or nil.
func (p ParamValues) GetStrings(name string) []string {
	if v, ok := p.Get(name); ok {
		if ss, ok := v.([]string); ok {
			return ss
		}
	}
	return nil
}

// ParseParams parses and validates raw invocation data against the declared
// parameters. Required parameters must be present; optional parameters fall
// back to their default when one exists and are skipped otherwise.
func ParseParams(ps Parameters, data map[string]any) (ParamValues, error) {
	params := make(ParamValues, 0, len(ps))
	for _, p := range ps {
		v, ok := data[p.GetName()]
		if !ok || v == nil {
			if d, hasDefault := parameterDefault(p); hasDefault {
				params = append(params, ParamValue{Name: p.GetName(), Value: d})
				continue
			}
			if p.GetRequired() {
				return nil, fmt.Errorf("parameter %q is required", p.GetName())
			}
			continue
		}
		parsed, err := p.Parse(v)
		if err != nil {
			return nil, fmt.Errorf("unable to parse value for %q: %w", p.GetName(), err)
		}
		params = append(params, ParamValue{Name: p.GetName(), Value: parsed})
	}
	return params, nil
}

type defaulter interface {
	defaultValue() (any, bool)
}

func parameterDefault(p Parameter) (any, bool) {
	if d, ok := p.(defaulter); ok {
		return d.defaultValue()
	}
	return nil, false
}

// CommonParameter holds the fields shared by all parameter types.
type CommonParameter struct {
	Name     string
	Type     string
	Desc     string
	Required bool
}

func (p *CommonParameter) GetName() string   { return p.Name }
func (p *CommonParameter) GetType() string   { return p.Type }
func (p *CommonParameter) GetRequired() bool { return p.Required }

func (p *CommonParameter) Manifest() ParameterManifest {
	return ParameterManifest{
		Name:        p.Name,
		Type:        p.Type,
		Required:    p.Required,
		Description: p.Desc,
	}
}

func (p *CommonParameter) McpManifest() ParameterMcpManifest {
	return ParameterMcpManifest{
		Type:        p.Type,
		Description: p.Desc,
	}
}

// StringParameter is a parameter of type string.
type StringParameter struct {
	CommonParameter
	Default *string
}

// NewStringParameter is a convenience function for initializing a required
// StringParameter.
func NewStringParameter(name, desc string) *StringParameter {
	return &StringParameter{
		CommonParameter: CommonParameter{Name: name, Type: typeString, Desc: desc, Required: true},
	}
}

// NewStringParameterWithDefault initializes an optional StringParameter that
// falls back to the given value when absent.
func NewStringParameterWithDefault(name, defaultV, desc string) *StringParameter {
	return &StringParameter{
		CommonParameter: CommonParameter{Name: name, Type: typeString, Desc: desc},
		Default:         &defaultV,
	}
}

func (p *StringParameter) Parse(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%q not type %q", v, p.Type)
	}
	return s, nil
}

func (p *StringParameter) defaultValue() (any, bool) {
	if p.Default == nil {
		return nil, false
	}
	return *p.Default, true
}

// IntParameter is a parameter of type integer.
type IntParameter struct {
	CommonParameter
	Default *int
}

func NewIntParameter(name, desc string) *IntParameter {
	return &IntParameter{
		CommonParameter: CommonParameter{Name: name, Type: typeInteger, Desc: desc, Required: true},
	}
}

func NewIntParameterWithDefault(name string, defaultV int, desc string) *IntParameter {
	return &IntParameter{
		CommonParameter: CommonParameter{Name: name, Type: typeInteger, Desc: desc},
		Default:         &defaultV,
	}
}

func (p *IntParameter) Parse(v any) (any, error) {
	switch n := v.(type) {
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		// json decodes all numbers as float64
		if n != math.Trunc(n) {
			return nil, fmt.Errorf("%v not type %q", v, p.Type)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return nil, fmt.Errorf("%v not type %q", v, p.Type)
		}
		return int(i), nil
	}
	return nil, fmt.Errorf("%v not type %q", v, p.Type)
}

func (p *IntParameter) defaultValue() (any, bool) {
	if p.Default == nil {
		return nil, false
	}
	return *p.Default, true
}

// FloatParameter is a parameter of type float.
type FloatParameter struct {
	CommonParameter
	Default *float64
}

func NewFloatParameter(name, desc string) *FloatParameter {
	return &FloatParameter{
		CommonParameter: CommonParameter{Name: name, Type: typeFloat, Desc: desc, Required: true},
	}
}

func NewFloatParameterWithDefault(name string, defaultV float64, desc string) *FloatParameter {
	return &FloatParameter{
		CommonParameter: CommonParameter{Name: name, Type: typeFloat, Desc: desc},
		Default:         &defaultV,
	}
}

func (p *FloatParameter) Parse(v any) (any, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return nil, fmt.Errorf("%v not type %q", v, p.Type)
		}
		return f, nil
	}
	return nil, fmt.Errorf("%v not type %q", v, p.Type)
}

func (p *FloatParameter) defaultValue() (any, bool) {
	if p.Default == nil {
		return nil, false
	}
	return *p.Default, true
}

// BooleanParameter is a parameter of type boolean.
type BooleanParameter struct {
	CommonParameter
	Default *bool
}

func NewBooleanParameter(name, desc string) *BooleanParameter {
	return &BooleanParameter{
		CommonParameter: CommonParameter{Name: name, Type: typeBoolean, Desc: desc, Required: true},
	}
}

func NewBooleanParameterWithDefault(name string, defaultV bool, desc string) *BooleanParameter {
	return &BooleanParameter{
		CommonParameter: CommonParameter{Name: name, Type: typeBoolean, Desc: desc},
		Default:         &defaultV,
	}
}

func (p *BooleanParameter) Parse(v any) (any, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, fmt.Errorf("%v not type %q", v, p.Type)
	}
	return b, nil
}

func (p *BooleanParameter) defaultValue() (any, bool) {
	if p.Default == nil {
		return nil, false
	}
	return *p.Default, true
}

// MapParameter is a parameter holding a free-form object, used for query
// parameter maps passed through to the database driver.
type MapParameter struct {
	CommonParameter
}

// NewMapParameter initializes an optional MapParameter. An absent map parses
// to no value; callers treat that as an empty map.
func NewMapParameter(name, desc string) *MapParameter {
	return &MapParameter{
		CommonParameter: CommonParameter{Name: name, Type: typeMap, Desc: desc},
	}
}

func (p *MapParameter) Parse(v any) (any, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%v not type %q", v, p.Type)
	}
	return m, nil
}

// ArrayParameter is a parameter holding a list of strings.
type ArrayParameter struct {
	CommonParameter
}

// NewArrayParameter initializes an optional string ArrayParameter.
func NewArrayParameter(name, desc string) *ArrayParameter {
	return &ArrayParameter{
		CommonParameter: CommonParameter{Name: name, Type: typeArray, Desc: desc},
	}
}

func (p *ArrayParameter) Parse(v any) (any, error) {
	raw, ok := v.([]any)
	if !ok {
		if ss, ok := v.([]string); ok {
			return ss, nil
		}
		return nil, fmt.Errorf("%v not type %q", v, p.Type)
	}
	ss := make([]string, 0, len(raw))
	for _, elem := range raw {
		s, ok := elem.(string)
		if !ok {
			return nil, fmt.Errorf("%v not a string element", elem)
		}
		ss = append(ss, s)
	}
	return ss, nil
}
