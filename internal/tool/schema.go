// ABOUTME: Static parameter schemas declared per adapter. The bridge and the
// ABOUTME: MCP surface consume these; nothing in the system reflects.

package tool

// ParamType is the declared wire type of a parameter.
type ParamType string

const (
	TypeString ParamType = "string"
	TypeInt    ParamType = "integer"
	TypeFloat  ParamType = "number"
	TypeBool   ParamType = "boolean"
)

// ParamSpec declares one parameter of an adapter: its name, type, whether
// callers must supply it, the default applied when they don't, and the
// description surfaced to model-facing introspection.
type ParamSpec struct {
	Name        string    `json:"name"`
	Type        ParamType `json:"type"`
	Required    bool      `json:"required"`
	Default     any       `json:"default,omitempty"`
	Description string    `json:"description,omitempty"`
}

// Schema is an adapter's ordered parameter declaration list.
type Schema []ParamSpec

// Lookup returns the spec for name.
func (s Schema) Lookup(name string) (ParamSpec, bool) {
	for _, p := range s {
		if p.Name == name {
			return p, true
		}
	}
	return ParamSpec{}, false
}

// Required returns the names of required parameters, in declaration order.
func (s Schema) Required() []string {
	var names []string
	for _, p := range s {
		if p.Required {
			names = append(names, p.Name)
		}
	}
	return names
}

// ApplyDefaults returns a copy of args with declared defaults filled in for
// absent optional parameters. The input map is not modified.
func (s Schema) ApplyDefaults(args Args) Args {
	out := make(Args, len(args)+4)
	for k, v := range args {
		out[k] = v
	}
	for _, p := range s {
		if p.Required || p.Default == nil {
			continue
		}
		if !out.Has(p.Name) {
			out[p.Name] = p.Default
		}
	}
	return out
}
