package pretty

import (
	"encoding/json"
)

type bannerDoc struct {
	Lines []string `json:"lines" yaml:"lines"`
}

type prettyDoc struct {
	Prefix *bannerDoc        `json:"prefix,omitempty" yaml:"prefix,omitempty"`
	Vars   map[string]string `json:"vars" yaml:"vars"`
	Suffix *bannerDoc        `json:"suffix,omitempty" yaml:"suffix,omitempty"`
}

// Fields returns the values keyed by their serialized name, such as
// git_commit_date or custom_my_key.
func (p *Pretty) Fields() map[string]string {
	vars := p.Vars()
	out := make(map[string]string, len(vars))
	for _, v := range vars {
		out[fieldName(v.Category, v.Label)] = v.Value
	}
	return out
}

func (p *Pretty) document() any {
	if p.flatten && p.prefix == nil && p.suffix == nil {
		return p.Fields()
	}
	doc := prettyDoc{Vars: p.Fields()}
	if p.prefix != nil {
		doc.Prefix = &bannerDoc{Lines: p.prefix.Lines}
	}
	if p.suffix != nil {
		doc.Suffix = &bannerDoc{Lines: p.suffix.Lines}
	}
	return doc
}

// MarshalJSON implements json.Marshaler.
func (p *Pretty) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.document())
}

// MarshalYAML implements yaml.Marshaler.
func (p *Pretty) MarshalYAML() (any, error) {
	return p.document(), nil
}
