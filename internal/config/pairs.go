package config

import "gopkg.in/yaml.v3"

// Entry is a single key/value pair.
type Entry struct {
	Key   string
	Value string
}

// Pairs is an insertion-ordered string mapping.
type Pairs []Entry

// Set replaces the value of key in place, or appends it.
func (p *Pairs) Set(key, value string) {
	for i := range *p {
		if (*p)[i].Key == key {
			(*p)[i].Value = value
			return
		}
	}
	*p = append(*p, Entry{Key: key, Value: value})
}

// Get returns the value of key.
func (p Pairs) Get(key string) (string, bool) {
	for _, e := range p {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// Keys returns the keys in order.
func (p Pairs) Keys() []string {
	keys := make([]string, len(p))
	for i, e := range p {
		keys[i] = e.Key
	}
	return keys
}

// MarshalYAML emits the pairs as a mapping that keeps their order.
func (p Pairs) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, e := range p {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Key},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Value},
		)
	}
	return node, nil
}
