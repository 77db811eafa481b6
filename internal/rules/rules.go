// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package rules loads the keyword rule file: a YAML mapping with up to three
// ordered string lists, include_terms, exclude_terms and
// exclude_terms_category. Absent keys are empty lists; anything else that is
// not a list of non-empty strings is a configuration error.
package rules

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/wos-filter/pkg/types"
)

// ErrMalformedRules wraps every rule-file validation failure.
var ErrMalformedRules = errors.New("malformed rule file")

const (
	keyInclude         = "include_terms"
	keyExclude         = "exclude_terms"
	keyExcludeCategory = "exclude_terms_category"
)

// Load reads and validates the rule file at path.
func Load(path string) (types.RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.RuleSet{}, fmt.Errorf("reading rule file: %w", err)
	}
	rs, err := Parse(data)
	if err != nil {
		return types.RuleSet{}, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}

// Parse validates and decodes a rule document. An empty document yields an
// empty RuleSet. Unknown keys are ignored.
func Parse(data []byte) (types.RuleSet, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return types.RuleSet{}, fmt.Errorf("%w: %v", ErrMalformedRules, err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return types.RuleSet{}, nil
	}

	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return types.RuleSet{}, nil
	}
	if root.Kind != yaml.MappingNode {
		return types.RuleSet{}, fmt.Errorf("%w: top level must be a mapping, got %s", ErrMalformedRules, kindName(root))
	}

	var rs types.RuleSet
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i].Value, root.Content[i+1]
		var dst *[]string
		switch key {
		case keyInclude:
			dst = &rs.IncludeTerms
		case keyExclude:
			dst = &rs.ExcludeTerms
		case keyExcludeCategory:
			dst = &rs.ExcludeTermsCategory
		default:
			continue
		}
		terms, err := termList(key, value)
		if err != nil {
			return types.RuleSet{}, err
		}
		*dst = terms
	}
	return rs, nil
}

// termList decodes one list value. A null value ("include_terms:" with
// nothing after it) counts as empty.
func termList(key string, n *yaml.Node) ([]string, error) {
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("%w: %s must be a list, got %s (line %d)", ErrMalformedRules, key, kindName(n), n.Line)
	}
	terms := make([]string, 0, len(n.Content))
	for i, item := range n.Content {
		if item.Kind != yaml.ScalarNode || item.Tag == "!!null" {
			return nil, fmt.Errorf("%w: %s[%d] must be a string, got %s (line %d)", ErrMalformedRules, key, i, kindName(item), item.Line)
		}
		if strings.TrimSpace(item.Value) == "" {
			return nil, fmt.Errorf("%w: %s[%d] is empty (line %d)", ErrMalformedRules, key, i, item.Line)
		}
		terms = append(terms, item.Value)
	}
	return terms, nil
}

func kindName(n *yaml.Node) string {
	switch n.Kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "list"
	case yaml.MappingNode:
		return "mapping"
	case yaml.AliasNode:
		return "alias"
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return "null"
		}
		return "scalar " + n.Tag
	}
	return "unknown"
}
