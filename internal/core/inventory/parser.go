// Package inventory resolves a hierarchical group/host inventory
// document into the flat list of deployment targets for one run.
//
// Parsing is deliberately tolerant: the document is decoded into
// generic YAML first and converted node by node, so unknown keys and
// odd value types degrade to "ignored" rather than failing the run.
package inventory

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// Inventory Tree
// =============================================================================

// Node is one group in the inventory tree. Each level may carry
// variables, hosts, and child groups.
type Node struct {
	Vars     map[string]any
	Hosts    map[string]map[string]any
	Children map[string]*Node

	// ChildOrder preserves document order of Children for
	// deterministic traversal.
	ChildOrder []string

	// HostOrder preserves document order of Hosts.
	HostOrder []string
}

// =============================================================================
// Parsing
// =============================================================================

// Parse decodes an inventory document into a tree rooted at a single
// node. A top-level "all" group is used as the root when present;
// otherwise, if the top level itself looks like a group node it is used
// directly, and failing that every top-level mapping key is treated as
// a sibling group.
func Parse(data []byte) (*Node, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, ErrEmptyInput
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	root := unwrapDocument(&doc)
	if root == nil {
		return nil, ErrEmptyInput
	}
	if root.Kind != yaml.MappingNode {
		return nil, ErrNotMapping
	}

	// An "all" container, when present, is the root group.
	if all := mappingValue(root, "all"); all != nil && all.Kind == yaml.MappingNode {
		return parseNode(all), nil
	}

	// A document whose top level carries group keys is itself a node.
	if mappingValue(root, "vars") != nil || mappingValue(root, "hosts") != nil || mappingValue(root, "children") != nil {
		return parseNode(root), nil
	}

	// Otherwise every top-level mapping is a sibling group.
	node := &Node{Children: map[string]*Node{}}
	eachPair(root, func(key string, val *yaml.Node) {
		if val.Kind != yaml.MappingNode {
			return
		}
		node.Children[key] = parseNode(val)
		node.ChildOrder = append(node.ChildOrder, key)
	})
	return node, nil
}

// parseNode converts one mapping into a group node, ignoring anything
// that does not fit the {vars, hosts, children} shape.
func parseNode(m *yaml.Node) *Node {
	node := &Node{
		Vars:     map[string]any{},
		Hosts:    map[string]map[string]any{},
		Children: map[string]*Node{},
	}

	if vars := mappingValue(m, "vars"); vars != nil && vars.Kind == yaml.MappingNode {
		node.Vars = decodeVars(vars)
	}

	if hosts := mappingValue(m, "hosts"); hosts != nil && hosts.Kind == yaml.MappingNode {
		eachPair(hosts, func(name string, val *yaml.Node) {
			switch val.Kind {
			case yaml.MappingNode:
				node.Hosts[name] = decodeVars(val)
			default:
				// A host with no fields ("host:" with null value).
				node.Hosts[name] = map[string]any{}
			}
			node.HostOrder = append(node.HostOrder, name)
		})
	}

	if children := mappingValue(m, "children"); children != nil && children.Kind == yaml.MappingNode {
		eachPair(children, func(name string, val *yaml.Node) {
			if val.Kind == yaml.MappingNode {
				node.Children[name] = parseNode(val)
			} else {
				node.Children[name] = &Node{
					Vars:     map[string]any{},
					Hosts:    map[string]map[string]any{},
					Children: map[string]*Node{},
				}
			}
			node.ChildOrder = append(node.ChildOrder, name)
		})
	}

	return node
}

// decodeVars flattens a mapping node into generic Go values.
func decodeVars(m *yaml.Node) map[string]any {
	out := map[string]any{}
	_ = m.Decode(&out)
	if out == nil {
		out = map[string]any{}
	}
	return out
}

// =============================================================================
// YAML helpers
// =============================================================================

func unwrapDocument(doc *yaml.Node) *yaml.Node {
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			return nil
		}
		return doc.Content[0]
	}
	return doc
}

// mappingValue returns the value node for a key in a mapping, or nil.
func mappingValue(m *yaml.Node, key string) *yaml.Node {
	if m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// eachPair visits the key/value pairs of a mapping in document order.
func eachPair(m *yaml.Node, fn func(key string, val *yaml.Node)) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		fn(m.Content[i].Value, m.Content[i+1])
	}
}
