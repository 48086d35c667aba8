package projectfs

import (
	"bytes"
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"

	"go.eggybyte.com/stackgen/core/errors"
	"go.eggybyte.com/stackgen/core/log"
)

// Dependency is one pubspec dependency constraint.
type Dependency struct {
	Name    string
	Version string
}

// PatchPubspec sets dependencies in a pubspec.yaml, keeping every other key,
// its order and its comments. Existing constraints for the same names are replaced.
//
// Parameters:
//   - path: pubspec.yaml relative to root
//   - deps: Dependencies in the order they are appended when new
//
// Returns:
//   - bool: True if the file content changed
//   - error: NOT_FOUND if missing, INVALID_ARGUMENT if it is not a YAML mapping
func (fs *ProjectFS) PatchPubspec(path string, deps []Dependency) (bool, error) {
	content, err := fs.ReadFile(path)
	if err != nil {
		return false, err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(content), &doc); err != nil {
		return false, errors.Wrapf(errors.CodeInvalidArgument, "projectfs.PatchPubspec", err, "failed to parse %s", path)
	}
	if len(doc.Content) == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return false, errors.Newf(errors.CodeInvalidArgument, "%s: top level is not a mapping", path)
	}

	depsNode := mappingValue(root, "dependencies")
	if depsNode == nil || depsNode.Kind != yaml.MappingNode {
		fresh := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		if depsNode == nil {
			root.Content = append(root.Content, scalar("dependencies"), fresh)
		} else {
			// "dependencies:" with no entries parses as a null scalar.
			*depsNode = *fresh
		}
		depsNode = mappingValue(root, "dependencies")
	}

	for _, d := range deps {
		if v := mappingValue(depsNode, d.Name); v != nil {
			*v = *scalar(d.Version)
			continue
		}
		depsNode.Content = append(depsNode.Content, scalar(d.Name), scalar(d.Version))
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return false, errors.Wrapf(errors.CodeInternal, "projectfs.PatchPubspec", err, "failed to encode %s", path)
	}
	if err := enc.Close(); err != nil {
		return false, errors.Wrapf(errors.CodeInternal, "projectfs.PatchPubspec", err, "failed to encode %s", path)
	}

	patched := buf.String()
	if patched == content {
		return false, nil
	}
	fs.logger.Debug("patched pubspec", log.Str("path", path), log.Int("dependencies", len(deps)))
	return true, fs.WriteFile(path, patched)
}

// mappingValue returns the value node for key in a mapping node, or nil.
func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

// JSONObject is an object inside a JSON document opened by PatchJSON.
// Edits keep the existing key order and the source text of numbers.
type JSONObject struct {
	node *yaml.Node
}

// Object returns the nested object at keys, creating missing levels.
// The bool is false when an existing value on the way is not an object.
func (o JSONObject) Object(keys ...string) (JSONObject, bool) {
	cur := o.node
	for _, k := range keys {
		next := mappingValue(cur, k)
		if next == nil {
			next = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			cur.Content = append(cur.Content, scalar(k), next)
		}
		if next.Kind != yaml.MappingNode {
			return JSONObject{}, false
		}
		cur = next
	}
	return JSONObject{node: cur}, true
}

// SetString sets key to a string value, appending the key when it is new.
func (o JSONObject) SetString(key, value string) {
	if v := mappingValue(o.node, key); v != nil {
		*v = *scalar(value)
		return
	}
	o.node.Content = append(o.node.Content, scalar(key), scalar(value))
}

// PatchJSON opens a JSON object file, applies edit, and writes it back with
// two-space indentation. Keys stay in file order. A missing file is left alone
// and reported as unchanged.
//
// Returns:
//   - bool: True if the file content changed
//   - error: INVALID_ARGUMENT if the file is not a JSON object, INTERNAL if edit fails
func (fs *ProjectFS) PatchJSON(path string, edit func(doc JSONObject) error) (bool, error) {
	exists, err := fs.FileExists(path)
	if err != nil || !exists {
		return false, err
	}
	content, err := fs.ReadFile(path)
	if err != nil {
		return false, err
	}

	// JSON is a subset of YAML, so the node tree keeps order and scalar text.
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(content), &doc); err != nil {
		return false, errors.Wrapf(errors.CodeInvalidArgument, "projectfs.PatchJSON", err, "failed to parse %s", path)
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return false, errors.Newf(errors.CodeInvalidArgument, "%s: top level is not an object", path)
	}
	root := doc.Content[0]
	if err := edit(JSONObject{node: root}); err != nil {
		return false, errors.Wrapf(errors.CodeInternal, "projectfs.PatchJSON", err, "failed to patch %s", path)
	}

	var b strings.Builder
	if err := writeJSON(&b, root, 0); err != nil {
		return false, errors.Wrapf(errors.CodeInternal, "projectfs.PatchJSON", err, "failed to encode %s", path)
	}
	b.WriteString("\n")

	patched := b.String()
	if patched == content {
		return false, nil
	}
	return true, fs.WriteFile(path, patched)
}

// writeJSON renders a node tree parsed from JSON back to indented JSON.
func writeJSON(b *strings.Builder, n *yaml.Node, depth int) error {
	pad := strings.Repeat("  ", depth+1)
	switch n.Kind {
	case yaml.MappingNode:
		if len(n.Content) == 0 {
			b.WriteString("{}")
			return nil
		}
		b.WriteString("{\n")
		for i := 0; i+1 < len(n.Content); i += 2 {
			b.WriteString(pad)
			if err := writeString(b, n.Content[i].Value); err != nil {
				return err
			}
			b.WriteString(": ")
			if err := writeJSON(b, n.Content[i+1], depth+1); err != nil {
				return err
			}
			if i+2 < len(n.Content) {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		b.WriteString(pad[2:] + "}")
	case yaml.SequenceNode:
		if len(n.Content) == 0 {
			b.WriteString("[]")
			return nil
		}
		b.WriteString("[\n")
		for i, item := range n.Content {
			b.WriteString(pad)
			if err := writeJSON(b, item, depth+1); err != nil {
				return err
			}
			if i+1 < len(n.Content) {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		b.WriteString(pad[2:] + "]")
	case yaml.ScalarNode:
		switch n.Tag {
		case "!!int", "!!float", "!!bool", "!!null":
			b.WriteString(n.Value)
		default:
			return writeString(b, n.Value)
		}
	default:
		return errors.Newf(errors.CodeInternal, "unsupported node kind %d at line %d", n.Kind, n.Line)
	}
	return nil
}

func writeString(b *strings.Builder, s string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	b.Write(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
	return nil
}
