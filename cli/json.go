package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/itchyny/gojq"

	"github.com/opal-lang/interact/core/nodetree"
)

// toJSON converts a rendered tree into plain JSON values:
//
//   - a brace group of `key : value` pairs becomes an object;
//   - other groups and lists become arrays;
//   - a named value carries its name under "$type" (and its body under
//     "$value" when the body is not an object);
//   - leaves become numbers, booleans or unquoted strings when they parse as
//     such, and markers become their text.
func toJSON(n *nodetree.Node) any {
	switch n.Kind {
	case nodetree.Named:
		name := n.Children[0].Text
		body := toJSON(n.Children[1])
		if m, ok := body.(map[string]any); ok {
			m["$type"] = name
			return m
		}
		return map[string]any{"$type": name, "$value": body}
	case nodetree.Grouped:
		sub := n.Sub()
		if sub.Kind != nodetree.Delimited {
			return []any{toJSON(sub)}
		}
		if isRecord(sub) {
			m := make(map[string]any, len(sub.Children))
			for _, kv := range sub.Children {
				m[keyText(kv.Children[0])] = toJSON(kv.Children[1])
			}
			return m
		}
		return toJSON(sub)
	case nodetree.Delimited:
		items := make([]any, 0, len(n.Children))
		for _, c := range n.Children {
			items = append(items, toJSON(c))
		}
		return items
	case nodetree.KeyValue:
		return map[string]any{keyText(n.Children[0]): toJSON(n.Children[1])}
	case nodetree.Leaf:
		return leafValue(n.Text)
	default:
		return n.String()
	}
}

func isRecord(n *nodetree.Node) bool {
	if len(n.Children) == 0 {
		return false
	}
	for _, c := range n.Children {
		if c.Kind != nodetree.KeyValue {
			return false
		}
	}
	return true
}

func keyText(n *nodetree.Node) string {
	if n.Kind == nodetree.Leaf {
		if s, err := strconv.Unquote(n.Text); err == nil {
			return s
		}
	}
	return n.String()
}

func leafValue(text string) any {
	if i, err := strconv.ParseInt(text, 10, 64); err == nil {
		return int(i)
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
		return f
	}
	switch text {
	case "true":
		return true
	case "false":
		return false
	}
	if s, err := strconv.Unquote(text); err == nil {
		return s
	}
	return text
}

// writeJSON writes the JSON form of n, indented.
func writeJSON(w io.Writer, n *nodetree.Node) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(toJSON(n))
}

// runJQ applies filter to the JSON form of n and writes each result on its
// own line.
func runJQ(w io.Writer, n *nodetree.Node, filter string) error {
	q, err := gojq.Parse(filter)
	if err != nil {
		return &CLIError{Type: "jq", Message: fmt.Sprintf("invalid jq filter %q", filter), Details: err.Error()}
	}

	iter := q.Run(toJSON(n))
	for {
		v, ok := iter.Next()
		if !ok {
			return nil
		}
		if err, ok := v.(error); ok {
			return &CLIError{Type: "jq", Message: "jq filter failed", Details: err.Error()}
		}
		out, err := json.Marshal(v)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s\n", out); err != nil {
			return err
		}
	}
}
