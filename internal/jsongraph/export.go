package jsongraph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/san-kum/fdgsim/internal/graph"
)

// Marshal renders g in the interchange shape. Each node object gains a
// "location" array holding its current coordinates; the key of a node is its
// name, or its index when the name is empty or already taken. Keys are always
// unique, so the document re-imports with the same node count.
func Marshal[N, E any](g *graph.ForceGraph[N, E]) ([]byte, error) {
	keys := make(map[graph.NodeIndex]string, g.NodeCount())
	used := make(map[string]bool, g.NodeCount())

	nodes := make(map[string]json.RawMessage, g.NodeCount())
	for idx, n := range g.Nodes() {
		key := nodeKey(n.Name, idx, used)
		used[key] = true
		keys[idx] = key

		obj, err := objectOf(n.Data)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", key, err)
		}
		obj["location"] = []float64{n.Location.X, n.Location.Y, n.Location.Z}

		raw, err := json.Marshal(obj)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", key, err)
		}
		nodes[key] = raw
	}

	edges := make([]json.RawMessage, 0, g.EdgeCount())
	for idx, e := range g.Edges() {
		obj, err := objectOf(e.Data)
		if err != nil {
			return nil, fmt.Errorf("edge %d: %w", idx, err)
		}
		obj["source"] = keys[e.Source]
		obj["target"] = keys[e.Target]

		raw, err := json.Marshal(obj)
		if err != nil {
			return nil, fmt.Errorf("edge %d: %w", idx, err)
		}
		edges = append(edges, raw)
	}

	doc := map[string]any{
		"graph": map[string]any{
			"nodes": nodes,
			"edges": edges,
		},
	}
	return json.MarshalIndent(doc, "", "  ")
}

// nodeKey picks the name when it is free, else the first free key among
// "<idx>", "<idx>_1", "<idx>_2", ...
func nodeKey(name string, idx graph.NodeIndex, used map[string]bool) string {
	if name != "" && !used[name] {
		return name
	}
	base := strconv.Itoa(int(idx))
	key := base
	for n := 1; used[key]; n++ {
		key = base + "_" + strconv.Itoa(n)
	}
	return key
}

// Write renders g to w.
func Write[N, E any](w io.Writer, g *graph.ForceGraph[N, E]) error {
	data, err := Marshal(g)
	if err != nil {
		return err
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

// WriteFile renders g to path.
func WriteFile[N, E any](path string, g *graph.ForceGraph[N, E]) error {
	data, err := Marshal(g)
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// objectOf turns a payload into a JSON object map. String payloads holding a
// JSON object are used as-is; any other payload is stored under "data".
func objectOf(v any) (map[string]any, error) {
	var raw []byte
	switch p := v.(type) {
	case string:
		raw = []byte(p)
	case []byte:
		raw = p
	case json.RawMessage:
		raw = p
	default:
		b, err := json.Marshal(p)
		if err != nil {
			return nil, err
		}
		raw = b
	}

	obj := map[string]any{}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '{' && json.Unmarshal(trimmed, &obj) == nil {
		return obj, nil
	}

	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
	case json.Valid(trimmed):
		obj["data"] = json.RawMessage(trimmed)
	default:
		obj["data"] = string(trimmed)
	}
	return obj, nil
}
