package jsongraph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/san-kum/fdgsim/internal/dynamo"
	"github.com/san-kum/fdgsim/internal/graph"
	"gonum.org/v1/gonum/spatial/r3"
)

// Graph is the graph type produced by import: payloads are raw JSON text.
type Graph = graph.ForceGraph[string, string]

type document struct {
	Graph *body `json:"graph"`
}

type body struct {
	Nodes json.RawMessage `json:"nodes"`
	Edges json.RawMessage `json:"edges"`
}

// Parse decodes a document held in memory.
func Parse(data []byte) (*Graph, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", dynamo.ErrMalformedImport, err)
	}
	if doc.Graph == nil {
		return nil, fmt.Errorf("%w: missing \"graph\" object", dynamo.ErrMalformedImport)
	}

	g := graph.New[string, string]()
	ids := make(map[string]graph.NodeIndex)

	if present(doc.Graph.Nodes) {
		var nodes map[string]json.RawMessage
		if !isKind(doc.Graph.Nodes, '{') || json.Unmarshal(doc.Graph.Nodes, &nodes) != nil {
			return nil, fmt.Errorf("%w: \"nodes\" must be an object", dynamo.ErrMalformedImport)
		}

		keys := make([]string, 0, len(nodes))
		for k := range nodes {
			keys = append(keys, k)
		}
		slices.Sort(keys)

		for _, k := range keys {
			payload, err := compact(nodes[k])
			if err != nil {
				return nil, fmt.Errorf("%w: node %s: %v", dynamo.ErrMalformedImport, k, err)
			}
			ids[k] = g.AddNode(k, payload)
			if loc, ok := location(nodes[k]); ok {
				n, _ := g.Node(ids[k])
				n.Location = loc
			}
		}
	}

	if present(doc.Graph.Edges) {
		var edges []json.RawMessage
		if !isKind(doc.Graph.Edges, '[') || json.Unmarshal(doc.Graph.Edges, &edges) != nil {
			return nil, fmt.Errorf("%w: \"edges\" must be an array", dynamo.ErrMalformedImport)
		}

		for i, raw := range edges {
			var ends struct {
				Source json.RawMessage `json:"source"`
				Target json.RawMessage `json:"target"`
			}
			if !isKind(raw, '{') || json.Unmarshal(raw, &ends) != nil {
				return nil, fmt.Errorf("%w: edge %d is not an object", dynamo.ErrMalformedImport, i)
			}

			src, err := endpoint(ids, ends.Source, "source", i)
			if err != nil {
				return nil, err
			}
			dst, err := endpoint(ids, ends.Target, "target", i)
			if err != nil {
				return nil, err
			}

			payload, err := compact(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: edge %d: %v", dynamo.ErrMalformedImport, i, err)
			}
			if _, err := g.AddEdge(src, dst, payload); err != nil {
				return nil, fmt.Errorf("%w: edge %d: %w", dynamo.ErrMalformedImport, i, err)
			}
		}
	}

	return g, nil
}

// Read decodes a document from r. Read does not close r.
func Read(r io.Reader) (*Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return Parse(data)
}

// ReadFile decodes the document at path.
func ReadFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}

// endpoint resolves a source or target value. Strings are decoded the same way
// node keys are; bare numbers match by their literal text.
func endpoint(ids map[string]graph.NodeIndex, raw json.RawMessage, field string, edge int) (graph.NodeIndex, error) {
	if !present(raw) {
		return 0, fmt.Errorf("%w: edge %d has no %q", dynamo.ErrMalformedImport, edge, field)
	}
	var id string
	switch trimmed := bytes.TrimSpace(raw); {
	case trimmed[0] == '"':
		if err := json.Unmarshal(trimmed, &id); err != nil {
			return 0, fmt.Errorf("%w: edge %d %s: %v", dynamo.ErrMalformedImport, edge, field, err)
		}
	default:
		var num json.Number
		if err := json.Unmarshal(trimmed, &num); err != nil {
			return 0, fmt.Errorf("%w: edge %d %s must be a string or number", dynamo.ErrMalformedImport, edge, field)
		}
		id = num.String()
	}
	idx, ok := ids[id]
	if !ok {
		return 0, fmt.Errorf("%w: edge %d %s %q: %w", dynamo.ErrMalformedImport, edge, field, id, dynamo.ErrInvalidReference)
	}
	return idx, nil
}

// location reads an optional "location" array of two or three numbers, the
// shape Marshal writes.
func location(raw json.RawMessage) (r3.Vec, bool) {
	if !isKind(raw, '{') {
		return r3.Vec{}, false
	}
	var entry struct {
		Location []float64 `json:"location"`
	}
	if json.Unmarshal(raw, &entry) != nil {
		return r3.Vec{}, false
	}
	var v r3.Vec
	switch len(entry.Location) {
	case 3:
		v.Z = entry.Location[2]
		fallthrough
	case 2:
		v.X, v.Y = entry.Location[0], entry.Location[1]
	default:
		return r3.Vec{}, false
	}
	return v, dynamo.IsFinite(v)
}

func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

func isKind(raw json.RawMessage, open byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == open
}

func compact(raw json.RawMessage) (string, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", err
	}
	return buf.String(), nil
}
