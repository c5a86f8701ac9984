// Package jsongraph reads and writes graphs in the JSON graph interchange
// shape:
//
//	{
//	  "graph": {
//	    "nodes": {"1": {}, "2": {}, "3": {}},
//	    "edges": [
//	      {"source": "1", "target": "2"},
//	      {"source": "2", "target": "3"},
//	      {"source": "3", "target": "1"}
//	    ]
//	  }
//	}
//
// Each entry of "nodes" becomes one node labelled by its key; the node payload
// is the entry's compact JSON text, and an optional "location" array of two or
// three numbers sets its starting position. Each entry of "edges" becomes one edge whose
// payload is the edge object's compact JSON text. Import is all-or-nothing: on
// any error no graph is returned.
package jsongraph
