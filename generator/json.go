package generator

import (
	"encoding/json"
	"strings"

	"github.com/conan-go/conancore/coreerrors"
	"github.com/conan-go/conancore/graph"
	"github.com/conan-go/conancore/recipe"
	"github.com/xeipuuv/gojsonschema"
)

// GraphNodeJSON is one node's wire representation in the JSON graph export.
type GraphNodeJSON struct {
	Ref       string   `json:"ref"`
	PackageID string   `json:"package_id"`
	Settings  string   `json:"settings,omitempty"`
	Options   string   `json:"options,omitempty"`
	Public    []string `json:"public_requires,omitempty"`
	Private   []string `json:"private_requires,omitempty"`
}

// GraphJSON is the full JSON graph export document: the root reference and
// every node reachable from it, keyed by reference string.
type GraphJSON struct {
	Root  string                   `json:"root"`
	Nodes map[string]GraphNodeJSON `json:"nodes"`
}

// graphJSONSchema constrains the shape written by BuildGraphJSON so callers
// consuming the export (IDE plugins, CI tooling) get a stable contract.
const graphJSONSchema = `{
  "type": "object",
  "required": ["root", "nodes"],
  "properties": {
    "root": {"type": "string"},
    "nodes": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["ref", "package_id"],
        "properties": {
          "ref": {"type": "string"},
          "package_id": {"type": "string"},
          "settings": {"type": "string"},
          "options": {"type": "string"},
          "public_requires": {"type": "array", "items": {"type": "string"}},
          "private_requires": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}`

// BuildGraphJSON walks every node reachable from root and renders the
// dependency graph (spec §6's JSON graph export), including private edges
// so downstream tooling can distinguish visible from shielded requires.
func BuildGraphJSON(root *graph.Node) GraphJSON {
	out := GraphJSON{Root: root.Ref.String(), Nodes: make(map[string]GraphNodeJSON)}
	for _, n := range graph.ReverseTopological(root) {
		var pub, priv []string
		for _, e := range n.Edges {
			if e.Visibility == recipe.Private {
				priv = append(priv, e.Dependency.Ref.String())
			} else {
				pub = append(pub, e.Dependency.Ref.String())
			}
		}
		node := GraphNodeJSON{
			Ref:       n.Ref.String(),
			PackageID: n.PackageID,
			Public:    pub,
			Private:   priv,
		}
		if n.Settings != nil {
			node.Settings = n.Settings.Values()
		}
		if n.Options != nil {
			node.Options = n.Options.Values()
		}
		out.Nodes[n.Ref.String()] = node
	}
	return out
}

// WriteGraphJSONValidated marshals g and validates it against
// graphJSONSchema before returning the bytes, so a malformed export is
// caught here rather than surfacing as a confusing error in a downstream
// tool reading the file.
func WriteGraphJSONValidated(g GraphJSON) ([]byte, error) {
	raw, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return nil, coreerrors.Wrap(coreerrors.KindBuild, err, "marshaling graph json")
	}

	schemaLoader := gojsonschema.NewStringLoader(graphJSONSchema)
	docLoader := gojsonschema.NewBytesLoader(raw)
	result, err := gojsonschema.Validate(schemaLoader, docLoader)
	if err != nil {
		return nil, coreerrors.Wrap(coreerrors.KindBuild, err, "validating graph json against schema")
	}
	if !result.Valid() {
		var msgs []string
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, coreerrors.New(coreerrors.KindBuild, "graph json failed schema validation: %s", strings.Join(msgs, "; "))
	}
	return raw, nil
}
