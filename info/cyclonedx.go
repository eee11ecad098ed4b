package info

import (
	"sort"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/conan-go/conancore/graph"
)

// ToCycloneDxBom renders a CycloneDX SBOM for the graph rooted at root,
// one component per resolved package plus a dependency edge per require.
// Adapted from the teacher's entities.BuildInfo.ToCycloneDxBom: there a
// component was keyed by a build-info module/dependency id, here by a
// Conan PackageReference string (name/version@user/channel:package_id).
func ToCycloneDxBom(root *graph.Node) *cdx.BOM {
	nodes := graph.ReverseTopological(root)

	var components []cdx.Component
	depMap := make(map[string]map[string]bool)

	for _, n := range nodes {
		ref := componentRef(n)
		comp := cdx.Component{
			BOMRef:  ref,
			Type:    cdx.ComponentTypeLibrary,
			Name:    n.Ref.Name,
			Version: n.Ref.Version,
			Group:   n.Ref.User + "/" + n.Ref.Channel,
		}
		if n == root {
			comp.Type = cdx.ComponentTypeApplication
		}
		components = append(components, comp)

		for _, e := range n.Edges {
			depRef := componentRef(e.Dependency)
			if depMap[ref] == nil {
				depMap[ref] = make(map[string]bool)
			}
			depMap[ref][depRef] = true
		}
	}

	sort.Slice(components, func(i, j int) bool { return components[i].BOMRef < components[j].BOMRef })

	var dependencies []cdx.Dependency
	for ref, deps := range depMap {
		var depRefs []string
		for d := range deps {
			depRefs = append(depRefs, d)
		}
		sort.Strings(depRefs)
		dependencies = append(dependencies, cdx.Dependency{Ref: ref, Dependencies: &depRefs})
	}
	sort.Slice(dependencies, func(i, j int) bool { return dependencies[i].Ref < dependencies[j].Ref })

	bom := cdx.NewBOM()
	bom.Components = &components
	bom.Dependencies = &dependencies
	return bom
}

func componentRef(n *graph.Node) string {
	return n.Ref.String() + ":" + n.PackageID
}
