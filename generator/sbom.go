package generator

import (
	"bytes"

	cdx "github.com/CycloneDX/cyclonedx-go"
	"github.com/conan-go/conancore/coreerrors"
	"github.com/conan-go/conancore/graph"
	"github.com/conan-go/conancore/info"
)

// WriteCycloneDxJSON renders root's CycloneDX SBOM (built by
// info.ToCycloneDxBom) as JSON bytes, ready to write to disk.
func WriteCycloneDxJSON(root *graph.Node) ([]byte, error) {
	bom := info.ToCycloneDxBom(root)
	var buf bytes.Buffer
	encoder := cdx.NewBOMEncoder(&buf, cdx.BOMFileFormatJSON)
	encoder.SetPretty(true)
	if err := encoder.Encode(bom); err != nil {
		return nil, coreerrors.Wrap(coreerrors.KindBuild, err, "encoding cyclonedx sbom")
	}
	return buf.Bytes(), nil
}
