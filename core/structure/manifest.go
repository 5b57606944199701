package structure

import (
	"os"

	"github.com/gaurav-prasanna/docmark/core"
	"github.com/tidwall/gjson"
)

// ReadManifest loads the ordered element texts from a manifest file.
// The manifest is either a top-level array of records or an object whose
// "elements" key holds that array. A record's text is its "Text" (or "text")
// string; records without one yield "" so positions are preserved.
func ReadManifest(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.E(core.KindNotFound, "reading manifest", err)
		}
		return nil, core.E(core.KindDecodeFailure, "reading manifest", err)
	}
	return ParseManifest(data)
}

// ParseManifest extracts element texts from manifest JSON.
func ParseManifest(data []byte) ([]string, error) {
	if !gjson.ValidBytes(data) {
		return nil, core.Errorf(core.KindDecodeFailure, "manifest is not valid JSON")
	}

	root := gjson.ParseBytes(data)
	elements := root
	if !root.IsArray() {
		elements = root.Get("elements")
		if !elements.IsArray() {
			return nil, nil
		}
	}

	var texts []string
	elements.ForEach(func(_, el gjson.Result) bool {
		texts = append(texts, elementText(el))
		return true
	})
	return texts, nil
}

func elementText(el gjson.Result) string {
	if !el.IsObject() {
		return ""
	}
	for _, key := range []string{"Text", "text"} {
		if v := el.Get(key); v.Type == gjson.String {
			return v.String()
		}
	}
	return ""
}
