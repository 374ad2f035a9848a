package schema

// ImageContent is a retrievable image. URL usually serves a scaled-down
// rendition; MasterWidth and MasterHeight describe the full resolution.
type ImageContent struct {
	MasterHeight uint32 `json:"masterHeight"`
	MasterWidth  uint32 `json:"masterWidth"`
	URL          string `json:"url"`
}

type imageDefault struct {
	Default ImageContent `json:"default"`
}

// ImageTile maps an aspect ratio to the image scaled for it, nested under the
// kind of the owning node (default, program or series).
type ImageTile map[string]map[string]imageDefault

var imageOwners = []string{"default", "program", "series"}

// Get returns the image for aspect, e.g. "1.78".
func (t ImageTile) Get(aspect string) (ImageContent, bool) {
	owners, ok := t[aspect]
	if !ok {
		return ImageContent{}, false
	}
	for _, owner := range imageOwners {
		if v, ok := owners[owner]; ok {
			return v.Default, true
		}
	}
	return ImageContent{}, false
}
