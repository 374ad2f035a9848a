package schema

// TitleKind selects between the display title and the slug.
type TitleKind string

const (
	TitleFull TitleKind = "full"
	TitleSlug TitleKind = "slug"
)

// Text holds the text attached to a collection or set.
type Text struct {
	Title Titles `json:"title"`
}

// TextContent is a localized string.
type TextContent struct {
	Content  string `json:"content"`
	Language string `json:"language"`
}

type textDefault struct {
	Default TextContent `json:"default"`
}

// Titles maps a title kind to its content, nested under the kind of the
// owning node (collection, program, series or set).
type Titles map[TitleKind]map[string]textDefault

var titleOwners = []string{"collection", "program", "series", "set"}

// Get returns the title of the given kind.
func (t Titles) Get(kind TitleKind) (TextContent, bool) {
	owners, ok := t[kind]
	if !ok {
		return TextContent{}, false
	}
	for _, owner := range titleOwners {
		if v, ok := owners[owner]; ok {
			return v.Default, true
		}
	}
	return TextContent{}, false
}
