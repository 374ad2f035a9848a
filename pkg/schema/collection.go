package schema

import (
	"encoding/json"
	"fmt"
)

// Kind identifies the type of a collection.
type Kind int

const (
	// KindSeries is a series of videos, e.g. a television series.
	KindSeries Kind = iota + 1
	// KindVideo is a single video, e.g. a movie.
	KindVideo
	// KindStandard groups other collections into containers.
	KindStandard
)

var kindNames = map[string]Kind{
	"DmcSeries":          KindSeries,
	"DmcVideo":           KindVideo,
	"StandardCollection": KindStandard,
}

func (k Kind) String() string {
	switch k {
	case KindSeries:
		return "series"
	case KindVideo:
		return "video"
	case KindStandard:
		return "standard"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Collection is a generic node of menu data.
type Collection struct {
	Type            string               `json:"type"`
	CollectionID    string               `json:"collectionId,omitempty"`
	SeriesID        string               `json:"seriesId,omitempty"`
	EncodedSeriesID string               `json:"encodedSeriesId,omitempty"`
	ProgramType     string               `json:"programType,omitempty"`
	ContainerList   []Container          `json:"containers,omitempty"`
	ImageSet        map[string]ImageTile `json:"image,omitempty"`
	Text            Text                 `json:"text"`
	VideoArt        []VideoArt           `json:"videoArt,omitempty"`

	kind Kind
}

// UnmarshalJSON rejects unknown collection types.
func (c *Collection) UnmarshalJSON(data []byte) error {
	type plain Collection
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	kind, ok := kindNames[p.Type]
	if !ok {
		return fmt.Errorf("unknown collection type %q", p.Type)
	}
	*c = Collection(p)
	c.kind = kind
	return nil
}

// Kind returns the collection type.
func (c *Collection) Kind() Kind {
	if c.kind == 0 {
		return kindNames[c.Type]
	}
	return c.kind
}

// Containers returns the rows of a standard collection.
func (c *Collection) Containers() ([]Container, error) {
	if c.Kind() != KindStandard {
		return nil, fmt.Errorf("%w: type %q", ErrNotStandard, c.Type)
	}
	return c.ContainerList, nil
}

// Title returns the title of the given kind.
func (c *Collection) Title(kind TitleKind) (TextContent, bool) {
	return c.Text.Title.Get(kind)
}

// Image returns the image named name scaled to aspect, e.g. "1.78".
func (c *Collection) Image(name, aspect string) (ImageContent, bool) {
	tile, ok := c.ImageSet[name]
	if !ok {
		return ImageContent{}, false
	}
	return tile.Get(aspect)
}

// VideoArt is background video art attached to a collection.
type VideoArt struct {
	MediaMetadata struct {
		URLs []struct {
			URL string `json:"url"`
		} `json:"urls"`
	} `json:"mediaMetadata"`
}

// Container wraps one row of a standard collection.
type Container struct {
	Set Set `json:"set"`
}

const (
	setCurated             = "CuratedSet"
	setPersonalizedCurated = "PersonalizedCuratedSet"
	setRef                 = "SetRef"
)

// Meta is the paging metadata of a curated set.
type Meta struct {
	Hits     int `json:"hits"`
	Offset   int `json:"offset"`
	PageSize int `json:"page_size"`
}

// Set is a row of menu items. Curated sets carry their items inline while
// ref sets name a document that must be fetched separately.
type Set struct {
	Type     string        `json:"type"`
	RefID    string        `json:"refId,omitempty"`
	ItemList []*Collection `json:"items,omitempty"`
	Meta     *Meta         `json:"meta,omitempty"`
	Text     Text          `json:"text"`
}

// UnmarshalJSON rejects unknown set types and ref sets without an id.
func (s *Set) UnmarshalJSON(data []byte) error {
	type plain Set
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	switch p.Type {
	case setCurated, setPersonalizedCurated:
	case setRef:
		if p.RefID == "" {
			return fmt.Errorf("set ref without refId")
		}
	default:
		return fmt.Errorf("unknown set type %q", p.Type)
	}
	*s = Set(p)
	return nil
}

// IsRef reports whether the set must be resolved through its RefID.
func (s *Set) IsRef() bool {
	return s.Type == setRef
}

// Items returns the inline items of a curated set.
func (s *Set) Items() []*Collection {
	if s.IsRef() {
		return nil
	}
	return s.ItemList
}

// Title returns the title of the given kind.
func (s *Set) Title(kind TitleKind) (TextContent, bool) {
	return s.Text.Title.Get(kind)
}
