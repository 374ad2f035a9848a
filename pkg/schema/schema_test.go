package schema

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openFixture(t *testing.T, name string) *os.File {
	t.Helper()
	f, err := os.Open("testdata/" + name)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func TestParseHome(t *testing.T) {
	home, err := ParseHome(openFixture(t, "home.json"))
	require.NoError(t, err)

	c, err := home.Collection("StandardCollection")
	require.NoError(t, err)
	assert.Equal(t, KindStandard, c.Kind())

	title, ok := c.Title(TitleFull)
	require.True(t, ok)
	assert.Equal(t, "Home", title.Content)
	assert.Equal(t, "en", title.Language)

	containers, err := c.Containers()
	require.NoError(t, err)
	require.Len(t, containers, 3)

	first := containers[0].Set
	assert.False(t, first.IsRef())
	setTitle, ok := first.Title(TitleFull)
	require.True(t, ok)
	assert.Equal(t, "New to Disney+", setTitle.Content)
	require.Len(t, first.Items(), 3)
	assert.Equal(t, 15, first.Meta.PageSize)

	item := first.Items()[0]
	assert.Equal(t, KindSeries, item.Kind())
	name, ok := item.Title(TitleFull)
	require.True(t, ok)
	assert.Equal(t, "The Mandalorian", name.Content)
	img, ok := item.Image("tile", "1.78")
	require.True(t, ok)
	assert.Equal(t, uint32(1920), img.MasterWidth)
	assert.Contains(t, img.URL, "SERIES0001")

	assert.Equal(t, KindVideo, first.Items()[1].Kind())
	_, ok = first.Items()[1].Image("tile", "1.78")
	assert.True(t, ok, "program images resolve the same way")

	assert.Len(t, containers[1].Set.Items(), 2, "personalized curated sets are curated sets")

	ref := containers[2].Set
	assert.True(t, ref.IsRef())
	assert.Equal(t, "f506622c-4f75-4f87-bafe-3e08a4433914", ref.RefID)
	assert.Nil(t, ref.Items())
}

func TestHomeMissingCollection(t *testing.T) {
	home, err := ParseHome(strings.NewReader(`{"data":{}}`))
	require.NoError(t, err)
	_, err = home.Collection("StandardCollection")
	assert.ErrorIs(t, err, ErrMissingCollection)
}

func TestContainersRequireStandardCollection(t *testing.T) {
	home, err := ParseHome(strings.NewReader(`{"data":{"StandardCollection":{"type":"DmcVideo","programType":"movie","text":{"title":{}}}}}`))
	require.NoError(t, err)
	c, err := home.Collection("StandardCollection")
	require.NoError(t, err)
	_, err = c.Containers()
	assert.ErrorIs(t, err, ErrNotStandard)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "malformed", doc: `{"data":`},
		{name: "unknown collection type", doc: `{"data":{"x":{"type":"Bogus","text":{"title":{}}}}}`},
		{name: "unknown set type", doc: `{"data":{"x":{"type":"StandardCollection","text":{"title":{}},"containers":[{"set":{"type":"Bogus","text":{"title":{}}}}]}}}`},
		{name: "set ref without id", doc: `{"data":{"x":{"type":"StandardCollection","text":{"title":{}},"containers":[{"set":{"type":"SetRef","text":{"title":{}}}}]}}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHome(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestParseRefSet(t *testing.T) {
	rs, err := ParseRefSet(openFixture(t, "f506622c-4f75-4f87-bafe-3e08a4433914.json"))
	require.NoError(t, err)
	set, err := rs.Set()
	require.NoError(t, err)
	assert.False(t, set.IsRef())
	require.Len(t, set.Items(), 2)
	title, ok := set.Title(TitleFull)
	require.True(t, ok)
	assert.Equal(t, "Because You Watched", title.Content)

	empty, err := ParseRefSet(strings.NewReader(`{"data":{}}`))
	require.NoError(t, err)
	_, err = empty.Set()
	assert.ErrorIs(t, err, ErrEmptyRefSet)
}

func TestTitlesAndImagesLookup(t *testing.T) {
	var titles Titles
	_, ok := titles.Get(TitleFull)
	assert.False(t, ok)

	titles = Titles{TitleSlug: {"set": {Default: TextContent{Content: "trending"}}}}
	_, ok = titles.Get(TitleFull)
	assert.False(t, ok)
	slug, ok := titles.Get(TitleSlug)
	require.True(t, ok)
	assert.Equal(t, "trending", slug.Content)

	tile := ImageTile{"1.78": {"unknown": {}}}
	_, ok = tile.Get("1.78")
	assert.False(t, ok)
	_, ok = tile.Get("0.71")
	assert.False(t, ok)
}
