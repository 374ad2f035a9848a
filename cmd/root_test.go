package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/tilemenu/pkg/settings"
)

var (
	background = color.RGBA{R: 7, G: 27, B: 15, A: 255}
	white      = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	red        = color.RGBA{R: 255, A: 255}
)

// executeCommand runs a fresh command tree with args and returns its output.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

type menuFiles struct {
	dir  string
	home string
}

// writeMenuFiles writes a home document with two curated rows whose tiles
// all share a solid red thumbnail.
func writeMenuFiles(t *testing.T) menuFiles {
	t.Helper()
	dir := t.TempDir()

	thumb := filepath.Join(dir, "thumb.png")
	img := image.NewRGBA(image.Rect(0, 0, 32, 18))
	for i := 0; i < len(img.Pix); i += 4 {
		copy(img.Pix[i:], []uint8{255, 0, 0, 255})
	}
	f, err := os.Create(thumb)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	text := func(owner, content string) map[string]any {
		return map[string]any{"title": map[string]any{"full": map[string]any{owner: map[string]any{
			"default": map[string]any{"content": content, "language": "en"},
		}}}}
	}
	items := func(n int) []any {
		out := make([]any, n)
		for i := range out {
			out[i] = map[string]any{
				"type": "DmcVideo",
				"text": text("program", "Item"),
				"image": map[string]any{"tile": map[string]any{"1.78": map[string]any{"program": map[string]any{
					"default": map[string]any{"masterWidth": 32, "masterHeight": 18, "url": thumb},
				}}}},
			}
		}
		return out
	}
	row := func(title string, n int) map[string]any {
		return map[string]any{"set": map[string]any{"type": "CuratedSet", "text": text("set", title), "items": items(n)}}
	}
	doc := map[string]any{"data": map[string]any{"StandardCollection": map[string]any{
		"type":       "StandardCollection",
		"text":       text("collection", "Home"),
		"containers": []any{row("Featured", 3), row("Trending", 2)},
	}}}
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	home := filepath.Join(dir, "home.json")
	require.NoError(t, os.WriteFile(home, data, 0o600))
	return menuFiles{dir: dir, home: home}
}

func decodePNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	img, err := png.Decode(f)
	require.NoError(t, err)
	return img
}

func rgbaAt(img image.Image, x, y int) color.RGBA {
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func TestSnapshotRendersMenu(t *testing.T) {
	files := writeMenuFiles(t)
	out := filepath.Join(t.TempDir(), "menu.png")

	_, err := executeCommand(t, "--snapshot", out, "--home-url", files.home, "--settle-timeout", "10s")
	require.NoError(t, err)

	img := decodePNG(t, out)
	require.Equal(t, image.Rect(0, 0, 1920, 1080), img.Bounds())
	assert.Equal(t, background, rgbaAt(img, 5, 5))

	// first row tiles start below the label
	const tileY = 68 + 55 + 18
	assert.Equal(t, red, rgbaAt(img, 52+250, tileY+140), "selected tile shows its thumbnail")
	assert.Equal(t, red, rgbaAt(img, 52+528+250, tileY+140), "second tile shows its thumbnail")
	assert.Equal(t, white, rgbaAt(img, 52-25, tileY-14), "selected tile is outlined")
}

func TestSnapshotReplaysStartupKeys(t *testing.T) {
	files := writeMenuFiles(t)
	out := filepath.Join(t.TempDir(), "menu.png")

	_, err := executeCommand(t, "--snapshot", out, "--home-url", files.home, "--press", "<Right>")
	require.NoError(t, err)

	img := decodePNG(t, out)
	const tileY = 68 + 55 + 18
	assert.Equal(t, white, rgbaAt(img, 52+528-25, tileY-14), "second tile is outlined")
	assert.Equal(t, background, rgbaAt(img, 52-25, tileY-14), "first tile went back to resting size")
}

func TestSnapshotToStdout(t *testing.T) {
	files := writeMenuFiles(t)

	out, err := executeCommand(t, "--snapshot", "-", "--home-url", files.home, "--width", "640", "--height", "360")
	require.NoError(t, err)
	img, err := png.Decode(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 640, 360), img.Bounds())
}

func TestRunErrors(t *testing.T) {
	files := writeMenuFiles(t)
	out := filepath.Join(t.TempDir(), "menu.png")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing home", []string{"--snapshot", out, "--home-url", filepath.Join(files.dir, "nope.json")}, "fetch home document"},
		{"bad key mode", []string{"--snapshot", out, "--home-url", files.home, "--key-mode", "nano"}, "ui.key_mode"},
		{"bad row filter", []string{"--snapshot", out, "--home-url", files.home, "--row-filter", "size +"}, "row filter"},
		{"negative tiles", []string{"--snapshot", out, "--home-url", files.home, "--tiles-per-row", "-1"}, "--tiles-per-row"},
		{"unknown start key", []string{"--snapshot", out, "--home-url", files.home, "--press", "<F13>"}, "F13"},
		{"limit and tail", []string{"--snapshot", out, "--home-url", files.home, "--limit", "1", "--tail", "1"}, "mutually exclusive"},
		{"empty frame", []string{"--snapshot", out, "--home-url", files.home, "--width", "0"}, "frame size"},
		{"positional args", []string{"home.json"}, "unknown command"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCommand(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
	_, err := os.Stat(out)
	assert.True(t, os.IsNotExist(err), "failed runs write no snapshot")
}

func TestVersion(t *testing.T) {
	out, err := executeCommand(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, settings.CliBinaryName+" "+settings.VersionInformation.BuildVersion))

	flagOut, err := executeCommand(t, "--version")
	require.NoError(t, err)
	assert.Equal(t, out, flagOut)
}

func TestConfigGet(t *testing.T) {
	out, err := executeCommand(t, "config", "get")
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &doc))
	require.Contains(t, doc, "menu")
	assert.Equal(t, "30s", doc["fetch"].(map[string]any)["timeout"])

	cfgPath := writeFile(t, "config.toml", "[layout]\ntile_width = 320\n")
	out, err = executeCommand(t, "config", "get", "--config-file", cfgPath, "-o", "json", "-e", "_.layout.tile_width * 2")
	require.NoError(t, err)
	assert.Equal(t, "640\n", out)

	out, err = executeCommand(t, "config", "get", "-o", "toml")
	require.NoError(t, err)
	assert.Contains(t, out, "[palette]")

	_, err = executeCommand(t, "config", "get", "-o", "xml")
	require.ErrorContains(t, err, "invalid output")

	_, err = executeCommand(t, "config", "get", "-e", "_.nope.")
	require.Error(t, err)
}

func TestConfigPath(t *testing.T) {
	out, err := executeCommand(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, "(built-in defaults)\n", out)

	out, err = executeCommand(t, "config", "path", "--config-file", "/etc/tilemenu.yaml")
	require.NoError(t, err)
	assert.Equal(t, "/etc/tilemenu.yaml\n", out)
}

func TestLogFileIsCreated(t *testing.T) {
	files := writeMenuFiles(t)
	logPath := filepath.Join(t.TempDir(), "tilemenu.log")

	_, err := executeCommand(t, "--snapshot", filepath.Join(t.TempDir(), "menu.png"), "--home-url", files.home, "--log-file", logPath)
	require.NoError(t, err)
	_, err = os.Stat(logPath)
	require.NoError(t, err, "--log-file creates the file")
}
