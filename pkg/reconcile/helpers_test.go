package reconcile

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/fulmenhq/starcat/pkg/catalog"
	"github.com/fulmenhq/starcat/pkg/texture"
	"github.com/stretchr/testify/require"
)

type workspace struct {
	root     string
	catalog  string
	textures string
	calls    *int32
}

func pngPayload(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 180, B: 150, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// imageServer answers every request with payload, except URLs containing
// "missing" which get a 404.
func imageServer(payload []byte, calls *int32) texture.HTTPFetcherFunc {
	return func(req *http.Request) (*http.Response, error) {
		atomic.AddInt32(calls, 1)
		status := http.StatusOK
		body := payload
		if bytes.Contains([]byte(req.URL.Path), []byte("missing")) {
			status, body = http.StatusNotFound, nil
		}
		return &http.Response{
			StatusCode:    status,
			Status:        http.StatusText(status),
			Body:          io.NopCloser(bytes.NewReader(body)),
			ContentLength: int64(len(body)),
			Header:        http.Header{},
			Request:       req,
		}, nil
	}
}

func newWorkspace(t *testing.T) *workspace {
	t.Helper()
	root := t.TempDir()
	ws := &workspace{
		root:     root,
		catalog:  filepath.Join(root, "objects.json"),
		textures: filepath.Join(root, "textures"),
		calls:    new(int32),
	}
	require.NoError(t, os.MkdirAll(ws.textures, 0o755))
	return ws
}

func (ws *workspace) engine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	pipeline := texture.NewPipeline(ws.textures,
		texture.WithHTTPFetcher(imageServer(pngPayload(t, 64, 32), ws.calls)))
	base := []Option{WithCatalogPath(ws.catalog), WithTextureDir(ws.textures), WithPipeline(pipeline)}
	return New(append(base, opts...)...)
}

func (ws *workspace) writeCatalog(t *testing.T, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(ws.catalog, []byte(content), 0o644))
}

func (ws *workspace) touchTexture(t *testing.T, name string, size int) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(ws.textures, name), make([]byte, size), 0o644))
}

func (ws *workspace) load(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Load(ws.catalog)
	require.NoError(t, err)
	return cat
}

func (ws *workspace) fetches() int32 {
	return atomic.LoadInt32(ws.calls)
}
