package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prettyirrelevant/eniola.wtf/internal/clipboard"
	"github.com/prettyirrelevant/eniola.wtf/internal/foundation/errors"
)

type recordingClipboard struct {
	mu    sync.Mutex
	texts []string
	err   error
}

func (c *recordingClipboard) WriteText(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.texts = append(c.texts, text)
	return nil
}

const helloPost = "---\ntitle: Hello World\npublishedAt: 2024-05-01\n---\n# Hello\n\n```go\nfmt.Println(\"hi\")\nreturn\n```\n\n```bash\necho second\n```\n"

// setup writes a config and a posts directory under a temp dir and returns
// the CLI root pointing at it.
func setup(t *testing.T) (*CLI, string) {
	t.Helper()
	dir := t.TempDir()
	posts := filepath.Join(dir, "content", "posts")
	require.NoError(t, os.MkdirAll(posts, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(posts, "hello-world.mdx"), []byte(helloPost), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(posts, "notes.md"), []byte("no frontmatter\n"), 0o600))

	cfg := "content:\n  dir: " + filepath.Join(dir, "content") + "\n" +
		"output:\n  dir: " + filepath.Join(dir, "public") + "\n" +
		"render:\n  copy_reset_delay: 20ms\n" +
		"server:\n  addr: 127.0.0.1:0\n  metrics: true\n  watch: true\n"
	path := filepath.Join(dir, "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))
	return &CLI{Config: path}, dir
}

func newGlobal(out *bytes.Buffer, cb clipboard.Writer) *Global {
	return &Global{Out: out, Clipboard: cb}
}

func TestPostsCmd(t *testing.T) {
	root, _ := setup(t)
	var out bytes.Buffer

	require.NoError(t, (&PostsCmd{}).Run(newGlobal(&out, nil), root))
	assert.Contains(t, out.String(), "DATE")
	assert.Contains(t, out.String(), "2024-05-01  hello-world  Hello World")
	assert.Contains(t, out.String(), "notes")

	out.Reset()
	require.NoError(t, (&PostsCmd{Recent: 1}).Run(newGlobal(&out, nil), root))
	assert.Contains(t, out.String(), "hello-world")
	assert.NotContains(t, out.String(), "notes")
}

func TestBuildCmd(t *testing.T) {
	root, dir := setup(t)
	var out bytes.Buffer
	target := filepath.Join(dir, "dist")

	require.NoError(t, (&BuildCmd{Output: target}).Run(newGlobal(&out, nil), root))
	assert.Contains(t, out.String(), "Exported 5 pages")
	assert.FileExists(t, filepath.Join(target, "blog", "hello-world", "index.html"))
	assert.FileExists(t, filepath.Join(target, "404.html"))
	assert.NoDirExists(t, filepath.Join(dir, "public"))
}

func TestBuildCmd_RefusesToCleanSources(t *testing.T) {
	root, dir := setup(t)
	source := filepath.Join(dir, "content", "posts", "hello-world.mdx")

	for _, target := range []string{
		filepath.Join(dir, "content"),
		filepath.Join(dir, "content", "posts"),
		dir,
		dir + "/public/../content",
	} {
		var out bytes.Buffer
		err := (&BuildCmd{Output: target}).Run(newGlobal(&out, nil), root)
		require.Error(t, err, target)
		assert.True(t, errors.HasCategory(err, errors.CategoryConfig), "got %v", err)
		assert.Empty(t, out.String())
		assert.FileExists(t, source)
	}
}

func TestCopyCmd(t *testing.T) {
	root, _ := setup(t)
	var out bytes.Buffer
	cb := &recordingClipboard{}

	require.NoError(t, (&CopyCmd{Slug: "hello-world", Block: 1, Wait: true}).Run(newGlobal(&out, cb), root))
	require.Len(t, cb.texts, 1)
	assert.Equal(t, "fmt.Println(\"hi\")\nreturn\n", cb.texts[0])
	assert.Equal(t, "Copied! 2 lines of go from hello-world\nCopy code\n", out.String())

	out.Reset()
	require.NoError(t, (&CopyCmd{Slug: "hello-world", Block: 2}).Run(newGlobal(&out, cb), root))
	require.Len(t, cb.texts, 2)
	assert.Equal(t, "echo second\n", cb.texts[1])
	assert.Equal(t, "Copied! 1 lines of bash from hello-world\n", out.String())
}

func TestCopyCmd_Errors(t *testing.T) {
	root, _ := setup(t)
	var out bytes.Buffer

	err := (&CopyCmd{Slug: "hello-world", Block: 3}).Run(newGlobal(&out, &recordingClipboard{}), root)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))

	err = (&CopyCmd{Slug: "missing", Block: 1}).Run(newGlobal(&out, &recordingClipboard{}), root)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotFound))

	failing := &recordingClipboard{err: errors.ClipboardError("denied").Build()}
	err = (&CopyCmd{Slug: "hello-world", Block: 1}).Run(newGlobal(&out, failing), root)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryClipboard))
	assert.Empty(t, out.String())
}

func TestInitCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	root := &CLI{Config: path}
	var out bytes.Buffer

	require.NoError(t, (&InitCmd{}).Run(newGlobal(&out, nil), root))
	assert.FileExists(t, path)
	assert.Contains(t, out.String(), path)

	err := (&InitCmd{}).Run(newGlobal(&out, nil), root)
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryValidation))

	require.NoError(t, (&InitCmd{Force: true}).Run(newGlobal(&out, nil), root))
}

func TestVersionCmd(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, VersionCmd{}.Run(newGlobal(&out, nil)))
	assert.Contains(t, out.String(), "commit:")
	assert.Contains(t, out.String(), "go:")
}

func TestServeCmd_StopsOnCancel(t *testing.T) {
	root, _ := setup(t)
	var out bytes.Buffer

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- (&ServeCmd{}).serve(ctx, newGlobal(&out, nil), root) }()

	time.Sleep(100 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
}

func TestServeCmd_BadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte("site:\n  base_url: not-a-url\n"), 0o600))

	err := (&ServeCmd{}).serve(context.Background(), newGlobal(&bytes.Buffer{}, nil), &CLI{Config: path})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryConfig))
}

func TestAppReload(t *testing.T) {
	root, dir := setup(t)
	a, err := loadApp(context.Background(), newGlobal(&bytes.Buffer{}, nil), root, false)
	require.NoError(t, err)
	require.Equal(t, 2, a.store.Len())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "content", "posts", "third.md"), []byte("x\n"), 0o600))
	require.NoError(t, a.reload(context.Background()))
	assert.Equal(t, 3, a.store.Len())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "content", "posts", "bad.md"), []byte("---\ntitle: [\n---\n"), 0o600))
	require.Error(t, a.reload(context.Background()))
	assert.Equal(t, 3, a.store.Len())
}
