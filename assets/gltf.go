package assets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"

	"github.com/qmuntal/gltf"
)

var (
	ErrNoScenes      = errors.New("assets: document has no scenes")
	ErrSubSceneRange = errors.New("assets: sub-scene index out of range")
)

// Source locates a file. A nil FS means the OS filesystem.
type Source struct {
	Path string
	FS   fs.FS
}

// Scene is the summary of a decoded sub-scene.
type Scene struct {
	Path      string
	Index     int
	Name      string
	Nodes     int
	Meshes    int
	Materials int
	Scenes    int
	Version   int
}

// SceneLoader decodes one sub-scene. A negative index selects the
// document's default scene, or 0 when it declares none.
type SceneLoader interface {
	LoadScene(ctx context.Context, src Source, index int) (*Scene, error)
}

// GLTFLoader decodes .gltf and .glb files.
type GLTFLoader struct{}

func (GLTFLoader) LoadScene(ctx context.Context, src Source, index int) (*Scene, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := openDocument(src)
	if err != nil {
		return nil, fmt.Errorf("assets: decode %s: %w", src.Path, err)
	}

	if len(doc.Scenes) == 0 {
		return nil, fmt.Errorf("assets: %s: %w", src.Path, ErrNoScenes)
	}
	if index < 0 {
		index = 0
		if doc.Scene != nil {
			index = int(*doc.Scene)
		}
	}
	if index >= len(doc.Scenes) {
		return nil, fmt.Errorf("assets: %s scene %d of %d: %w", src.Path, index, len(doc.Scenes), ErrSubSceneRange)
	}

	sc := doc.Scenes[index]
	return &Scene{
		Path:      src.Path,
		Index:     index,
		Name:      sc.Name,
		Nodes:     countNodes(doc, sc.Nodes),
		Meshes:    len(doc.Meshes),
		Materials: len(doc.Materials),
		Scenes:    len(doc.Scenes),
	}, nil
}

func openDocument(src Source) (*gltf.Document, error) {
	if src.FS == nil {
		return gltf.Open(src.Path)
	}

	f, err := src.FS.Open(src.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dir, err := fs.Sub(src.FS, path.Dir(src.Path))
	if err != nil {
		return nil, err
	}

	doc := new(gltf.Document)
	if err := gltf.NewDecoderFS(f, dir).Decode(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// countNodes walks the node hierarchy below roots. Cycles in malformed
// documents are cut by the visited set.
func countNodes(doc *gltf.Document, roots []uint32) int {
	visited := make(map[uint32]bool)
	stack := append([]uint32(nil), roots...)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if int(n) >= len(doc.Nodes) || visited[n] {
			continue
		}
		visited[n] = true
		stack = append(stack, doc.Nodes[n].Children...)
	}
	return len(visited)
}
