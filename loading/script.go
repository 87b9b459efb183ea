package loading

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// ScriptClassifier routes paths with a tengo script. The script sees the
// globals `path` and `ext` (lower-case, without the dot) and sets `kind`
// to "scene", "image" or "" and optionally `sub_scene`. When the script
// fails, the fallback classifier decides. Globals persist between runs,
// so scripts should assign both outputs on every run.
//
//	kind := ""
//	sub_scene := -1
//	if ext == "gltf" || ext == "glb" { kind = "scene" }
type ScriptClassifier struct {
	mu       sync.Mutex
	name     string
	compiled *tengo.Compiled
	fallback Classifier
	log      *slog.Logger
}

// LoadScriptClassifier compiles the script at path.
func LoadScriptClassifier(path string, fallback Classifier, logger *slog.Logger) (*ScriptClassifier, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading: read routing script %s: %w", path, err)
	}
	return NewScriptClassifier(filepath.Base(path), src, fallback, logger)
}

func NewScriptClassifier(name string, src []byte, fallback Classifier, logger *slog.Logger) (*ScriptClassifier, error) {
	if fallback == nil {
		fallback = ExtensionClassifier{CaseInsensitive: true}
	}
	if logger == nil {
		logger = slog.Default()
	}

	script := tengo.NewScript(src)
	_ = script.Add("path", "")
	_ = script.Add("ext", "")
	script.SetImports(stdlib.GetModuleMap("text", "fmt"))

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("loading: compile routing script %s: %w", name, err)
	}
	// Run once so scripts that never assign kind fail up front.
	if err := runCompiled(compiled); err != nil {
		return nil, fmt.Errorf("loading: run routing script %s: %w", name, err)
	}
	if !compiled.IsDefined("kind") {
		return nil, fmt.Errorf("loading: routing script %s does not define kind", name)
	}

	return &ScriptClassifier{name: name, compiled: compiled, fallback: fallback, log: logger}, nil
}

func (c *ScriptClassifier) Classify(path string) Target {
	t, err := c.run(path)
	if err != nil {
		c.log.Warn("routing script failed, using extension table", "script", c.name, "path", path, "error", err)
		return c.fallback.Classify(path)
	}
	return t
}

func (c *ScriptClassifier) run(path string) (Target, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if err := c.compiled.Set("path", path); err != nil {
		return Target{}, err
	}
	if err := c.compiled.Set("ext", ext); err != nil {
		return Target{}, err
	}
	if err := runCompiled(c.compiled); err != nil {
		return Target{}, err
	}

	t := Target{SubScene: DefaultSubScene}
	switch kind := c.compiled.Get("kind").String(); kind {
	case "scene":
		t.Kind = KindScene
	case "image":
		t.Kind = KindImage
	case "", "unknown":
		t.Kind = KindUnknown
	default:
		return Target{}, fmt.Errorf("unknown kind %q", kind)
	}

	if c.compiled.IsDefined("sub_scene") {
		if v := c.compiled.Get("sub_scene"); v.ValueType() == "int" {
			t.SubScene = v.Int()
		}
	}
	return t, nil
}

// runCompiled runs a script, turning runtime panics raised inside the VM
// (integer division by zero, for one) into errors.
func runCompiled(c *tengo.Compiled) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("routing script panic: %v", r)
		}
	}()
	return c.Run()
}
