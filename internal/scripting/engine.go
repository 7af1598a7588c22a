package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// SpawnContext is what a spawn policy sees for one template per tick.
type SpawnContext struct {
	Template  string
	Active    int
	Pooled    int
	MaxActive int
	Tick      uint64
}

// RecycleContext is what a recycle policy sees for one live node.
type RecycleContext struct {
	Template string
	Age      int
	Lifetime int
}

// Policy decides how many nodes to spawn and when to recycle them.
type Policy interface {
	SpawnBudget(ctx SpawnContext) int
	ShouldRecycle(ctx RecycleContext) bool
}

// Defaults is the built-in Policy used when scripting is disabled and as the
// fallback for functions a script does not define.
type Defaults struct{}

// SpawnBudget fills the template up to MaxActive.
func (Defaults) SpawnBudget(ctx SpawnContext) int {
	if n := ctx.MaxActive - ctx.Active; n > 0 {
		return n
	}
	return 0
}

// ShouldRecycle expires nodes once their lifetime is used up. A zero
// lifetime means the node lives until the host destroys it.
func (Defaults) ShouldRecycle(ctx RecycleContext) bool {
	return ctx.Lifetime > 0 && ctx.Age >= ctx.Lifetime
}

// Engine wraps a single gopher-lua VM for policy decisions.
// Single-goroutine access only (game loop).
type Engine struct {
	vm       *lua.LState
	log      *zap.Logger
	fallback Defaults
}

// NewEngine creates a Lua engine and loads every script in scriptsDir.
// A missing directory yields an engine running on the defaults.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	if log == nil {
		log = zap.NewNop()
	}
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	if scriptsDir == "" {
		return e, nil
	}
	if err := e.loadDir(scriptsDir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load scripts: %w", err)
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			e.log.Warn("script directory missing; using default policy", zap.String("dir", dir))
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// LoadString runs a chunk of Lua source, typically to override a policy function.
func (e *Engine) LoadString(src string) error {
	if err := e.vm.DoString(src); err != nil {
		return fmt.Errorf("load lua source: %w", err)
	}
	return nil
}

// SpawnBudget calls spawn_budget(ctx). Negative results clamp to zero.
func (e *Engine) SpawnBudget(ctx SpawnContext) int {
	fn := e.vm.GetGlobal("spawn_budget")
	if fn == lua.LNil {
		return e.fallback.SpawnBudget(ctx)
	}

	t := e.vm.NewTable()
	t.RawSetString("template", lua.LString(ctx.Template))
	t.RawSetString("active", lua.LNumber(ctx.Active))
	t.RawSetString("pooled", lua.LNumber(ctx.Pooled))
	t.RawSetString("max_active", lua.LNumber(ctx.MaxActive))
	t.RawSetString("tick", lua.LNumber(ctx.Tick))

	result, ok := e.call("spawn_budget", fn, t)
	if !ok {
		return e.fallback.SpawnBudget(ctx)
	}
	n := int(lua.LVAsNumber(result))
	if n < 0 {
		return 0
	}
	return n
}

// ShouldRecycle calls should_recycle(ctx).
func (e *Engine) ShouldRecycle(ctx RecycleContext) bool {
	fn := e.vm.GetGlobal("should_recycle")
	if fn == lua.LNil {
		return e.fallback.ShouldRecycle(ctx)
	}

	t := e.vm.NewTable()
	t.RawSetString("template", lua.LString(ctx.Template))
	t.RawSetString("age", lua.LNumber(ctx.Age))
	t.RawSetString("lifetime", lua.LNumber(ctx.Lifetime))

	result, ok := e.call("should_recycle", fn, t)
	if !ok {
		return e.fallback.ShouldRecycle(ctx)
	}
	return lua.LVAsBool(result)
}

func (e *Engine) call(name string, fn lua.LValue, args ...lua.LValue) (lua.LValue, bool) {
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		e.log.Error("lua call error", zap.String("func", name), zap.Error(err))
		return lua.LNil, false
	}
	result := e.vm.Get(-1)
	e.vm.Pop(1)
	return result, true
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
