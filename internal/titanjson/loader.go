package titanjson

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/khulnasoft/titan/internal/repo"
	"github.com/khulnasoft/titan/internal/types"
)

// TaskAccessTracePath is where a task access trace is written, relative to
// the repository root.
var TaskAccessTracePath = filepath.Join(".titan", ConfigFile)

// Strategy selects how a Loader produces definitions.
type Strategy int

const (
	// Workspace reads each package's titan.json from disk.
	Workspace Strategy = iota
	// SinglePackage reads the root titan.json and adds a task for every
	// root script it does not already cover.
	SinglePackage
	// WorkspaceNoTitanJSON synthesizes definitions from package scripts.
	WorkspaceNoTitanJSON
	// TaskAccess prefers a task access trace when no root titan.json exists.
	TaskAccess
	// Noop only serves preloaded definitions.
	Noop
)

func (s Strategy) String() string {
	switch s {
	case Workspace:
		return "workspace"
	case SinglePackage:
		return "single-package"
	case WorkspaceNoTitanJSON:
		return "workspace-no-titan-json"
	case TaskAccess:
		return "task-access"
	default:
		return "noop"
	}
}

// InvalidLoadError is returned when a single-package loader is asked for a
// package other than the root.
type InvalidLoadError struct {
	Package repo.PackageName
}

func (e *InvalidLoadError) Error() string {
	return fmt.Sprintf("cannot load titan.json for %s in single package mode", e.Package)
}

// PackageTaskInSinglePackageModeError is returned when a single-package
// titan.json contains a package-qualified task.
type PackageTaskInSinglePackageModeError struct {
	TaskID string
	Span   Spanned[RawTaskDefinition]
}

func (e *PackageTaskInSinglePackageModeError) Error() string {
	return fmt.Sprintf("package tasks (<package>#<task>) are not allowed in single-package repositories: found %s at %s", e.TaskID, e.Span.Location())
}

// Loader loads titan.json definitions per package and memoizes them. A
// Loader is not safe for concurrent use.
type Loader struct {
	repoRoot string
	strategy Strategy
	logger   *zap.Logger
	cache    map[repo.PackageName]*TitanJSON

	rootTitanJSON string
	packageJSON   *repo.PackageJSON
	paths         map[repo.PackageName]string
	scripts       map[repo.PackageName][]string
}

// NewWorkspaceLoader loads titan.json files throughout the workspace. The
// root uses rootTitanJSONPath; every other package reads the titan.json
// in its own directory.
func NewWorkspaceLoader(repoRoot, rootTitanJSONPath string, packages map[repo.PackageName]repo.PackageInfo) *Loader {
	paths := map[repo.PackageName]string{repo.RootPackage: rootTitanJSONPath}
	for name, info := range packages {
		if name.IsRoot() {
			continue
		}
		paths[name] = filepath.Join(repoRoot, info.Path, ConfigFile)
	}
	return newLoader(repoRoot, Workspace, func(l *Loader) { l.paths = paths })
}

// NewWorkspaceNoTitanJSONLoader synthesizes definitions from each
// package's scripts.
func NewWorkspaceNoTitanJSONLoader(repoRoot string, packages map[repo.PackageName]repo.PackageInfo) *Loader {
	scripts := make(map[repo.PackageName][]string, len(packages))
	for name, info := range packages {
		if info.PackageJSON == nil {
			scripts[name] = nil
			continue
		}
		scripts[name] = info.PackageJSON.ScriptNames()
	}
	return newLoader(repoRoot, WorkspaceNoTitanJSON, func(l *Loader) { l.scripts = scripts })
}

// NewSinglePackageLoader loads the root titan.json, or synthesizes one
// from the root package.json scripts when it does not exist.
func NewSinglePackageLoader(repoRoot, rootTitanJSONPath string, pkg *repo.PackageJSON) *Loader {
	return newLoader(repoRoot, SinglePackage, func(l *Loader) {
		l.rootTitanJSON = rootTitanJSONPath
		l.packageJSON = pkg
	})
}

// NewTaskAccessLoader behaves like NewSinglePackageLoader, except that a
// task access trace is used when the root titan.json does not exist.
func NewTaskAccessLoader(repoRoot, rootTitanJSONPath string, pkg *repo.PackageJSON) *Loader {
	return newLoader(repoRoot, TaskAccess, func(l *Loader) {
		l.rootTitanJSON = rootTitanJSONPath
		l.packageJSON = pkg
	})
}

// NewNoopLoader only returns the provided definitions and never touches
// the file system.
func NewNoopLoader(titanJSONs map[repo.PackageName]*TitanJSON) *Loader {
	l := newLoader(string(filepath.Separator), Noop, nil)
	for name, tj := range titanJSONs {
		l.cache[name] = tj
	}
	return l
}

func newLoader(repoRoot string, strategy Strategy, init func(*Loader)) *Loader {
	l := &Loader{
		repoRoot: repoRoot,
		strategy: strategy,
		logger:   zap.NewNop(),
		cache:    make(map[repo.PackageName]*TitanJSON),
	}
	if init != nil {
		init(l)
	}
	return l
}

// WithLogger sets the logger used for deprecation warnings and debug
// output.
func (l *Loader) WithLogger(logger *zap.Logger) *Loader {
	if logger != nil {
		l.logger = logger
	}
	return l
}

// Strategy returns the loader's strategy.
func (l *Loader) Strategy() Strategy { return l.strategy }

// Load returns the definition for pkg. Results are cached, so a package
// is read or synthesized at most once per Loader.
func (l *Loader) Load(pkg repo.PackageName) (*TitanJSON, error) {
	if tj, ok := l.cache[pkg]; ok {
		return tj, nil
	}
	tj, err := l.uncachedLoad(pkg)
	if err != nil {
		return nil, err
	}
	l.cache[pkg] = tj
	return tj, nil
}

func (l *Loader) uncachedLoad(pkg repo.PackageName) (*TitanJSON, error) {
	switch l.strategy {
	case SinglePackage:
		if !pkg.IsRoot() {
			return nil, &InvalidLoadError{Package: pkg}
		}
		return l.loadFromRootPackageJSON()
	case Workspace:
		path, ok := l.paths[pkg]
		if !ok {
			return nil, ErrNoTitanJSON
		}
		return l.loadFromFile(path)
	case WorkspaceNoTitanJSON:
		scripts, ok := l.scripts[pkg]
		if !ok {
			return nil, ErrNoTitanJSON
		}
		if pkg.IsRoot() {
			return rootFromScripts(scripts), nil
		}
		return workspaceFromScripts(scripts), nil
	case TaskAccess:
		if !pkg.IsRoot() {
			return nil, &InvalidLoadError{Package: pkg}
		}
		return l.loadTaskAccessTrace()
	default:
		return nil, ErrNoTitanJSON
	}
}

func isReadError(err error) bool {
	var pathErr *fs.PathError
	return errors.As(err, &pathErr)
}

func (l *Loader) loadFromFile(path string) (*TitanJSON, error) {
	tj, err := Read(l.repoRoot, path, l.logger)
	if err != nil {
		if isReadError(err) {
			return nil, ErrNoTitanJSON
		}
		return nil, err
	}
	return tj, nil
}

func (l *Loader) loadFromRootPackageJSON() (*TitanJSON, error) {
	tj, err := Read(l.repoRoot, l.rootTitanJSON, l.logger)
	switch {
	case err == nil:
		pipeline := make(Pipeline, len(tj.Tasks))
		for _, name := range tj.Tasks.Keys() {
			def := tj.Tasks[name]
			if name.IsPackageTask() {
				return nil, &PackageTaskInSinglePackageModeError{TaskID: name.String(), Span: def}
			}
			pipeline.Insert(name.IntoRootTask(), def)
		}
		tj.Tasks = pipeline
	case isReadError(err):
		tj = New()
	default:
		return nil, err
	}

	if l.packageJSON == nil {
		return tj, nil
	}
	for _, script := range l.packageJSON.ScriptNames() {
		name := TaskName(script)
		if tj.HasTask(name) {
			continue
		}
		// cache is set explicitly so later merging treats it as intentional.
		tj.Tasks.Insert(name.IntoRootTask(), NewSpanned(RawTaskDefinition{
			Cache: ptr(NewSpanned(false)),
		}))
	}
	return tj, nil
}

func rootFromScripts(scripts []string) *TitanJSON {
	tj := New()
	for _, script := range scripts {
		tj.Tasks.Insert(TaskName(script).IntoRootTask(), synthesizedTask())
	}
	return tj
}

func workspaceFromScripts(scripts []string) *TitanJSON {
	tj := New()
	tj.Extends = NewSpanned([]string{string(repo.RootPackage)})
	for _, script := range scripts {
		tj.Tasks.Insert(TaskName(script), synthesizedTask())
	}
	return tj
}

func synthesizedTask() Spanned[RawTaskDefinition] {
	loose := types.EnvModeLoose
	return NewSpanned(RawTaskDefinition{
		Cache:   ptr(NewSpanned(false)),
		EnvMode: &loose,
	})
}

func (l *Loader) loadTaskAccessTrace() (*TitanJSON, error) {
	tracePath := filepath.Join(l.repoRoot, TaskAccessTracePath)
	trace, err := Read(l.repoRoot, tracePath, l.logger)
	if err == nil {
		if _, statErr := os.Stat(l.rootTitanJSON); errors.Is(statErr, fs.ErrNotExist) {
			l.logger.Debug("using titan.json synthesized from trace file", zap.String("path", tracePath))
			return trace, nil
		}
	}
	return l.loadFromRootPackageJSON()
}

func ptr[T any](v T) *T { return &v }
