package titanjson

import (
	"strings"

	"github.com/khulnasoft/titan/internal/repo"
)

const taskDelimiter = "#"

// TaskName is a task key as written in titan.json: either a bare task
// ("build") or a package-qualified one ("web#build", "//#build").
type TaskName string

// NewPackageTask builds a package-qualified task name.
func NewPackageTask(pkg repo.PackageName, task string) TaskName {
	return TaskName(string(pkg) + taskDelimiter + task)
}

// IsPackageTask reports whether the name is package-qualified.
func (t TaskName) IsPackageTask() bool {
	return strings.Contains(string(t), taskDelimiter)
}

// Package returns the package part of a qualified name.
func (t TaskName) Package() (repo.PackageName, bool) {
	pkg, _, ok := strings.Cut(string(t), taskDelimiter)
	if !ok {
		return "", false
	}
	return repo.PackageName(pkg), true
}

// Task returns the task part of the name.
func (t TaskName) Task() string {
	if _, task, ok := strings.Cut(string(t), taskDelimiter); ok {
		return task
	}
	return string(t)
}

// IntoRootTask qualifies the task with the root package: "build" -> "//#build".
func (t TaskName) IntoRootTask() TaskName {
	return NewPackageTask(repo.RootPackage, t.Task())
}

func (t TaskName) String() string { return string(t) }
