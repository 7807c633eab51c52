// Binder CI/CD
//
// Package main provides reproducible builds and tests locally and in GitHub actions.
// It is the main harness for handling nearly all dev operations.
package main

import (
	"context"

	"dagger/binder/internal/dagger"
)

// Binder is the main module for the Binder CI/CD pipeline
type Binder struct {
	// Project source directory
	//
	// +private
	Source *dagger.Directory
}

// New creates a new Binder CI/CD module instance
func New(
	// Project source directory.
	//
	// +defaultPath="/"
	// +ignore=[".git", ".direnv", ".devenv", "build", "tmp"]
	source *dagger.Directory,
) *Binder {
	return &Binder{
		Source: source,
	}
}

// goContainer returns a Debian Bookworm-based Go container with the Go
// caches and the project source mounted.
//
// It is the shared foundation for tests, builds, and linting.
func (b *Binder) goContainer() *dagger.Container {
	return dag.Container().
		From("golang:1.25-bookworm").
		WithEnvVariable("CGO_ENABLED", "0").
		WithEnvVariable("PATH", "/go/bin:$PATH", dagger.ContainerWithEnvVariableOpts{Expand: true}).
		WithMountedCache("/go/pkg/mod", dag.CacheVolume("go-mod")).
		WithMountedCache("/root/.cache/go-build", dag.CacheVolume("go-build")).
		WithWorkdir("/src").
		WithDirectory("/src", b.Source)
}

// Test runs the binder unit tests via "go test"
func (b *Binder) Test(ctx context.Context) (string, error) {
	return b.goContainer().
		WithExec([]string{"go", "test", "-v", "./..."}).
		Stdout(ctx)
}
