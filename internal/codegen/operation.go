package codegen

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// Operation is a file system action that can be validated and executed.
//
// Validate checks the operation would succeed; it may create parent
// directories as an idempotent side effect. Execute performs the action.
// Description returns a human-readable line for output.
type Operation interface {
	Validate(ctx context.Context) error
	Execute(ctx context.Context) error
	Description() string
}

// WriteFileOp writes a file, creating parent directories and overwriting any
// existing content. Generated artifacts are fully owned by the generator, so
// overwrite is the intended semantics.
type WriteFileOp struct {
	Path    string
	Content []byte
	Mode    fs.FileMode
}

func (op *WriteFileOp) Validate(ctx context.Context) error {
	if op.Content == nil {
		return fmt.Errorf("content is nil for file: %s", op.Path)
	}
	dir := filepath.Dir(op.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", dir, err)
	}
	return nil
}

func (op *WriteFileOp) Execute(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(op.Path), 0755); err != nil {
		return err
	}
	return os.WriteFile(op.Path, op.Content, op.Mode)
}

func (op *WriteFileOp) Description() string {
	return fmt.Sprintf("Write %s (%d bytes)", op.Path, len(op.Content))
}

// ExecuteOptions configures Execute behavior.
type ExecuteOptions struct {
	DryRun bool
	Writer io.Writer // defaults to os.Stdout
}

// Execute validates all operations, then runs them (or reports them under
// dry-run).
func Execute(ctx context.Context, ops []Operation, opts ExecuteOptions) error {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}

	for _, op := range ops {
		if err := op.Validate(ctx); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}

	for _, op := range ops {
		if opts.DryRun {
			fmt.Fprintf(opts.Writer, "[dry run] %s\n", op.Description())
			continue
		}
		if err := op.Execute(ctx); err != nil {
			return fmt.Errorf("execution failed: %w", err)
		}
		fmt.Fprintf(opts.Writer, "%s\n", op.Description())
	}

	return nil
}

// FileOps converts a path→content map into write operations rooted at dir,
// ordered by relative path for reproducible execution.
func FileOps(dir string, files map[string]string) []Operation {
	paths := make([]string, 0, len(files))
	for rel := range files {
		paths = append(paths, rel)
	}
	sort.Strings(paths)

	ops := make([]Operation, 0, len(paths))
	for _, rel := range paths {
		ops = append(ops, &WriteFileOp{
			Path:    filepath.Join(dir, filepath.FromSlash(rel)),
			Content: []byte(files[rel]),
			Mode:    0644,
		})
	}
	return ops
}
