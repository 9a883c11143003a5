package docgen

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"autodoc/internal/llm"
	"autodoc/internal/scan"
	"autodoc/internal/source"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	commentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Options control which functions get documented and how the result
// is applied.
type Options struct {
	// ReplaceExisting regenerates doc comments for functions that
	// already have one.
	ReplaceExisting bool

	// SkipConstructors leaves constructor-style functions (init, New,
	// NewXxx) untouched.
	SkipConstructors bool

	// ExcludeDirs and ExcludeFiles are base names that the walk skips
	// entirely.
	ExcludeDirs  []string
	ExcludeFiles []string

	// DryRun prints the comments that would be written without
	// modifying any file.
	DryRun bool
}

// Generator documents Go functions using an LLM client.
type Generator struct {
	client llm.Client
	opts   Options
	logger *zap.Logger
	out    io.Writer
}

func New(client llm.Client, opts Options, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		client: client,
		opts:   opts,
		logger: logger,
		out:    os.Stdout,
	}
}

// SetOutput redirects status messages away from stdout.
func (g *Generator) SetOutput(w io.Writer) {
	g.out = w
}

// UpdatePath documents every eligible Go file under path, which may
// name a single file or a directory tree. A path that does not exist
// or does not point at Go source is reported and skipped rather than
// treated as fatal.
func (g *Generator) UpdatePath(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintln(g.out, errorStyle.Render(fmt.Sprintf("Invalid file path: %s", path)))
		g.logger.Warn("skipping invalid path", zap.String("path", path), zap.Error(err))
		return nil
	}

	walker := scan.New(g.opts.ExcludeDirs, g.opts.ExcludeFiles, g.logger)

	if info.IsDir() {
		return walker.Walk(path, func(file string) error {
			return g.UpdateFile(ctx, file)
		})
	}

	if !strings.HasSuffix(path, ".go") {
		fmt.Fprintln(g.out, errorStyle.Render(fmt.Sprintf("Invalid file path: %s", path)))
		g.logger.Warn("skipping non-Go file", zap.String("path", path))
		return nil
	}
	if walker.ExcludedFile(filepath.Base(path)) {
		g.logger.Debug("excluded file", zap.String("path", path))
		return nil
	}
	return g.UpdateFile(ctx, path)
}

// UpdateFile documents the eligible functions in a single Go file and
// rewrites it in place when anything changed.
func (g *Generator) UpdateFile(ctx context.Context, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	file, err := source.Parse(path, src)
	if err != nil {
		return err
	}

	for _, fn := range file.Functions() {
		if g.opts.SkipConstructors && fn.IsConstructor() {
			g.logger.Debug("skipping constructor",
				zap.String("function", fn.QualifiedName()),
				zap.String("path", path))
			continue
		}
		hasDoc := fn.HasDoc()
		if hasDoc && !g.opts.ReplaceExisting {
			continue
		}

		if !g.opts.DryRun {
			fmt.Fprintln(g.out, pendingStyle.Render(fmt.Sprintf("Documenting %s in %s", fn.QualifiedName(), path)))
		}

		lines, err := g.generate(ctx, file, fn)
		if err != nil {
			return fmt.Errorf("failed to document %s: %w", fn.QualifiedName(), err)
		}

		if g.opts.DryRun {
			fmt.Fprintln(g.out, pendingStyle.Render(fmt.Sprintf("Would document %s in %s:", fn.QualifiedName(), path)))
			for _, l := range lines {
				fmt.Fprintln(g.out, commentStyle.Render("// "+l))
			}
			continue
		}

		if hasDoc {
			file.ReplaceDoc(fn, lines)
		} else {
			file.InsertDoc(fn, lines)
		}
	}

	out, changed, err := file.Rewrite()
	if err != nil {
		return err
	}
	if !changed {
		g.logger.Debug("no changes", zap.String("path", path))
		return nil
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	fmt.Fprintln(g.out, successStyle.Render(fmt.Sprintf("Updated %s", path)))
	return nil
}

func (g *Generator) generate(ctx context.Context, file *source.File, fn *source.Function) ([]string, error) {
	g.logger.Debug("requesting doc comment", zap.String("function", fn.QualifiedName()))

	resp, err := g.client.CompleteWithSystem(ctx, systemPrompt, userPrompt(file.FuncSource(fn)))
	if err != nil {
		return nil, err
	}
	lines := commentLines(cleanResponse(resp))
	if len(lines) == 0 {
		return nil, fmt.Errorf("model returned an empty doc comment for %s", fn.QualifiedName())
	}
	return lines, nil
}
