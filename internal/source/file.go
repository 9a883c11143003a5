// Package source parses Go files and rewrites function doc comments in
// place. Edits are recorded as byte-range splices against the original
// buffer and applied in one pass, followed by gofmt-style formatting, so
// the printer never has to reconstruct comment positions.
package source

import (
	"fmt"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"strings"
	"unicode"
	"unicode/utf8"
)

// File is a parsed Go source file plus its raw bytes.
type File struct {
	Path string

	fset *token.FileSet
	file *ast.File
	src  []byte
	buf  *editBuffer
}

// Parse parses src as the content of the file at path.
func Parse(path string, src []byte) (*File, error) {
	fset := token.NewFileSet()
	parsed, err := parser.ParseFile(fset, path, src, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &File{
		Path: path,
		fset: fset,
		file: parsed,
		src:  src,
		buf:  newEditBuffer(src),
	}, nil
}

// Function describes one function declaration in a parsed file.
type Function struct {
	Name     string
	Receiver string // empty for plain functions

	decl *ast.FuncDecl
}

// Functions returns the file's function declarations in source order.
func (f *File) Functions() []*Function {
	var funcs []*Function
	for _, decl := range f.file.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok {
			continue
		}
		funcs = append(funcs, &Function{
			Name:     fd.Name.Name,
			Receiver: receiverType(fd),
			decl:     fd,
		})
	}
	return funcs
}

// QualifiedName returns Receiver.Name for methods, Name otherwise.
func (fn *Function) QualifiedName() string {
	if fn.Receiver != "" {
		return fn.Receiver + "." + fn.Name
	}
	return fn.Name
}

// HasDoc reports whether the declaration carries documentation text. A
// comment group holding only compiler directives does not count.
func (fn *Function) HasDoc() bool {
	return fn.decl.Doc != nil && strings.TrimSpace(fn.decl.Doc.Text()) != ""
}

// IsConstructor reports whether the function is constructor-named: a plain
// function called init, New, or New followed by an exported identifier.
func (fn *Function) IsConstructor() bool {
	if fn.Receiver != "" {
		return false
	}
	if fn.Name == "init" || fn.Name == "New" {
		return true
	}
	if strings.HasPrefix(fn.Name, "New") {
		r, _ := utf8.DecodeRuneInString(fn.Name[len("New"):])
		return unicode.IsUpper(r)
	}
	return false
}

// FuncSource returns the declaration's source text, doc comment excluded.
func (f *File) FuncSource(fn *Function) string {
	start := f.offsetOf(fn.decl.Pos())
	end := f.offsetOf(fn.decl.End())
	return string(f.src[start:end])
}

// InsertDoc records insertion of a doc comment, given as prose lines,
// above a function that has none.
func (f *File) InsertDoc(fn *Function, lines []string) {
	start := f.offsetOf(fn.decl.Pos())
	indent := f.indentAt(fn.decl.Pos())
	text := renderComment(lines, nil, indent)
	f.buf.insert(start, text+"\n"+indent)
}

// ReplaceDoc records replacement of a function's existing doc comment.
// Compiler directive lines from the old group are preserved below the new
// text, directly above the declaration.
func (f *File) ReplaceDoc(fn *Function, lines []string) {
	doc := fn.decl.Doc
	start := f.offsetOf(doc.Pos())
	end := f.offsetOf(doc.End())
	indent := f.indentAt(doc.Pos())
	f.buf.replace(start, end, renderComment(lines, fn.directives(), indent))
}

// Rewrite applies the recorded doc edits and reformats the file. It
// reports whether any edits were applied.
func (f *File) Rewrite() ([]byte, bool, error) {
	if f.buf.empty() {
		return f.src, false, nil
	}
	raw, err := f.buf.bytes()
	if err != nil {
		return nil, false, fmt.Errorf("failed to splice %s: %w", f.Path, err)
	}
	formatted, err := format.Source(raw)
	if err != nil {
		return nil, false, fmt.Errorf("failed to format %s: %w", f.Path, err)
	}
	return formatted, true, nil
}

func (f *File) offsetOf(pos token.Pos) int {
	return f.fset.Position(pos).Offset
}

// indentAt returns the whitespace prefix of pos's line, or "" when pos is
// preceded by non-whitespace on its line.
func (f *File) indentAt(pos token.Pos) string {
	p := f.fset.Position(pos)
	lineStart := p.Offset - (p.Column - 1)
	prefix := f.src[lineStart:p.Offset]
	for _, b := range prefix {
		if b != ' ' && b != '\t' {
			return ""
		}
	}
	return string(prefix)
}

// directives returns the compiler directive lines in fn's doc group.
func (fn *Function) directives() []string {
	if fn.decl.Doc == nil {
		return nil
	}
	var out []string
	for _, c := range fn.decl.Doc.List {
		if text, ok := strings.CutPrefix(c.Text, "//"); ok && isDirective(text) {
			out = append(out, c.Text)
		}
	}
	return out
}

// isDirective matches the go/ast rule for comments like //go:noinline that
// are machine-readable rather than documentation.
func isDirective(c string) bool {
	if strings.HasPrefix(c, "line ") || strings.HasPrefix(c, "extern ") || strings.HasPrefix(c, "export ") {
		return true
	}
	colon := strings.Index(c, ":")
	if colon <= 0 || colon+1 >= len(c) {
		return false
	}
	for _, b := range []byte(c[:colon]) {
		if !('a' <= b && b <= 'z' || '0' <= b && b <= '9') {
			return false
		}
	}
	return true
}

// renderComment renders prose lines as a // comment block. The first line
// carries no indent (the original bytes at the splice point already
// provide it); subsequent lines and preserved directives get indent.
func renderComment(lines, directives []string, indent string) string {
	var b strings.Builder
	first := true
	writeLine := func(s string) {
		if !first {
			b.WriteString("\n")
			b.WriteString(indent)
		}
		first = false
		b.WriteString(s)
	}
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			writeLine("//")
		} else {
			writeLine("// " + line)
		}
	}
	for _, d := range directives {
		writeLine(d)
	}
	return b.String()
}

// receiverType returns the bare type name of fd's receiver, pointer star
// stripped, or "" for a plain function.
func receiverType(fd *ast.FuncDecl) string {
	if fd.Recv == nil || len(fd.Recv.List) == 0 {
		return ""
	}
	switch t := fd.Recv.List[0].Type.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		if id, ok := t.X.(*ast.Ident); ok {
			return id.Name
		}
	}
	return ""
}
