// Package resolve locates named declarations in Kotlin source files by
// fully-qualified name.
package resolve

import (
	"context"
	"errors"
	"runtime"
	"sort"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/RBusarow/Doks/internal/lang"
)

// SourceFile is one source file's path and raw content, already read by the
// caller. Content is treated as immutable for the duration of the pass.
type SourceFile struct {
	Path    string
	Content []byte
}

// Index maps fully-qualified names to resolved declarations for one
// resolution pass. It owns the underlying syntax trees; Close releases them,
// after which no Declaration obtained from the Index may be used.
type Index struct {
	decls map[string]*Declaration
	trees []*sitter.Tree
}

// Lookup returns the declaration for a fully-qualified name, if one was
// found. Requested names with no match are absent, never defaulted.
func (ix *Index) Lookup(fq string) (*Declaration, bool) {
	d, ok := ix.decls[fq]
	return d, ok
}

// Names returns every resolved fully-qualified name, sorted.
func (ix *Index) Names() []string {
	names := make([]string, 0, len(ix.decls))
	for fq := range ix.decls {
		names = append(names, fq)
	}
	sort.Strings(names)
	return names
}

// Close releases the syntax trees backing the index.
func (ix *Index) Close() {
	for _, t := range ix.trees {
		t.Close()
	}
	ix.trees = nil
	ix.decls = nil
}

// nameClosure expands wanted names with all their dotted ancestor prefixes,
// so that requesting "a.b.c" also collects "a.b" and "a".
func nameClosure(wanted []string) map[string]struct{} {
	set := make(map[string]struct{}, len(wanted))
	for _, w := range wanted {
		segs := strings.Split(w, ".")
		for i := 1; i <= len(segs); i++ {
			set[strings.Join(segs[:i], ".")] = struct{}{}
		}
	}
	return set
}

// Resolve parses every file and returns an index over the declarations whose
// qualified names appear in the closure of wanted names. Files that fail to
// parse contribute a ParseError without aborting resolution of other files;
// all such errors are joined into the returned error.
func Resolve(files []SourceFile, wanted []string) (*Index, error) {
	closure := nameClosure(wanted)

	type result struct {
		tree  *sitter.Tree
		found map[string]*Declaration
		err   error
	}

	kt := lang.Languages["kotlin"]

	numWorkers := runtime.GOMAXPROCS(0)
	if numWorkers > len(files) {
		numWorkers = len(files)
	}

	work := make(chan int, len(files))
	results := make([]result, len(files))

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			// Each goroutine gets its own parser
			parser := kt.NewParser()

			for idx := range work {
				f := files[idx]
				tree, err := parser.ParseCtx(context.Background(), nil, f.Content)
				if err != nil || hasSyntaxError(tree.RootNode()) {
					if tree != nil {
						tree.Close()
					}
					results[idx] = result{err: &ParseError{File: f.Path}}
					continue
				}

				w := newFileWalk(f.Content, closure, tree.RootNode())
				w.walk(tree.RootNode(), nil)
				results[idx] = result{tree: tree, found: w.found}
			}
		}()
	}

	for i := range files {
		work <- i
	}
	close(work)
	wg.Wait()

	ix := &Index{decls: make(map[string]*Declaration)}
	var errs []error

	// Merge in file order so duplicate names resolve deterministically to
	// the first file that declares them.
	for _, r := range results {
		if r.err != nil {
			errs = append(errs, r.err)
			continue
		}
		if r.tree == nil {
			continue
		}
		ix.trees = append(ix.trees, r.tree)
		for fq, d := range r.found {
			if _, exists := ix.decls[fq]; !exists {
				ix.decls[fq] = d
			}
		}
	}

	return ix, errors.Join(errs...)
}

// hasSyntaxError reports whether the tree contains an ERROR or MISSING node.
// The root's aggregate HasError flag is unreliable with the Kotlin grammar
// (it can be set on structurally complete trees), so only actual error nodes
// make a file unparseable.
func hasSyntaxError(n *sitter.Node) bool {
	if !n.HasError() {
		return false
	}
	if n.IsError() || n.IsMissing() {
		return true
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if hasSyntaxError(n.Child(i)) {
			return true
		}
	}
	return false
}

// fileWalk is the per-file traversal state. Each file is walked by exactly
// one goroutine, so no locking is needed.
type fileWalk struct {
	source  []byte
	closure map[string]struct{}
	pkg     string
	found   map[string]*Declaration
	names   map[*sitter.Node]string
}

func newFileWalk(source []byte, closure map[string]struct{}, root *sitter.Node) *fileWalk {
	return &fileWalk{
		source:  source,
		closure: closure,
		pkg:     packageName(root, source),
		found:   make(map[string]*Declaration),
		names:   make(map[*sitter.Node]string),
	}
}

// packageName returns the dotted package declared by the file, or "".
func packageName(root *sitter.Node, source []byte) string {
	if header := childOfType(root, "package_header"); header != nil {
		return childText(header, source, "identifier")
	}
	return ""
}

// walk visits every node that could contain a named declaration. Named
// declarations become the name-resolution context for their subtree;
// anonymous scopes keep the enclosing named context.
func (w *fileWalk) walk(n *sitter.Node, parent *Declaration) {
	next := parent

	switch classify(n.Type()) {
	case KindClass, KindFunction, KindProperty:
		if name := declaredName(n, w.source); name != "" {
			d := &Declaration{
				Kind:        classify(n.Type()),
				Name:        name,
				Identifying: identifyingText(n, w.source, name),
				Parent:      parent,
				node:        n,
				source:      w.source,
			}
			d.FqName = w.qualifiedName(d)
			if _, want := w.closure[d.FqName]; want {
				if _, exists := w.found[d.FqName]; !exists {
					w.found[d.FqName] = d
				}
			}
			next = d
		}
	}

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if canContainDeclarations(child) {
			w.walk(child, next)
		}
	}
}

// qualifiedName computes (and memoizes) the fully-qualified name of a
// declaration: the nearest enclosing named ancestor's qualified name joined
// with the declaration's identifying text, rooted at the file's package.
func (w *fileWalk) qualifiedName(d *Declaration) string {
	if fq, ok := w.names[d.node]; ok {
		return fq
	}
	fq := d.Identifying
	switch {
	case d.Parent != nil:
		fq = d.Parent.FqName + "." + d.Identifying
	case w.pkg != "":
		fq = w.pkg + "." + d.Identifying
	}
	w.names[d.node] = fq
	return fq
}
