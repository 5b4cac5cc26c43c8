package resolve

import (
	"errors"
	"testing"
)

func resolveOne(t *testing.T, source string, wanted ...string) *Index {
	t.Helper()
	idx, err := Resolve([]SourceFile{{Path: "Test.kt", Content: []byte(source)}}, wanted)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	t.Cleanup(idx.Close)
	return idx
}

func TestResolveTopLevelClass(t *testing.T) {
	t.Parallel()

	idx := resolveOne(t, "class Foo { }\n", "Foo")

	d, ok := idx.Lookup("Foo")
	if !ok {
		t.Fatalf("Foo not found; resolved names: %v", idx.Names())
	}
	if d.Kind != KindClass {
		t.Errorf("kind = %v, want class", d.Kind)
	}
	if d.Name != "Foo" {
		t.Errorf("name = %q, want Foo", d.Name)
	}
	if d.Parent != nil {
		t.Error("top-level declaration should have no parent")
	}
}

func TestResolveNestedFunction(t *testing.T) {
	t.Parallel()

	source := `class Foo {
    fun bar() {
        println("hi")
    }
}
`
	idx := resolveOne(t, source, "Foo.bar")

	d, ok := idx.Lookup("Foo.bar")
	if !ok {
		t.Fatalf("Foo.bar not found; resolved names: %v", idx.Names())
	}
	if d.Kind != KindFunction {
		t.Errorf("kind = %v, want function", d.Kind)
	}
	if d.Parent == nil || d.Parent.FqName != "Foo" {
		t.Errorf("parent = %+v, want Foo", d.Parent)
	}

	// Ancestor names are pulled in by the closure.
	if _, ok := idx.Lookup("Foo"); !ok {
		t.Error("ancestor Foo should be resolved")
	}
}

func TestResolveProperty(t *testing.T) {
	t.Parallel()

	source := `object Config {
    val greeting = "hello"
}
`
	idx := resolveOne(t, source, "Config.greeting")

	d, ok := idx.Lookup("Config.greeting")
	if !ok {
		t.Fatalf("Config.greeting not found; resolved names: %v", idx.Names())
	}
	if d.Kind != KindProperty {
		t.Errorf("kind = %v, want property", d.Kind)
	}
}

func TestResolvePackagePrefix(t *testing.T) {
	t.Parallel()

	source := `package com.example

class Foo {
    fun bar() { }
}
`
	idx := resolveOne(t, source, "com.example.Foo.bar")

	if _, ok := idx.Lookup("com.example.Foo.bar"); !ok {
		t.Fatalf("com.example.Foo.bar not found; resolved names: %v", idx.Names())
	}
	if _, ok := idx.Lookup("Foo.bar"); ok {
		t.Error("unqualified name should not resolve when the file declares a package")
	}
}

func TestResolveExtensionFunctionIdentifying(t *testing.T) {
	t.Parallel()

	source := `fun String.shout() {
    println(uppercase())
}
`
	idx := resolveOne(t, source, "String.shout")

	d, ok := idx.Lookup("String.shout")
	if !ok {
		t.Fatalf("String.shout not found; resolved names: %v", idx.Names())
	}
	if d.Name != "shout" {
		t.Errorf("declared name = %q, want shout", d.Name)
	}
	if d.Identifying != "String.shout" {
		t.Errorf("identifying = %q, want String.shout", d.Identifying)
	}
}

func TestResolveInsideLambda(t *testing.T) {
	t.Parallel()

	// The lambda contributes no name segment; inner inherits outer's name.
	source := `fun outer() {
    listOf(1).forEach {
        fun inner() {
            println(it)
        }
    }
}
`
	idx := resolveOne(t, source, "outer.inner")

	d, ok := idx.Lookup("outer.inner")
	if !ok {
		t.Fatalf("outer.inner not found; resolved names: %v", idx.Names())
	}
	if d.Parent == nil || d.Parent.FqName != "outer" {
		t.Errorf("parent = %+v, want outer", d.Parent)
	}
}

func TestNameRoundTrip(t *testing.T) {
	t.Parallel()

	source := `class Foo {
    val prop = 1

    fun bar() { }

    class Inner {
        fun baz() { }
    }
}
`
	wanted := []string{"Foo.prop", "Foo.bar", "Foo.Inner.baz"}
	idx := resolveOne(t, source, wanted...)

	// Looking a declaration up by its own computed name returns that same
	// declaration.
	for _, fq := range idx.Names() {
		d, ok := idx.Lookup(fq)
		if !ok {
			t.Fatalf("Lookup(%q) failed for a resolved name", fq)
		}
		if d.FqName != fq {
			t.Errorf("Lookup(%q).FqName = %q", fq, d.FqName)
		}
	}
	for _, fq := range wanted {
		if _, ok := idx.Lookup(fq); !ok {
			t.Errorf("%q not resolved; got %v", fq, idx.Names())
		}
	}
}

func TestResolveCompactSingleLineSource(t *testing.T) {
	t.Parallel()

	// The Kotlin grammar sets the root's aggregate error flag on some
	// structurally complete trees. A file is unparseable only when the tree
	// holds a real error node, so this must resolve.
	for _, source := range []string{
		"class Foo { fun bar() { return 1 } }",
		"class Foo { fun bar() { return 1 } }\n",
	} {
		idx := resolveOne(t, source, "Foo.bar")

		d, ok := idx.Lookup("Foo.bar")
		if !ok {
			t.Fatalf("Foo.bar not found in %q; resolved names: %v", source, idx.Names())
		}
		if d.Kind != KindFunction {
			t.Errorf("kind = %v, want function", d.Kind)
		}
	}
}

func TestResolveMissingNameAbsent(t *testing.T) {
	t.Parallel()

	idx := resolveOne(t, "class Foo { }\n", "Foo", "Nope")

	if _, ok := idx.Lookup("Nope"); ok {
		t.Error("unmatched request should be absent, not defaulted")
	}
	if _, ok := idx.Lookup("Foo"); !ok {
		t.Error("Foo should still resolve")
	}
}

func TestResolveParseErrorsCollected(t *testing.T) {
	t.Parallel()

	files := []SourceFile{
		{Path: "Bad1.kt", Content: []byte("class {{{")},
		{Path: "Good.kt", Content: []byte("class Foo { }\n")},
		{Path: "Bad2.kt", Content: []byte("fun ) ( = }")},
	}

	idx, err := Resolve(files, []string{"Foo"})
	defer idx.Close()

	if err == nil {
		t.Fatal("expected parse errors")
	}

	// Both bad files are reported; neither masks the other.
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected a *ParseError in %v", err)
	}
	for _, file := range []string{"Bad1.kt", "Bad2.kt"} {
		found := false
		for _, e := range unwrapJoined(err) {
			var pe *ParseError
			if errors.As(e, &pe) && pe.File == file {
				found = true
			}
		}
		if !found {
			t.Errorf("missing ParseError for %s in %v", file, err)
		}
	}

	// The good file still resolved.
	if _, ok := idx.Lookup("Foo"); !ok {
		t.Error("Foo should resolve despite parse errors in sibling files")
	}
}

func TestResolveDuplicateNameFirstFileWins(t *testing.T) {
	t.Parallel()

	files := []SourceFile{
		{Path: "A.kt", Content: []byte("class Foo { fun a() { } }\n")},
		{Path: "B.kt", Content: []byte("class Foo { fun b() { } }\n")},
	}

	idx, err := Resolve(files, []string{"Foo"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	defer idx.Close()

	d, ok := idx.Lookup("Foo")
	if !ok {
		t.Fatal("Foo not found")
	}
	if got := d.Text(); got != "class Foo { fun a() { } }" {
		t.Errorf("duplicate resolution not deterministic, got %q", got)
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := []struct {
		nodeType string
		want     Kind
	}{
		{"class_declaration", KindClass},
		{"object_declaration", KindClass},
		{"companion_object", KindClass},
		{"function_declaration", KindFunction},
		{"property_declaration", KindProperty},
		{"lambda_literal", KindAnonymous},
		{"anonymous_function", KindAnonymous},
		{"call_expression", KindOther},
		{"statements", KindOther},
	}
	for _, tc := range cases {
		if got := classify(tc.nodeType); got != tc.want {
			t.Errorf("classify(%q) = %v, want %v", tc.nodeType, got, tc.want)
		}
	}
}

func TestNameClosure(t *testing.T) {
	t.Parallel()

	set := nameClosure([]string{"a.b.c", "x"})
	for _, want := range []string{"a", "a.b", "a.b.c", "x"} {
		if _, ok := set[want]; !ok {
			t.Errorf("closure missing %q", want)
		}
	}
	if len(set) != 4 {
		t.Errorf("closure has %d entries, want 4", len(set))
	}
}

// unwrapJoined flattens an errors.Join result.
func unwrapJoined(err error) []error {
	if u, ok := err.(interface{ Unwrap() []error }); ok {
		return u.Unwrap()
	}
	return []error{err}
}
