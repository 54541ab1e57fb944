package query

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/jacoelho/kq/internal/kdl"
	"github.com/jacoelho/kq/internal/selector"
)

func loadDocument(t *testing.T, name string) []*kdl.Node {
	t.Helper()

	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	return parseDocument(t, string(data))
}

func parseDocument(t *testing.T, src string) []*kdl.Node {
	t.Helper()

	nodes, err := kdl.ParseString(src)
	if err != nil {
		t.Fatalf("ParseString() error = %v", err)
	}
	return nodes
}

func render(t *testing.T, nodes []*kdl.Node) string {
	t.Helper()

	var buf bytes.Buffer
	if err := kdl.Write(&buf, nodes); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return buf.String()
}

func TestSelectPackage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		selector string
		want     string
	}{
		{
			name:     "descendant",
			selector: "package name",
			want:     "name \"foo\"\n",
		},
		{
			name:     "top_child",
			selector: "top() > package name",
			want:     "name \"foo\"\n",
		},
		{
			name:     "descendant_by_identifier",
			selector: "dependencies",
			want: "dependencies platform=\"windows\" {\n    winapi \"1.0.0\" path=\"./crates/my-winapi-fork\"\n}\n" +
				"dependencies {\n    miette \"2.0.0\" dev=true\n}\n",
		},
		{
			name:     "implicit_property_name",
			selector: "dependencies[platform]",
			want:     "dependencies platform=\"windows\" {\n    winapi \"1.0.0\" path=\"./crates/my-winapi-fork\"\n}\n",
		},
		{
			name:     "explicit_property_name",
			selector: "dependencies[prop(platform)]",
			want:     "dependencies platform=\"windows\" {\n    winapi \"1.0.0\" path=\"./crates/my-winapi-fork\"\n}\n",
		},
		{
			name:     "all_direct_children",
			selector: "dependencies > []",
			want:     "winapi \"1.0.0\" path=\"./crates/my-winapi-fork\"\nmiette \"2.0.0\" dev=true\n",
		},
		{
			name:     "property_value",
			selector: "[dev = true]",
			want:     "miette \"2.0.0\" dev=true\n",
		},
		{
			name:     "missing_property",
			selector: "[prop(does_not_exist)]",
			want:     "",
		},
		{
			name:     "top_child_not_nested",
			selector: "top() > name",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			document := loadDocument(t, "package.kdl")
			got, err := Select(tt.selector, document)
			if err != nil {
				t.Fatalf("Select(%q) error = %v", tt.selector, err)
			}
			if diff := cmp.Diff(tt.want, render(t, got)); diff != "" {
				t.Fatalf("Select(%q) mismatch (-want +got):\n%s", tt.selector, diff)
			}
		})
	}
}

func TestSelectWebsite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		selector string
		want     string
	}{
		{
			name:     "descendant_child",
			selector: "html > body section > h2",
			want:     "h2 \"Design and Discussion\"\nh2 \"Design Principles\"\n",
		},
		{
			name:     "general_sibling",
			selector: "html > head meta ~ title",
			want:     "title \"kdl - Kat's Document Language\"\n",
		},
		{
			name:     "adjacent_sibling",
			selector: "html body h2 + ol",
			want: "ol {\n    li \"Maintainability\"\n    li \"Flexibility\"\n" +
				"    li \"Cognitive simplicity and Learnability\"\n    li \"Ease of de/serialization\"\n" +
				"    li \"Ease of implementation\"\n}\n",
		},
		{
			name:     "general_then_adjacent",
			selector: "html > head meta ~ title + link",
			want:     "link href=\"/styles/global.css\" rel=\"stylesheet\"\n",
		},
		{
			name:     "adjacent_then_general",
			selector: "html > head meta + meta ~ link",
			want:     "link href=\"/styles/global.css\" rel=\"stylesheet\"\n",
		},
		{
			name:     "value_chain",
			selector: `li[val() = "Flexibility"] + [val() = "Cognitive simplicity and Learnability"] ~ [val() = "Ease of implementation"]`,
			want:     "li \"Ease of implementation\"\n",
		},
		{
			name:     "adjacent_rejects_gap",
			selector: `li[val() = "Maintainability"] + [val() = "Cognitive simplicity and Learnability"]`,
			want:     "",
		},
		{
			name:     "general_accepts_gap",
			selector: `li[val() = "Maintainability"] ~ [val() = "Cognitive simplicity and Learnability"]`,
			want:     "li \"Cognitive simplicity and Learnability\"\n",
		},
		{
			name:     "adjacent_needs_predecessor",
			selector: `[] + li[val() = "Maintainability"]`,
			want:     "",
		},
		{
			name:     "general_takes_nearest_match",
			selector: `meta[charset] + meta ~ link`,
			want:     "",
		},
		{
			name:     "children_of_matches",
			selector: "html > []",
			want:     render(t, loadDocument(t, "website.kdl")[0].Children),
		},
		{
			name:     "name_prefix_breadth_first",
			selector: `[name() ^= "h"]`,
			want: render(t, func() []*kdl.Node {
				html := loadDocument(t, "website.kdl")[0]
				head, main := html.Children[0], html.Children[1].Children[0]
				header := main.Children[0]
				return []*kdl.Node{html, head, header, header.Children[0], main.Children[2].Children[0], main.Children[3].Children[0]}
			}()),
		},
		{
			name:     "name_equal",
			selector: `[name() = "title"]`,
			want:     "title \"kdl - Kat's Document Language\"\n",
		},
		{
			name:     "name_contains",
			selector: `head > [name() *= "itl"]`,
			want:     "title \"kdl - Kat's Document Language\"\n",
		},
		{
			name:     "name_ends_with",
			selector: `main > [name() $= "der"]`,
			want:     "header {\n    h1 \"kdl - Kat's Document Language\"\n}\n",
		},
		{
			name:     "name_not_equal",
			selector: `head > [name() != "meta"]`,
			want:     "title \"kdl - Kat's Document Language\"\nlink href=\"/styles/global.css\" rel=\"stylesheet\"\n",
		},
		{name: "name_ordering_never_matches", selector: `[name() > "a"]`, want: ""},
		{name: "name_non_string_never_matches", selector: `[name() = 1]`, want: ""},
		{name: "direct_name_never_matches", selector: `[name()]`, want: ""},
		{name: "tag_never_matches", selector: `[tag()]`, want: ""},
		{name: "tag_expression_never_matches", selector: `[tag() = "a"]`, want: ""},
		{name: "props_never_matches", selector: `[props()]`, want: ""},
		{name: "values_never_matches", selector: `[values() = "a"]`, want: ""},
		{name: "type_tag_accessor_never_matches", selector: `(author)`, want: ""},
		{name: "type_tag_in_chain_never_matches", selector: `() ~ title`, want: ""},
		{
			name:     "string_property_against_integer",
			selector: "meta[charset = 1]",
			want:     "",
		},
		{
			name:     "string_property_against_integer_ordering",
			selector: "meta[charset >= 1]",
			want:     "",
		},
		{
			name:     "identifier_and_value_index",
			selector: `section[id ^= "design"] > h2[val(0)]`,
			want:     "h2 \"Design and Discussion\"\nh2 \"Design Principles\"\n",
		},
		{
			name:     "value_index_out_of_range",
			selector: "h2[val(1)]",
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			document := loadDocument(t, "website.kdl")
			got, err := Select(tt.selector, document)
			if err != nil {
				t.Fatalf("Select(%q) error = %v", tt.selector, err)
			}
			if diff := cmp.Diff(tt.want, render(t, got)); diff != "" {
				t.Fatalf("Select(%q) mismatch (-want +got):\n%s", tt.selector, diff)
			}
		})
	}
}

func TestTopReturnsDocument(t *testing.T) {
	t.Parallel()

	document := loadDocument(t, "website.kdl")
	for _, sel := range []string{"top()", "top() > []", "top() []", "", "   "} {
		got, err := Select(sel, document)
		if err != nil {
			t.Fatalf("Select(%q) error = %v", sel, err)
		}
		if len(got) != len(document) {
			t.Fatalf("Select(%q) returned %d nodes, want %d", sel, len(got), len(document))
		}
		for i := range got {
			if got[i] != document[i] {
				t.Fatalf("Select(%q)[%d] is not the document node", sel, i)
			}
		}
	}
}

func TestTopHasNoDepth(t *testing.T) {
	t.Parallel()

	documents := []string{
		"a; b { c }; d 1",
		"single",
		"",
		"x { y { z } }\nx",
	}

	for _, src := range documents {
		document := parseDocument(t, src)

		child, err := Select("top() > []", document)
		if err != nil {
			t.Fatalf("Select() error = %v", err)
		}
		descendant, err := Select("top() []", document)
		if err != nil {
			t.Fatalf("Select() error = %v", err)
		}
		if diff := cmp.Diff(render(t, child), render(t, descendant)); diff != "" {
			t.Fatalf("top() > [] and top() [] differ for %q (-child +descendant):\n%s", src, diff)
		}
	}
}

func TestSelectDoesNotRevisit(t *testing.T) {
	t.Parallel()

	document := parseDocument(t, "a {\n    a {\n        b 1\n    }\n    b 2\n}\n")

	tests := []struct {
		selector string
		want     string
	}{
		{selector: "a", want: render(t, []*kdl.Node{document[0], document[0].Children[0]})},
		{selector: "a b", want: "b 2\nb 1\n"},
		{selector: "a > b", want: "b 2\nb 1\n"},
		{selector: "a [val() > 0]", want: "b 2\nb 1\n"},
		{selector: "a a", want: "a {\n    b 1\n}\n"},
	}

	for _, tt := range tests {
		got, err := Select(tt.selector, document)
		if err != nil {
			t.Fatalf("Select(%q) error = %v", tt.selector, err)
		}
		if diff := cmp.Diff(tt.want, render(t, got)); diff != "" {
			t.Fatalf("Select(%q) mismatch (-want +got):\n%s", tt.selector, diff)
		}
	}
}

func TestSelectNumericComparisons(t *testing.T) {
	t.Parallel()

	document := parseDocument(t, "item price=10\nitem price=20\nitem price=15.5\nitem price=\"30\"\n")

	tests := []struct {
		selector string
		want     string
	}{
		{selector: "[price > 12]", want: "item price=20\n"},
		{selector: "[price >= 10]", want: "item price=10\nitem price=20\n"},
		{selector: "[price < 20.0]", want: "item price=15.5\n"},
		{selector: "[price = 15.5]", want: "item price=15.5\n"},
		{selector: "[price != 10]", want: "item price=20\n"},
		{selector: `[price = "30"]`, want: "item price=\"30\"\n"},
		{selector: `[price > "1"]`, want: ""},
	}

	for _, tt := range tests {
		got, err := Select(tt.selector, document)
		if err != nil {
			t.Fatalf("Select(%q) error = %v", tt.selector, err)
		}
		if diff := cmp.Diff(tt.want, render(t, got)); diff != "" {
			t.Fatalf("Select(%q) mismatch (-want +got):\n%s", tt.selector, diff)
		}
	}
}

func TestSelectDoesNotMutate(t *testing.T) {
	t.Parallel()

	document := loadDocument(t, "website.kdl")
	before := render(t, document)

	for _, sel := range []string{"html > body section > h2", "li + li ~ li", "[name() ^= \"h\"]", "section > []"} {
		if _, err := Select(sel, document); err != nil {
			t.Fatalf("Select(%q) error = %v", sel, err)
		}
	}

	if after := render(t, document); after != before {
		t.Fatal("Select() modified the document")
	}
}

func TestCompile(t *testing.T) {
	t.Parallel()

	q, err := Compile("  a  >  b ~ c[val(1) = 2] ")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if got, want := q.String(), "a > b ~ c[val(1) = 2]"; got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
	if q.IsIdentity() {
		t.Fatal("IsIdentity() = true, want false")
	}

	empty, err := Compile(" \t ")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if !empty.IsIdentity() {
		t.Fatal("IsIdentity() = false for blank selector")
	}

	reserved, err := Compile("[tag()] > (author)")
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if diff := cmp.Diff([]string{"tag()", "(author)"}, reserved.Reserved()); diff != "" {
		t.Fatalf("Reserved() mismatch (-want +got):\n%s", diff)
	}

	if _, err := Compile("[unterminated"); !errors.Is(err, selector.ErrSyntax) {
		t.Fatalf("Compile() error = %v, want selector.ErrSyntax", err)
	}
}
