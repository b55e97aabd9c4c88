package vfs

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

const sampleTree = `{
  "path": "/",
  "type": "folder",
  "name": "",
  "children": [
    {
      "path": "/home",
      "type": "folder",
      "name": "home",
      "children": [
        {
          "path": "/home/drake",
          "type": "folder",
          "name": "drake",
          "children": [
            {"path": "/home/drake/About.md", "type": "file", "name": "About.md", "fileType": "markdown", "content": "# About"},
            {"path": "/home/drake/.secret", "type": "folder", "name": ".secret", "children": [
              {"path": "/home/drake/.secret/key.txt", "type": "file", "name": "key.txt", "content": "hunter2"}
            ]},
            {"path": "/home/drake/Projects", "type": "folder", "name": "Projects"},
            {"path": "/home/drake/notes.txt", "type": "file", "name": "notes.txt", "hidden": true},
            {"path": "/home/drake/banana.sh", "type": "file", "name": "banana.sh", "content": "echo hi"}
          ]
        }
      ]
    }
  ]
}`

func loadSample(t *testing.T) *Tree {
	t.Helper()
	tree, err := Parse([]byte(sampleTree), Options{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return tree
}

func names(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func TestParseIndexesEveryNode(t *testing.T) {
	tree := loadSample(t)
	if tree.Count() != 9 {
		t.Errorf("expected 9 nodes, got %d", tree.Count())
	}

	tree.Walk(func(n, parent *Node) bool {
		if got := tree.GetNode(n.Path); got != n {
			t.Errorf("GetNode(%q) did not return the indexed node", n.Path)
		}
		gotParent := tree.GetParent(n.Path)
		if gotParent != parent {
			t.Errorf("GetParent(%q) = %v, want %v", n.Path, gotParent, parent)
		}
		if parent != nil {
			found := false
			for _, c := range parent.Children {
				if c == n {
					found = true
				}
			}
			if !found {
				t.Errorf("parent of %q does not contain it", n.Path)
			}
		}
		return true
	})

	if tree.GetParent("/") != nil {
		t.Error("expected root to have no parent")
	}
}

func TestQueriesOnAbsentPaths(t *testing.T) {
	tree := loadSample(t)
	if tree.Exists("/nope") {
		t.Error("expected /nope to be absent")
	}
	if tree.GetNode("/nope") != nil || tree.GetParent("/nope") != nil {
		t.Error("expected nil nodes for absent path")
	}
	if tree.IsFolder("/nope") {
		t.Error("absent path must not be a folder")
	}
	if got := tree.ListChildren("/nope", true); len(got) != 0 {
		t.Errorf("expected no children for absent path, got %v", names(got))
	}
	if got := tree.ListChildren("/home/drake/About.md", true); len(got) != 0 {
		t.Errorf("expected no children for a file, got %v", names(got))
	}
}

func TestListChildrenHiddenFiltering(t *testing.T) {
	tree := loadSample(t)

	visible := names(tree.ListChildren("/home/drake", false))
	wantVisible := []string{"Projects", "About.md", "banana.sh"}
	if !reflect.DeepEqual(visible, wantVisible) {
		t.Errorf("visible children = %v, want %v", visible, wantVisible)
	}

	all := names(tree.ListChildren("/home/drake", true))
	wantAll := []string{".secret", "Projects", "About.md", "banana.sh", "notes.txt"}
	if !reflect.DeepEqual(all, wantAll) {
		t.Errorf("all children = %v, want %v", all, wantAll)
	}
}

func TestListChildrenHiddenFolderBeforeFile(t *testing.T) {
	src := `{"path": "/", "type": "folder", "name": "", "children": [
	  {"path": "/home", "type": "folder", "name": "home", "children": [
	    {"path": "/home/drake", "type": "folder", "name": "drake", "children": [
	      {"path": "/home/drake/About.md", "type": "file", "name": "About.md"},
	      {"path": "/home/drake/.secret", "type": "folder", "name": ".secret"}
	    ]}
	  ]}
	]}`
	tree, err := Parse([]byte(src), Options{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := names(tree.ListChildren("/home/drake", false)); !reflect.DeepEqual(got, []string{"About.md"}) {
		t.Errorf("expected [About.md], got %v", got)
	}
	if got := names(tree.ListChildren("/home/drake", true)); !reflect.DeepEqual(got, []string{".secret", "About.md"}) {
		t.Errorf("expected [.secret About.md], got %v", got)
	}
}

func TestListChildrenIsDeterministic(t *testing.T) {
	tree := loadSample(t)
	first := names(tree.ListChildren("/home/drake", true))
	second := names(tree.ListChildren("/home/drake", true))
	if !reflect.DeepEqual(first, second) {
		t.Errorf("listing changed between calls: %v vs %v", first, second)
	}
}

func TestListChildrenUsesCollation(t *testing.T) {
	src := `{"path": "/", "type": "folder", "name": "", "children": [
	  {"path": "/Banana.txt", "type": "file", "name": "Banana.txt"},
	  {"path": "/apple.txt", "type": "file", "name": "apple.txt"},
	  {"path": "/cherry.txt", "type": "file", "name": "cherry.txt"}
	]}`
	tree, err := Parse([]byte(src), Options{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	got := names(tree.ListChildren("/", false))
	want := []string{"apple.txt", "Banana.txt", "cherry.txt"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("collated order = %v, want %v", got, want)
	}
}

func TestBuildRejectsInvalidTrees(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "malformed json", src: `{"path": "/"`},
		{name: "path mismatch", src: `{"path": "/", "type": "folder", "children": [
			{"path": "/elsewhere/a", "type": "file", "name": "a"}]}`},
		{name: "duplicate path", src: `{"path": "/", "type": "folder", "children": [
			{"path": "/a", "type": "file", "name": "a"},
			{"path": "/a", "type": "file", "name": "a"}]}`},
		{name: "file with children", src: `{"path": "/", "type": "folder", "children": [
			{"path": "/a", "type": "file", "name": "a", "children": [
				{"path": "/a/b", "type": "file", "name": "b"}]}]}`},
		{name: "unknown type", src: `{"path": "/", "type": "symlink"}`},
		{name: "missing name", src: `{"path": "/", "type": "folder", "children": [
			{"path": "/a", "type": "file"}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := Parse([]byte(tt.src), Options{})
			if err == nil {
				t.Fatal("expected an error")
			}
			if tree != nil {
				t.Error("expected no tree on failure")
			}
			if !errors.Is(err, ErrLoadFailure) {
				t.Errorf("expected ErrLoadFailure, got %v", err)
			}
		})
	}
}

func TestBuildCollapsesRedundantSlashes(t *testing.T) {
	src := `{"path": "/", "type": "folder", "children": [
	  {"path": "//docs/", "type": "folder", "name": "docs"}]}`
	tree, err := Parse([]byte(src), Options{})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !tree.IsFolder("/docs") {
		t.Error("expected /docs to be indexed under its normalized path")
	}
}

type failingSource struct{}

func (failingSource) Fetch(context.Context) ([]byte, error) {
	return nil, errors.New("connection refused")
}

func TestLoadFetchFailure(t *testing.T) {
	tree, err := Load(context.Background(), failingSource{}, Options{})
	if tree != nil {
		t.Error("expected no tree")
	}
	if !errors.Is(err, ErrLoadFailure) {
		t.Errorf("expected ErrLoadFailure, got %v", err)
	}
}

func TestExtensionOf(t *testing.T) {
	tests := []struct {
		input  string
		output string
	}{
		{"About.md", "md"},
		{"archive.TAR.GZ", "gz"},
		{"Makefile", ""},
		{".bashrc", "bashrc"},
		{"trailing.", ""},
	}
	for _, tt := range tests {
		if got := ExtensionOf(tt.input); got != tt.output {
			t.Errorf("ExtensionOf(%q) = %q, want %q", tt.input, got, tt.output)
		}
	}
}

func TestNodeIsHidden(t *testing.T) {
	if !(&Node{Name: ".profile"}).IsHidden() {
		t.Error("expected dot-prefixed name to be hidden")
	}
	if !(&Node{Name: "notes", Hidden: true}).IsHidden() {
		t.Error("expected explicit hidden flag to hide")
	}
	if (&Node{Name: "notes"}).IsHidden() {
		t.Error("expected plain name to be visible")
	}
}
