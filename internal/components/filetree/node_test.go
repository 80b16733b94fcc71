package filetree

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNode(t *testing.T) {
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.go")
	require.NoError(t, os.WriteFile(testFile, []byte("package main"), 0644))

	t.Run("creates node for directory", func(t *testing.T) {
		node, err := NewNode(tmpDir, nil)
		require.NoError(t, err)

		assert.True(t, node.IsDir)
		assert.Equal(t, filepath.Base(tmpDir), node.Name)
		assert.Equal(t, tmpDir, node.Path)
		assert.Equal(t, 0, node.Depth)
		assert.Nil(t, node.Parent)
	})

	t.Run("creates node for file", func(t *testing.T) {
		parent := &Node{Path: tmpDir, Depth: 0}
		node, err := NewNode(testFile, parent)
		require.NoError(t, err)

		assert.False(t, node.IsDir)
		assert.Equal(t, "test.go", node.Name)
		assert.Equal(t, 1, node.Depth)
		assert.Equal(t, parent, node.Parent)
	})

	t.Run("returns error for non-existent path", func(t *testing.T) {
		_, err := NewNode("/non/existent/path", nil)
		assert.Error(t, err)
	})
}

func TestNewRootNode(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("creates expanded root node", func(t *testing.T) {
		node, err := NewRootNode(tmpDir)
		require.NoError(t, err)

		assert.True(t, node.IsDir)
		assert.True(t, node.Expanded)
		assert.Equal(t, 0, node.Depth)
	})

	t.Run("resolves relative paths", func(t *testing.T) {
		cwd, _ := os.Getwd()

		node, err := NewRootNode(".")
		require.NoError(t, err)

		assert.Equal(t, cwd, node.Path)
	})
}

func TestLoadChildren(t *testing.T) {
	tmpDir := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, "subdir"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "file1.txt"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "file2.go"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, ".hidden"), []byte(""), 0644))

	t.Run("loads children with directories first", func(t *testing.T) {
		node, err := NewRootNode(tmpDir)
		require.NoError(t, err)

		require.NoError(t, node.LoadChildren())

		assert.True(t, node.Loaded)
		require.Len(t, node.Children, 4)
		assert.True(t, node.Children[0].IsDir)
		assert.Equal(t, "subdir", node.Children[0].Name)
		assert.Equal(t, ".hidden", node.Children[1].Name)
		assert.Equal(t, "file1.txt", node.Children[2].Name)
		assert.Equal(t, "file2.go", node.Children[3].Name)
	})

	t.Run("sets correct depth for children", func(t *testing.T) {
		node, _ := NewRootNode(tmpDir)
		node.LoadChildren()

		for _, child := range node.Children {
			assert.Equal(t, 1, child.Depth)
			assert.Equal(t, node, child.Parent)
		}
	})

	t.Run("does nothing for files", func(t *testing.T) {
		fileNode := &Node{Path: filepath.Join(tmpDir, "file1.txt"), IsDir: false}
		err := fileNode.LoadChildren()

		assert.NoError(t, err)
		assert.Nil(t, fileNode.Children)
	})
}

func TestNodeProperties(t *testing.T) {
	t.Run("IsHidden", func(t *testing.T) {
		hidden := &Node{Name: ".gitignore"}
		notHidden := &Node{Name: "main.go"}

		assert.True(t, hidden.IsHidden())
		assert.False(t, notHidden.IsHidden())
	})

	t.Run("Extension", func(t *testing.T) {
		goFile := &Node{Name: "main.go", IsDir: false}
		txtFile := &Node{Name: "README.TXT", IsDir: false}
		noExt := &Node{Name: "Makefile", IsDir: false}
		dir := &Node{Name: "src", IsDir: true}

		assert.Equal(t, ".go", goFile.Extension())
		assert.Equal(t, ".txt", txtFile.Extension()) // lowercase
		assert.Equal(t, "", noExt.Extension())
		assert.Equal(t, "", dir.Extension())
	})

	t.Run("RelativePath", func(t *testing.T) {
		node := &Node{Path: "/project/src/main.go"}

		assert.Equal(t, filepath.Join("src", "main.go"), node.RelativePath("/project"))
	})
}

func TestToggleExpandCollapse(t *testing.T) {
	dir := &Node{Name: "dir", IsDir: true, Expanded: false}
	file := &Node{Name: "file.go", IsDir: false}

	t.Run("Toggle toggles directory expansion", func(t *testing.T) {
		dir.Toggle()
		assert.True(t, dir.Expanded)

		dir.Toggle()
		assert.False(t, dir.Expanded)
	})

	t.Run("Toggle does nothing for files", func(t *testing.T) {
		file.Toggle()
		assert.False(t, file.Expanded)
	})

	t.Run("Collapse collapses directory", func(t *testing.T) {
		dir.Expanded = true
		dir.Collapse()
		assert.False(t, dir.Expanded)
	})
}

func TestExpand(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "test.go"), []byte(""), 0644))

	t.Run("Expand loads children and expands", func(t *testing.T) {
		node, _ := NewRootNode(tmpDir)
		node.Expanded = false
		node.Loaded = false

		require.NoError(t, node.Expand())

		assert.True(t, node.Expanded)
		assert.True(t, node.Loaded)
		assert.NotEmpty(t, node.Children)
	})

	t.Run("Expand does nothing for files", func(t *testing.T) {
		file := &Node{Name: "file.go", IsDir: false}
		err := file.Expand()

		assert.NoError(t, err)
		assert.False(t, file.Expanded)
	})
}

func TestFlatten(t *testing.T) {
	root := &Node{Name: "root", IsDir: true, Expanded: true, Depth: 0}
	dir1 := &Node{Name: "src", IsDir: true, Expanded: true, Parent: root, Depth: 1}
	dir2 := &Node{Name: "test", IsDir: true, Expanded: false, Parent: root, Depth: 1}
	file1 := &Node{Name: "main.go", IsDir: false, Parent: dir1, Depth: 2}
	file2 := &Node{Name: "README.md", IsDir: false, Parent: root, Depth: 1}
	hidden := &Node{Name: ".gitignore", IsDir: false, Parent: root, Depth: 1}

	dir1.Children = []*Node{file1}
	root.Children = []*Node{dir1, dir2, hidden, file2}

	t.Run("flattens visible nodes", func(t *testing.T) {
		flat := root.Flatten(false)

		require.Len(t, flat, 5)
		assert.Equal(t, "root", flat[0].Name)
		assert.Equal(t, "src", flat[1].Name)
		assert.Equal(t, "main.go", flat[2].Name)
		assert.Equal(t, "test", flat[3].Name)
		assert.Equal(t, "README.md", flat[4].Name)
	})

	t.Run("includes hidden when showHidden is true", func(t *testing.T) {
		flat := root.Flatten(true)

		assert.Len(t, flat, 6)
	})

	t.Run("respects collapsed directories", func(t *testing.T) {
		dir2.Children = []*Node{{Name: "test.go", IsDir: false, Parent: dir2, Depth: 2}}
		dir2.Loaded = true

		flat := root.Flatten(false)

		for _, n := range flat {
			assert.NotEqual(t, "test.go", n.Name)
		}
	})

	t.Run("always skips the git directory", func(t *testing.T) {
		gitDir := &Node{Name: ".git", IsDir: true, Parent: root, Depth: 1}
		root.Children = append(root.Children, gitDir)

		flat := root.Flatten(true)

		for _, n := range flat {
			assert.NotEqual(t, ".git", n.Name)
		}
	})
}

func TestFindByPath(t *testing.T) {
	root := &Node{Path: "/project", IsDir: true}
	child := &Node{Path: "/project/src", IsDir: true, Parent: root}
	grandchild := &Node{Path: "/project/src/main.go", IsDir: false, Parent: child}

	child.Children = []*Node{grandchild}
	root.Children = []*Node{child}

	t.Run("finds root", func(t *testing.T) {
		found := root.FindByPath("/project")
		assert.Equal(t, root, found)
	})

	t.Run("finds nested node", func(t *testing.T) {
		found := root.FindByPath("/project/src/main.go")
		assert.Equal(t, grandchild, found)
	})

	t.Run("returns nil for not found", func(t *testing.T) {
		found := root.FindByPath("/nonexistent")
		assert.Nil(t, found)
	})
}

func TestSortChildren(t *testing.T) {
	nodes := []*Node{
		{Name: "zeta.go", IsDir: false},
		{Name: "Alpha", IsDir: true},
		{Name: "beta.go", IsDir: false},
		{Name: "omega", IsDir: true},
	}

	sortChildren(nodes)

	assert.Equal(t, "Alpha", nodes[0].Name)
	assert.Equal(t, "omega", nodes[1].Name)
	assert.Equal(t, "beta.go", nodes[2].Name)
	assert.Equal(t, "zeta.go", nodes[3].Name)
}
