package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/DGExport/meshio"
	"github.com/notargets/DGExport/partitions"
	"github.com/notargets/DGExport/vtk"
)

// stubMeshes replaces the mesh reader with two tets sharing a face
func stubMeshes(t *testing.T) {
	t.Helper()
	old := readMesh
	readMesh = func(string) (vtk.Mesh, error) {
		return meshio.FromVertices(
			[][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}, {1, 1, 1}},
			[][]int{{0, 1, 2, 3}, {1, 2, 3, 4}},
		)
	}
	t.Cleanup(func() { readMesh = old })
}

func testJob(output string, parts int) convertJob {
	return convertJob{
		input:    "mesh.neu",
		output:   output,
		parts:    parts,
		workers:  2,
		strategy: partitions.BlockPartition,
		opts:     []vtk.Option{vtk.WithEncoding(vtk.PackedBinary)},
		log:      logrus.NewEntry(logrus.New()),
	}
}

func TestConvertJob(t *testing.T) {
	stubMeshes(t)
	out := filepath.Join(t.TempDir(), "mesh.vtu")
	require.NoError(t, testJob(out, 0).run(context.Background()))

	var buf bytes.Buffer
	require.NoError(t, inspect(&buf, out))
	assert.Contains(t, buf.String(), "5 points, 2 cells, header UInt32, index Int32")
}

func TestConvertJobPartitioned(t *testing.T) {
	stubMeshes(t)
	dir := t.TempDir()
	require.NoError(t, testJob(filepath.Join(dir, "mesh.vtu"), 2).run(context.Background()))

	var buf bytes.Buffer
	require.NoError(t, inspect(&buf, filepath.Join(dir, "mesh.pvtu")))
	assert.Contains(t, buf.String(), "2 pieces")
	assert.Contains(t, buf.String(), "mesh_0.vtu")
	assert.Contains(t, buf.String(), "mesh_1.vtu")
	for _, piece := range []string{"mesh_0.vtu", "mesh_1.vtu"} {
		doc, err := vtk.ReadMesh(filepath.Join(dir, piece))
		require.NoError(t, err)
		assert.Equal(t, 1, doc.NumberOfCells)
		assert.Equal(t, 4, doc.NumberOfPoints)
	}
}

func TestSeriesCommand(t *testing.T) {
	stubMeshes(t)
	dir := t.TempDir()
	manifest := filepath.Join(dir, "run.toml")
	text := "output = \"out/run.pvd\"\n" +
		"[[step]]\ntime = 0.0\nmesh = \"m.neu\"\n" +
		"[[step]]\ntime = 0.25\nmesh = \"m.neu\"\n"
	require.NoError(t, os.WriteFile(manifest, []byte(text), 0644))

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs([]string{"series", manifest, "--encoding", "binary"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "(2 steps)")

	buf.Reset()
	require.NoError(t, inspect(&buf, filepath.Join(dir, "out", "run.pvd")))
	assert.Contains(t, buf.String(), "collection of 2 datasets")
	assert.Contains(t, buf.String(), "run_0001.vtu")

	doc, err := vtk.ReadMesh(filepath.Join(dir, "out", "run_0000.vtu"))
	require.NoError(t, err)
	assert.Equal(t, "appended", doc.Points.Format)
}

func TestInspectRejects(t *testing.T) {
	assert.Error(t, inspect(&bytes.Buffer{}, filepath.Join(t.TempDir(), "missing.vtu")))
}
