package vtk

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeSeries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.pvd")
	entries := []SeriesEntry{{Time: 0.0, File: "a.vtu"}, {Time: 0.1, File: "b.vtu"}}
	require.NoError(t, WriteSeries(path, entries))

	got, err := ReadSeries(path)
	require.NoError(t, err)
	assert.Equal(t, entries, got)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(raw), "<DataSet "))
	assert.Less(t, strings.Index(string(raw), "a.vtu"), strings.Index(string(raw), "b.vtu"))
	assert.Contains(t, string(raw), `timestep="0.1"`)
}

func TestTimeSeriesKeepsOrderAndEscapes(t *testing.T) {
	entries := []SeriesEntry{
		{Time: 2.5, File: "late.vtu"},
		{Time: 1.0 / 3.0, File: `dir/a&b <1>.vtu`, Part: 1},
		{Time: -1e-300, File: "neg.vtu"},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteSeriesTo(&buf, entries))
	assert.Contains(t, buf.String(), "a&amp;b &lt;1&gt;.vtu")

	path := filepath.Join(t.TempDir(), "s.pvd")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	got, err := ReadSeries(path)
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

func TestTimeSeriesEmptyAndMissingDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pvd")
	require.NoError(t, WriteSeries(path, nil))
	got, err := ReadSeries(path)
	require.NoError(t, err)
	assert.Empty(t, got)

	err = WriteSeries(filepath.Join(t.TempDir(), "no", "such.pvd"), nil)
	assert.ErrorIs(t, err, ErrIO)

	_, err = ReadSeries(filepath.Join(t.TempDir(), "absent.pvd"))
	assert.ErrorIs(t, err, ErrIO)
}

func TestReadMeshRejectsWrongType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.pvd")
	require.NoError(t, WriteSeries(path, []SeriesEntry{{Time: 0, File: "a.vtu"}}))
	_, err := ReadMesh(path)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestParallelIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mesh.pvtu")
	idx := ParallelIndex{
		PointData: SpecsOf(triangleMesh().PointData),
		CellData:  SpecsOf(triangleMesh().CellData),
		Sources:   []string{"mesh_0.vtu", "mesh_1.vtu"},
	}
	require.NoError(t, WriteParallelIndex(path, idx))

	got, err := ReadParallelIndex(path)
	require.NoError(t, err)
	assert.Equal(t, idx.Sources, got.Sources)
	assert.Equal(t, idx.PointData, got.PointData)
	assert.Equal(t, []ArraySpec{{Name: "stress", Type: Float64, Components: 9}}, got.CellData)
}
