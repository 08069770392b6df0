package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sparkwave/painel_admin_go/internal/core"
)

func sampleTable(t *testing.T) *TableInput {
	t.Helper()
	in, err := NewTableInput(
		[]string{"ID", "Usuário", "Status"},
		[][]string{{"1", "joão", "Ativo"}, {"2", "maria", "Inativo"}},
		"Usuários",
	)
	require.NoError(t, err)
	return in
}

func TestNewTableInputRequiresHeaders(t *testing.T) {
	_, err := NewTableInput(nil, nil, "")
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestExportToCSVUTF8(t *testing.T) {
	cfg := &core.Config{ExportDir: t.TempDir(), ExportCSVEncoding: "utf-8"}

	path, err := ExportToCSV(sampleTable(t), "usuarios", cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, ".csv", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID;Usuário;Status", lines[0])
	assert.Equal(t, "1;joão;Ativo", lines[1])
}

func TestExportToCSVWindows1252(t *testing.T) {
	cfg := &core.Config{ExportDir: t.TempDir(), ExportCSVEncoding: "windows-1252"}

	path, err := ExportToCSV(sampleTable(t), "usuarios.csv", cfg, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	// 'á' = 0xE1 e 'ã' = 0xE3 em Windows-1252
	assert.True(t, bytes.Contains(data, []byte{'U', 's', 'u', 0xE1, 'r', 'i', 'o'}))
	assert.True(t, bytes.Contains(data, []byte{'j', 'o', 0xE3, 'o'}))
}

func TestExportToCSVUnsupportedEncoding(t *testing.T) {
	cfg := &core.Config{ExportDir: t.TempDir(), ExportCSVEncoding: "latin-9"}
	_, err := ExportToCSV(sampleTable(t), "x", cfg, nil)
	assert.ErrorIs(t, err, core.ErrExport)
}

func TestExportToCSVBackup(t *testing.T) {
	dir := t.TempDir()
	cfg := &core.Config{ExportDir: dir}

	_, err := ExportToCSV(sampleTable(t), "usuarios.csv", cfg, nil)
	require.NoError(t, err)
	_, err = ExportToCSV(sampleTable(t), "usuarios.csv", cfg, &ExportOptions{CreateBackup: true})
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(dir, "usuarios_backup_*.csv"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestExportToXLSX(t *testing.T) {
	cfg := &core.Config{ExportDir: t.TempDir()}

	path, err := ExportToXLSX([]DataInput{sampleTable(t)}, "pagina", cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, ".xlsx", filepath.Ext(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, "Usuários", f.GetSheetName(0))
	rows, err := f.GetRows("Usuários")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"ID", "Usuário", "Status"}, rows[0])
	assert.Equal(t, []string{"2", "maria", "Inativo"}, rows[2])
}

func TestExportToXLSXWithoutInputs(t *testing.T) {
	_, err := ExportToXLSX(nil, "vazio", &core.Config{ExportDir: t.TempDir()}, nil)
	assert.ErrorIs(t, err, core.ErrExport)
}

func TestSaveStreamKeepsBaseName(t *testing.T) {
	dir := t.TempDir()

	path, n, err := SaveStream(strings.NewReader("a;b\n"), "../../etc/usuarios_sparkwave.csv", dir, false)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.Equal(t, filepath.Join(dir, "usuarios_sparkwave.csv"), path)

	_, err = os.Stat(path + ".part")
	assert.True(t, os.IsNotExist(err))
}

func TestSaveStreamRejectsParentDirName(t *testing.T) {
	root := t.TempDir()
	exportDir := filepath.Join(root, "exports")

	for _, name := range []string{"..", " .. ", "../..", "/", "."} {
		path, _, err := SaveStream(strings.NewReader("x;y\n"), name, exportDir, false)
		assert.ErrorIs(t, err, core.ErrExport, name)
		assert.Empty(t, path, name)
	}

	entries, err := os.ReadDir(root)
	require.NoError(t, err)
	for _, e := range entries {
		assert.Equal(t, "exports", e.Name(), "nada deve ser gravado fora do diretório de exportação")
	}
}

func TestInsideDir(t *testing.T) {
	dir := t.TempDir()
	assert.True(t, insideDir(dir, filepath.Join(dir, "a.csv")))
	assert.False(t, insideDir(dir, filepath.Join(dir, "..", "a.csv")))
	assert.False(t, insideDir(dir, filepath.Dir(dir)))
	assert.True(t, insideDir(dir, filepath.Join(dir, "..a.csv")))
}
