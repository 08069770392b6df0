package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/sparkwave/painel_admin_go/internal/core"
	appLogger "github.com/sparkwave/painel_admin_go/internal/core/logger"
)

// DataInput abstrai a fonte de uma tabela exportável.
type DataInput interface {
	Headers() []string
	Rows() [][]string
	SheetName() string
}

// TableInput é um DataInput em memória.
type TableInput struct {
	headers []string
	rows    [][]string
	sheet   string
}

// NewTableInput cria um TableInput. headers não pode ser vazio.
func NewTableInput(headers []string, rows [][]string, sheetName string) (*TableInput, error) {
	if len(headers) == 0 {
		return nil, fmt.Errorf("%w: tabela sem cabeçalhos", core.ErrInvalidInput)
	}
	if sheetName == "" {
		sheetName = "Dados"
	}
	if rows == nil {
		rows = [][]string{}
	}
	return &TableInput{headers: headers, rows: rows, sheet: sheetName}, nil
}

func (t *TableInput) Headers() []string { return t.headers }
func (t *TableInput) Rows() [][]string  { return t.rows }
func (t *TableInput) SheetName() string { return t.sheet }

// ExportOptions contém opções para a exportação.
type ExportOptions struct {
	CreateBackup bool
	// ColumnWidths em caracteres, por índice de coluna (0-based). Ausente = largura calculada.
	ColumnWidths map[int]float64
}

// csvEncoder devolve o encoder para APP_EXPORT_CSV_ENCODING; nil significa UTF-8.
func csvEncoder(name string) (*encoding.Encoder, error) {
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return nil, nil
	case "windows-1252", "cp1252":
		// Caracteres fora da página de código viram '?' em vez de abortar a exportação.
		return encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder()), nil
	}
	return nil, fmt.Errorf("%w: codificação de CSV não suportada: %s", core.ErrExport, name)
}

// ExportToCSV grava input em CSV delimitado por ';' dentro de cfg.ExportDir (caminhos relativos).
func ExportToCSV(input DataInput, outputPath string, cfg *core.Config, opts *ExportOptions) (string, error) {
	if opts == nil {
		opts = &ExportOptions{}
	}
	enc, err := csvEncoder(cfg.ExportCSVEncoding)
	if err != nil {
		return "", err
	}
	finalPath, err := prepareOutput(outputPath, cfg.ExportDir, ".csv", opts.CreateBackup)
	if err != nil {
		return "", err
	}

	file, err := os.Create(finalPath)
	if err != nil {
		return "", core.WrapErrorf(core.ErrExport, "falha ao criar arquivo CSV '%s': %v", finalPath, err)
	}
	defer file.Close()

	var out io.Writer = file
	var tw io.WriteCloser
	if enc != nil {
		tw = transform.NewWriter(file, enc)
		out = tw
	}

	writer := csv.NewWriter(out)
	writer.Comma = ';'

	if err := writer.Write(input.Headers()); err != nil {
		return "", core.WrapErrorf(core.ErrExport, "falha ao escrever cabeçalhos CSV: %v", err)
	}
	for _, row := range input.Rows() {
		if err := writer.Write(row); err != nil {
			return "", core.WrapErrorf(core.ErrExport, "falha ao escrever linha CSV: %v", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", core.WrapErrorf(core.ErrExport, "falha ao dar flush no writer CSV: %v", err)
	}
	if tw != nil {
		if err := tw.Close(); err != nil {
			return "", core.WrapErrorf(core.ErrExport, "falha ao codificar CSV: %v", err)
		}
	}
	appLogger.Infof("Dados exportados para CSV: %s (%d linhas)", finalPath, len(input.Rows()))
	return finalPath, nil
}

// ExportToXLSX grava uma planilha por input.
func ExportToXLSX(inputs []DataInput, outputPath string, cfg *core.Config, opts *ExportOptions) (string, error) {
	if len(inputs) == 0 {
		return "", fmt.Errorf("%w: nenhuma tabela para exportar", core.ErrExport)
	}
	if opts == nil {
		opts = &ExportOptions{}
	}
	finalPath, err := prepareOutput(outputPath, cfg.ExportDir, ".xlsx", opts.CreateBackup)
	if err != nil {
		return "", err
	}

	xlsx := excelize.NewFile()
	defer func() {
		if err := xlsx.Close(); err != nil {
			appLogger.Errorf("Erro ao fechar arquivo XLSX: %v", err)
		}
	}()

	headerStyle, err := xlsx.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#050A30"}, Pattern: 1},
		Font:      &excelize.Font{Color: "FFFFFF", Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return "", core.WrapErrorf(core.ErrExport, "falha ao criar estilo de cabeçalho: %v", err)
	}

	defaultSheet := xlsx.GetSheetName(0)
	for i, input := range inputs {
		sheetName := input.SheetName()
		if sheetName == "" {
			sheetName = fmt.Sprintf("Planilha%d", i+1)
		}
		if i == 0 {
			if err := xlsx.SetSheetName(defaultSheet, sheetName); err != nil {
				return "", core.WrapErrorf(core.ErrExport, "falha ao renomear planilha: %v", err)
			}
		} else if _, err := xlsx.NewSheet(sheetName); err != nil {
			return "", core.WrapErrorf(core.ErrExport, "falha ao criar planilha '%s': %v", sheetName, err)
		}

		if err := writeSheet(xlsx, sheetName, input, headerStyle, opts.ColumnWidths); err != nil {
			return "", err
		}
	}
	xlsx.SetActiveSheet(0)

	if err := xlsx.SaveAs(finalPath); err != nil {
		return "", core.WrapErrorf(core.ErrExport, "falha ao salvar arquivo XLSX '%s': %v", finalPath, err)
	}
	appLogger.Infof("Dados exportados para XLSX: %s", finalPath)
	return finalPath, nil
}

var numericCell = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

func writeSheet(xlsx *excelize.File, sheet string, input DataInput, headerStyle int, widths map[int]float64) error {
	headers := input.Headers()
	maxLen := make([]int, len(headers))
	for colIdx, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(colIdx+1, 1)
		if err := xlsx.SetCellValue(sheet, cell, h); err != nil {
			return core.WrapErrorf(core.ErrExport, "falha ao escrever cabeçalho: %v", err)
		}
		maxLen[colIdx] = utf8.RuneCountInString(h)
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := xlsx.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return core.WrapErrorf(core.ErrExport, "falha ao aplicar estilo: %v", err)
	}

	for rowIdx, row := range input.Rows() {
		for colIdx, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			var v interface{} = value
			// IDs e contagens viram números; IPs e datas continuam texto.
			if numericCell.MatchString(value) {
				if n, err := strconv.ParseFloat(value, 64); err == nil {
					v = n
				}
			}
			if err := xlsx.SetCellValue(sheet, cell, v); err != nil {
				return core.WrapErrorf(core.ErrExport, "falha ao escrever célula %s: %v", cell, err)
			}
			if colIdx < len(maxLen) {
				if l := utf8.RuneCountInString(value); l > maxLen[colIdx] {
					maxLen[colIdx] = l
				}
			}
		}
	}

	for colIdx := range headers {
		width, ok := widths[colIdx]
		if !ok {
			width = float64(maxLen[colIdx] + 2)
			if width > 60 {
				width = 60
			}
		}
		col, _ := excelize.ColumnNumberToName(colIdx + 1)
		if err := xlsx.SetColWidth(sheet, col, col, width); err != nil {
			return core.WrapErrorf(core.ErrExport, "falha ao ajustar largura da coluna %s: %v", col, err)
		}
	}
	return nil
}

// SaveStream grava r como filename dentro de exportDir (usado pelos downloads de CSV do servidor).
// filename é reduzido ao nome base para não escapar do diretório.
func SaveStream(r io.Reader, filename, exportDir string, createBackup bool) (string, int64, error) {
	name := filepath.Base(filepath.Clean(strings.TrimSpace(filename)))
	if name == "." || name == ".." || name == string(filepath.Separator) || name == "" {
		return "", 0, fmt.Errorf("%w: nome de arquivo inválido '%s'", core.ErrExport, filename)
	}
	finalPath, err := prepareOutput(name, exportDir, filepath.Ext(name), createBackup)
	if err != nil {
		return "", 0, err
	}
	if !insideDir(exportDir, finalPath) {
		return "", 0, fmt.Errorf("%w: '%s' fica fora do diretório de exportação", core.ErrExport, filename)
	}
	tempPath := finalPath + ".part"
	file, err := os.Create(tempPath)
	if err != nil {
		return "", 0, core.WrapErrorf(core.ErrExport, "falha ao criar arquivo '%s': %v", tempPath, err)
	}
	n, copyErr := io.Copy(file, r)
	closeErr := file.Close()
	if copyErr != nil || closeErr != nil {
		_ = os.Remove(tempPath)
		if copyErr == nil {
			copyErr = closeErr
		}
		return "", 0, core.WrapErrorf(core.ErrExport, "falha ao gravar download: %v", copyErr)
	}
	if err := os.Rename(tempPath, finalPath); err != nil {
		_ = os.Remove(tempPath)
		return "", 0, core.WrapErrorf(core.ErrExport, "falha ao mover download para '%s': %v", finalPath, err)
	}
	appLogger.Infof("Arquivo salvo: %s (%d bytes)", finalPath, n)
	return finalPath, n, nil
}

// --- Funções Utilitárias Internas ---

// prepareOutput resolve o caminho final, cria o diretório e faz backup se pedido.
func prepareOutput(path, defaultDir, defaultExt string, backup bool) (string, error) {
	p := filepath.Clean(path)
	if !filepath.IsAbs(p) {
		absDefaultDir, err := filepath.Abs(defaultDir)
		if err != nil {
			return "", core.WrapErrorf(core.ErrExport, "diretório de exportação inválido '%s': %v", defaultDir, err)
		}
		p = filepath.Join(absDefaultDir, p)
	}
	if filepath.Ext(p) == "" && defaultExt != "" {
		p += defaultExt
	}
	if err := os.MkdirAll(filepath.Dir(p), os.ModePerm); err != nil {
		return "", core.WrapErrorf(core.ErrExport, "não foi possível criar diretório de exportação '%s': %v", filepath.Dir(p), err)
	}
	if backup && fileExists(p) {
		if err := createBackup(p); err != nil {
			return "", core.WrapErrorf(core.ErrExport, "falha ao criar backup de '%s': %v", p, err)
		}
	}
	return p, nil
}

// insideDir diz se path está dentro de dir depois de resolvidos os dois caminhos.
func insideDir(dir, path string) bool {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(absDir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func createBackup(path string) error {
	timestamp := time.Now().Format("20060102_150405")
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	backupPath := fmt.Sprintf("%s_backup_%s%s", base, timestamp, ext)

	if err := os.Rename(path, backupPath); err != nil {
		return err
	}
	appLogger.Infof("Backup criado: %s", backupPath)
	return nil
}
