package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"kickpredict/domain/campaign"
	"kickpredict/internal"

	"github.com/xuri/excelize/v2"
)

// DataReader handles reading XLSX and CSV campaign exports
type DataReader struct {
	cfg      ReaderConfig
	fileType string // "xlsx" or "csv"
	logger   *internal.Logger
}

// NewDataReader creates a reader for cfg.FilePath, picking the format by extension
func NewDataReader(cfg ReaderConfig) *DataReader {
	ext := strings.ToLower(filepath.Ext(cfg.FilePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	if cfg.Comma == 0 {
		cfg.Comma = ','
	}
	return &DataReader{cfg: cfg, fileType: fileType, logger: internal.DefaultLogger}
}

// Source names the file being read
func (r *DataReader) Source() string {
	return r.cfg.FilePath
}

// ReadCampaigns reads and types every data row. Unparseable amounts become
// NaN so cleaning can drop them; nothing is dropped here.
func (r *DataReader) ReadCampaigns(ctx context.Context) ([]campaign.Record, error) {
	data, err := r.ReadData()
	if err != nil {
		return nil, err
	}
	if err := requireColumns(data.Headers); err != nil {
		return nil, err
	}

	records := make([]campaign.Record, 0, len(data.Rows))
	for i, row := range data.Rows {
		if i%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		records = append(records, toRecord(row))
	}

	r.logger.Info("[DataReader] %d campaigns read from %s", len(records), r.cfg.FilePath)
	return records, nil
}

// ReadData reads raw rows from the XLSX or CSV file
func (r *DataReader) ReadData() (*SheetData, error) {
	r.logger.Debug("[DataReader] Starting to read %s file: %s", r.fileType, r.cfg.FilePath)

	if _, err := os.Stat(r.cfg.FilePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.cfg.FilePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSVData()
	case "xlsx":
		return r.readExcelData()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

func (r *DataReader) readExcelData() (*SheetData, error) {
	startTime := time.Now()
	f, err := excelize.OpenFile(r.cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := r.cfg.Sheet
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	r.logger.Debug("[DataReader] Sheet %s read in %.2fms (%d rows)",
		sheet, float64(time.Since(startTime).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, fmt.Errorf("Excel file must have at least a header row and one data row")
	}
	return processRows(rows), nil
}

func (r *DataReader) readCSVData() (*SheetData, error) {
	file, err := os.Open(r.cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = r.cfg.Comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	readStart := time.Now()
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	r.logger.Debug("[DataReader] CSV file read in %.2fms (%d rows)",
		float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, fmt.Errorf("CSV file must have at least a header row and one data row")
	}
	return processRows(rows), nil
}

// processRows converts raw string rows into header-keyed maps. Short rows
// leave trailing columns absent.
func processRows(rows [][]string) *SheetData {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(strings.TrimPrefix(header, "\ufeff"))
	}

	dataRows := make([]RawRowData, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rowData := make(RawRowData, len(headers))
		for j, cell := range row {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		dataRows = append(dataRows, rowData)
	}

	return &SheetData{Headers: headers, Rows: dataRows}
}

func requireColumns(headers []string) error {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}
	var missing []string
	for _, col := range campaign.TrainingColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("dataset is missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}

func toRecord(row RawRowData) campaign.Record {
	return campaign.Record{
		ID:             row[campaign.ColumnID],
		Name:           row[campaign.ColumnName],
		MainCategory:   row[campaign.ColumnMainCategory],
		Currency:       row[campaign.ColumnCurrency],
		Deadline:       row[campaign.ColumnDeadline],
		Launched:       row[campaign.ColumnLaunched],
		State:          campaign.Outcome(strings.ToLower(row[campaign.ColumnState])),
		Country:        row[campaign.ColumnCountry],
		USDPledgedReal: parseAmount(row[campaign.ColumnUSDPledgedReal]),
		USDGoalReal:    parseAmount(row[campaign.ColumnUSDGoalReal]),
	}
}

func parseAmount(s string) float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
