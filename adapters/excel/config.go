package excel

// ReaderConfig holds configuration for the campaign dataset source
type ReaderConfig struct {
	FilePath string `json:"file_path" validate:"required"`
	// Sheet is the XLSX worksheet to read; empty means the first sheet
	Sheet string `json:"sheet"`
	// Comma is the CSV field separator
	Comma rune `json:"comma"`
}

// DefaultReaderConfig returns sensible defaults for the Kaggle export
func DefaultReaderConfig(path string) ReaderConfig {
	return ReaderConfig{
		FilePath: path,
		Comma:    ',',
	}
}
