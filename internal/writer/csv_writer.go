package writer

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/frijswijk/intellistor-migration/pkg/models"
)

// Output file names, fixed by the downstream migration tooling.
const (
	FolderHierarchyFile = "Folder_Hierarchy.csv"
	FolderReportFile    = "Folder_Report.csv"
	ReportSpeciesFile   = "Report_Species.csv"
	ConflictLogFile     = "log.txt"
)

// CSVWriter serializes the output tables using the migration dialect: a
// field is quoted only when it contains a comma, a double quote, CR or LF,
// with embedded quotes doubled, and records end with the platform-native
// line terminator. The sibling implementation of this engine follows the
// same rules, and the outputs are compared byte for byte, so this dialect is
// part of the contract. encoding/csv is not usable here: it additionally
// quotes fields with leading whitespace, which folder names legitimately
// carry.
type CSVWriter struct {
	OutputDir string
	Logger    *logrus.Logger
}

// NewCSVWriter creates a writer targeting the given output directory,
// creating it if needed.
func NewCSVWriter(outputDir string, logger *logrus.Logger) (*CSVWriter, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		logger.Errorf("Error creating output directory %s: %v", outputDir, err)
		return nil, fmt.Errorf("creating output directory %s: %w", outputDir, err)
	}
	return &CSVWriter{OutputDir: outputDir, Logger: logger}, nil
}

// lineTerminator returns the platform-native record terminator.
func lineTerminator() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}

// encodeField applies the dialect's quoting rule to a single field.
func encodeField(field string) string {
	if !strings.ContainsAny(field, ",\"\r\n") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// encodeRecord serializes one record without the terminator.
func encodeRecord(fields []string) string {
	encoded := make([]string, len(fields))
	for i, field := range fields {
		encoded[i] = encodeField(field)
	}
	return strings.Join(encoded, ",")
}

// writeTable writes a header plus records to a file in the output directory.
// Any failure is fatal for the run; a partially written file must not be
// trusted by the caller.
func (w *CSVWriter) writeTable(name string, header []string, records [][]string) error {
	path := filepath.Join(w.OutputDir, name)
	file, err := os.Create(path)
	if err != nil {
		w.Logger.Errorf("Error creating %s: %v", path, err)
		return fmt.Errorf("creating %s: %w", path, err)
	}

	terminator := lineTerminator()
	buffered := bufio.NewWriter(file)

	write := func(record []string) error {
		if _, err := buffered.WriteString(encodeRecord(record) + terminator); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		return nil
	}

	if err := write(header); err != nil {
		file.Close()
		return err
	}
	for _, record := range records {
		if err := write(record); err != nil {
			file.Close()
			return err
		}
	}

	if err := buffered.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}

	w.Logger.Infof("Wrote %s (%d rows)", path, len(records))
	return nil
}

// WriteFolderHierarchy writes Folder_Hierarchy.csv.
func (w *CSVWriter) WriteFolderHierarchy(rows []models.FolderRow) error {
	header := []string{"ITEM_ID", "NAME", "PARENT_ID", "ITEM_TYPE", "COUNTRY_CODE"}
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{
			strconv.Itoa(row.ID),
			row.Name,
			strconv.Itoa(row.ParentID),
			strconv.Itoa(row.ItemType),
			row.CountryCode,
		})
	}
	return w.writeTable(FolderHierarchyFile, header, records)
}

// WriteFolderReport writes Folder_Report.csv.
func (w *CSVWriter) WriteFolderReport(rows []models.FolderReportRow) error {
	header := []string{"ITEM_ID", "ITEM_NAME", "REPORT_SPECIES_ID", "REPORT_SPECIES_NAME", "REPORT_SPECIES_DISPLAYNAME", "COUNTRY_CODE"}
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{
			strconv.Itoa(row.FolderID),
			row.FolderName,
			strconv.Itoa(row.SpeciesID),
			row.CanonicalName,
			row.DisplayName,
			row.CountryCode,
		})
	}
	return w.writeTable(FolderReportFile, header, records)
}

// WriteReportSpecies writes Report_Species.csv.
func (w *CSVWriter) WriteReportSpecies(rows []models.ReportSpeciesRow) error {
	header := []string{"REPORT_SPECIES_ID", "REPORT_SPECIES_NAME", "REPORT_SPECIES_DISPLAYNAME", "COUNTRY_CODE", "IN_USE"}
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{
			strconv.Itoa(row.SpeciesID),
			row.CanonicalName,
			row.DisplayName,
			row.CountryCode,
			strconv.Itoa(row.InUse),
		})
	}
	return w.writeTable(ReportSpeciesFile, header, records)
}

// WriteConflictLog writes log.txt when conflicts occurred. With an empty
// conflict list no file is created at all.
func (w *CSVWriter) WriteConflictLog(conflicts []models.ConflictEntry) error {
	if len(conflicts) == 0 {
		return nil
	}

	path := filepath.Join(w.OutputDir, ConflictLogFile)
	file, err := os.Create(path)
	if err != nil {
		w.Logger.Errorf("Error creating %s: %v", path, err)
		return fmt.Errorf("creating %s: %w", path, err)
	}

	terminator := lineTerminator()
	var sb strings.Builder
	fmt.Fprintf(&sb, "Total country code conflicts: %d%s", len(conflicts), terminator)
	for _, conflict := range conflicts {
		fmt.Fprintf(&sb, "report species %d: kept %s, rejected %s%s",
			conflict.SpeciesID, conflict.Existing, conflict.Rejected, terminator)
	}

	if _, err := file.WriteString(sb.String()); err != nil {
		file.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}

	w.Logger.Infof("Wrote %s (%d conflicts)", path, len(conflicts))
	return nil
}
