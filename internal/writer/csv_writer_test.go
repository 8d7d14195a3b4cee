package writer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/frijswijk/intellistor-migration/pkg/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel) // Suppress log output during tests
	return logger
}

func TestEncodeField(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"plain", "plain"},
		{"", ""},
		{" SG", " SG"},                            // leading whitespace stays unquoted
		{"trailing ", "trailing "},                // trailing whitespace stays unquoted
		{"a,b", `"a,b"`},                          // comma forces quoting
		{`say "hi"`, `"say ""hi"""`},              // quotes doubled
		{"line\nbreak", "\"line\nbreak\""},        // LF forces quoting
		{"carriage\rreturn", "\"carriage\rreturn\""},
	}

	for _, c := range cases {
		if got := encodeField(c.input); got != c.expected {
			t.Errorf("encodeField(%q): expected %q, got %q", c.input, c.expected, got)
		}
	}
}

func TestEncodeRecord(t *testing.T) {
	record := []string{"1", " SG", "a,b"}
	expected := `1, SG,"a,b"`
	if got := encodeRecord(record); got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

func TestWriteFolderHierarchy(t *testing.T) {
	dir := t.TempDir()
	w, err := NewCSVWriter(dir, testLogger())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	rows := []models.FolderRow{
		{ID: 1, Name: "Root", ParentID: 0, ItemType: 1, CountryCode: "SG"},
		{ID: 2, Name: " SG", ParentID: 1, ItemType: 1, CountryCode: "SG"},
	}
	if err := w.WriteFolderHierarchy(rows); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(dir, FolderHierarchyFile))
	if err != nil {
		t.Fatalf("Unexpected error reading output: %v", err)
	}

	nl := lineTerminator()
	expected := "ITEM_ID,NAME,PARENT_ID,ITEM_TYPE,COUNTRY_CODE" + nl +
		"1,Root,0,1,SG" + nl +
		"2, SG,1,1,SG" + nl
	if string(content) != expected {
		t.Errorf("Unexpected file content:\nexpected %q\ngot      %q", expected, string(content))
	}
}

func TestWriteConflictLogEmpty(t *testing.T) {
	dir := t.TempDir()
	w, err := NewCSVWriter(dir, testLogger())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if err := w.WriteConflictLog(nil); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, ConflictLogFile)); !os.IsNotExist(err) {
		t.Error("Expected no log.txt when there are no conflicts")
	}
}

func TestWriteConflictLog(t *testing.T) {
	dir := t.TempDir()
	w, err := NewCSVWriter(dir, testLogger())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	conflicts := []models.ConflictEntry{
		{SpeciesID: 42, Existing: "HK", Rejected: "MY"},
		{SpeciesID: 43, Existing: "TH", Rejected: "ID"},
	}
	if err := w.WriteConflictLog(conflicts); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(dir, ConflictLogFile))
	if err != nil {
		t.Fatalf("Unexpected error reading log: %v", err)
	}

	nl := lineTerminator()
	expected := "Total country code conflicts: 2" + nl +
		"report species 42: kept HK, rejected MY" + nl +
		"report species 43: kept TH, rejected ID" + nl
	if string(content) != expected {
		t.Errorf("Unexpected log content:\nexpected %q\ngot      %q", expected, string(content))
	}
}

func TestNewCSVWriterCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	if _, err := NewCSVWriter(dir, testLogger()); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Error("Expected output directory to be created")
	}
}
