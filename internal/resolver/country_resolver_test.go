package resolver

import (
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/frijswijk/intellistor-migration/pkg/models"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel) // Suppress log output during tests
	return logger
}

func foldersByID(folders []models.Folder) map[int]models.Folder {
	byID := make(map[int]models.Folder, len(folders))
	for _, f := range folders {
		byID[f.ID] = f
	}
	return byID
}

func allValid(folders []models.Folder) map[int]bool {
	valid := make(map[int]bool, len(folders))
	for _, f := range folders {
		valid[f.ID] = true
	}
	return valid
}

func TestNewCountryResolverModeValidation(t *testing.T) {
	logger := testLogger()

	resolver, err := NewCountryResolver("hk", nil, logger)
	if err != nil {
		t.Fatalf("Expected 2-letter mode to be accepted, got error: %v", err)
	}
	if resolver.Mode != "HK" {
		t.Errorf("Expected fixed mode to be normalized to HK, got %s", resolver.Mode)
	}

	resolver, err = NewCountryResolver("AUTO", nil, logger)
	if err != nil {
		t.Fatalf("Expected auto mode to be accepted, got error: %v", err)
	}
	if resolver.Mode != AutoDetectMode {
		t.Errorf("Expected auto mode, got %s", resolver.Mode)
	}

	if _, err := NewCountryResolver("Singapore", nil, logger); err == nil {
		t.Error("Expected error for a mode that is neither auto nor a 2-letter code")
	}
}

func TestAssignFolderCodesFixedMode(t *testing.T) {
	folders := []models.Folder{
		{ID: 1, Name: "HK", ParentID: 0, ItemType: 1},
		{ID: 2, Name: " MY ", ParentID: 1, ItemType: 1},
	}

	resolver, err := NewCountryResolver("sg", nil, testLogger())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	resolver.AssignFolderCodes(foldersByID(folders), allValid(folders))

	// Fixed mode never inspects folder names
	for _, id := range []int{1, 2} {
		if resolver.FolderCodes[id] != "SG" {
			t.Errorf("Expected folder %d to get SG, got %s", id, resolver.FolderCodes[id])
		}
	}
}

func TestAssignFolderCodesAutoDetect(t *testing.T) {
	folders := []models.Folder{
		{ID: 1, Name: "Root", ParentID: 0, ItemType: 1},
		{ID: 2, Name: " SG", ParentID: 1, ItemType: 1},
		{ID: 3, Name: "Reports", ParentID: 2, ItemType: 1},
		{ID: 4, Name: "hk ", ParentID: 1, ItemType: 1},
		{ID: 5, Name: " MY ", ParentID: 4, ItemType: 1},
		{ID: 6, Name: "XX", ParentID: 4, ItemType: 1},
		{ID: 7, Name: "SGP", ParentID: 4, ItemType: 1},
	}

	resolver, err := NewCountryResolver("auto", nil, testLogger())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	resolver.AssignFolderCodes(foldersByID(folders), allValid(folders))

	expected := map[int]string{
		1: "SG", // root with non-code name defaults
		2: "SG", // trimmed name matches SG
		3: "SG", // inherits
		4: "HK", // trimmed, case-insensitive match
		5: "MY", // whitespace on both sides
		6: "HK", // 2 letters but not a known code: inherits
		7: "HK", // 3 letters: inherits
	}
	for id, code := range expected {
		if resolver.FolderCodes[id] != code {
			t.Errorf("Expected folder %d to resolve to %s, got %s", id, code, resolver.FolderCodes[id])
		}
	}
}

func TestAssignFolderCodesSkipsInvalidFolders(t *testing.T) {
	folders := []models.Folder{
		{ID: 1, Name: "HK", ParentID: 0, ItemType: 1},
		{ID: 2, Name: "Reports", ParentID: 1, ItemType: 1},
		{ID: 3, Name: "Broken", ParentID: 99, ItemType: 1},
	}
	valid := map[int]bool{1: true, 2: true}

	resolver, err := NewCountryResolver("auto", nil, testLogger())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	resolver.AssignFolderCodes(foldersByID(folders), valid)

	if _, ok := resolver.FolderCodes[3]; ok {
		t.Error("Expected excluded folder 3 to get no country code")
	}
	if resolver.FolderCodes[2] != "HK" {
		t.Errorf("Expected folder 2 to inherit HK, got %s", resolver.FolderCodes[2])
	}
}

func TestTrackSpeciesConflictPrecedence(t *testing.T) {
	// Species 42 is seen under SG, then HK, then MY: the default loses to
	// HK, and MY is rejected with exactly one conflict entry.
	folders := []models.Folder{
		{ID: 1, Name: "SG", ParentID: 0, ItemType: 1},
		{ID: 2, Name: "HK", ParentID: 0, ItemType: 1},
		{ID: 3, Name: "MY", ParentID: 0, ItemType: 1},
	}
	links := []models.FolderSpeciesLink{
		{FolderID: 1, DomainID: 1, SpeciesID: 42},
		{FolderID: 2, DomainID: 1, SpeciesID: 42},
		{FolderID: 3, DomainID: 1, SpeciesID: 42},
	}

	resolver, err := NewCountryResolver("auto", nil, testLogger())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	valid := allValid(folders)
	resolver.AssignFolderCodes(foldersByID(folders), valid)
	resolver.TrackSpecies(links, valid)

	if resolver.SpeciesCodes[42] != "HK" {
		t.Errorf("Expected species 42 to resolve to HK, got %s", resolver.SpeciesCodes[42])
	}
	if len(resolver.Conflicts) != 1 {
		t.Fatalf("Expected exactly 1 conflict, got %d", len(resolver.Conflicts))
	}
	conflict := resolver.Conflicts[0]
	if conflict.SpeciesID != 42 || conflict.Existing != "HK" || conflict.Rejected != "MY" {
		t.Errorf("Expected conflict {42 HK MY}, got %+v", conflict)
	}
}

func TestTrackSpeciesDefaultNeverConflicts(t *testing.T) {
	// A default-code candidate after a non-default value is neither a
	// conflict nor an overwrite.
	folders := []models.Folder{
		{ID: 1, Name: "HK", ParentID: 0, ItemType: 1},
		{ID: 2, Name: "Generic", ParentID: 0, ItemType: 1},
	}
	links := []models.FolderSpeciesLink{
		{FolderID: 1, DomainID: 1, SpeciesID: 7},
		{FolderID: 2, DomainID: 1, SpeciesID: 7},
	}

	resolver, err := NewCountryResolver("auto", nil, testLogger())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	valid := allValid(folders)
	resolver.AssignFolderCodes(foldersByID(folders), valid)
	resolver.TrackSpecies(links, valid)

	if resolver.SpeciesCodes[7] != "HK" {
		t.Errorf("Expected species 7 to keep HK, got %s", resolver.SpeciesCodes[7])
	}
	if len(resolver.Conflicts) != 0 {
		t.Fatalf("Expected no conflicts for a default-code candidate, got %d", len(resolver.Conflicts))
	}
}

func TestTrackSpeciesOrderIndependentOfInput(t *testing.T) {
	// Links arrive in reverse order; processing still runs ascending by
	// (folder id, species id), so folder 1's SG is seen first and loses to
	// folder 2's HK without a conflict.
	folders := []models.Folder{
		{ID: 1, Name: "Generic", ParentID: 0, ItemType: 1},
		{ID: 2, Name: "HK", ParentID: 0, ItemType: 1},
	}
	links := []models.FolderSpeciesLink{
		{FolderID: 2, DomainID: 1, SpeciesID: 5},
		{FolderID: 1, DomainID: 1, SpeciesID: 5},
	}

	resolver, err := NewCountryResolver("auto", nil, testLogger())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	valid := allValid(folders)
	resolver.AssignFolderCodes(foldersByID(folders), valid)
	resolver.TrackSpecies(links, valid)

	if resolver.SpeciesCodes[5] != "HK" {
		t.Errorf("Expected species 5 to resolve to HK, got %s", resolver.SpeciesCodes[5])
	}
	if len(resolver.Conflicts) != 0 {
		t.Errorf("Expected no conflicts, got %d", len(resolver.Conflicts))
	}
}

func TestTrackSpeciesFiltersSentinelAndInvalid(t *testing.T) {
	folders := []models.Folder{
		{ID: 1, Name: "HK", ParentID: 0, ItemType: 1},
	}
	links := []models.FolderSpeciesLink{
		{FolderID: 1, DomainID: 1, SpeciesID: 0},  // sentinel
		{FolderID: 99, DomainID: 1, SpeciesID: 8}, // excluded folder
		{FolderID: 1, DomainID: 1, SpeciesID: 9},
	}

	resolver, err := NewCountryResolver("auto", nil, testLogger())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	valid := allValid(folders)
	resolver.AssignFolderCodes(foldersByID(folders), valid)
	resolver.TrackSpecies(links, valid)

	if len(resolver.SpeciesCodes) != 1 {
		t.Fatalf("Expected 1 tracked species, got %d", len(resolver.SpeciesCodes))
	}
	if resolver.SpeciesCodes[9] != "HK" {
		t.Errorf("Expected species 9 to resolve to HK, got %s", resolver.SpeciesCodes[9])
	}
}

func TestCustomKnownCodes(t *testing.T) {
	folders := []models.Folder{
		{ID: 1, Name: "ZZ", ParentID: 0, ItemType: 1},
		{ID: 2, Name: "HK", ParentID: 0, ItemType: 1},
	}

	resolver, err := NewCountryResolver("auto", []string{"zz"}, testLogger())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	resolver.AssignFolderCodes(foldersByID(folders), allValid(folders))

	if resolver.FolderCodes[1] != "ZZ" {
		t.Errorf("Expected folder 1 to match custom code ZZ, got %s", resolver.FolderCodes[1])
	}
	// HK is not in the custom list, so the root falls back to the default
	if resolver.FolderCodes[2] != "SG" {
		t.Errorf("Expected folder 2 to default to SG, got %s", resolver.FolderCodes[2])
	}
}
