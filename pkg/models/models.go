package models

// ExcludedItemType marks folder items that must never appear in output,
// regardless of their position in the hierarchy.
const ExcludedItemType = 3

// RootParentID is the sentinel parent id marking a root folder.
const RootParentID = 0

// NoReportSpeciesID is the sentinel species id meaning "no report attached".
const NoReportSpeciesID = 0

// Folder represents one row of the source folder table. The source stores
// folders as a flat self-referencing table, so nothing here is guaranteed:
// parents may be missing, chains may be cyclic, names may carry whitespace.
type Folder struct {
	ID       int
	Name     string
	ParentID int
	ItemType int
}

// FolderSpeciesLink links a folder to a report species within a domain.
type FolderSpeciesLink struct {
	FolderID  int
	DomainID  int
	SpeciesID int
}

// ReportNameRecord is one row of the report name table. NameItemID 0 carries
// the display name, NameItemID 1 the canonical name.
type ReportNameRecord struct {
	DomainID   int
	SpeciesID  int
	NameItemID int
	Name       string
}

// ConflictEntry records a rejected country-code candidate for a report
// species that already carried a different non-default code.
type ConflictEntry struct {
	SpeciesID int
	Existing  string
	Rejected  string
}

// HierarchyStats summarizes the validator's classification of the folder
// table. Each excluded folder is counted under exactly one exclusion reason.
type HierarchyStats struct {
	Total        int
	Valid        int
	Excluded     int
	TypeExcluded int
	Orphans      int
	Cycles       int
}

// FolderRow is one output row of Folder_Hierarchy.csv.
type FolderRow struct {
	ID          int
	Name        string
	ParentID    int
	ItemType    int
	CountryCode string
}

// FolderReportRow is one output row of Folder_Report.csv. CountryCode is the
// owning folder's resolved code, not the final per-species value.
type FolderReportRow struct {
	FolderID      int
	FolderName    string
	SpeciesID     int
	CanonicalName string
	DisplayName   string
	CountryCode   string
}

// ReportSpeciesRow is one output row of Report_Species.csv.
type ReportSpeciesRow struct {
	SpeciesID     int
	CanonicalName string
	DisplayName   string
	CountryCode   string
	InUse         int
}

// ExtractionResult is returned by a completed extraction run.
type ExtractionResult struct {
	FolderRows  []FolderRow
	LinkRows    []FolderReportRow
	SpeciesRows []ReportSpeciesRow
	Conflicts   []ConflictEntry
	Stats       HierarchyStats
}
