package extractor

import (
	"github.com/sirupsen/logrus"

	"github.com/frijswijk/intellistor-migration/internal/hierarchy"
	"github.com/frijswijk/intellistor-migration/internal/names"
	"github.com/frijswijk/intellistor-migration/internal/resolver"
	"github.com/frijswijk/intellistor-migration/internal/writer"
	"github.com/frijswijk/intellistor-migration/pkg/models"
)

// Extractor runs the extraction pipeline over already-fetched row sets:
// validate the hierarchy, resolve country codes, assemble the output tables
// and serialize them. One extractor owns the whole working set of a run, so
// parallel runs with separate extractors and output directories are safe.
type Extractor struct {
	Folders     []models.Folder
	Links       []models.FolderSpeciesLink
	Names       []models.ReportNameRecord
	CountryMode string
	KnownCodes  []string
	OutputDir   string
	Logger      *logrus.Logger

	// Populated by Analyze for reporting.
	Validator *hierarchy.Validator
	Resolver  *resolver.CountryResolver
}

// NewExtractor creates an extractor over immutable input row sets.
func NewExtractor(
	folders []models.Folder,
	links []models.FolderSpeciesLink,
	nameRecords []models.ReportNameRecord,
	countryMode string,
	knownCodes []string,
	outputDir string,
	logger *logrus.Logger,
) *Extractor {
	return &Extractor{
		Folders:     folders,
		Links:       links,
		Names:       nameRecords,
		CountryMode: countryMode,
		KnownCodes:  knownCodes,
		OutputDir:   outputDir,
		Logger:      logger,
	}
}

// Analyze validates the hierarchy, resolves country codes and assembles the
// output tables without writing anything.
func (e *Extractor) Analyze() (*models.ExtractionResult, error) {
	validator := hierarchy.NewValidator(e.Folders, e.Logger)
	valid := validator.Validate()
	e.Validator = validator

	countryResolver, err := resolver.NewCountryResolver(e.CountryMode, e.KnownCodes, e.Logger)
	if err != nil {
		e.Logger.Errorf("Invalid country code configuration: %v", err)
		return nil, err
	}
	countryResolver.AssignFolderCodes(validator.Folders, valid)
	countryResolver.TrackSpecies(e.Links, valid)
	e.Resolver = countryResolver

	assembler := &writer.Assembler{
		Folders:      validator.Folders,
		Valid:        valid,
		FolderCodes:  countryResolver.FolderCodes,
		SpeciesCodes: countryResolver.SpeciesCodes,
		Names:        names.NewResolver(e.Names),
		Logger:       e.Logger,
	}

	return &models.ExtractionResult{
		FolderRows:  assembler.BuildFolderRows(),
		LinkRows:    assembler.BuildLinkRows(e.Links),
		SpeciesRows: assembler.BuildSpeciesRows(e.Links),
		Conflicts:   countryResolver.Conflicts,
		Stats:       validator.Stats,
	}, nil
}

// Run executes the full pipeline and writes the three output tables plus the
// conflict log to the output directory.
func (e *Extractor) Run() (*models.ExtractionResult, error) {
	result, err := e.Analyze()
	if err != nil {
		return nil, err
	}

	csvWriter, err := writer.NewCSVWriter(e.OutputDir, e.Logger)
	if err != nil {
		return nil, err
	}
	if err := csvWriter.WriteFolderHierarchy(result.FolderRows); err != nil {
		return nil, err
	}
	if err := csvWriter.WriteFolderReport(result.LinkRows); err != nil {
		return nil, err
	}
	if err := csvWriter.WriteReportSpecies(result.SpeciesRows); err != nil {
		return nil, err
	}
	if err := csvWriter.WriteConflictLog(result.Conflicts); err != nil {
		return nil, err
	}

	return result, nil
}
