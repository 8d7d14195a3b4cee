package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/frijswijk/intellistor-migration/internal/connector"
	"github.com/frijswijk/intellistor-migration/internal/extractor"
	"github.com/frijswijk/intellistor-migration/internal/generator"
	"github.com/frijswijk/intellistor-migration/internal/utils"
	"github.com/frijswijk/intellistor-migration/pkg/models"
)

func main() {
	var (
		host         string
		user         string
		password     string
		database     string
		port         string
		outputDir    string
		countryCode  string
		knownCodes   string
		envFile      string
		logLevel     string
		validateOnly bool
		sampleSize   int
		sampleSeed   int64
	)

	rootCmd := &cobra.Command{
		Use:   "folder-extractor",
		Short: "Extracts a folder/report taxonomy with resolved country codes",
		Long: `Folder Hierarchy Extractor

Extracts the folder and report taxonomy from an archive database, validates
hierarchy integrity (cycles, orphans, excluded item types), resolves a
country code for every valid folder and report species, and writes the
migration CSV artifacts.`,
		Run: func(cmd *cobra.Command, args []string) {
			// Setup logging
			logger := utils.SetupLogging(logLevel)

			// Load environment variables
			utils.LoadEnvironmentVariables(envFile, logger)

			if countryCode == "" {
				countryCode = os.Getenv("EXTRACTOR_COUNTRY_CODE")
				if countryCode == "" {
					countryCode = "auto"
				}
			}
			if outputDir == "" {
				outputDir = os.Getenv("EXTRACTOR_OUTPUT_DIR")
				if outputDir == "" {
					outputDir = "output"
				}
			}

			var codes []string
			if knownCodes != "" {
				for _, code := range strings.Split(knownCodes, ",") {
					codes = append(codes, strings.TrimSpace(code))
				}
			}

			var (
				folders     []models.Folder
				links       []models.FolderSpeciesLink
				nameRecords []models.ReportNameRecord
			)

			if sampleSize > 0 {
				// Offline dry run on synthetic data, no database needed
				sampleGenerator := generator.NewSampleGenerator(sampleSeed, sampleSize, logger)
				folders, links, nameRecords = sampleGenerator.Generate()
			} else {
				// Get connection parameters from environment if not provided
				if host == "" {
					host = os.Getenv("MYSQL_HOST")
				}
				if user == "" {
					user = os.Getenv("MYSQL_USER")
				}
				if password == "" {
					password = os.Getenv("MYSQL_PASSWORD")
				}
				if database == "" {
					database = os.Getenv("MYSQL_DATABASE")
				}
				if port == "" {
					port = os.Getenv("MYSQL_PORT")
					if port == "" {
						port = "3306"
					}
				}

				// Validate connection parameters
				if !utils.ValidateConnectionParams(host, user, password, database, port, logger) {
					os.Exit(1)
				}

				// Create database connector and fetch the three row sets
				db := connector.NewDatabaseConnector(host, user, password, database, port, logger)
				if err := db.Connect(); err != nil {
					logger.Errorf("Failed to connect to database: %v", err)
					os.Exit(1)
				}
				defer db.Disconnect()

				var err error
				if folders, err = db.FetchFolders(); err != nil {
					logger.Errorf("Failed to fetch folder rows: %v", err)
					os.Exit(1)
				}
				if links, err = db.FetchFolderReportLinks(); err != nil {
					logger.Errorf("Failed to fetch folder-report link rows: %v", err)
					os.Exit(1)
				}
				if nameRecords, err = db.FetchReportNames(); err != nil {
					logger.Errorf("Failed to fetch report name rows: %v", err)
					os.Exit(1)
				}
			}

			if len(folders) == 0 {
				logger.Error("No folder rows found in source")
				os.Exit(1)
			}

			ext := extractor.NewExtractor(folders, links, nameRecords, countryCode, codes, outputDir, logger)

			if validateOnly {
				result, err := ext.Analyze()
				if err != nil {
					logger.Errorf("Analysis failed: %v", err)
					os.Exit(1)
				}
				utils.PrintHierarchyAnalysis(ext, result)
				logger.Info("Validate-only mode, exiting without writing output files")
				return
			}

			logger.Info("Starting folder hierarchy extraction...")
			result, err := ext.Run()
			if err != nil {
				logger.Errorf("Extraction failed: %v", err)
				os.Exit(1)
			}

			utils.PrintHierarchyAnalysis(ext, result)
			utils.PrintExtractionSummary(result, outputDir)
		},
	}

	// Define flags
	rootCmd.Flags().StringVarP(&host, "host", "H", "", "MySQL host (default: localhost)")
	rootCmd.Flags().StringVarP(&user, "user", "u", "", "MySQL user (default: root)")
	rootCmd.Flags().StringVarP(&password, "password", "p", "", "MySQL password")
	rootCmd.Flags().StringVarP(&database, "database", "d", "", "MySQL database name")
	rootCmd.Flags().StringVarP(&port, "port", "P", "", "MySQL port (default: 3306)")
	rootCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for the output CSV files (default: output)")
	rootCmd.Flags().StringVarP(&countryCode, "country-code", "c", "", "Fixed 2-letter country code, or 'auto' to detect from folder names (default: auto)")
	rootCmd.Flags().StringVarP(&knownCodes, "known-codes", "k", "", "Comma-separated list of recognized country codes for auto-detect mode")
	rootCmd.Flags().StringVarP(&envFile, "env-file", "e", ".env", "Path to .env file")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "Log level (debug, info, warn, error)")
	rootCmd.Flags().BoolVarP(&validateOnly, "validate-only", "a", false, "Only validate the hierarchy and print the analysis report, without writing output files")
	rootCmd.Flags().IntVarP(&sampleSize, "sample", "s", 0, "Run on a generated sample hierarchy of roughly this many folders instead of a database")
	rootCmd.Flags().Int64Var(&sampleSeed, "sample-seed", 1, "Seed for the sample hierarchy generator")

	// Execute
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
