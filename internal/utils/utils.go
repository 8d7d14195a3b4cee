package utils

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/frijswijk/intellistor-migration/internal/extractor"
	"github.com/frijswijk/intellistor-migration/pkg/models"
)

// SetupLogging configures the logging system
func SetupLogging(logLevel string) *logrus.Logger {
	logger := logrus.New()

	levelStr := logLevel
	if levelStr == "" {
		levelStr = os.Getenv("EXTRACTOR_LOG_LEVEL")
		if levelStr == "" {
			levelStr = "info"
		}
	}

	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}

	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logger.SetOutput(os.Stdout)

	logger.Infof("Logging configured with level: %s", level)
	return logger
}

// LoadEnvironmentVariables loads environment variables from .env file
func LoadEnvironmentVariables(envFile string, logger *logrus.Logger) bool {
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		sampleEnvFile := envFile + ".sample"
		if _, err := os.Stat(sampleEnvFile); err == nil {
			logger.Infof("No %s file found, but %s exists. Consider copying %s to %s and updating it.",
				envFile, sampleEnvFile, sampleEnvFile, envFile)
		}
	}

	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			logger.Warningf("Error loading %s file: %v", envFile, err)
		} else {
			logger.Infof("Loaded environment variables from %s", envFile)
		}
	} else {
		logger.Infof("No %s file found, using existing environment variables", envFile)
	}

	requiredVars := []string{"MYSQL_HOST", "MYSQL_USER", "MYSQL_PASSWORD", "MYSQL_DATABASE"}
	var missingVars []string

	for _, v := range requiredVars {
		if os.Getenv(v) == "" {
			missingVars = append(missingVars, v)
		}
	}

	if len(missingVars) > 0 {
		logger.Warningf("Missing required environment variables: %s", strings.Join(missingVars, ", "))
		logger.Info("These can be provided via command line arguments, environment variables, or a .env file")
		return false
	}

	return true
}

// GetEnvInt gets an integer value from environment variable
func GetEnvInt(varName string, defaultValue int) int {
	value := os.Getenv(varName)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

// ValidateConnectionParams validates database connection parameters
func ValidateConnectionParams(host, user, password, database, port string, logger *logrus.Logger) bool {
	if host == "" {
		logger.Error("Database host is required")
		return false
	}

	if user == "" {
		logger.Error("Database user is required")
		return false
	}

	if password == "" { // Empty password is allowed
		logger.Warning("Database password is empty")
	}

	if database == "" {
		logger.Error("Database name is required")
		return false
	}

	if _, err := strconv.Atoi(port); err != nil {
		logger.Errorf("Invalid port number: %s", port)
		return false
	}

	return true
}

// PrintHierarchyAnalysis prints a detailed analysis of the validated folder
// hierarchy and the resolved country codes.
func PrintHierarchyAnalysis(e *extractor.Extractor, result *models.ExtractionResult) {
	stats := result.Stats

	fmt.Println("\n" + strings.Repeat("=", 80))
	fmt.Println("FOLDER HIERARCHY ANALYSIS REPORT")
	fmt.Println(strings.Repeat("=", 80))

	fmt.Println("\n1. HIERARCHY VALIDATION")
	fmt.Printf("   Total folders: %d\n", stats.Total)
	fmt.Printf("   Valid folders: %d\n", stats.Valid)
	fmt.Printf("   Excluded folders: %d\n", stats.Excluded)
	fmt.Printf("     Excluded by item type: %d\n", stats.TypeExcluded)
	fmt.Printf("     Orphaned chains: %d\n", stats.Orphans)
	fmt.Printf("     Cyclic chains: %d\n", stats.Cycles)

	if e.Validator != nil {
		cycleGroups := e.Validator.CycleGroups()
		if len(cycleGroups) > 0 {
			fmt.Println("\n2. PARENT CHAIN CYCLES")
			for _, group := range cycleGroups {
				ids := make([]string, 0, len(group))
				for _, id := range group {
					ids = append(ids, strconv.Itoa(id))
				}
				fmt.Printf("   %s\n", strings.Join(ids, " -> "))
			}
		}
	}

	fmt.Println("\n3. COUNTRY CODE DISTRIBUTION")
	countryCounts := make(map[string]int)
	for _, row := range result.FolderRows {
		countryCounts[row.CountryCode]++
	}
	var codes []string
	for code := range countryCounts {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	for _, code := range codes {
		fmt.Printf("   %s: %d folders\n", code, countryCounts[code])
	}

	if len(result.Conflicts) > 0 {
		fmt.Println("\n4. COUNTRY CODE CONFLICTS")
		fmt.Printf("   Total conflicts: %d\n", len(result.Conflicts))
		for _, conflict := range result.Conflicts {
			fmt.Printf("   report species %d: kept %s, rejected %s\n",
				conflict.SpeciesID, conflict.Existing, conflict.Rejected)
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 80))
}

// PrintExtractionSummary prints a summary of the extraction run
func PrintExtractionSummary(result *models.ExtractionResult, outputDir string) {
	fmt.Println("\n" + strings.Repeat("=", 50))
	fmt.Println("EXTRACTION SUMMARY")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Printf("Output directory: %s\n", outputDir)
	fmt.Printf("Folder_Hierarchy.csv rows: %d\n", len(result.FolderRows))
	fmt.Printf("Folder_Report.csv rows: %d\n", len(result.LinkRows))
	fmt.Printf("Report_Species.csv rows: %d\n", len(result.SpeciesRows))
	fmt.Printf("Country code conflicts: %d\n", len(result.Conflicts))
	fmt.Println(strings.Repeat("=", 50))
}
