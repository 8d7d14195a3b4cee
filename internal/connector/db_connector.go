package connector

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"

	_ "github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"

	"github.com/frijswijk/intellistor-migration/pkg/models"
)

// DatabaseConnector handles the connection to the source archive database
// and fetches the three row sets consumed by the extraction pipeline.
type DatabaseConnector struct {
	Host     string
	User     string
	Password string
	Database string
	Port     string
	DB       *sql.DB
	Logger   *logrus.Logger
}

// NewDatabaseConnector creates a new database connector
func NewDatabaseConnector(host, user, password, database, port string, logger *logrus.Logger) *DatabaseConnector {
	if host == "" {
		host = getEnvOrDefault("MYSQL_HOST", "localhost")
	}
	if user == "" {
		user = getEnvOrDefault("MYSQL_USER", "root")
	}
	if password == "" {
		password = getEnvOrDefault("MYSQL_PASSWORD", "")
	}
	if database == "" {
		database = getEnvOrDefault("MYSQL_DATABASE", "")
	}
	if port == "" {
		port = getEnvOrDefault("MYSQL_PORT", "3306")
	}

	return &DatabaseConnector{
		Host:     host,
		User:     user,
		Password: password,
		Database: database,
		Port:     port,
		Logger:   logger,
	}
}

// Connect establishes a connection to the source database
func (dc *DatabaseConnector) Connect() error {
	if dc.Database == "" {
		return fmt.Errorf("database name must be provided either as an argument or as MYSQL_DATABASE environment variable")
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true", dc.User, dc.Password, dc.Host, dc.Port, dc.Database)
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		dc.Logger.Errorf("Error connecting to database: %v", err)
		return err
	}

	if err := db.Ping(); err != nil {
		dc.Logger.Errorf("Error pinging database: %v", err)
		return err
	}

	dc.DB = db
	dc.Logger.Infof("Connected to database: %s", dc.Database)
	return nil
}

// Disconnect closes the database connection
func (dc *DatabaseConnector) Disconnect() {
	if dc.DB != nil {
		err := dc.DB.Close()
		if err != nil {
			dc.Logger.Errorf("Error closing database connection: %v", err)
		} else {
			dc.Logger.Info("Database connection closed")
		}
	}
}

// ExecuteQuery executes a SQL query and returns the results as row maps
func (dc *DatabaseConnector) ExecuteQuery(query string, params ...interface{}) ([]map[string]interface{}, error) {
	if dc.DB == nil {
		if err := dc.Connect(); err != nil {
			return nil, err
		}
	}

	rows, err := dc.DB.Query(query, params...)
	if err != nil {
		dc.Logger.Errorf("Error executing query: %v", err)
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		dc.Logger.Errorf("Error getting columns: %v", err)
		return nil, err
	}

	var results []map[string]interface{}

	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range columns {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			dc.Logger.Errorf("Error scanning row: %v", err)
			return nil, err
		}

		row := make(map[string]interface{})
		for i, col := range columns {
			val := values[i]
			if val == nil {
				row[col] = nil
			} else {
				// Convert []byte to string for text fields
				if b, ok := val.([]byte); ok {
					row[col] = string(b)
				} else {
					row[col] = val
				}
			}
		}

		results = append(results, row)
	}

	if err := rows.Err(); err != nil {
		dc.Logger.Errorf("Error iterating rows: %v", err)
		return nil, err
	}

	return results, nil
}

// FetchFolders fetches the folder item table. Row order is not relied on
// downstream; the ORDER BY only keeps debug logging stable.
func (dc *DatabaseConnector) FetchFolders() ([]models.Folder, error) {
	query := `
		SELECT ITEM_ID, NAME, PARENT_ID, ITEM_TYPE
		FROM FOLDER_ITEM
		ORDER BY ITEM_ID
	`
	results, err := dc.ExecuteQuery(query)
	if err != nil {
		return nil, fmt.Errorf("fetching FOLDER_ITEM rows: %w", err)
	}

	folders := make([]models.Folder, 0, len(results))
	for _, row := range results {
		id, err := intColumn(row, "FOLDER_ITEM", "ITEM_ID")
		if err != nil {
			return nil, err
		}
		name, err := stringColumn(row, "FOLDER_ITEM", "NAME")
		if err != nil {
			return nil, err
		}
		parentID, err := intColumn(row, "FOLDER_ITEM", "PARENT_ID")
		if err != nil {
			return nil, err
		}
		itemType, err := intColumn(row, "FOLDER_ITEM", "ITEM_TYPE")
		if err != nil {
			return nil, err
		}

		folders = append(folders, models.Folder{
			ID:       id,
			Name:     name,
			ParentID: parentID,
			ItemType: itemType,
		})
	}

	dc.Logger.Infof("Fetched %d folder rows", len(folders))
	return folders, nil
}

// FetchFolderReportLinks fetches the folder to report species link table.
func (dc *DatabaseConnector) FetchFolderReportLinks() ([]models.FolderSpeciesLink, error) {
	query := `
		SELECT ITEM_ID, DOMAIN_ID, REPORT_SPECIES_ID
		FROM FOLDER_REPORT_SPECIES
		ORDER BY ITEM_ID, REPORT_SPECIES_ID
	`
	results, err := dc.ExecuteQuery(query)
	if err != nil {
		return nil, fmt.Errorf("fetching FOLDER_REPORT_SPECIES rows: %w", err)
	}

	links := make([]models.FolderSpeciesLink, 0, len(results))
	for _, row := range results {
		folderID, err := intColumn(row, "FOLDER_REPORT_SPECIES", "ITEM_ID")
		if err != nil {
			return nil, err
		}
		domainID, err := intColumn(row, "FOLDER_REPORT_SPECIES", "DOMAIN_ID")
		if err != nil {
			return nil, err
		}
		speciesID, err := intColumn(row, "FOLDER_REPORT_SPECIES", "REPORT_SPECIES_ID")
		if err != nil {
			return nil, err
		}

		links = append(links, models.FolderSpeciesLink{
			FolderID:  folderID,
			DomainID:  domainID,
			SpeciesID: speciesID,
		})
	}

	dc.Logger.Infof("Fetched %d folder-report link rows", len(links))
	return links, nil
}

// FetchReportNames fetches the report species name table.
func (dc *DatabaseConnector) FetchReportNames() ([]models.ReportNameRecord, error) {
	query := `
		SELECT DOMAIN_ID, REPORT_SPECIES_ID, NAME_ITEM_ID, NAME
		FROM REPORT_SPECIES_NAME
		ORDER BY DOMAIN_ID, REPORT_SPECIES_ID, NAME_ITEM_ID
	`
	results, err := dc.ExecuteQuery(query)
	if err != nil {
		return nil, fmt.Errorf("fetching REPORT_SPECIES_NAME rows: %w", err)
	}

	records := make([]models.ReportNameRecord, 0, len(results))
	for _, row := range results {
		domainID, err := intColumn(row, "REPORT_SPECIES_NAME", "DOMAIN_ID")
		if err != nil {
			return nil, err
		}
		speciesID, err := intColumn(row, "REPORT_SPECIES_NAME", "REPORT_SPECIES_ID")
		if err != nil {
			return nil, err
		}
		nameItemID, err := intColumn(row, "REPORT_SPECIES_NAME", "NAME_ITEM_ID")
		if err != nil {
			return nil, err
		}
		name, err := stringColumn(row, "REPORT_SPECIES_NAME", "NAME")
		if err != nil {
			return nil, err
		}

		records = append(records, models.ReportNameRecord{
			DomainID:   domainID,
			SpeciesID:  speciesID,
			NameItemID: nameItemID,
			Name:       name,
		})
	}

	dc.Logger.Infof("Fetched %d report name rows", len(records))
	return records, nil
}

// intColumn reads an integer column from a row map. The MySQL driver may
// return int64, uint64 or textual values depending on column type, so the
// conversion goes through a string round trip like the other numeric reads.
func intColumn(row map[string]interface{}, table, column string) (int, error) {
	val, ok := row[column]
	if !ok || val == nil {
		return 0, fmt.Errorf("table %s: missing required column %s", table, column)
	}

	intVal, err := strconv.ParseInt(fmt.Sprintf("%v", val), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("table %s: column %s is not an integer: %w", table, column, err)
	}
	return int(intVal), nil
}

// stringColumn reads a text column from a row map. NULL names are treated as
// empty strings rather than shape errors; name fallback handles them later.
func stringColumn(row map[string]interface{}, table, column string) (string, error) {
	val, ok := row[column]
	if !ok {
		return "", fmt.Errorf("table %s: missing required column %s", table, column)
	}
	if val == nil {
		return "", nil
	}
	if s, ok := val.(string); ok {
		return s, nil
	}
	return fmt.Sprintf("%v", val), nil
}

// getEnvOrDefault gets an environment variable or returns a default value
func getEnvOrDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
