package cmd

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	_ "modernc.org/sqlite"
)

var (
	inspectFormat     string
	inspectSampleRows int
)

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect [database-path]",
	Short: "Inspect session database schema and structure",
	Long: `Inspect the schema and structure of a session database.

This command provides detailed information about:
  • Database schema (tables, columns, types)
  • Sample data from each table
  • Row counts and the schema version

The database is inspected as found and is never migrated.

Examples:
  chat-session inspect                          # Inspect the configured database
  chat-session inspect /path/to/sessions.db     # Inspect a specific database
  chat-session inspect --format json --sample 5 # JSON output with 5 sample rows`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := cfg.DBPath
		if len(args) > 0 {
			path = args[0]
		}
		return inspectDatabase(cmd.OutOrStdout(), path)
	},
}

// TableInfo describes one table of an inspected database
type TableInfo struct {
	Name    string                   `json:"name"`
	Rows    int                      `json:"rows"`
	Columns []ColumnInfo             `json:"columns"`
	Sample  []map[string]interface{} `json:"sample,omitempty"`
}

type ColumnInfo struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	NotNull    bool   `json:"not_null"`
	PrimaryKey bool   `json:"primary_key"`
}

func inspectDatabase(w io.Writer, dbPath string) error {
	info, err := os.Stat(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = db.Close() }()

	names, err := getTables(db)
	if err != nil {
		return fmt.Errorf("failed to get tables: %w", err)
	}

	tables := make([]TableInfo, 0, len(names))
	for _, name := range names {
		t, err := describeTable(db, name, inspectSampleRows)
		if err != nil {
			fmt.Fprintf(os.Stderr, "⚠️  Error inspecting table %s: %v\n", name, err)
			continue
		}
		tables = append(tables, t)
	}

	version := schemaVersionOf(db)

	if inspectFormat == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]interface{}{
			"path":           dbPath,
			"size":           info.Size(),
			"schema_version": version,
			"tables":         tables,
		})
	}

	if len(tables) == 0 {
		fmt.Fprintln(w, "⚠️  No tables found in database")
		return nil
	}

	fmt.Fprintf(w, "📋 Database: %s (%s)\n", dbPath, humanize.Bytes(uint64(info.Size())))
	if version != "" {
		fmt.Fprintf(w, "🏷  Schema version: %s\n", version)
	}
	fmt.Fprintf(w, "📊 Found %d table(s)\n\n", len(tables))
	for _, t := range tables {
		printTable(w, t)
		fmt.Fprintln(w)
	}
	return nil
}

func getTables(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			continue
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

func schemaVersionOf(db *sql.DB) string {
	var v string
	if err := db.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&v); err != nil {
		return ""
	}
	return v
}

func describeTable(db *sql.DB, tableName string, sampleRows int) (TableInfo, error) {
	t := TableInfo{Name: tableName}
	if err := db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %q", tableName)).Scan(&t.Rows); err != nil {
		return t, fmt.Errorf("failed to get row count: %w", err)
	}

	columns, err := getTableSchema(db, tableName)
	if err != nil {
		return t, fmt.Errorf("failed to get schema: %w", err)
	}
	t.Columns = columns

	if t.Rows > 0 && sampleRows > 0 {
		if t.Sample, err = sampleData(db, tableName, columns, sampleRows); err != nil {
			return t, fmt.Errorf("failed to read sample data: %w", err)
		}
	}
	return t, nil
}

func getTableSchema(db *sql.DB, tableName string) ([]ColumnInfo, error) {
	rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%q)", tableName))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var columns []ColumnInfo
	for rows.Next() {
		var col ColumnInfo
		var cid int
		var notNull, pk int
		var defaultValue sql.NullString

		if err := rows.Scan(&cid, &col.Name, &col.Type, &notNull, &defaultValue, &pk); err != nil {
			continue
		}
		col.NotNull = notNull == 1
		col.PrimaryKey = pk > 0
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func sampleData(db *sql.DB, tableName string, columns []ColumnInfo, limit int) ([]map[string]interface{}, error) {
	if len(columns) == 0 {
		return nil, nil
	}

	colNames := make([]string, len(columns))
	for i, col := range columns {
		colNames[i] = fmt.Sprintf("%q", col.Name)
	}

	query := fmt.Sprintf("SELECT %s FROM %q LIMIT %d", strings.Join(colNames, ", "), tableName, limit)
	rows, err := db.Query(query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var sample []map[string]interface{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}
		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, err
		}

		row := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col.Name] = string(b)
			} else {
				row[col.Name] = values[i]
			}
		}
		sample = append(sample, row)
	}
	return sample, rows.Err()
}

func printTable(w io.Writer, t TableInfo) {
	fmt.Fprintf(w, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Fprintf(w, "📦 Table: %s\n", t.Name)
	fmt.Fprintf(w, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Fprintf(w, "📊 Rows: %s\n\n", humanize.Comma(int64(t.Rows)))

	fmt.Fprintf(w, "📐 Schema:\n")
	for _, col := range t.Columns {
		pk := ""
		if col.PrimaryKey {
			pk = " [PRIMARY KEY]"
		}
		notNull := ""
		if col.NotNull {
			notNull = " NOT NULL"
		}
		fmt.Fprintf(w, "  • %s: %s%s%s\n", col.Name, col.Type, notNull, pk)
	}

	if len(t.Sample) == 0 {
		return
	}
	fmt.Fprintf(w, "\n📄 Sample Data (first %d rows):\n", len(t.Sample))
	for i, row := range t.Sample {
		fmt.Fprintf(w, "\n  Row %d:\n", i+1)
		for _, col := range t.Columns {
			fmt.Fprintf(w, "    %s: %s\n", col.Name, formatCell(row[col.Name]))
		}
	}
}

// formatCell shortens a sampled value to its first line, at most 200 bytes
func formatCell(v interface{}) string {
	if v == nil {
		return "<NULL>"
	}
	s := fmt.Sprintf("%v", v)
	if first, _, multi := strings.Cut(s, "\n"); multi {
		s = first + "..."
	}
	if len(s) > 200 {
		s = truncateWidth(s, 200)
	}
	return s
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringVar(&inspectFormat, "format", "text", "Output format (text, json)")
	inspectCmd.Flags().IntVar(&inspectSampleRows, "sample", 3, "Number of sample rows to show")
}
