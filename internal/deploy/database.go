package deploy

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/lakeshift/lakeshift/internal/ir"
)

// CreateStatements translates the analyzed collections into catalog DDL:
// catalog, schema, then one CREATE TABLE per collection with declared column
// types carried through verbatim. Statement order follows sorted collection
// names so repeated runs produce identical plans.
func CreateStatements(catalog, schema string, db *ir.Database) []string {
	statements := []string{
		fmt.Sprintf("CREATE CATALOG IF NOT EXISTS %s", catalog),
		fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s.%s", catalog, schema),
	}

	for _, name := range db.CollectionNames() {
		collection := db.Collections[name]
		var columns []string
		for _, field := range collection.Fields {
			column := field.Name + " " + field.DeclaredType
			if field.NotNull {
				column += " NOT NULL"
			}
			columns = append(columns, column)
		}
		if len(columns) == 0 {
			continue
		}
		statements = append(statements, fmt.Sprintf(
			"CREATE TABLE IF NOT EXISTS %s.%s.%s (%s)",
			catalog, schema, name, strings.Join(columns, ", ")))
	}
	return statements
}

// DatabaseDeployer runs catalog DDL through the workspace SQL statements
// API on a named warehouse.
type DatabaseDeployer struct {
	client      *Client
	warehouseID string
	log         *zap.Logger
}

// NewDatabaseDeployer creates a database deployer bound to a warehouse.
func NewDatabaseDeployer(client *Client, warehouseID string, log *zap.Logger) *DatabaseDeployer {
	return &DatabaseDeployer{client: client, warehouseID: warehouseID, log: log}
}

// Deploy executes the schema statements in order. The catalog and schema
// creates tolerate already-exists conditions through IF NOT EXISTS; any
// other failure stops the run.
func (d *DatabaseDeployer) Deploy(ctx context.Context, catalog, schema string, db *ir.Database) error {
	statements := CreateStatements(catalog, schema, db)
	d.log.Info("deploying database schema",
		zap.String("catalog", catalog),
		zap.String("schema", schema),
		zap.Int("statements", len(statements)))

	for _, stmt := range statements {
		if err := d.execute(ctx, stmt); err != nil {
			return fmt.Errorf("executing %q: %w", truncateStmt(stmt), err)
		}
	}
	return nil
}

func (d *DatabaseDeployer) execute(ctx context.Context, stmt string) error {
	body := map[string]any{
		"statement":    stmt,
		"warehouse_id": d.warehouseID,
		"wait_timeout": "30s",
	}
	var result struct {
		Status struct {
			State string `json:"state"`
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		} `json:"status"`
	}
	if err := d.client.do(ctx, http.MethodPost, "/api/2.0/sql/statements", body, &result); err != nil {
		return err
	}
	if result.Status.State == "FAILED" {
		return fmt.Errorf("statement failed: %s", result.Status.Error.Message)
	}
	return nil
}

func truncateStmt(stmt string) string {
	if len(stmt) > 60 {
		return stmt[:60] + "..."
	}
	return stmt
}
