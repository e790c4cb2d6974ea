package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/lib/pq"
)

// requiredColumns are the columns the settlement engine's conditional writes
// depend on. Verified once at startup instead of branching on unknown-column
// errors per call.
var requiredColumns = map[string][]string{
	"bookings":           {"payment_status", "payment_ref", "transfer_ref", "commission_rate", "refunded_cents"},
	"mission_agreements": {"status", "mandate_validated", "sepa_mandate_ref"},
	"mission_payments":   {"status", "retry_count", "scheduled_date", "payment_ref"},
	"failed_transfers":   {"status", "retry_count", "max_retries", "transfer_ref"},
	"job_locks":          {"job_name", "holder", "locked_until"},
}

// VerifySchema checks that every required column exists, failing fast with a
// descriptive error listing everything missing.
func VerifySchema(ctx context.Context, db *sql.DB) error {
	query := `SELECT table_name, column_name FROM information_schema.columns
	          WHERE table_schema = 'public' AND table_name = ANY($1)`

	tables := make([]string, 0, len(requiredColumns))
	for table := range requiredColumns {
		tables = append(tables, table)
	}

	rows, err := db.QueryContext(ctx, query, pq.Array(tables))
	if err != nil {
		return fmt.Errorf("query schema: %w", err)
	}
	defer rows.Close()

	present := make(map[string]bool)
	for rows.Next() {
		var table, column string
		if err := rows.Scan(&table, &column); err != nil {
			return err
		}
		present[table+"."+column] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	var missing []string
	for table, columns := range requiredColumns {
		for _, column := range columns {
			if !present[table+"."+column] {
				missing = append(missing, table+"."+column)
			}
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("schema is missing required columns: %s", strings.Join(missing, ", "))
	}
	return nil
}
