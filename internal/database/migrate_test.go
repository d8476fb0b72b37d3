package database

import (
	"strings"
	"testing"
)

func TestSchemaEnforcesUniquenessInStore(t *testing.T) {
	s := Schema()
	for _, idx := range []string{
		"connection_requests_open_pair_idx",
		"job_applications_active_idx",
		"firm_bench_entries_open_idx",
	} {
		if !strings.Contains(s, "CREATE UNIQUE INDEX IF NOT EXISTS "+idx) {
			t.Fatalf("expected unique index %s in schema", idx)
		}
	}
}
