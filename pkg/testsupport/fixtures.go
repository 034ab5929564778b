package testsupport

import (
	_ "embed"
	"encoding/json"
	"testing"

	"github.com/goliatone/go-game-config/configuration"
)

//go:embed testdata/records.json
var recordsJSON []byte

// Records returns the sample configurations in testdata/records.json, the
// same shape GET /api/configuration returns. Each call decodes a fresh copy.
func Records(t testing.TB) []configuration.Record {
	t.Helper()

	var records []configuration.Record
	if err := json.Unmarshal(recordsJSON, &records); err != nil {
		t.Fatalf("failed to decode records fixture: %v", err)
	}
	return records
}
