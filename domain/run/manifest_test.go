package run

import (
	"testing"

	"kickpredict/domain/campaign"
	"kickpredict/domain/core"
)

func TestRunFingerprint_Deterministic(t *testing.T) {
	datasetHash := core.Hash("test-dataset")
	tablesHash := core.Hash("test-tables")

	fp1 := NewRunFingerprint(datasetHash, tablesHash, "v1", 42, "1.0.0")
	fp2 := NewRunFingerprint(datasetHash, tablesHash, "v1", 42, "1.0.0")

	if fp1.Fingerprint != fp2.Fingerprint {
		t.Errorf("Fingerprints not identical: %s vs %s", fp1.Fingerprint, fp2.Fingerprint)
	}
	if fp1.TablesHash != tablesHash {
		t.Errorf("TablesHash mismatch: %s vs %s", fp1.TablesHash, tablesHash)
	}
	if fp1.Seed != 42 {
		t.Errorf("Seed mismatch: %d vs %d", fp1.Seed, 42)
	}
}

func TestRunFingerprint_Unique(t *testing.T) {
	base := NewRunFingerprint("dataset", "tables", "v1", 42, "1.0.0")

	testCases := []struct {
		name string
		fp   RunFingerprint
	}{
		{"different dataset", NewRunFingerprint("other", "tables", "v1", 42, "1.0.0")},
		{"different tables", NewRunFingerprint("dataset", "other", "v1", 42, "1.0.0")},
		{"different schema", NewRunFingerprint("dataset", "tables", "v2", 42, "1.0.0")},
		{"different seed", NewRunFingerprint("dataset", "tables", "v1", 43, "1.0.0")},
		{"different code", NewRunFingerprint("dataset", "tables", "v1", 42, "1.0.1")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.fp.Fingerprint == base.Fingerprint {
				t.Errorf("Fingerprint should be different for %s", tc.name)
			}
		})
	}
}

func TestManifest_Validate(t *testing.T) {
	fp := NewRunFingerprint("dataset", "tables", "v1", 42, "1.0.0")
	m := NewManifest(core.RunID("run-1"), "ks.csv", campaign.CleanReport{Total: 3, Kept: 2}, Metrics{}, fp)

	if err := m.Validate(); err != nil {
		t.Fatalf("Expected valid manifest, got %v", err)
	}
	if m.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}

	m.RunID = ""
	if err := m.Validate(); err == nil {
		t.Error("Expected error for empty run ID")
	}
}
