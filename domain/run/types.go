package run

import (
	"crypto/sha256"
	"fmt"

	"kickpredict/domain/core"
)

// RunFingerprint ensures a training run can be replayed and compared
type RunFingerprint struct {
	DatasetHash   core.Hash `json:"dataset_hash"`
	TablesHash    core.Hash `json:"tables_hash"`
	SchemaVersion string    `json:"schema_version"`
	Seed          int64     `json:"seed"`
	CodeVersion   string    `json:"code_version"`
	Fingerprint   core.Hash `json:"fingerprint"` // Hash of all above
}

// NewRunFingerprint creates a fingerprint from determinism parameters
func NewRunFingerprint(datasetHash, tablesHash core.Hash, schemaVersion string, seed int64, codeVersion string) RunFingerprint {
	return RunFingerprint{
		DatasetHash:   datasetHash,
		TablesHash:    tablesHash,
		SchemaVersion: schemaVersion,
		Seed:          seed,
		CodeVersion:   codeVersion,
		Fingerprint:   computeRunFingerprint(datasetHash, tablesHash, schemaVersion, seed, codeVersion),
	}
}

func computeRunFingerprint(datasetHash, tablesHash core.Hash, schemaVersion string, seed int64, codeVersion string) core.Hash {
	data := fmt.Sprintf("dataset:%s|tables:%s|schema:%s|seed:%d|code:%s",
		datasetHash, tablesHash, schemaVersion, seed, codeVersion)

	hash := sha256.Sum256([]byte(data))
	return core.Hash(fmt.Sprintf("%x", hash))
}
