package ledger_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanahlink/tanahd/internal/ledger"
)

func sampleTransactions() []ledger.Transaction {
	return []ledger.Transaction{
		{
			TxID:            "tx-1",
			Nama:            "Budi Santoso",
			NomorSertifikat: "SHM-001/2024",
			Lokasi:          "Sleman",
			Luas:            "250",
			FileHash:        "abc123",
			Timestamp:       1700000000.5,
		},
	}
}

func TestNewBlockComputesHash(t *testing.T) {
	b := ledger.NewBlock(2, 1700000001, sampleTransactions(), 35293, "prevhash")
	require.NotEmpty(t, b.Hash)
	assert.Equal(t, b.ComputeHash(), b.Hash)
}

func TestComputeHashIgnoresRecordedHash(t *testing.T) {
	b := ledger.NewBlock(2, 1700000001, sampleTransactions(), 35293, "prevhash")
	want := b.Hash

	b.Hash = "tampered"
	assert.Equal(t, want, b.ComputeHash())
}

func TestComputeHashCanonicalAcrossRepresentations(t *testing.T) {
	b := ledger.NewBlock(2, 1700000001, sampleTransactions(), 35293, "prevhash")

	// Round-trip through JSON with keys in a different order than the struct
	// declares them; the digest must not change.
	scrambled := `{
		"hash": "` + b.Hash + `",
		"proof": 35293,
		"previous_hash": "prevhash",
		"transactions": [{
			"timestamp": 1700000000.5,
			"file_hash": "abc123",
			"luas": "250",
			"lokasi": "Sleman",
			"nomor_sertifikat": "SHM-001/2024",
			"nama": "Budi Santoso",
			"txid": "tx-1"
		}],
		"timestamp": 1700000001,
		"index": 2
	}`

	var decoded ledger.Block
	require.NoError(t, json.Unmarshal([]byte(scrambled), &decoded))
	assert.Equal(t, b.Hash, decoded.ComputeHash())
}

func TestComputeHashSensitiveToContent(t *testing.T) {
	base := ledger.NewBlock(2, 1700000001, sampleTransactions(), 35293, "prevhash")

	changedTx := sampleTransactions()
	changedTx[0].Luas = "999"

	cases := map[string]ledger.Block{
		"index":         ledger.NewBlock(3, 1700000001, sampleTransactions(), 35293, "prevhash"),
		"timestamp":     ledger.NewBlock(2, 1700000002, sampleTransactions(), 35293, "prevhash"),
		"transactions":  ledger.NewBlock(2, 1700000001, changedTx, 35293, "prevhash"),
		"proof":         ledger.NewBlock(2, 1700000001, sampleTransactions(), 35294, "prevhash"),
		"previous_hash": ledger.NewBlock(2, 1700000001, sampleTransactions(), 35293, "otherhash"),
	}

	for field, b := range cases {
		assert.NotEqual(t, base.Hash, b.Hash, "changing %s must change the digest", field)
	}
}

func TestGenesisBlock(t *testing.T) {
	g := ledger.NewGenesisBlock(1700000000)
	assert.Equal(t, uint64(1), g.Index)
	assert.Equal(t, ledger.GenesisPreviousHash, g.PreviousHash)
	assert.Equal(t, uint64(0), g.Proof)
	assert.Empty(t, g.Transactions)
	assert.Equal(t, g.ComputeHash(), g.Hash)
}
