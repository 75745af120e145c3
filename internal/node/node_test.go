package node

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanahlink/tanahd/internal/ledger"
	"github.com/tanahlink/tanahd/internal/storage"
)

func newTestNode(t *testing.T, difficulty int) *Node {
	t.Helper()
	n, err := New(Options{Difficulty: difficulty})
	require.NoError(t, err)
	return n
}

func minedChain(t *testing.T, difficulty, length int) []ledger.Block {
	t.Helper()
	chain := ledger.NewStore(difficulty)
	for chain.Length() < length {
		head := chain.Head()
		proof := ledger.ProofOfWork(head.Proof, difficulty)
		block := ledger.NewBlock(head.Index+1, 1700000100, []ledger.Transaction{{
			TxID: "peer-tx", Nama: "Siti Aminah", Luas: "400", Timestamp: 1700000000,
		}}, proof, head.Hash)
		require.NoError(t, chain.Append(block))
	}
	return chain.Blocks()
}

func TestNewNodeBootsGenesis(t *testing.T) {
	n := newTestNode(t, 1)
	assert.Equal(t, 1, n.Length())
	assert.Equal(t, 0, n.MempoolLen())
	assert.NotEmpty(t, n.Identifier())
}

func TestSubmitBuffersTransaction(t *testing.T) {
	n := newTestNode(t, 1)

	tx, err := n.Submit(ledger.Transaction{Nama: "Budi Santoso", NomorSertifikat: "SHM-001", Lokasi: "Sleman", Luas: "250"})
	require.NoError(t, err)
	assert.NotEmpty(t, tx.TxID)
	assert.Equal(t, 1, n.MempoolLen())
}

func TestMineEmptyMempool(t *testing.T) {
	n := newTestNode(t, 1)

	_, err := n.Mine()
	assert.ErrorIs(t, err, ErrEmptyMempool)
	assert.Equal(t, 1, n.Length())
}

func TestMineCommitsSnapshot(t *testing.T) {
	n := newTestNode(t, 1)

	tx, err := n.Submit(ledger.Transaction{Nama: "Budi Santoso", NomorSertifikat: "SHM-001", Lokasi: "Sleman", Luas: "250"})
	require.NoError(t, err)

	block, err := n.Mine()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), block.Index)
	require.Len(t, block.Transactions, 1)
	assert.Equal(t, tx.TxID, block.Transactions[0].TxID)

	// Committed transactions leave the mempool; the chain stays valid.
	assert.Equal(t, 0, n.MempoolLen())
	assert.NoError(t, ledger.ValidateChain(n.Chain(), n.Difficulty()))
}

func TestMineRejectedWhenChainReplacedMidSearch(t *testing.T) {
	n := newTestNode(t, 1)
	longer := minedChain(t, 1, 3)

	// Swap in a proof search that lets the resolver win the race: the chain
	// is replaced while the miner is off-lock, so the stale block must be
	// rejected at append time instead of corrupting the new chain.
	n.pow = func(lastProof uint64, difficulty int) uint64 {
		require.NoError(t, n.AdoptChain(longer))
		return ledger.ProofOfWork(lastProof, difficulty)
	}

	_, err := n.Submit(ledger.Transaction{Nama: "Budi Santoso", NomorSertifikat: "SHM-001", Lokasi: "Sleman", Luas: "250"})
	require.NoError(t, err)

	_, err = n.Mine()
	assert.ErrorIs(t, err, ledger.ErrChainLinkage)
	assert.Equal(t, 3, n.Length())

	// The interrupted attempt must not lose the transaction.
	assert.Equal(t, 1, n.MempoolLen())
}

func TestAdoptChainRequiresStrictlyLonger(t *testing.T) {
	n := newTestNode(t, 1)

	sameLength := minedChain(t, 1, 1)
	assert.ErrorIs(t, n.AdoptChain(sameLength), ErrNotLonger)
	assert.Equal(t, 1, n.Length())
}

func TestAdoptChainReconcilesMempool(t *testing.T) {
	n := newTestNode(t, 1)

	// Buffer the same record the peer chain already embeds, plus one more.
	added, err := n.MergeMempool([]ledger.Transaction{
		{TxID: "peer-tx", Nama: "Siti Aminah", Luas: "400", Timestamp: 1700000000},
		{TxID: "local-tx", Nama: "Budi Santoso", Luas: "250", Timestamp: 1700000001},
	})
	require.NoError(t, err)
	require.Equal(t, 2, added)

	require.NoError(t, n.AdoptChain(minedChain(t, 1, 2)))

	pending := n.Mempool()
	require.Len(t, pending, 1)
	assert.Equal(t, "local-tx", pending[0].TxID)
}

func TestAdoptChainRejectsInvalidChain(t *testing.T) {
	n := newTestNode(t, 1)

	longer := minedChain(t, 1, 3)
	longer[1].Transactions[0].Luas = "tampered"

	require.Error(t, n.AdoptChain(longer))
	assert.Equal(t, 1, n.Length())
}

func TestNodeRestoresPersistedState(t *testing.T) {
	dir := t.TempDir()

	store, err := storage.Open(dir, 5000)
	require.NoError(t, err)

	n, err := New(Options{Difficulty: 1, Store: store})
	require.NoError(t, err)

	_, err = n.Submit(ledger.Transaction{Nama: "Budi Santoso", NomorSertifikat: "SHM-001", Lokasi: "Sleman", Luas: "250"})
	require.NoError(t, err)
	_, err = n.Mine()
	require.NoError(t, err)
	_, err = n.Submit(ledger.Transaction{Nama: "Siti Aminah", NomorSertifikat: "SHM-002", Lokasi: "Bantul", Luas: "400"})
	require.NoError(t, err)

	require.NoError(t, store.Close())

	store, err = storage.Open(dir, 5000)
	require.NoError(t, err)
	defer store.Close()

	restored, err := New(Options{Difficulty: 1, Store: store})
	require.NoError(t, err)
	assert.Equal(t, 2, restored.Length())
	assert.Equal(t, 1, restored.MempoolLen())
	assert.Equal(t, n.Chain(), restored.Chain())
}
