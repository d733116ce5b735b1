package wallet

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RoundTrip(t *testing.T) {
	key, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	w, err := New(key.String())
	require.NoError(t, err)
	assert.Equal(t, key.PublicKey(), w.PublicKey)
	assert.Equal(t, key.PublicKey().String(), w.String())
}

func TestNew_InvalidKey(t *testing.T) {
	_, err := New("not-base58!!!")
	assert.Error(t, err)

	_, err = New("3yZe7d") // valid base58, wrong length
	assert.Error(t, err)
}

func TestLoadWallets(t *testing.T) {
	keyA, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	keyB, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "wallets.csv")
	content := fmt.Sprintf("Name,PrivateKey\nmain,%s\ntrader,%s\nbroken,garbage\n", keyA, keyB)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	wallets, err := LoadWallets(path)
	require.NoError(t, err)

	require.Len(t, wallets, 2, "unparseable rows are skipped")
	assert.Equal(t, keyA.PublicKey(), wallets["main"].PublicKey)
	assert.Equal(t, keyB.PublicKey(), wallets["trader"].PublicKey)
}

func TestLoadWallets_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wallets.csv")
	require.NoError(t, os.WriteFile(path, []byte("Name,PrivateKey\n"), 0600))

	_, err := LoadWallets(path)
	assert.Error(t, err)
}

func TestGetATA_DeterministicAndCached(t *testing.T) {
	w, err := NewRandom()
	require.NoError(t, err)
	mintKey, err := solana.NewRandomPrivateKey()
	require.NoError(t, err)
	mint := mintKey.PublicKey()

	first, err := w.GetATA(mint)
	require.NoError(t, err)
	second, err := w.GetATA(mint)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	expected, _, err := solana.FindAssociatedTokenAddress(w.PublicKey, mint)
	require.NoError(t, err)
	assert.Equal(t, expected, first)
}

func TestSignerFor(t *testing.T) {
	w, err := NewRandom()
	require.NoError(t, err)
	other, err := NewRandom()
	require.NoError(t, err)

	require.NotNil(t, w.SignerFor(w.PublicKey))
	assert.Equal(t, w.PrivateKey, *w.SignerFor(w.PublicKey))
	assert.Nil(t, w.SignerFor(other.PublicKey))
}
