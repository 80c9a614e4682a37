package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexwlchan/blink/internal/domain"
	"github.com/alexwlchan/blink/internal/store"
)

// blink runs the root command against a temporary library and returns stdout
func blink(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	configPath := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		contents := "logging:\n  file: " + filepath.Join(dir, "blink.log") + "\n"
		require.NoError(t, os.WriteFile(configPath, []byte(contents), 0644))
	}

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", configPath, "--library", filepath.Join(dir, "library.db")}, args...))
	err := root.Execute()
	return out.String(), err
}

func firstAsset(t *testing.T, dir string) domain.Asset {
	t.Helper()
	s, err := store.Open(filepath.Join(dir, "library.db"), store.Options{})
	require.NoError(t, err)
	defer s.Close()
	assets, err := s.FetchAssets(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, assets)
	return assets[0]
}

func TestSeedAndStats(t *testing.T) {
	dir := t.TempDir()

	out, err := blink(t, dir, "seed", "-n", "5", "--seed", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "Added 5 photos")

	out, err = blink(t, dir, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "5 photos")
	assert.Contains(t, out, "Unreviewed")
}

func TestReviewIsExclusive(t *testing.T) {
	dir := t.TempDir()
	_, err := blink(t, dir, "seed", "-n", "3", "--seed", "1")
	require.NoError(t, err)
	id := string(firstAsset(t, dir).ID)

	_, err = blink(t, dir, "review", id, "approved")
	require.NoError(t, err)
	out, err := blink(t, dir, "review", id, "rejected")
	require.NoError(t, err)
	assert.Contains(t, out, id+": rejected")

	s, err := store.Open(filepath.Join(dir, "library.db"), store.Options{})
	require.NoError(t, err)
	defer s.Close()
	approved, err := s.FetchAlbum(context.Background(), domain.StateApproved)
	require.NoError(t, err)
	assert.NotContains(t, approved, id)
}

func TestReviewUnknownAsset(t *testing.T) {
	dir := t.TempDir()
	_, err := blink(t, dir, "review", "missing", "approved")
	assert.Error(t, err)

	_, err = blink(t, dir, "review", "missing", "sideways")
	assert.ErrorContains(t, err, "unknown review state")
}

func TestFindAndRemove(t *testing.T) {
	dir := t.TempDir()
	_, err := blink(t, dir, "seed", "-n", "4", "--seed", "3")
	require.NoError(t, err)
	asset := firstAsset(t, dir)
	id := string(asset.ID)

	out, err := blink(t, dir, "find", asset.Filename)
	require.NoError(t, err)
	assert.Contains(t, out, id)

	out, err = blink(t, dir, "remove", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 1 photo")

	out, err = blink(t, dir, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "3 photos")
}

func TestVersion(t *testing.T) {
	out, err := blink(t, t.TempDir(), "version")
	require.NoError(t, err)
	assert.Equal(t, "blink dev\n", out)
}
