package corpus

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEmpty(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
}

func TestDiscoverFindsCompleteClientSet(t *testing.T) {
	dir := t.TempDir()
	writeEmpty(t, dir, "meta_hit_list.0")
	writeEmpty(t, dir, "meta_link_set.0")
	for d := 0; d < 3; d++ {
		writeEmpty(t, dir, "word_log.0.div."+strconv.Itoa(d))
		writeEmpty(t, dir, "link_url_log.0.div."+strconv.Itoa(d))
	}

	sets, err := Discover(dir, 3)
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.Equal(t, 0, sets[0].Client)
	assert.Len(t, sets[0].WordLogs, 3)
	assert.Len(t, sets[0].LinkURLLogs, 3)
	assert.NotEmpty(t, sets[0].MetaLinkSet)
}

func TestDiscoverFailsOnMissingDivision(t *testing.T) {
	dir := t.TempDir()
	writeEmpty(t, dir, "meta_hit_list.0")
	writeEmpty(t, dir, "meta_link_set.0")
	writeEmpty(t, dir, "word_log.0.div.0")
	writeEmpty(t, dir, "link_url_log.0.div.0")
	// division 1 missing entirely

	_, err := Discover(dir, 2)
	require.Error(t, err)
}

func TestDiscoverSortsClientsByID(t *testing.T) {
	dir := t.TempDir()
	for _, c := range []string{"2", "0", "1"} {
		writeEmpty(t, dir, "meta_hit_list."+c)
		writeEmpty(t, dir, "meta_link_set."+c)
	}

	sets, err := Discover(dir, 0)
	require.NoError(t, err)
	require.Len(t, sets, 3)
	assert.Equal(t, []int{0, 1, 2}, []int{sets[0].Client, sets[1].Client, sets[2].Client})
}
