// Package corpus discovers the tokenizer-client log files §4.2 names as
// hit-list assembly input: word_log.<c>.div.<d>, link_url_log.<c>.div.<d>,
// meta_hit_list.<c>, and meta_link_set.<c>. It only glob-matches and
// validates file names; parsing their contents belongs to internal/hitlist.
package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	pdxerrors "github.com/standardbeagle/pulsedex/internal/errors"
)

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ClientLogSet is one tokenizer client's complete input file set for §4.2.
type ClientLogSet struct {
	Client        int
	WordLogs      map[int]string // division -> word_log.<c>.div.<d> path
	LinkURLLogs   map[int]string // division -> link_url_log.<c>.div.<d> path
	MetaHitList   string
	MetaLinkSet   string
}

// Discover globs logDir for every tokenizer client's log files and returns
// one ClientLogSet per client found, sorted by client id. logDivCount is the
// Tunables.LogDivCount a complete client must have a division file for;
// a client missing any division in [0, logDivCount) is a fatal
// misconfiguration per §4.2 ("Missing log division file is fatal").
func Discover(logDir string, logDivCount int) ([]ClientLogSet, error) {
	matches, err := doublestar.Glob(os.DirFS(logDir), "meta_hit_list.*")
	if err != nil {
		return nil, fmt.Errorf("corpus: glob meta_hit_list: %w", err)
	}

	clients := make(map[int]*ClientLogSet)
	for _, name := range matches {
		c, ok := parseSuffixInt(name, "meta_hit_list.")
		if !ok {
			continue
		}
		clients[c] = &ClientLogSet{
			Client:      c,
			WordLogs:    make(map[int]string),
			LinkURLLogs: make(map[int]string),
			MetaHitList: filepath.Join(logDir, name),
		}
	}

	for c, set := range clients {
		linkSet := filepath.Join(logDir, fmt.Sprintf("meta_link_set.%d", c))
		set.MetaLinkSet = linkSet

		for d := 0; d < logDivCount; d++ {
			wordLog := filepath.Join(logDir, fmt.Sprintf("word_log.%d.div.%d", c, d))
			linkLog := filepath.Join(logDir, fmt.Sprintf("link_url_log.%d.div.%d", c, d))
			if !fileExists(wordLog) {
				return nil, pdxerrors.NewCorrupted("corpus", d, wordLog, "missing log division file for declared client", errMissing(c, d))
			}
			if !fileExists(linkLog) {
				return nil, pdxerrors.NewCorrupted("corpus", d, linkLog, "missing log division file for declared client", errMissing(c, d))
			}
			set.WordLogs[d] = wordLog
			set.LinkURLLogs[d] = linkLog
		}
	}

	out := make([]ClientLogSet, 0, len(clients))
	for _, set := range clients {
		out = append(out, *set)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Client < out[j].Client })
	return out, nil
}

func parseSuffixInt(name, prefix string) (int, bool) {
	if !strings.HasPrefix(name, prefix) {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimPrefix(name, prefix))
	if err != nil {
		return 0, false
	}
	return n, true
}

func errMissing(client, division int) error {
	return fmt.Errorf("client %d division %d", client, division)
}
