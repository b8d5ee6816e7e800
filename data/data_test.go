package data_test

import (
	"context"
	"io/fs"
	"maps"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/malariainfo/data"
	"github.com/dmitrymomot/malariainfo/pkg/decisiontree"
	"github.com/dmitrymomot/malariainfo/pkg/messages"
)

var locales = []string{"en", "yo"}

func TestDecisionTree(t *testing.T) {
	t.Parallel()

	tree, err := decisiontree.LoadFS(data.FS, data.DecisionTreeFile)
	require.NoError(t, err)

	for _, id := range tree.IDs() {
		node, err := tree.Node(id)
		require.NoError(t, err)

		for _, locale := range locales {
			require.NotEmpty(t, node.Question[locale], "node %q question in %s", id, locale)
		}

		for _, code := range node.OptionCodes() {
			for _, locale := range locales {
				require.NotEmpty(t, node.Options[code][locale], "node %q option %q in %s", id, code, locale)
			}

			if next, ok := node.NextID(code); ok {
				_, err := tree.Node(next)
				require.NoError(t, err, "node %q option %q", id, code)
				continue
			}

			res, ok := node.Outcome(code)
			require.True(t, ok, "node %q option %q", id, code)
			for _, locale := range locales {
				require.NotEmpty(t, res.Text(locale))
			}
		}
	}
}

func TestDecisionTree_AllNodesReachable(t *testing.T) {
	t.Parallel()

	tree, err := decisiontree.LoadFS(data.FS, data.DecisionTreeFile)
	require.NoError(t, err)

	seen := map[string]bool{}
	queue := []string{tree.RootID()}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id] {
			continue
		}
		seen[id] = true

		node, err := tree.Node(id)
		require.NoError(t, err)
		for _, code := range node.OptionCodes() {
			if next, ok := node.NextID(code); ok {
				queue = append(queue, next)
			}
		}
	}

	require.Equal(t, tree.IDs(), slices.Sorted(maps.Keys(seen)))
}

func TestTranslations_KeyParity(t *testing.T) {
	t.Parallel()

	f := messages.NewFSFetcher(data.Translations())
	ctx := context.Background()

	en, err := f.Fetch(ctx, "en")
	require.NoError(t, err)
	yo, err := f.Fetch(ctx, "yo")
	require.NoError(t, err)

	enKeys := slices.Sorted(maps.Keys(en.Flatten()))
	yoKeys := slices.Sorted(maps.Keys(yo.Flatten()))
	require.Equal(t, enKeys, yoKeys)
}

func TestContent_EveryPageInEveryLocale(t *testing.T) {
	t.Parallel()

	pages := map[string][]string{}
	err := fs.WalkDir(data.Content(), ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		dir, name, _ := strings.Cut(p, "/")
		pages[dir] = append(pages[dir], name)
		return nil
	})
	require.NoError(t, err)

	for _, locale := range locales {
		require.NotEmpty(t, pages[locale], locale)
	}
	require.Equal(t, pages["en"], pages["yo"])
}

func TestStylesheet(t *testing.T) {
	t.Parallel()

	css, err := fs.ReadFile(data.FS, data.StaticDir+"/app.css")
	require.NoError(t, err)
	require.Contains(t, string(css), ".chat")
}
