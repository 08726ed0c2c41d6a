package tools

import (
	"context"
	"fmt"
	"io"

	"github.com/latoulicious/holocron/pkg/common"
	"github.com/latoulicious/holocron/pkg/favorites"
	"github.com/latoulicious/holocron/pkg/swapi"
)

// FavoritesReport summarizes a favorites export checked against the API
type FavoritesReport struct {
	Entries    int
	Resolved   int
	Unresolved []string
	Renamed    []string
}

// FavoritesCheck loads a favorites export and confirms each entry still resolves upstream
func FavoritesCheck(ctx context.Context, client *swapi.Client, storage favorites.Storage, out io.Writer) (FavoritesReport, error) {
	fmt.Fprintln(out, "=== Favorites Export Check ===")

	store := favorites.NewStore(storage)
	if err := store.Load(); err != nil {
		fmt.Fprintf(out, "❌ Failed to load favorites: %v\n", err)
		return FavoritesReport{}, err
	}

	entries := store.List()
	report := FavoritesReport{Entries: len(entries), Unresolved: []string{}, Renamed: []string{}}
	fmt.Fprintf(out, "⭐ %d favorites found\n", len(entries))

	refs := make([]string, 0, len(entries))
	byRef := make(map[string]favorites.Entry, len(entries))
	for _, e := range entries {
		ref := e.URL
		if _, ok := swapi.IDFromURL(ref); !ok && e.ID > 0 {
			ref = fmt.Sprintf("%s/people/%d/", client.BaseURL(), e.ID)
		}
		if _, ok := swapi.IDFromURL(ref); !ok {
			fmt.Fprintf(out, "   ⚠️  %s has no usable id or url\n", e.Name)
			report.Unresolved = append(report.Unresolved, e.Name)
			continue
		}
		refs = append(refs, ref)
		byRef[ref] = e
	}

	joined := common.FetchAll(ctx, refs, common.DefaultFetchLimit, func(ctx context.Context, ref string) (swapi.Person, error) {
		id, _ := swapi.IDFromURL(ref)
		return client.GetPerson(ctx, id)
	})

	failed := make(map[string]bool, len(joined.Failures))
	for _, f := range joined.Failures {
		failed[f.Ref] = true
		report.Unresolved = append(report.Unresolved, byRef[f.Ref].Name)
		fmt.Fprintf(out, "   ❌ %s (%s): %v\n", byRef[f.Ref].Name, swapi.Classify(f.Err), f.Err)
	}

	names := make(map[string]bool, len(joined.Values))
	for _, p := range joined.Values {
		names[p.Name] = true
	}
	for _, ref := range refs {
		if failed[ref] {
			continue
		}
		report.Resolved++
		if e := byRef[ref]; !names[e.Name] {
			report.Renamed = append(report.Renamed, e.Name)
			fmt.Fprintf(out, "   ⚠️  %s no longer matches the upstream name\n", e.Name)
		}
	}

	fmt.Fprintf(out, "✅ Resolved %d of %d favorites\n", report.Resolved, report.Entries)
	fmt.Fprintln(out, "\n=== Favorites Export Check Complete ===")
	return report, nil
}
