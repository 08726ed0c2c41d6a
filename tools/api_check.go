package tools

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/latoulicious/holocron/pkg/common"
	"github.com/latoulicious/holocron/pkg/swapi"
)

// APICheck exercises the SWAPI endpoints the catalog depends on
func APICheck(ctx context.Context, client *swapi.Client, out io.Writer) error {
	fmt.Fprintln(out, "=== SWAPI Connectivity Check ===")
	fmt.Fprintf(out, "📡 Base URL: %s\n", client.BaseURL())

	start := time.Now()
	if err := client.Ping(ctx); err != nil {
		fmt.Fprintf(out, "❌ API root unreachable (%s): %v\n", swapi.Classify(err), err)
		return err
	}
	fmt.Fprintf(out, "✅ API root answered in %v\n", time.Since(start).Round(time.Millisecond))

	page, err := client.ListPeople(ctx, 1)
	if err != nil {
		fmt.Fprintf(out, "❌ People listing failed (%s): %v\n", swapi.Classify(err), err)
		return err
	}
	fmt.Fprintf(out, "✅ People listing: %d results on page 1, %d total, next page advertised: %t\n", len(page.Results), page.Count, page.HasNext())
	if len(page.Results) == 0 {
		fmt.Fprintln(out, "⚠️  Listing is empty, skipping record checks")
		return nil
	}

	person, err := client.GetPerson(ctx, 1)
	if err != nil {
		fmt.Fprintf(out, "❌ Character record failed (%s): %v\n", swapi.Classify(err), err)
		return err
	}
	fmt.Fprintf(out, "✅ Character record: %s (%d films)\n", person.Name, len(person.Films))

	films := common.FetchAll(ctx, person.Films, common.DefaultFetchLimit, client.GetFilm)
	fmt.Fprintf(out, "🎬 Films resolved: %d, failed: %d\n", len(films.Values), len(films.Failures))
	for _, f := range films.Failures {
		fmt.Fprintf(out, "   ⚠️  %s: %v\n", f.Ref, f.Err)
	}

	stats := client.Metrics().GetStats()
	fmt.Fprintf(out, "📊 Requests: %d, failures: %d, average latency: %v\n", stats.Requests, stats.Failures, stats.AverageLatency)
	fmt.Fprintln(out, "\n=== SWAPI Connectivity Check Complete ===")
	return nil
}
