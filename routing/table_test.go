package routing

import (
	"testing"

	"github.com/matgreaves/evtrace/evtid"
	"github.com/matgreaves/evtrace/evtspec"
)

func TestBuild_RouteMatch(t *testing.T) {
	reg := evtspec.NewProviderRegistry()
	id := evtid.New()
	reg.Register("Foo", id)

	subs := map[string][]evtspec.Subscription{
		"sinkA": {{ProviderName: "Foo", MinLevel: evtspec.LevelWarning, Keywords: 0x1}},
		"sinkB": {{ProviderName: "Foo", MinLevel: evtspec.LevelVerbose}},
	}
	table := Build(subs, reg)

	ev := evtspec.Event{ProviderID: id, Level: evtspec.LevelError, Keywords: 0x1}
	got := table.Route(ev)
	if len(got) != 2 {
		t.Fatalf("Route() = %v, want 2 sinks", got)
	}
}

func TestBuild_UnresolvedSubscriptionSkipped(t *testing.T) {
	reg := evtspec.NewProviderRegistry()
	subs := map[string][]evtspec.Subscription{
		"sinkA": {{ProviderName: "Unknown", MinLevel: evtspec.LevelWarning}},
	}
	table := Build(subs, reg)
	if len(table.byProvider) != 0 {
		t.Fatalf("expected no routes for unresolved subscription, got %v", table.byProvider)
	}
}

func TestRoute_LevelFilter(t *testing.T) {
	reg := evtspec.NewProviderRegistry()
	id := evtid.New()
	reg.Register("Foo", id)
	table := Build(map[string][]evtspec.Subscription{
		"sinkA": {{ProviderName: "Foo", MinLevel: evtspec.LevelWarning}},
	}, reg)

	tooVerbose := evtspec.Event{ProviderID: id, Level: evtspec.LevelVerbose}
	if got := table.Route(tooVerbose); len(got) != 0 {
		t.Fatalf("Route() = %v, want none (too verbose)", got)
	}
}

func TestInstallAndGlobalRoute(t *testing.T) {
	reg := evtspec.NewProviderRegistry()
	id := evtid.New()
	reg.Register("Foo", id)
	table := Build(map[string][]evtspec.Subscription{
		"sinkA": {{ProviderName: "Foo", MinLevel: evtspec.LevelWarning}},
	}, reg)
	Install(table)
	defer Install(nil)

	ev := evtspec.Event{ProviderID: id, Level: evtspec.LevelError}
	if got := Route(ev); len(got) != 1 || got[0] != "sinkA" {
		t.Fatalf("Route() = %v, want [sinkA]", got)
	}
}

func TestHasSubscribers(t *testing.T) {
	reg := evtspec.NewProviderRegistry()
	id := evtid.New()
	reg.Register("Foo", id)
	table := Build(map[string][]evtspec.Subscription{
		"sinkA": {{ProviderName: "Foo", MinLevel: evtspec.LevelWarning}},
	}, reg)
	if !table.HasSubscribers(id) {
		t.Fatalf("HasSubscribers(id) = false, want true")
	}
	if table.HasSubscribers(evtid.New()) {
		t.Fatalf("HasSubscribers(unrelated) = true, want false")
	}
}
