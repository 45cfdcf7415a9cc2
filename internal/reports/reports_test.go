package reports

import (
	"context"
	"testing"

	"fishcast/internal/types"
)

func TestStaticProviderSignal(t *testing.T) {
	p := NewStaticProvider(map[string]types.ReportSignal{
		"an_moda": {RecentCount: 3, NaturalBaitBias: true, HasRecent: true},
	})

	got, err := p.Signal(context.Background(), "an_moda")
	if err != nil {
		t.Fatalf("Signal: %v", err)
	}
	if got.RecentCount != 3 || !got.NaturalBaitBias || !got.HasRecent {
		t.Errorf("signal = %+v", got)
	}
}

func TestStaticProviderUnknownSpot(t *testing.T) {
	p := NewStaticProvider(nil)

	got, err := p.Signal(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("Signal: %v", err)
	}
	if got != (types.ReportSignal{}) {
		t.Errorf("signal = %+v, want zero value", got)
	}
}

func TestStaticProviderCopiesInput(t *testing.T) {
	table := map[string]types.ReportSignal{
		"an_moda": {RecentCount: 1, HasRecent: true},
	}
	p := NewStaticProvider(table)

	table["an_moda"] = types.ReportSignal{RecentCount: 99}

	got, _ := p.Signal(context.Background(), "an_moda")
	if got.RecentCount != 1 {
		t.Errorf("provider aliased the caller's map: %+v", got)
	}
}
