package render

import (
	"reflect"
	"strings"
	"testing"

	"lifecoo/internal/domain"
)

func sampleResult() domain.OptimizeResult {
	return domain.OptimizeResult{
		ExecRecapBullets: []string{"Fly YYC to LHR via YVR", "Depart 09:10", "Arrive next morning"},
		RoutingOptions: []domain.RoutingOption{
			{Title: "Via Vancouver", Bullets: []string{"1 stop", "2h layover", "Daytime"}},
			{Title: "", Bullets: nil},
		},
		RiskRadarBullets: []string{"Tight July demand"},
		RiskLevel:        "High",
	}
}

func TestRenderProjectsAllSections(t *testing.T) {
	t.Parallel()

	view := Render(sampleResult())

	if len(view.Recap) != 3 || view.Recap[0] != "Fly YYC to LHR via YVR" {
		t.Fatalf("unexpected recap: %v", view.Recap)
	}
	if len(view.Options) != 2 {
		t.Fatalf("expected two option blocks, got %d", len(view.Options))
	}
	if view.Options[1].Title != "Option" {
		t.Fatalf("expected default option title, got %q", view.Options[1].Title)
	}
	if view.Options[1].Bullets == nil || len(view.Options[1].Bullets) != 0 {
		t.Fatalf("expected empty (not placeholder) bullet list, got %#v", view.Options[1].Bullets)
	}
	if view.OptionsPlaceholder != "" {
		t.Fatalf("unexpected options placeholder: %q", view.OptionsPlaceholder)
	}
	if !view.Risk.High || view.Risk.Low || view.Risk.Medium || view.Risk.Level != domain.RiskHigh {
		t.Fatalf("unexpected indicator: %+v", view.Risk)
	}
}

func TestRenderPlaceholdersForEmptyLists(t *testing.T) {
	t.Parallel()

	view := Render(domain.OptimizeResult{})
	if !reflect.DeepEqual(view.Recap, []string{"No recap returned."}) {
		t.Fatalf("unexpected recap placeholder: %v", view.Recap)
	}
	if !reflect.DeepEqual(view.Risks, []string{"No risk details returned."}) {
		t.Fatalf("unexpected risk placeholder: %v", view.Risks)
	}
	if len(view.Options) != 0 || view.OptionsPlaceholder != "No routing options returned." {
		t.Fatalf("unexpected options: %+v %q", view.Options, view.OptionsPlaceholder)
	}
	if !view.Risk.Medium {
		t.Fatalf("expected medium default, got %+v", view.Risk)
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	t.Parallel()

	result := sampleResult()
	first := Render(result)
	second := Render(result)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("render is not idempotent:\n%+v\n%+v", first, second)
	}
	if !reflect.DeepEqual(result, sampleResult()) {
		t.Fatalf("render mutated its input")
	}

	first.Recap[0] = "changed"
	if Render(result).Recap[0] == "changed" {
		t.Fatalf("view shares backing storage with result")
	}
}

func TestIndicatorDefaultsToMedium(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "Severe", "unknown", "MEDIUM", "  "} {
		indicator := Render(domain.OptimizeResult{RiskLevel: raw}).Risk
		if !indicator.Medium || indicator.Low || indicator.High {
			t.Fatalf("risk %q: expected only medium, got %+v", raw, indicator)
		}
	}

	if got := Render(domain.OptimizeResult{RiskLevel: "low"}).Risk; !got.Low || got.Medium {
		t.Fatalf("expected low indicator, got %+v", got)
	}
}

func TestEmptyView(t *testing.T) {
	t.Parallel()

	view := Empty()
	if view.Recap[0] != "No recap yet." || view.Risks[0] != "No risk details yet." || view.OptionsPlaceholder != "No routing options yet." {
		t.Fatalf("unexpected empty view: %+v", view)
	}
}

func TestSummary(t *testing.T) {
	t.Parallel()

	got := Summary(sampleResult())
	want := "Fly YYC to LHR via YVR. Depart 09:10. Best option: Via Vancouver. 1 stop. 2h layover. Alternate option: Alternate option. Overall risk level: High. Key risks: Tight July demand"
	if got != want {
		t.Fatalf("unexpected summary:\n got %q\nwant %q", got, want)
	}
}

func TestSummaryCleansWhitespaceAndDots(t *testing.T) {
	t.Parallel()

	got := Summary(domain.OptimizeResult{ExecRecapBullets: []string{"Line one.\n\nline   two."}})
	if strings.Contains(got, "\n") || strings.Contains(got, "  ") || strings.Contains(got, "..") {
		t.Fatalf("summary not cleaned: %q", got)
	}
	if !strings.HasSuffix(got, "Overall risk level: Medium.") {
		t.Fatalf("expected medium risk sentence, got %q", got)
	}
}

func TestTerminalIncludesSections(t *testing.T) {
	t.Parallel()

	out := Terminal(Render(sampleResult()))
	for _, want := range []string{"Executive recap", "Via Vancouver", "Risk radar", "Tight July demand", "[High]"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in terminal output:\n%s", want, out)
		}
	}

	empty := Terminal(Empty())
	if !strings.Contains(empty, "No routing options yet.") {
		t.Fatalf("expected options placeholder in:\n%s", empty)
	}
}
