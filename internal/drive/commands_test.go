package drive

import "testing"

func TestClassify(t *testing.T) {
	t.Parallel()

	cases := map[string]Command{
		"stop":                      CommandStop,
		"Stop Recap":                CommandStop,
		"please STOP":               CommandStop,
		"replay":                    CommandReplay,
		"Replay recap":              CommandReplay,
		"can you play recap again":  CommandReplay,
		"rewind 10":                 CommandRewind,
		"Rewind ten seconds":        CommandRewind,
		"rewind":                    CommandNone,
		"Calgary to London in July": CommandNone,
		"":                          CommandNone,
		"   ":                       CommandNone,
		"stop and replay":           CommandStop,
		"replay then rewind 10":     CommandReplay,
	}

	for input, want := range cases {
		input := input
		want := want
		t.Run(input, func(t *testing.T) {
			t.Parallel()
			if got := Classify(input); got != want {
				t.Fatalf("Classify(%q) = %q, want %q", input, got, want)
			}
		})
	}
}

func TestRulesOrder(t *testing.T) {
	t.Parallel()

	want := []Command{CommandStop, CommandReplay, CommandRewind}
	if len(Rules) != len(want) {
		t.Fatalf("unexpected rule count: %d", len(Rules))
	}
	for i, rule := range Rules {
		if rule.Command != want[i] {
			t.Fatalf("rule %d = %q, want %q", i, rule.Command, want[i])
		}
	}
}
