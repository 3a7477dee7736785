package output

import "testing"

func TestSayJoinsWithPause(t *testing.T) {
	m := New(nil)
	m.Say("Hi", false)
	m.Say("there", false)
	got := m.Compose()
	want := "Hi " + Pause + " there"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestSayQuickSkipsPause(t *testing.T) {
	m := New(nil)
	m.Say("Hi", false)
	m.Say("there", true)
	got := m.Compose()
	want := "Hi there"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestThreePromptsCollapseToOneQuestion(t *testing.T) {
	m := New(nil)
	m.Prompt("p1")
	if m.Halted() {
		t.Fatal("should not halt after one prompt")
	}
	m.Prompt("p2")
	if m.Halted() {
		t.Fatal("should not halt after two prompts")
	}
	m.Prompt("p3")
	if !m.Halted() {
		t.Fatal("should halt after three prompts")
	}
	got := m.Compose()
	want := Pause + " p1, p2 or p3"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestAskHaltsImmediately(t *testing.T) {
	m := New(nil)
	m.Ask("what airline?")
	if !m.Halted() {
		t.Fatal("single ask should halt the loop")
	}
}

func TestEmptyCompositionIsEmptyString(t *testing.T) {
	m := New(nil)
	if got := m.Compose(); got != "" {
		t.Errorf("expected empty composition, got %q", got)
	}
}

func TestInterpolationAndAmpersand(t *testing.T) {
	lookup := func(ref string) (string, bool) {
		if ref == "name" {
			return "Alex & Sam", true
		}
		return "", false
	}
	m := New(lookup)
	m.Say("Hello {{name}}", true)
	got := m.Compose()
	want := "Hello Alex and Sam"
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestSpokenRateWraps(t *testing.T) {
	m := New(nil)
	m.SpokenRate = "slow"
	m.Say("hi", true)
	got := m.Compose()
	want := `<prosody rate="slow">hi</prosody>`
	if got != want {
		t.Errorf("got %q want %q", got, want)
	}
}

func TestKeepSessionOpenDefault(t *testing.T) {
	m := New(nil)
	if !m.KeepSessionOpen() {
		t.Error("expected session to stay open by default")
	}
	m.EndSession = true
	if m.KeepSessionOpen() {
		t.Error("expected session to close when requested")
	}
}
