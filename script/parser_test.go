package script

import (
	"reflect"
	"sort"
	"testing"
)

func TestStripPunctuationAndSpellNumbers(t *testing.T) {
	res := Parse([]string{"I need 2 tickets, please?"}, nil, nil)
	want := "I need two tickets please"
	if res.Utterances[0] != want {
		t.Errorf("got %q want %q", res.Utterances[0], want)
	}
}

func TestSlotRewriteBuiltIn(t *testing.T) {
	types := map[string]SlotType{
		"airline": {Name: "airline", Kind: BuiltIn, PlatformType: "AIRLINE"},
	}
	res := Parse([]string{"I'd like to fly [[airline]]"}, types, nil)
	want := "I'd like to fly {-|airline}"
	if res.Utterances[0] != want {
		t.Errorf("got %q want %q", res.Utterances[0], want)
	}
	if res.Slots["airline"] != "AIRLINE" {
		t.Errorf("expected airline slot type AIRLINE, got %v", res.Slots)
	}
}

func TestSlotRewriteFreeText(t *testing.T) {
	types := map[string]SlotType{
		"city": {Name: "city", Kind: FreeText, Samples: []string{"Denver", "Reno"}},
	}
	res := Parse([]string{"flying to [[city]]"}, types, nil)
	want := "flying to {Denver|Reno|city}"
	if res.Utterances[0] != want {
		t.Errorf("got %q want %q", res.Utterances[0], want)
	}
	if res.Slots["city"] != "FREE_TEXT" {
		t.Errorf("expected city to be free text, got %v", res.Slots)
	}
}

func TestUnknownSlotWarnsAndDefaultsFreeText(t *testing.T) {
	res := Parse([]string{"go to [[mystery]]"}, nil, nil)
	if len(res.Warnings) == 0 {
		t.Fatal("expected a warning for unknown slot")
	}
	if res.Slots["mystery"] != "FREE_TEXT" {
		t.Errorf("expected mystery to default to free text, got %v", res.Slots)
	}
}

func TestSlotExtractionSoundness(t *testing.T) {
	types := map[string]SlotType{
		"airline": {Name: "airline", Kind: BuiltIn, PlatformType: "AIRLINE"},
		"city":    {Name: "city", Kind: FreeText, Samples: []string{"Denver"}},
	}
	inputs := []string{"fly [[airline]] to [[city]]"}
	res := Parse(inputs, types, nil)
	for name := range res.Slots {
		found := false
		for _, u := range inputs {
			if contains(u, "[["+name+"]]") {
				found = true
			}
		}
		if !found {
			t.Errorf("slot %q in result but not present as [[%s]] in input", name, name)
		}
	}
}

func contains(s, sub string) bool {
	return len(s) >= len(sub) && (indexOf(s, sub) >= 0)
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func TestPhraseEquivalentExpansion(t *testing.T) {
	sets := []PhraseEquivalentSet{{"yes", "yeah", "yep"}}
	res := Parse([]string{"yes please"}, nil, sets)
	if len(res.Utterances) != 3 {
		t.Fatalf("expected 3 utterances, got %v", res.Utterances)
	}
}

func TestPhraseEquivalentCommutativity(t *testing.T) {
	setsAB := []PhraseEquivalentSet{{"hi", "hello"}, {"bye", "goodbye"}}
	setsBA := []PhraseEquivalentSet{{"bye", "goodbye"}, {"hi", "hello"}}
	a := Parse([]string{"hi there, time to say bye"}, nil, setsAB).Utterances
	b := Parse([]string{"hi there, time to say bye"}, nil, setsBA).Utterances
	sort.Strings(a)
	sort.Strings(b)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("expected commutative expansion:\na=%v\nb=%v", a, b)
	}
}

func TestDeterminism(t *testing.T) {
	sets := []PhraseEquivalentSet{{"yes", "yeah"}}
	types := map[string]SlotType{"airline": {Kind: BuiltIn, PlatformType: "AIRLINE"}}
	r1 := Parse([]string{"yes [[airline]]"}, types, sets)
	r2 := Parse([]string{"yes [[airline]]"}, types, sets)
	if !reflect.DeepEqual(r1, r2) {
		t.Error("expected Parse to be a pure function of its inputs")
	}
}
