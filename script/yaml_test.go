package script

import "testing"

func TestLoadYAML(t *testing.T) {
	doc := []byte(`
inputTypes:
  airline:
    kind: freetext
    samples: ["Delta", "United"]
launchPhrases:
  - "Welcome aboard"
topLevelGoals:
  - airline
goals:
  - key: airline
    prompt: ["What airline?"]
    respondTo:
      - expecting: ["[[airline]]"]
`)
	s, err := Load(doc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s.Goals) != 1 || s.Goals[0].Key != "airline" {
		t.Fatalf("unexpected goals: %+v", s.Goals)
	}
	if s.InputTypes["airline"].SlotType("airline").Kind != FreeText {
		t.Errorf("expected airline slot type to be free text")
	}
}
