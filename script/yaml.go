package script

import (
	"io/ioutil"

	"gopkg.in/yaml.v2"
)

// AuthorScript is the on-disk shape of a goal/intent script, loaded
// from YAML the way sheens' crew.SpecSource and cmd/spectool load
// core.Spec values from files.
//
// convo.Engine.LoadScript converts this DTO into registration calls
// (AddInputTypes, AddPhraseEquivalents, DefineGoal, RespondTo); it is
// kept decoupled from package convo here to avoid an import cycle.
type AuthorScript struct {
	InputTypes        map[string]SlotTypeDoc   `yaml:"inputTypes"`
	PhraseEquivalents [][]string               `yaml:"phraseEquivalents"`
	LaunchPhrases     []string                 `yaml:"launchPhrases"`
	CloseRequests     []string                 `yaml:"closeRequests"`
	SpokenRate        string                   `yaml:"spokenRate"`
	TopLevelGoals     []string                 `yaml:"topLevelGoals"`
	Goals             []GoalDoc                `yaml:"goals"`
	Intents           []IntentDoc              `yaml:"intents"`
}

// SlotTypeDoc is the YAML shape of a SlotType declaration.
type SlotTypeDoc struct {
	Kind         string   `yaml:"kind"` // "builtin", "enum", "freetext"
	PlatformType string   `yaml:"platformType"`
	Values       []string `yaml:"values"`
	Samples      []string `yaml:"samples"`
}

// IntentDoc is the YAML shape of an IntentDef, minus its Go resolve
// callback, which an author registers programmatically after load by
// name.
type IntentDoc struct {
	Name      string   `yaml:"name"`
	Goal      string   `yaml:"goal"`
	Expecting []string `yaml:"expecting"`
	Doc       string   `yaml:"doc"`
}

// GoalDoc is the YAML shape of a GoalDef.
type GoalDoc struct {
	Key       string      `yaml:"key"`
	Prompt    []string    `yaml:"prompt"`
	Ask       []string    `yaml:"ask"`
	RespondTo []IntentDoc `yaml:"respondTo"`
	Doc       string      `yaml:"doc"`
}

// LoadFile reads a YAML-authored script from disk.
func LoadFile(path string) (*AuthorScript, error) {
	bs, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Load(bs)
}

// Load parses a YAML-authored script from bytes.
func Load(bs []byte) (*AuthorScript, error) {
	var s AuthorScript
	if err := yaml.Unmarshal(bs, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// SlotType converts the YAML doc form into a script.SlotType.
func (d SlotTypeDoc) SlotType(name string) SlotType {
	st := SlotType{Name: name, PlatformType: d.PlatformType, Values: d.Values, Samples: d.Samples}
	switch d.Kind {
	case "enum":
		st.Kind = CustomEnum
	case "freetext":
		st.Kind = FreeText
	default:
		st.Kind = BuiltIn
	}
	return st
}
