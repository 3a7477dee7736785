package shortjson

import (
	"reflect"
	"testing"

	. "github.com/Comcast/convoengine/util/testutil"
)

func TestRoundTrip(t *testing.T) {
	cases := [][]Obj{
		{},
		{{Key: "airline"}},
		{{Key: "airline", Flags: []string{"queried"}}},
		{{Key: "a", Flags: []string{"queried", "done"}}, {Key: "b"}},
	}
	for _, c := range cases {
		enc := ArrToSJN(c)
		dec := SjnToArr(enc)
		if len(c) == 0 {
			if len(dec) != 0 {
				t.Errorf("expected empty decode for %v, got %v", c, dec)
			}
			continue
		}
		if !reflect.DeepEqual(normalize(c), normalize(dec)) {
			t.Errorf("round trip mismatch: %s -> %q -> %s", JS(c), enc, JS(dec))
		}
	}
}

func normalize(objs []Obj) []Obj {
	acc := make([]Obj, len(objs))
	for i, o := range objs {
		flags := o.Flags
		if flags == nil {
			flags = []string{}
		}
		acc[i] = Obj{Key: o.Key, Flags: flags}
	}
	return acc
}

func TestEmptyDecodesToEmpty(t *testing.T) {
	dec := SjnToArr("")
	if len(dec) != 0 {
		t.Errorf("expected empty list, got %v", dec)
	}
}

func TestRemoveIsLeftmost(t *testing.T) {
	objs := []Obj{{Key: "k", Flags: []string{"a"}}, {Key: "other"}, {Key: "k", Flags: []string{"b"}}}
	enc := ArrToSJN(objs)
	removed := Remove(enc, "k")
	dec := SjnToArr(removed)
	if len(dec) != 2 {
		t.Fatalf("expected 2 frames after remove, got %d: %s", len(dec), JS(dec))
	}
	if dec[0].Key != "other" {
		t.Errorf("expected 'other' first, got %q", dec[0].Key)
	}
	if dec[1].Key != "k" || !dec[1].HasFlag("b") {
		t.Errorf("expected remaining 'k' frame with flag b, got %v", dec[1])
	}
}

func TestContains(t *testing.T) {
	enc := ArrToSJN([]Obj{{Key: "airline", Flags: []string{"queried"}}})
	if !Contains(enc, "airline") {
		t.Error("expected Contains to find airline")
	}
	if Contains(enc, "air") {
		t.Error("Contains should respect word boundary")
	}
}

func TestPush(t *testing.T) {
	enc := Push("", "a")
	enc = Push(enc, "b", "queried")
	dec := SjnToArr(enc)
	if len(dec) != 2 || dec[1].Key != "b" || !dec[1].HasFlag("queried") {
		t.Errorf("unexpected push result: %v", dec)
	}
}
