package builtin

import (
	"reflect"
	"testing"
)

type row struct {
	key    string
	reason string
}

func rowKey(r row) string { return r.key }

func TestDeDupKeepFirst(t *testing.T) {
	in := []row{{"1", "A"}, {"1", "B"}, {"2", "C"}}
	d := DeDup[row]{Key: rowKey, Policy: PolicyKeepFirst}
	got := d.Apply(in)
	want := []row{{"1", "A"}, {"2", "C"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("keep-first: got %#v want %#v", got, want)
	}
}

func TestDeDupDefaultIsKeepFirst(t *testing.T) {
	in := []row{{"1", "A"}, {"1", "B"}}
	got := DeDup[row]{Key: rowKey}.Apply(in)
	want := []row{{"1", "A"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("default: got %#v want %#v", got, want)
	}
}

func TestDeDupKeepLast(t *testing.T) {
	in := []row{{"1", "A"}, {"2", "C"}, {"1", "B"}}
	d := DeDup[row]{Key: rowKey, Policy: "KEEP-LAST"}
	got := d.Apply(in)
	want := []row{{"2", "C"}, {"1", "B"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("keep-last: got %#v want %#v", got, want)
	}
}

func TestDeDupUnkeyedPassThrough(t *testing.T) {
	in := []row{{"", "x"}, {"1", "A"}, {"", "y"}, {"1", "B"}}
	got := DeDup[row]{Key: rowKey}.Apply(in)
	want := []row{{"", "x"}, {"1", "A"}, {"", "y"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unkeyed: got %#v want %#v", got, want)
	}
}

func TestDeDupCompositeKey(t *testing.T) {
	// "a"+"bc" and "ab"+"c" must not collide.
	if Key("a", "bc") == Key("ab", "c") {
		t.Fatalf("composite keys collide")
	}
}
