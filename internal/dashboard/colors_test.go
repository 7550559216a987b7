package dashboard

import (
	"reflect"
	"testing"
)

func TestColors_Empty(t *testing.T) {
	if got := Colors(0); len(got) != 0 {
		t.Errorf("Colors(0) = %v, want empty", got)
	}
	if got := Colors(-3); len(got) != 0 {
		t.Errorf("Colors(-3) = %v, want empty", got)
	}
}

func TestColors_CyclesPalette(t *testing.T) {
	got := Colors(15)
	if len(got) != 15 {
		t.Fatalf("Colors(15) returned %d colors", len(got))
	}
	if !reflect.DeepEqual(got[:10], palette) {
		t.Errorf("first ten colors = %v, want base palette", got[:10])
	}
	if !reflect.DeepEqual(got[10:], palette[:5]) {
		t.Errorf("colors 10..14 = %v, want palette repeat %v", got[10:], palette[:5])
	}
}

func TestColors_Stable(t *testing.T) {
	for n := 1; n < 25; n++ {
		if !reflect.DeepEqual(Colors(n), Colors(n)) {
			t.Fatalf("Colors(%d) not stable", n)
		}
	}
}
