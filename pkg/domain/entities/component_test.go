package entities

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestComponentType_Explodable(t *testing.T) {
	testCases := []struct {
		ct   ComponentType
		want bool
	}{
		{Raw, false},
		{WIP, true},
		{SemiFinished, true},
		{Finished, false},
		{Packaging, false},
	}
	for _, tc := range testCases {
		if got := tc.ct.IsExplodable(); got != tc.want {
			t.Errorf("%s.IsExplodable() = %v, want %v", tc.ct, got, tc.want)
		}
	}
}

func TestComponentType_Parse(t *testing.T) {
	for _, ct := range []ComponentType{Raw, WIP, SemiFinished, Finished, Packaging} {
		parsed, err := ParseComponentType(ct.String())
		if err != nil || parsed != ct {
			t.Errorf("ParseComponentType(%q) = %v, %v", ct.String(), parsed, err)
		}
	}
	if _, err := ParseComponentType("gadget"); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected unknown type to fail, got %v", err)
	}
}

func TestComponent_JSON(t *testing.T) {
	c, err := NewComponent("C1", "SUGAR", "Sugar", SemiFinished)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Unexpected marshal error: %v", err)
	}
	if want := `{"id":"C1","code":"SUGAR","name":"Sugar","type":"semi_finished"}`; string(data) != want {
		t.Errorf("Expected %s, got %s", want, data)
	}

	if _, err := NewComponent("C2", "", "x", Raw); !errors.Is(err, ErrValidation) {
		t.Errorf("Expected empty code to fail, got %v", err)
	}
}

func TestCircularReferenceError(t *testing.T) {
	err := error(&CircularReferenceError{Path: []ComponentID{"A", "B", "A"}})
	if !errors.Is(err, ErrCircularReference) {
		t.Error("Expected CircularReferenceError to unwrap to ErrCircularReference")
	}
	if want := "circular bom reference: A -> B -> A"; err.Error() != want {
		t.Errorf("Expected %q, got %q", want, err.Error())
	}
}
