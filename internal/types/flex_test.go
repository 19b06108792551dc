package types_test

import (
	"encoding/json"
	"testing"

	"github.com/nutricart/nutricart-api/internal/types"
)

func TestFlexFloat64(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{"number", `12.5`, 12.5, false},
		{"quoted number", `"12.5"`, 12.5, false},
		{"integer string", `"100"`, 100, false},
		{"null leaves zero", `null`, 0, false},
		{"garbage string", `"abc"`, 0, true},
		{"bool", `true`, 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var f types.FlexFloat64
			err := json.Unmarshal([]byte(tc.input), &f)
			if tc.wantErr {
				if err == nil {
					t.Errorf("Expected error for %s", tc.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if f.Float64() != tc.want {
				t.Errorf("Expected %v, got %v", tc.want, f.Float64())
			}
		})
	}
}

func TestFlexFloat64Roundtrip(t *testing.T) {
	out, err := json.Marshal(types.FlexFloat64(42.25))
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(out) != "42.25" {
		t.Errorf("Expected plain number output, got %s", out)
	}
}

func TestFlexList(t *testing.T) {
	type item struct {
		Name string `json:"name"`
	}

	var fromArray types.FlexList[item]
	if err := json.Unmarshal([]byte(`[{"name":"a"},{"name":"b"}]`), &fromArray); err != nil {
		t.Fatalf("Unmarshal array failed: %v", err)
	}
	if len(fromArray) != 2 || fromArray[1].Name != "b" {
		t.Errorf("Expected two items from the array form, got %+v", fromArray)
	}

	// A bare object becomes a one-element list.
	var fromObject types.FlexList[item]
	if err := json.Unmarshal([]byte(`{"name":"solo"}`), &fromObject); err != nil {
		t.Fatalf("Unmarshal object failed: %v", err)
	}
	if len(fromObject) != 1 || fromObject[0].Name != "solo" {
		t.Errorf("Expected a single-item list from the object form, got %+v", fromObject)
	}

	var fromNull types.FlexList[item]
	if err := json.Unmarshal([]byte(`null`), &fromNull); err != nil {
		t.Fatalf("Unmarshal null failed: %v", err)
	}
	if len(fromNull) != 0 {
		t.Errorf("Expected empty list from null, got %+v", fromNull)
	}
}
