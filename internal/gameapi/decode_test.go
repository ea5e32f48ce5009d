package gameapi

import "testing"

func TestDecode(t *testing.T) {
	t.Parallel()
	elems, err := Decode([]byte(trainingXML))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(elems) != 2 {
		t.Fatalf("got %d elements, want 2", len(elems))
	}
	if elems[0].Name != "TrainingDesign" {
		t.Errorf("elems[0].Name = %q", elems[0].Name)
	}
	if got := elems[0].Record.String("TrainingDesignId"); got != "1" {
		t.Errorf("TrainingDesignId = %q, want 1", got)
	}
}

func TestDecode_Malformed(t *testing.T) {
	t.Parallel()
	if _, err := Decode([]byte(`<a><b x="1"></a>`)); err == nil {
		t.Error("Decode of mismatched tags returned nil error")
	}
}

func TestDecode_Empty(t *testing.T) {
	t.Parallel()
	elems, err := Decode([]byte(`<Root><Empty/></Root>`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(elems) != 0 {
		t.Errorf("got %d elements, want 0", len(elems))
	}
}

func TestAPIError(t *testing.T) {
	t.Parallel()
	msg, ok := apiError([]Element{{Name: "Error", Record: map[string]string{"errorMessage": "boom"}}})
	if !ok || msg != "boom" {
		t.Errorf("apiError = %q, %v, want boom, true", msg, ok)
	}
	if _, ok := apiError([]Element{{Name: "Setting"}}); ok {
		t.Error("apiError matched a non-error element")
	}
}
