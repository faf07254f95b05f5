package tokenizer

import "testing"

type testCounter struct{}

func (testCounter) Name() string { return "stub" }

func (testCounter) CountString(input string) (int, error) { return len([]rune(input)), nil }

func TestCountBytesText(t *testing.T) {
	source := "def main():\n    pass\n"
	result, err := CountBytes(testCounter{}, []byte(source))
	if err != nil {
		t.Fatalf("CountBytes error: %v", err)
	}
	if !result.Counted {
		t.Fatalf("expected counted result")
	}
	if result.Tokens != len([]rune(source)) {
		t.Fatalf("expected %d tokens, got %d", len([]rune(source)), result.Tokens)
	}
}

func TestCountBytesEmpty(t *testing.T) {
	result, err := CountBytes(testCounter{}, nil)
	if err != nil {
		t.Fatalf("CountBytes error: %v", err)
	}
	if !result.Counted || result.Tokens != 0 {
		t.Fatalf("expected zero counted tokens, got %+v", result)
	}
}

func TestCountBytesBinary(t *testing.T) {
	data := []byte{0x00, 0x01, 0x02}
	result, err := CountBytes(testCounter{}, data)
	if err != nil {
		t.Fatalf("CountBytes error: %v", err)
	}
	if result.Counted {
		t.Fatalf("expected binary data to be skipped")
	}
}

func TestCountBytesNilCounter(t *testing.T) {
	if _, err := CountBytes(nil, []byte("x")); err == nil {
		t.Fatalf("expected error for nil counter")
	}
}

func TestIsOpenAIModel(t *testing.T) {
	testCases := []struct {
		model    string
		expected bool
	}{
		{model: "gpt-4o", expected: true},
		{model: "text-embedding-3-small", expected: true},
		{model: "claude-3-opus", expected: false},
		{model: "llama-3", expected: false},
	}
	for _, testCase := range testCases {
		t.Run(testCase.model, func(t *testing.T) {
			if actual := isOpenAIModel(testCase.model); actual != testCase.expected {
				t.Fatalf("isOpenAIModel(%q) = %v, want %v", testCase.model, actual, testCase.expected)
			}
		})
	}
}
