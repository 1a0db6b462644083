package embedding

import "testing"

func TestHashTokenizer_Tokenize(t *testing.T) {
	tok := &HashTokenizer{}
	ids, attn, types := tok.Tokenize("Hello world", 10)
	if len(ids) != 10 || len(attn) != 10 || len(types) != 10 {
		t.Fatalf("lengths = %d/%d/%d", len(ids), len(attn), len(types))
	}
	if ids[0] != clsToken || ids[3] != sepToken {
		t.Errorf("ids = %v", ids)
	}
	if attn[3] != 1 || attn[4] != 0 {
		t.Errorf("attention = %v", attn)
	}
	again, _, _ := tok.Tokenize("hello WORLD", 10)
	if again[1] != ids[1] || again[2] != ids[2] {
		t.Error("tokenization should be case-insensitive")
	}
}

func TestHashTokenizer_truncates(t *testing.T) {
	tok := &HashTokenizer{}
	ids, attn, _ := tok.Tokenize("a b c d e f g h i j k l", 6)
	if ids[5] != sepToken || attn[5] != 1 {
		t.Errorf("expected [SEP] at the last position, got %v", ids)
	}
	for _, id := range ids[1:5] {
		if id < firstToken || id >= vocabSize {
			t.Errorf("token id %d out of range", id)
		}
	}
}
