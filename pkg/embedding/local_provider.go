package embedding

import (
	"hash/fnv"
	"strings"
	"unicode"
)

// LocalDimensions is the vector size of the deterministic local embedder.
const LocalDimensions = 256

// LocalProvider is a deterministic, network-free embedder: a hashed
// bag-of-character-bigrams projected into a fixed-size vector. It is far
// weaker than a real embedding model but gives stable, repeatable vectors so
// the semantic lookups keep functioning when no embedding backend is
// configured.
type LocalProvider struct{}

func NewLocalProvider() EmbeddingProvider {
	return &LocalProvider{}
}

func (p *LocalProvider) Generate(text string, taskType string) (*EmbeddingResponse, error) {
	values := make([]float32, LocalDimensions)

	for _, gram := range characterBigrams(text) {
		h := fnv.New32a()
		h.Write([]byte(gram))
		sum := h.Sum32()
		idx := int(sum % LocalDimensions)
		// Alternate sign off one hash bit so unrelated texts do not all
		// accumulate positive mass in the same direction.
		if sum&0x80000000 != 0 {
			values[idx] -= 1
		} else {
			values[idx] += 1
		}
	}

	return &EmbeddingResponse{
		Embedding: EmbeddingResponseEmbedding{
			Values: NormalizeVector(values),
		},
	}, nil
}

func characterBigrams(text string) []string {
	var runes []rune
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			runes = append(runes, r)
		} else if len(runes) > 0 && runes[len(runes)-1] != ' ' {
			runes = append(runes, ' ')
		}
	}

	grams := make([]string, 0, len(runes))
	for i := 0; i < len(runes); i++ {
		// Single CJK runes carry word-level meaning; index them alone too.
		if runes[i] != ' ' && unicode.Is(unicode.Han, runes[i]) {
			grams = append(grams, string(runes[i]))
		}
		if i+1 < len(runes) && runes[i] != ' ' && runes[i+1] != ' ' {
			grams = append(grams, string(runes[i:i+2]))
		}
	}
	return grams
}
