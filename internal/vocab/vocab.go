// Package vocab loads the neural ranker's token tables: a char<->id
// bijection, a pinyin->candidate-character-ids constraint mask, and the
// four special token ids. These are the load-time side channels the
// ranker needs to turn raw UTF-8 text into the model's integer vocabulary
// and back, and to mask its output to only the characters a given
// syllable could plausibly mean.
package vocab

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
)

const (
	pinyinIDFile         = "pinyin-id.json"
	charIDFile           = "char-id.json"
	pinyinCandidatesFile = "pinyin-candidate-chars.json"
	vocabMetaFile        = "vocab-meta.json"

	defaultMaxContextChars = 50
)

// Special holds the four reserved token ids every sequence is built from.
type Special struct {
	CLS int32
	SEP int32
	PAD int32
	UNK int32
}

// Vocab is the fully loaded token-table side channel.
type Vocab struct {
	CharToID  map[string]int32
	IDToChar  map[int32]string
	PinyinIDs map[string][]int32 // pinyin syllable -> candidate character ids
	Pinyin    map[string]int32   // pinyin syllable -> its own pinyin-vocab id, when the model embeds pinyin directly
	Special   Special

	// MaxContextChars bounds how many trailing characters of history are
	// fed into the context prefix; defaults to 50 when vocab-meta.json is
	// absent or doesn't specify it.
	MaxContextChars int
}

// Load reads the three required JSON side channels and the optional
// vocab-meta.json from dir (the executable's directory, by convention).
func Load(dir string) (*Vocab, error) {
	charID, err := readJSON(filepath.Join(dir, charIDFile))
	if err != nil {
		return nil, fmt.Errorf("load char-id vocab: %w", err)
	}
	pinyinID, err := readJSON(filepath.Join(dir, pinyinIDFile))
	if err != nil {
		return nil, fmt.Errorf("load pinyin-id vocab: %w", err)
	}
	pinyinCandidates, err := readJSON(filepath.Join(dir, pinyinCandidatesFile))
	if err != nil {
		return nil, fmt.Errorf("load pinyin-candidate-chars vocab: %w", err)
	}

	v := &Vocab{
		CharToID:        make(map[string]int32),
		IDToChar:        make(map[int32]string),
		PinyinIDs:       make(map[string][]int32),
		Pinyin:          make(map[string]int32),
		MaxContextChars: defaultMaxContextChars,
	}

	gjson.ParseBytes(charID).ForEach(func(key, value gjson.Result) bool {
		id := int32(value.Int())
		v.CharToID[key.String()] = id
		v.IDToChar[id] = key.String()
		return true
	})

	gjson.ParseBytes(pinyinID).ForEach(func(key, value gjson.Result) bool {
		v.Pinyin[key.String()] = int32(value.Int())
		return true
	})

	gjson.ParseBytes(pinyinCandidates).ForEach(func(key, value gjson.Result) bool {
		ids := make([]int32, 0, value.Int())
		for _, el := range value.Array() {
			ids = append(ids, int32(el.Int()))
		}
		v.PinyinIDs[key.String()] = ids
		return true
	})

	if metaBytes, err := os.ReadFile(filepath.Join(dir, vocabMetaFile)); err == nil {
		meta := gjson.ParseBytes(metaBytes)
		if n := meta.Get("max_context_chars"); n.Exists() {
			v.MaxContextChars = int(n.Int())
		}
		v.Special = Special{
			CLS: int32(meta.Get("cls_id").Int()),
			SEP: int32(meta.Get("sep_id").Int()),
			PAD: int32(meta.Get("pad_id").Int()),
			UNK: int32(meta.Get("unk_id").Int()),
		}
	} else {
		v.Special = specialFromWellKnownNames(v.CharToID)
	}

	return v, nil
}

// specialFromWellKnownNames falls back to looking up conventional special
// token spellings directly in the char table when no vocab-meta.json is
// present.
func specialFromWellKnownNames(charToID map[string]int32) Special {
	lookup := func(name string, fallback int32) int32 {
		if id, ok := charToID[name]; ok {
			return id
		}
		return fallback
	}
	return Special{
		CLS: lookup("[CLS]", 0),
		SEP: lookup("[SEP]", 1),
		PAD: lookup("[PAD]", 2),
		UNK: lookup("[UNK]", 3),
	}
}

func readJSON(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%s: not valid JSON", path)
	}
	return data, nil
}

// IDsFor returns the candidate character ids for a syllable, or nil if
// the syllable is unknown to the vocab.
func (v *Vocab) IDsFor(syllable string) []int32 {
	return v.PinyinIDs[syllable]
}

// EncodeContext converts the trailing MaxContextChars runes of s into ids,
// unknown runes map to UNK.
func (v *Vocab) EncodeContext(s string) []int32 {
	runes := []rune(s)
	if len(runes) > v.MaxContextChars {
		runes = runes[len(runes)-v.MaxContextChars:]
	}
	ids := make([]int32, 0, len(runes)+1)
	ids = append(ids, v.Special.CLS)
	for _, r := range runes {
		if id, ok := v.CharToID[string(r)]; ok {
			ids = append(ids, id)
		} else {
			ids = append(ids, v.Special.UNK)
		}
	}
	return ids
}
