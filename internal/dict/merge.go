package dict

import (
	"bufio"
	"strings"
)

// MergeText parses additional corpus entries from t and adds only those
// whose (pinyin, word) is not already present in exact. Returns the count
// added. Rebuilds affected prefix and abbrev indices and re-sorts exact
// buckets touched by the merge.
func (d *Dictionary) MergeText(t string) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	touched := make(map[string]bool)
	added := 0
	sc := bufio.NewScanner(strings.NewReader(t))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		pinyin, word, weight, ok := parseCorpusLine(line)
		if !ok {
			continue
		}
		if d.insert(pinyin, word, weight) {
			added++
			touched[pinyin] = true
		}
	}
	for p := range touched {
		sortExactBucket(d.exact[p])
	}
	return added
}
