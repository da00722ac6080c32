package dict

import (
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// Load reads a corpus file (one line per entry, fields separated by
// commas: pinyin, word, weight; # lines are comments) and builds a
// Dictionary from it. An unreadable file yields an empty dictionary that
// still answers every query with empty results — this is reported to the
// caller as a nil error with zero entries, not a hard failure, since the
// engine must keep running dict-less rather than refuse to start.
func Load(path string, logger *log.Logger) (*Dictionary, error) {
	d := New(logger)

	f, err := os.Open(path)
	if err != nil {
		d.logf("dict: corpus unreadable, starting empty: path=%s err=%v", path, err)
		return d, nil
	}
	defer f.Close()

	added := d.loadFromScanner(bufio.NewScanner(f))
	d.logf("dict: loaded %s entries from %s", humanize.Comma(int64(added)), path)
	return d, nil
}

// loadFromScanner parses every line from sc, skipping comments/blank lines
// and silently dropping malformed ones, and returns the number of entries
// added.
func (d *Dictionary) loadFromScanner(sc *bufio.Scanner) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	added := 0
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
		}
	}
	for p := range d.exact {
		sortExactBucket(d.exact[p])
	}
	return added
}

// parseCorpusLine parses "pinyin,word,weight" (weight optional, defaults to
// 50). Returns ok=false for any malformed or empty-after-sanitization line.
func parseCorpusLine(line string) (pinyin, word string, weight uint32, ok bool) {
	fields := strings.Split(line, ",")
	if len(fields) < 2 {
		return "", "", 0, false
	}
	pinyin = SanitizePinyin(strings.TrimSpace(fields[0]))
	word = strings.TrimSpace(fields[1])
	if pinyin == "" || word == "" {
		return "", "", 0, false
	}
	weight = defaultWeight
	if len(fields) >= 3 {
		w := strings.TrimSpace(fields[2])
		if w != "" {
			parsed, err := strconv.ParseUint(w, 10, 32)
			if err != nil {
				return "", "", 0, false
			}
			weight = uint32(parsed)
		}
	}
	return pinyin, word, weight, true
}

func (d *Dictionary) logf(format string, v ...any) {
	if d.logger != nil {
		d.logger.Printf(format, v...)
	}
}
