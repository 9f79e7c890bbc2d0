package ingest

import (
	"bufio"
	"context"
	"fmt"
	"strconv"

	"github.com/grailbio/base/errors"
	gunsafe "github.com/grailbio/base/unsafe"
)

// maxBEDColumns bounds the number of columns read from a BED line.  Columns
// past the name become annotation values.
const maxBEDColumns = 12

// getTokens identifies up to the first len(tokens) tokens from curLine,
// returning the number of tokens saved.  Any (group of) characters <= ' ' is
// treated as a delimiter.
func getTokens(tokens [][]byte, curLine []byte) int {
	posEnd := 0
	lineLen := len(curLine)
	for tokenIdx := range tokens {
		// Simple loops beat the standard library string-split functions here.
		pos := posEnd
		for ; pos != lineLen; pos++ {
			if curLine[pos] > ' ' {
				break
			}
		}
		if pos == lineLen {
			return tokenIdx
		}
		posEnd = pos
		for ; posEnd != lineLen; posEnd++ {
			if curLine[posEnd] <= ' ' {
				break
			}
		}
		tokens[tokenIdx] = curLine[pos:posEnd]
	}
	return len(tokens)
}

// BEDSource reads a BED file whose name column holds the factor name:
//   chrom  start  end  factor  [annotation...]
// Lines starting with '#', "track" or "browser" are skipped, as are empty
// intervals.  The file may be gzipped.
type BEDSource struct {
	// Path is the file to read.
	Path string
	// Label is returned by Name; Path is used if it is empty.
	Label string
	// OneBased interprets the interval boundaries as one-based [start, end]
	// instead of the usual zero-based [start, end).
	OneBased bool
}

// Name implements Source.
func (s BEDSource) Name() string {
	if s.Label != "" {
		return s.Label
	}
	return s.Path
}

func hasPrefix(b []byte, prefix string) bool {
	return len(b) >= len(prefix) && gunsafe.BytesToString(b[:len(prefix)]) == prefix
}

// Records implements Source.
func (s BEDSource) Records(ctx context.Context, fn func(Record) error) (err error) {
	reader, closeFn, err := openReader(ctx, s.Path)
	if err != nil {
		return errors.E(err, fmt.Sprintf("ingest.BEDSource: open %s", s.Path))
	}
	defer func() {
		if cerr := closeFn(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	startSubtract := 0
	if s.OneBased {
		startSubtract = 1
	}
	var tokens [maxBEDColumns][]byte
	scanner := bufio.NewScanner(reader)
	lineIdx := 0
	for scanner.Scan() {
		lineIdx++
		if lineIdx%checkInterval == 0 {
			if err = ctx.Err(); err != nil {
				return err
			}
		}
		curLine := scanner.Bytes()
		nToken := getTokens(tokens[:], curLine)
		if nToken == 0 || tokens[0][0] == '#' || hasPrefix(tokens[0], "track") || hasPrefix(tokens[0], "browser") {
			continue
		}
		if nToken < 4 {
			return errors.E(errors.Invalid, fmt.Sprintf("ingest.BEDSource: %s:%d has fewer tokens than expected", s.Path, lineIdx))
		}
		var start, end int
		if start, err = strconv.Atoi(gunsafe.BytesToString(tokens[1])); err != nil {
			return errors.E(errors.Invalid, err, fmt.Sprintf("ingest.BEDSource: %s:%d", s.Path, lineIdx))
		}
		if end, err = strconv.Atoi(gunsafe.BytesToString(tokens[2])); err != nil {
			return errors.E(errors.Invalid, err, fmt.Sprintf("ingest.BEDSource: %s:%d", s.Path, lineIdx))
		}
		start -= startSubtract
		if start < 0 || end < start+startSubtract {
			return errors.E(errors.Invalid, fmt.Sprintf("ingest.BEDSource: %s:%d: invalid coordinate pair", s.Path, lineIdx))
		}
		if end == start {
			continue
		}
		rec := Record{
			// The token refers to bytes that the scanner will overwrite.
			Factor: string(tokens[3]),
			Start:  start,
			End:    end - 1,
		}
		for _, tok := range tokens[4:nToken] {
			rec.Annotation = append(rec.Annotation, string(tok))
		}
		if err = fn(rec); err != nil {
			return err
		}
	}
	return scanner.Err()
}
