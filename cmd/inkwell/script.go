package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/inkwell-board/inkwell"
)

const maxLine = 64 << 20

// replay applies every event in r, ticking after each line so that image
// decodes and autosaves interleave as they would live. It returns the
// number of events applied and stops at the first malformed line.
func replay(e *inkwell.Editor, r io.Reader) (int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxLine)
	n, line := 0, 0
	for sc.Scan() {
		line++
		b := bytes.TrimSpace(sc.Bytes())
		if len(b) == 0 || b[0] == '#' {
			continue
		}
		ev, err := inkwell.DecodeEvent(b)
		if err != nil {
			return n, fmt.Errorf("line %d: %w", line, err)
		}
		if err := e.Apply(ev); err != nil {
			inkwell.Logger().Warn("event rejected", "line", line, "err", err)
		}
		e.Tick()
		n++
	}
	if err := sc.Err(); err != nil {
		return n, fmt.Errorf("line %d: %w", line+1, err)
	}
	return n, nil
}
