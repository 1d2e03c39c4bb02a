package blocklist

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrCorruptState is matched by errors.Is for every CorruptStateError.
var ErrCorruptState = errors.New("corrupt managed block")

// CorruptStateError reports a begin marker that is never closed.
// The hosts file must be left untouched when this is returned.
type CorruptStateError struct {
	Line int // 1-based line of the orphan begin marker
}

func (e *CorruptStateError) Error() string {
	return fmt.Sprintf("%v: %q on line %d has no matching %q", ErrCorruptState, MarkerBegin, e.Line, MarkerEnd)
}

// Is makes errors.Is(err, ErrCorruptState) work.
func (e *CorruptStateError) Is(target error) bool {
	return target == ErrCorruptState
}

// Patch removes any managed block from existing and appends block after a
// single blank separator line. existing is not modified.
//
// Applying Patch to its own output with the same block returns identical
// lines, so repeated runs never grow the file.
func Patch(existing, block []string) ([]string, error) {
	lines, err := Strip(existing)
	if err != nil {
		return nil, err
	}

	result := make([]string, 0, len(lines)+len(block)+1)
	result = append(result, lines...)
	if len(result) > 0 {
		result = append(result, "\n")
	}
	result = append(result, block...)
	return result, nil
}

// Strip returns existing without its managed block(s) and the blank
// separator line written in front of each. A non-empty result always ends
// with a newline.
func Strip(existing []string) ([]string, error) {
	lines := make([]string, len(existing))
	copy(lines, existing)

	for {
		begin, end, err := locate(lines)
		if err != nil {
			return nil, err
		}
		if begin < 0 {
			break
		}
		if begin > 0 && isBlank(lines[begin-1]) {
			begin--
		}
		lines = append(lines[:begin], lines[end+1:]...)
	}

	if n := len(lines); n > 0 && !strings.HasSuffix(lines[n-1], "\n") {
		lines[n-1] += "\n"
	}
	return lines, nil
}

// Managed returns the sorted, deduplicated hostnames listed inside the
// managed block(s) of lines. Comment and malformed lines are ignored.
func Managed(lines []string) ([]string, error) {
	set := make(map[string]struct{})
	offset := 0
	for {
		begin, end, err := locate(lines[offset:])
		if err != nil {
			var cse *CorruptStateError
			if errors.As(err, &cse) {
				cse.Line += offset
			}
			return nil, err
		}
		if begin < 0 {
			break
		}
		for _, line := range lines[offset+begin+1 : offset+end] {
			fields := strings.Fields(line)
			if len(fields) < 2 || strings.HasPrefix(fields[0], "#") {
				continue
			}
			for _, h := range fields[1:] {
				if strings.HasPrefix(h, "#") {
					break
				}
				set[h] = struct{}{}
			}
		}
		offset += end + 1
	}

	hosts := make([]string, 0, len(set))
	for h := range set {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)
	return hosts, nil
}

// locate finds the first managed block. begin is -1 when there is none.
func locate(lines []string) (begin, end int, err error) {
	begin = -1
	for i, line := range lines {
		if trimEOL(line) == MarkerBegin {
			begin = i
			break
		}
	}
	if begin < 0 {
		return -1, -1, nil
	}

	for i := begin + 1; i < len(lines); i++ {
		if trimEOL(lines[i]) == MarkerEnd {
			return begin, i, nil
		}
	}
	return -1, -1, &CorruptStateError{Line: begin + 1}
}

func trimEOL(line string) string {
	return strings.TrimRight(line, "\r\n")
}

func isBlank(line string) bool {
	return trimEOL(line) == ""
}
