// Package trace reads allocator workload traces.
//
// A trace is a text file with one operation per line:
//
//	a <id> <size>   allocate size bytes and name the block id
//	r <id> <size>   resize block id to size bytes
//	f <id>          free block id
//
// An optional header of four integers (suggested heap size, number of ids,
// number of operations, weight), one per line, may precede the operations.
// Blank lines and lines starting with '#' are ignored. UTF-8 and UTF-16 files
// with a byte order mark are accepted.
package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	// ErrSyntax indicates a malformed line.
	ErrSyntax = errors.New("trace: syntax error")

	// ErrMismatch indicates the header disagrees with the operations that follow.
	ErrMismatch = errors.New("trace: header mismatch")
)

// Kind is the operation type.
type Kind byte

const (
	Alloc   Kind = 'a'
	Realloc Kind = 'r'
	Free    Kind = 'f'
)

func (k Kind) String() string {
	switch k {
	case Alloc:
		return "alloc"
	case Realloc:
		return "realloc"
	case Free:
		return "free"
	default:
		return fmt.Sprintf("Kind(%q)", byte(k))
	}
}

// Op is one trace line.
type Op struct {
	Kind Kind
	ID   int
	Size int // zero for Free
	Line int // 1-based source line
}

func (o Op) String() string {
	if o.Kind == Free {
		return fmt.Sprintf("%c %d", o.Kind, o.ID)
	}
	return fmt.Sprintf("%c %d %d", o.Kind, o.ID, o.Size)
}

// Header is the optional numeric preamble.
type Header struct {
	SuggestedHeap int
	NumIDs        int
	NumOps        int
	Weight        int
}

// Trace is a parsed workload.
type Trace struct {
	Header    Header
	HasHeader bool
	Ops       []Op
}

const maxLineSize = 1 << 20

// Parse reads a trace from r. Errors name the offending line.
func Parse(r io.Reader) (*Trace, error) {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	scanner := bufio.NewScanner(transform.NewReader(r, dec))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	t := &Trace{}
	var header []int
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// A bare integer before any operation starts the header.
		if len(t.Ops) == 0 && len(header) < 4 && (len(header) > 0 || isNumber(line)) {
			n, err := strconv.Atoi(line)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("%w: line %d: header value %q", ErrSyntax, lineNum, line)
			}
			header = append(header, n)
			continue
		}

		op, err := parseOp(line)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrSyntax, lineNum, err)
		}
		op.Line = lineNum
		t.Ops = append(t.Ops, op)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("trace: scanning line %d: %w", lineNum+1, err)
	}

	switch len(header) {
	case 0:
	case 4:
		t.HasHeader = true
		t.Header = Header{SuggestedHeap: header[0], NumIDs: header[1], NumOps: header[2], Weight: header[3]}
		if err := t.checkHeader(); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: header has %d of 4 values", ErrSyntax, len(header))
	}
	return t, nil
}

// ParseFile reads the trace at path.
func ParseFile(path string) (*Trace, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("trace: %w", err)
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// NumIDs returns one more than the largest id used.
func (t *Trace) NumIDs() int {
	n := 0
	for _, op := range t.Ops {
		n = max(n, op.ID+1)
	}
	return n
}

func (t *Trace) checkHeader() error {
	if t.Header.NumOps != len(t.Ops) {
		return fmt.Errorf("%w: header says %d ops, found %d", ErrMismatch, t.Header.NumOps, len(t.Ops))
	}
	if ids := t.NumIDs(); ids > t.Header.NumIDs {
		return fmt.Errorf("%w: header says %d ids, found id %d", ErrMismatch, t.Header.NumIDs, ids-1)
	}
	return nil
}

func parseOp(line string) (Op, error) {
	fields := strings.Fields(line)
	if len(fields[0]) != 1 {
		return Op{}, fmt.Errorf("unknown operation %q", fields[0])
	}

	op := Op{Kind: Kind(fields[0][0])}
	want := 3
	switch op.Kind {
	case Alloc, Realloc:
	case Free:
		want = 2
	default:
		return Op{}, fmt.Errorf("unknown operation %q", fields[0])
	}
	if len(fields) != want {
		return Op{}, fmt.Errorf("%s takes %d fields, got %d", op.Kind, want, len(fields))
	}

	id, err := strconv.Atoi(fields[1])
	if err != nil || id < 0 {
		return Op{}, fmt.Errorf("bad id %q", fields[1])
	}
	op.ID = id

	if want == 3 {
		size, err := strconv.Atoi(fields[2])
		if err != nil || size < 0 {
			return Op{}, fmt.Errorf("bad size %q", fields[2])
		}
		op.Size = size
	}
	return op, nil
}

func isNumber(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}
