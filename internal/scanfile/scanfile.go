// Package scanfile reads scanner reports.
//
// The format is a sequence of blocks separated by blank lines. Each block is
// a header line "--- scanner N ---" followed by one "x,y,z" beacon per line:
//
//	--- scanner 0 ---
//	404,-588,-901
//	528,-643,409
//
//	--- scanner 1 ---
//	686,422,578
package scanfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strconv"
	"strings"

	"github.com/banshee-data/scanalign/internal/fsutil"
	"github.com/banshee-data/scanalign/internal/geom"
	"github.com/banshee-data/scanalign/internal/registration"
)

var (
	// ErrEmpty is returned when the input holds no scanner blocks.
	ErrEmpty = errors.New("scan file contains no scanners")
	// ErrNonConsecutiveID is wrapped when ids do not count up from 0.
	ErrNonConsecutiveID = errors.New("scanner ids must be consecutive from 0")
)

// ParseError locates a syntax error in a scan file.
type ParseError struct {
	Line int
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("line %d: %s: %v", e.Line, e.Msg, e.Err)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

const (
	headerPrefix = "--- scanner "
	headerSuffix = " ---"
)

// Parse reads every scanner block from r.
func Parse(r io.Reader) ([]registration.Scanner, error) {
	var (
		scanners []registration.Scanner
		current  *registration.Scanner
		headerAt int
		lineNo   int
	)

	closeBlock := func() error {
		if current == nil {
			return nil
		}
		if len(current.Beacons) == 0 {
			return &ParseError{Line: headerAt, Msg: fmt.Sprintf("scanner %d has no beacons", current.ID)}
		}
		scanners = append(scanners, *current)
		current = nil
		return nil
	}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())

		switch {
		case line == "":
			if err := closeBlock(); err != nil {
				return nil, err
			}
		case strings.HasPrefix(line, headerPrefix):
			if err := closeBlock(); err != nil {
				return nil, err
			}
			id, err := parseHeader(line)
			if err != nil {
				return nil, &ParseError{Line: lineNo, Msg: "bad scanner header", Err: err}
			}
			if id != len(scanners) {
				return nil, &ParseError{
					Line: lineNo,
					Msg:  fmt.Sprintf("got scanner %d, want %d", id, len(scanners)),
					Err:  ErrNonConsecutiveID,
				}
			}
			current = &registration.Scanner{ID: id}
			headerAt = lineNo
		default:
			if current == nil {
				return nil, &ParseError{Line: lineNo, Msg: "beacon outside a scanner block"}
			}
			p, err := ParsePoint(line)
			if err != nil {
				return nil, &ParseError{Line: lineNo, Msg: "bad beacon", Err: err}
			}
			current.Beacons = append(current.Beacons, p)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read scan file: %w", err)
	}
	if err := closeBlock(); err != nil {
		return nil, err
	}
	if len(scanners) == 0 {
		return nil, ErrEmpty
	}
	return scanners, nil
}

// ParseString is Parse over an in-memory string.
func ParseString(s string) ([]registration.Scanner, error) {
	return Parse(strings.NewReader(s))
}

// MaxFileSize bounds the scan files Load accepts.
const MaxFileSize = 64 << 20

// Load reads and parses the scan file at path.
func Load(fsys fsutil.FileSystem, path string) ([]registration.Scanner, error) {
	data, err := fsutil.ReadFileLimit(fsys, path, MaxFileSize)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("scan file %s does not exist: %w", path, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read scan file: %w", err)
	}
	scanners, err := ParseString(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return scanners, nil
}

func parseHeader(line string) (int, error) {
	if !strings.HasSuffix(line, headerSuffix) {
		return 0, fmt.Errorf("missing %q suffix", headerSuffix)
	}
	num := strings.TrimSuffix(strings.TrimPrefix(line, headerPrefix), headerSuffix)
	id, err := strconv.Atoi(num)
	if err != nil {
		return 0, err
	}
	if id < 0 {
		return 0, fmt.Errorf("negative id %d", id)
	}
	return id, nil
}

// ParsePoint parses "x,y,z".
func ParsePoint(s string) (geom.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return geom.Point{}, fmt.Errorf("want 3 coordinates, got %d in %q", len(parts), s)
	}
	var xyz [3]int
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return geom.Point{}, err
		}
		xyz[i] = v
	}
	return geom.Point{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}

// Format writes scanners back out in scan file format.
func Format(w io.Writer, scanners []registration.Scanner) error {
	bw := bufio.NewWriter(w)
	for i, s := range scanners {
		if i > 0 {
			if _, err := bw.WriteString("\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(bw, "%s%d%s\n", headerPrefix, s.ID, headerSuffix); err != nil {
			return err
		}
		for _, b := range s.Beacons {
			if _, err := fmt.Fprintln(bw, b.String()); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
