package tracelog

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// TraceDomain is the domain prefix for trace fingerprints. The version
// suffix leaves room for an algorithm change.
const TraceDomain = "petrivet/trace/v1"

// ErrEmptyTrace reports a trace whose firing line is blank.
var ErrEmptyTrace = errors.New("empty trace")

// FormatSequence renders fired transition indexes as the firing line, each
// label followed by a single space: "T0 T1 T11 ". The trailing separator
// is part of the format.
func FormatSequence(seq []int) string {
	var b strings.Builder
	for _, t := range seq {
		fmt.Fprintf(&b, "T%d ", t)
	}
	return b.String()
}

// Fingerprint computes the content-addressed identity of a trace:
// SHA-256 over the domain prefix, a null separator, and the NFC-normalized
// trace text. The null byte keeps the domain and data boundary unambiguous.
func Fingerprint(trace string) string {
	h := sha256.New()
	h.Write([]byte(TraceDomain))
	h.Write([]byte{0x00})
	h.Write(norm.NFC.Bytes([]byte(trace)))
	return hex.EncodeToString(h.Sum(nil))
}

// ReadTrace reads the firing line of a trace file: the first line, without
// its terminator and with interior spacing intact.
func ReadTrace(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("read trace: %w", err)
	}
	defer f.Close()
	return ReadTraceFrom(f)
}

// ReadTraceFrom reads the firing line from r. Reports ErrEmptyTrace when
// the line is blank.
func ReadTraceFrom(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read trace: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return "", ErrEmptyTrace
	}
	return line, nil
}
