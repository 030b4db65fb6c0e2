package listener

import (
	"bytes"
	"io"
)

// crlfReadWriter converts \n to \r\n on writes and folds the line endings
// network clients send (\r\n, \r\0 or a bare \r) into \n on reads.
type crlfReadWriter struct {
	rw     io.ReadWriter
	lastCR bool
}

func newCRLFReadWriter(rw io.ReadWriter) io.ReadWriter {
	return &crlfReadWriter{rw: rw}
}

func (c *crlfReadWriter) Read(p []byte) (int, error) {
	n, err := c.rw.Read(p)

	out := p[:0]
	for _, b := range p[:n] {
		switch {
		case b == '\r':
			out = append(out, '\n')
			c.lastCR = true
			continue
		case (b == '\n' || b == 0) && c.lastCR:
			// second half of a CR pair, already emitted
		default:
			out = append(out, b)
		}
		c.lastCR = false
	}

	return len(out), err
}

func (c *crlfReadWriter) Write(p []byte) (int, error) {
	converted := bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))
	_, err := c.rw.Write(converted)
	// Return the original length so callers aren't confused by the size change
	return len(p), err
}
