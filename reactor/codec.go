package reactor

import (
	"bufio"
	"io"
)

// contentLengthDecoder implements httpcore.ContentDecoder over a fixed
// number of remaining bytes, the only body framing this reference
// implementation supports.
type contentLengthDecoder struct {
	r         *bufio.Reader
	remaining int64
}

func newContentLengthDecoder(r *bufio.Reader, length int64) *contentLengthDecoder {
	return &contentLengthDecoder{r: r, remaining: length}
}

func (d *contentLengthDecoder) Read(p []byte) (int, error) {
	if d.remaining <= 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > d.remaining {
		p = p[:d.remaining]
	}
	n, err := d.r.Read(p)
	d.remaining -= int64(n)
	return n, err
}

func (d *contentLengthDecoder) IsCompleted() bool {
	return d.remaining <= 0
}

// contentLengthEncoder implements httpcore.ContentEncoder over a plain
// io.Writer, with no chunked-transfer support. It reports completion once
// the declared Content-Length has been written, the way a ResponseProducer
// is expected to know its own total length up front in this codec.
type contentLengthEncoder struct {
	w         *bufio.Writer
	expected  int64
	written   int64
	completed bool
}

func newContentLengthEncoder(w *bufio.Writer, expected int64) *contentLengthEncoder {
	return &contentLengthEncoder{w: w, expected: expected}
}

func (e *contentLengthEncoder) Write(p []byte) (int, error) {
	n, err := e.w.Write(p)
	e.written += int64(n)
	return n, err
}

func (e *contentLengthEncoder) Complete() error {
	e.completed = true
	return e.w.Flush()
}

func (e *contentLengthEncoder) IsCompleted() bool {
	return e.completed || e.written >= e.expected
}
