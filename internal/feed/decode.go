package feed

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

var gzipMagic = []byte{0x1f, 0x8b}

// readLimited reads at most max bytes and fails if the source has more.
func readLimited(r io.Reader, max int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}
	if int64(len(data)) > max {
		return nil, fmt.Errorf("feed body exceeds %d byte limit", max)
	}
	return data, nil
}

// decompress gunzips data when it carries the gzip magic and returns it
// unchanged otherwise. S3 objects uploaded with Content-Encoding: gzip arrive
// compressed because the SDK does not decode them.
func decompress(data []byte, max int64) ([]byte, error) {
	if !bytes.HasPrefix(data, gzipMagic) {
		return data, nil
	}
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open gzip: %w", err)
	}
	defer zr.Close()

	out, err := readLimited(zr, max)
	if err != nil {
		return nil, fmt.Errorf("gunzip: %w", err)
	}
	return out, nil
}
