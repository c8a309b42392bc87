// ABOUTME: Incremental UTF-8 decoding of streamed response bodies
// ABOUTME: Reports the cumulative decoded text after every read

package toolhouse

import (
	"errors"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ChunkFunc receives the cumulative text decoded so far.
type ChunkFunc func(text string)

const readBufferSize = 4096

// readStream consumes body until EOF. The UTF-8 decoder holds back incomplete
// multi-byte sequences until the rest arrives; invalid bytes become U+FFFD.
func readStream(body io.Reader, onChunk ChunkFunc) (string, error) {
	r := transform.NewReader(body, unicode.UTF8.NewDecoder())
	buf := make([]byte, readBufferSize)

	var full strings.Builder
	for {
		n, err := r.Read(buf)
		if n > 0 {
			full.Write(buf[:n])
			if onChunk != nil {
				onChunk(full.String())
			}
		}
		if errors.Is(err, io.EOF) {
			return full.String(), nil
		}
		if err != nil {
			return full.String(), err
		}
	}
}
