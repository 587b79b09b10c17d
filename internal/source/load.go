package source

import (
	"bytes"
	"fmt"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Load reads a file from disk and returns its text as UTF-8 with the BOM
// removed and CRLF normalized. UTF-16 files are accepted when BOM-marked.
func Load(path string) (string, FileFlags, error) {
	// #nosec G304 -- path is provided by the caller
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", 0, err
	}
	content, flags, err := Decode(raw)
	if err != nil {
		return "", 0, fmt.Errorf("%s: %w", path, err)
	}
	return string(content), flags, nil
}

// Decode converts raw file bytes to normalized UTF-8.
func Decode(raw []byte) ([]byte, FileFlags, error) {
	var flags FileFlags
	hadBOM := bytes.HasPrefix(raw, bomUTF8) || bytes.HasPrefix(raw, bomUTF16LE) || bytes.HasPrefix(raw, bomUTF16BE)

	content := raw
	if hadBOM {
		flags |= FileHadBOM
		// BOMOverride picks the decoder from the BOM and strips it.
		dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
		out, _, err := transform.Bytes(dec, raw)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to decode source: %w", err)
		}
		content = out
	}

	content, hadCRLF := normalizeCRLF(content)
	if hadCRLF {
		flags |= FileNormalizedCRLF
	}
	return content, flags, nil
}
