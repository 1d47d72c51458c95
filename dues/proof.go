/*
proof.go - Payment-proof upload validation

PURPOSE:
  Validates a comprobante file BEFORE any bytes leave the process, so a
  member gets an immediate, local rejection for an oversized or wrong-type
  file instead of a round trip.

RULES:
  - content type allow-list: image/jpeg, image/jpg, image/png, application/pdf
  - size cap: 3 MiB

SEE ALSO:
  - clubapi/cuotas.go: UploadProof runs this check before building the
    multipart body
*/
package dues

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/warp/club-engine/club"
)

// MaxProofSize is the upload cap for a payment proof, in bytes.
const MaxProofSize = 3 << 20 // 3 MiB

// proofTypes is the closed allow-list of accepted proof content types.
// image/jpg is not a registered MIME type but browsers emit it, so it is
// accepted alongside image/jpeg.
var proofTypes = map[string]bool{
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
	"application/pdf": true,
}

// ValidateProof checks a proof upload against the type allow-list and the
// size cap. contentType may carry parameters ("image/png; charset=binary");
// only the media type is considered. When contentType is empty the type is
// inferred from the filename extension. A zero-byte file is rejected too.
func ValidateProof(filename, contentType string, size int64) error {
	if strings.TrimSpace(contentType) == "" {
		contentType = GuessProofType(filename)
	}
	mediaType := strings.ToLower(strings.TrimSpace(contentType))
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = parsed
	}
	if !proofTypes[mediaType] {
		return &club.ValidationError{
			Message: "tipo de archivo no permitido",
			Fields: map[string]string{
				"comprobante": fmt.Sprintf("tipo %q no permitido (jpeg, jpg, png o pdf)", mediaType),
			},
		}
	}
	if size <= 0 {
		return &club.ValidationError{
			Message: "archivo vacío",
			Fields:  map[string]string{"comprobante": "el archivo está vacío"},
		}
	}
	if size > MaxProofSize {
		return &club.ValidationError{
			Message: "archivo demasiado grande",
			Fields: map[string]string{
				"comprobante": fmt.Sprintf("el archivo supera el máximo de 3 MiB (%d bytes)", size),
			},
		}
	}
	return nil
}

// GuessProofType infers a content type from the file extension, for callers
// that only have a path. Returns "" when the extension is unknown.
func GuessProofType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	}
	return ""
}
