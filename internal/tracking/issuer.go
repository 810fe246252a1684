package tracking

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"donatrack/internal/storage"
)

// tokenBytes is the entropy of a public tracking token. 16 random bytes make
// tokens unguessable; the database unique constraint backstops collisions.
const tokenBytes = 16

// GenerateToken produces a URL-safe random token for public tracking.
func GenerateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("tracking: generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Issuer derives public tracking URLs from tokens and maintains the QR image
// artifact for each token.
type Issuer struct {
	store   *storage.FileStore
	baseURL string
	qrSize  int

	// NewToken mints tracking tokens. It defaults to GenerateToken and can
	// be replaced to control token values.
	NewToken func() (string, error)
}

// NewIssuer constructs an Issuer writing QR images into store, deriving
// tracking URLs under baseURL.
func NewIssuer(store *storage.FileStore, baseURL string) *Issuer {
	return &Issuer{
		store:    store,
		baseURL:  strings.TrimRight(baseURL, "/"),
		qrSize:   256,
		NewToken: GenerateToken,
	}
}

// TrackURL returns the public tracking URL for a token.
func (i *Issuer) TrackURL(token string) string {
	return i.baseURL + "/track/" + token
}

// QRKey returns the storage key of the QR image for a token.
func (i *Issuer) QRKey(token string) string {
	return "qr/qr_" + token + ".png"
}

// EnsureQR makes sure the QR image for the token exists and returns its
// storage key. An existing artifact is left untouched; a missing one is
// regenerated. The image encodes only the tracking URL, never donation data.
func (i *Issuer) EnsureQR(ctx context.Context, token string) (string, error) {
	key := i.QRKey(token)
	if i.store.Exists(key) {
		return key, nil
	}
	png, err := qrcode.Encode(i.TrackURL(token), qrcode.Medium, i.qrSize)
	if err != nil {
		return "", fmt.Errorf("tracking: encode qr: %w", err)
	}
	return i.store.Write(ctx, key, png)
}
