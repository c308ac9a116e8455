package security

import (
	"crypto"
	"crypto/x509"
	"fmt"

	"github.com/corvidae-labs/pdfxref/model"
)

// Material is the caller-supplied decryption credential set: a password
// for the standard handler, or a certificate/private key pair for the
// public-key handler. Either may be left zero if not applicable.
type Material struct {
	Password    string
	Certificate *x509.Certificate
	PrivateKey  crypto.PrivateKey
}

// handler is the common surface both StandardHandler and PublicKeyHandler
// implement.
type handler interface {
	DecryptStream(key model.ObjectKey, raw []byte) ([]byte, error)
	DecryptString(key model.ObjectKey, raw []byte) ([]byte, error)
}

// Gate is the façade the resolver talks to: it picks the right handler
// from the encryption dictionary's /Filter and exposes a uniform
// decrypt surface, satisfying resolver.Decryptor.
type Gate struct {
	h handler
}

// NewGate builds a Gate from a document's (already-resolved) /Encrypt
// dictionary, the caller-supplied credential material, and the trailer's
// /ID (first element only is used by the standard handler).
func NewGate(encryptDict model.Dict, material Material, id string) (*Gate, error) {
	filter, _ := encryptDict["Filter"].(model.Name)
	switch filter {
	case "", "Standard":
		h, err := NewStandardHandler(encryptDict, material.Password, [2]string{id, id})
		if err != nil {
			return nil, err
		}
		return &Gate{h: h}, nil
	case "Adobe.PubSec":
		h, err := NewPublicKeyHandler(encryptDict, material.Certificate, material.PrivateKey)
		if err != nil {
			return nil, err
		}
		return &Gate{h: h}, nil
	default:
		return nil, fmt.Errorf("security: unsupported /Filter %q: %w", filter, model.ErrInvalidEncryption)
	}
}

// DecryptStream decrypts a stream object's raw bytes.
func (g *Gate) DecryptStream(key model.ObjectKey, raw []byte) ([]byte, error) {
	return g.h.DecryptStream(key, raw)
}

// DecryptString decrypts a string literal/hex string's raw bytes.
func (g *Gate) DecryptString(key model.ObjectKey, raw []byte) ([]byte, error) {
	return g.h.DecryptString(key, raw)
}
