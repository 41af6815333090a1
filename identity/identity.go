// Package identity manages the secp256k1 key pairs that identify file
// owners and derives the owner fingerprint recorded on the ledger.
//
// The fingerprint of a PEM public key is its base64 body: the armored text
// with the BEGIN and END lines removed and the remaining lines joined.
package identity

import (
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/hex"
	"encoding/pem"
	"fmt"
	"os"
	"strings"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
)

// PEMType is the armor label of public keys written by this package.
const PEMType = "PUBLIC KEY"

var (
	oidPublicKeyECDSA = asn1.ObjectIdentifier{1, 2, 840, 10045, 2, 1}
	oidCurveSecp256k1 = asn1.ObjectIdentifier{1, 3, 132, 0, 10}
)

// subjectPublicKeyInfo is the X.509 SubjectPublicKeyInfo structure.
type subjectPublicKeyInfo struct {
	Algorithm pkix.AlgorithmIdentifier
	PublicKey asn1.BitString
}

// Identity is an owner key pair. PrivateKey is nil for identities loaded
// from a public key only.
type Identity struct {
	PrivateKey *ec.PrivateKey
	PublicKey  *ec.PublicKey
}

// Generate creates a new random identity.
func Generate() (*Identity, error) {
	priv, err := ec.NewPrivateKey()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrKeyGeneration, err)
	}
	return &Identity{PrivateKey: priv, PublicKey: priv.PubKey()}, nil
}

// FromPrivateKeyHex restores an identity from a 32-byte hex private key.
func FromPrivateKeyHex(s string) (*Identity, error) {
	b, err := hex.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPrivateKey, err)
	}
	if len(b) != 32 {
		return nil, fmt.Errorf("%w: got %d bytes", ErrInvalidPrivateKey, len(b))
	}
	priv, _ := ec.PrivateKeyFromBytes(b)
	return &Identity{PrivateKey: priv, PublicKey: priv.PubKey()}, nil
}

// PrivateKeyHex returns the hex-encoded private key, or "" for a public-only identity.
func (id *Identity) PrivateKeyHex() string {
	if id.PrivateKey == nil {
		return ""
	}
	return hex.EncodeToString(id.PrivateKey.D.FillBytes(make([]byte, 32)))
}

// PublicPEM returns the public key as a PEM-armored SubjectPublicKeyInfo
// carrying the compressed secp256k1 point.
func (id *Identity) PublicPEM() []byte {
	spki := subjectPublicKeyInfo{
		Algorithm: pkix.AlgorithmIdentifier{
			Algorithm: oidPublicKeyECDSA,
		},
		PublicKey: asn1.BitString{
			Bytes:     id.PublicKey.Compressed(),
			BitLength: 8 * len(id.PublicKey.Compressed()),
		},
	}
	// The curve OID is the algorithm parameter.
	params, _ := asn1.Marshal(oidCurveSecp256k1)
	spki.Algorithm.Parameters = asn1.RawValue{FullBytes: params}

	der, err := asn1.Marshal(spki)
	if err != nil {
		// Fixed-shape structure of valid ASN.1 types.
		panic("identity: marshal public key: " + err.Error())
	}
	return pem.EncodeToMemory(&pem.Block{Type: PEMType, Bytes: der})
}

// Fingerprint returns the owner fingerprint of the identity's public key.
func (id *Identity) Fingerprint() string {
	fp, _ := Fingerprint(id.PublicPEM())
	return fp
}

// ParsePublicPEM decodes a secp256k1 public key written by PublicPEM.
func ParsePublicPEM(data []byte) (*Identity, error) {
	block, _ := pem.Decode(data)
	if block == nil || block.Type != PEMType {
		return nil, fmt.Errorf("%w: no %q block", ErrInvalidPEM, PEMType)
	}

	var spki subjectPublicKeyInfo
	rest, err := asn1.Unmarshal(block.Bytes, &spki)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPEM, err)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: trailing data", ErrInvalidPEM)
	}
	if !spki.Algorithm.Algorithm.Equal(oidPublicKeyECDSA) {
		return nil, fmt.Errorf("%w: not an EC key", ErrInvalidPEM)
	}
	var curve asn1.ObjectIdentifier
	if _, err := asn1.Unmarshal(spki.Algorithm.Parameters.FullBytes, &curve); err != nil || !curve.Equal(oidCurveSecp256k1) {
		return nil, fmt.Errorf("%w: curve is not secp256k1", ErrInvalidPEM)
	}

	pub, err := ec.PublicKeyFromBytes(spki.PublicKey.RightAlign())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPEM, err)
	}
	return &Identity{PublicKey: pub}, nil
}

// Fingerprint derives the owner fingerprint from any PEM-armored public key
// (EC or RSA): the trimmed text minus its first and last lines, joined.
func Fingerprint(pemData []byte) (string, error) {
	text := strings.ReplaceAll(strings.TrimSpace(string(pemData)), "\r\n", "\n")
	lines := strings.Split(text, "\n")
	if len(lines) < 3 ||
		!strings.HasPrefix(lines[0], "-----BEGIN ") ||
		!strings.HasPrefix(lines[len(lines)-1], "-----END ") {
		return "", ErrInvalidPEM
	}

	var b strings.Builder
	for _, line := range lines[1 : len(lines)-1] {
		b.WriteString(strings.TrimSpace(line))
	}
	if b.Len() == 0 {
		return "", ErrInvalidPEM
	}
	return b.String(), nil
}

// ReadFingerprint reads a PEM public key file and returns its fingerprint.
func ReadFingerprint(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return Fingerprint(data)
}

// WritePublicPEM writes the identity's public key to path.
func (id *Identity) WritePublicPEM(path string) error {
	if err := os.WriteFile(path, id.PublicPEM(), 0644); err != nil {
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return nil
}

// WritePrivateKey writes the hex private key to path with owner-only permissions.
func (id *Identity) WritePrivateKey(path string) error {
	if id.PrivateKey == nil {
		return fmt.Errorf("%w: identity has no private key", ErrInvalidPrivateKey)
	}
	if err := os.WriteFile(path, []byte(id.PrivateKeyHex()+"\n"), 0600); err != nil {
		return fmt.Errorf("%w: %w", ErrIOFailure, err)
	}
	return nil
}
