package security

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"crypto/rc4"
	"fmt"

	"github.com/corvidae-labs/pdfxref/model"
)

// cryptMethod is the per-crypt-filter algorithm selected by /CF's /CFM.
type cryptMethod int

const (
	methodRC4 cryptMethod = iota
	methodAESV2
	methodAESV3
	methodIdentity
)

// StandardHandler implements the /Filter /Standard security handler:
// RC4 for revisions 2-4, AES-128-CBC for R4's AESV2, AES-256-CBC for R6's
// AESV3 (ISO 32000-2 §7.6.4).
type StandardHandler struct {
	fileKey     []byte
	r           int
	stmMethod   cryptMethod
	strMethod   cryptMethod
	encryptMeta bool
}

// NewStandardHandler validates password against the encryption dictionary
// and derives the file key, or returns model.ErrInvalidPassword.
func NewStandardHandler(dict model.Dict, password string, ids [2]string) (*StandardHandler, error) {
	r, ok := dict["R"].(model.Integer)
	if !ok {
		return nil, fmt.Errorf("security: missing /R: %w", model.ErrInvalidEncryption)
	}
	p, ok := dict["P"].(model.Integer)
	if !ok {
		return nil, fmt.Errorf("security: missing /P: %w", model.ErrInvalidEncryption)
	}
	o, ok := stringBytes(dict["O"])
	if !ok {
		return nil, fmt.Errorf("security: missing /O: %w", model.ErrInvalidEncryption)
	}
	u, ok := stringBytes(dict["U"])
	if !ok {
		return nil, fmt.Errorf("security: missing /U: %w", model.ErrInvalidEncryption)
	}

	encryptMeta := true
	if v, has := dict["EncryptMetadata"].(model.Boolean); has {
		encryptMeta = bool(v)
	}

	length := 40
	if v, has := dict["Length"].(model.Integer); has {
		length = int(v)
	}

	h := &StandardHandler{r: int(r), encryptMeta: encryptMeta}
	h.stmMethod, h.strMethod = methodsFor(dict, int(r), length)

	if r <= 4 {
		keyLen := length / 8
		if keyLen <= 0 {
			keyLen = 5
		}
		candidate := computeFileKeyR234([]byte(password), o, int32(p), []byte(ids[0]), int(r), keyLen, encryptMeta)
		if !verifyR234(candidate, u, []byte(ids[0]), int(r)) {
			return nil, fmt.Errorf("security: user password rejected: %w", model.ErrInvalidPassword)
		}
		h.fileKey = candidate
		return h, nil
	}

	// R5/R6 (AESV3): Algorithm 2.A/8.
	if len(u) < 48 {
		return nil, fmt.Errorf("security: /U too short for R%d: %w", r, model.ErrInvalidEncryption)
	}
	ue, ok := stringBytes(dict["UE"])
	if !ok || len(ue) != 32 {
		return nil, fmt.Errorf("security: missing or malformed /UE: %w", model.ErrInvalidEncryption)
	}

	validationSalt, keySalt := u[32:40], u[40:48]
	var validation []byte
	if r == 5 {
		validation = sha256sum(append(append([]byte{}, password...), validationSalt...))
	} else {
		validation = hardenedHash([]byte(password), validationSalt, nil)
	}
	if !bytes.Equal(validation, u[:32]) {
		return nil, fmt.Errorf("security: user password rejected: %w", model.ErrInvalidPassword)
	}

	var intermediate []byte
	if r == 5 {
		intermediate = sha256sum(append(append([]byte{}, password...), keySalt...))
	} else {
		intermediate = hardenedHash([]byte(password), keySalt, nil)
	}
	fileKey, err := aesCBCDecryptNoPad(intermediate, ue)
	if err != nil {
		return nil, fmt.Errorf("security: %w: %v", model.ErrInvalidEncryption, err)
	}
	h.fileKey = fileKey
	return h, nil
}

func verifyR234(fileKey, u, id []byte, r int) bool {
	if r == 2 {
		expected, err := rc4Crypt(fileKey, pad32)
		return err == nil && len(u) >= 32 && bytes.Equal(expected, u[:32])
	}

	// R3/R4, Algorithm 5: RC4(fileKey, MD5(pad32 + id)), then 19 more
	// rounds RC4'd with fileKey XOR round index, compared over 16 bytes.
	h := md5HashPadID(id)
	stage, err := rc4Crypt(fileKey, h)
	if err != nil {
		return false
	}
	for i := byte(1); i <= 19; i++ {
		xored := make([]byte, len(fileKey))
		for j := range fileKey {
			xored[j] = fileKey[j] ^ i
		}
		stage, err = rc4Crypt(xored, stage)
		if err != nil {
			return false
		}
	}
	return len(u) >= 16 && bytes.Equal(stage, u[:16])
}

func methodsFor(dict model.Dict, r int, length int) (stm, str cryptMethod) {
	if r <= 3 {
		return methodRC4, methodRC4
	}
	v, _ := dict["V"].(model.Integer)
	if v < 4 {
		return methodRC4, methodRC4
	}

	cf, _ := dict["CF"].(model.Dict)
	stmName, _ := dict["StmF"].(model.Name)
	strName, _ := dict["StrF"].(model.Name)
	return methodFromCF(cf, stmName, r), methodFromCF(cf, strName, r)
}

func methodFromCF(cf model.Dict, name model.Name, r int) cryptMethod {
	if name == "Identity" || name == "" {
		return methodIdentity
	}
	filterDict, _ := cf[name].(model.Dict)
	cfm, _ := filterDict["CFM"].(model.Name)
	switch cfm {
	case "AESV2":
		return methodAESV2
	case "AESV3":
		return methodAESV3
	case "V2":
		return methodRC4
	default:
		if r >= 6 {
			return methodAESV3
		}
		return methodRC4
	}
}

// DecryptStream decrypts one stream object's raw bytes.
func (h *StandardHandler) DecryptStream(key model.ObjectKey, raw []byte) ([]byte, error) {
	return h.decrypt(key, raw, h.stmMethod)
}

// DecryptString decrypts one string literal/hex string's raw bytes.
func (h *StandardHandler) DecryptString(key model.ObjectKey, raw []byte) ([]byte, error) {
	return h.decrypt(key, raw, h.strMethod)
}

func (h *StandardHandler) decrypt(key model.ObjectKey, raw []byte, method cryptMethod) ([]byte, error) {
	switch method {
	case methodIdentity:
		return raw, nil
	case methodRC4:
		objKey := objectKeyR234(h.fileKey, key.Number, key.Generation, false)
		return rc4Crypt(objKey, raw)
	case methodAESV2:
		objKey := objectKeyR234(h.fileKey, key.Number, key.Generation, true)
		return aesCBCDecryptPadded(objKey, raw)
	case methodAESV3:
		return aesCBCDecryptPadded(h.fileKey, raw)
	default:
		return raw, nil
	}
}

func rc4Crypt(key, data []byte) ([]byte, error) {
	c, err := rc4.NewCipher(key)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(data))
	c.XORKeyStream(out, data)
	return out, nil
}

// aesCBCDecryptPadded decrypts data whose first 16 bytes are the IV
// (ISO 32000-2 §7.6.2, "AES encryption... prepend a 16-byte IV"),
// removing PKCS#7 padding from the result.
func aesCBCDecryptPadded(key, data []byte) ([]byte, error) {
	if len(data) < 16 {
		return nil, fmt.Errorf("security: ciphertext shorter than one IV block")
	}
	iv, ct := data[:16], data[16:]
	if len(ct)%16 != 0 {
		return nil, fmt.Errorf("security: ciphertext is not block-aligned")
	}
	if len(ct) == 0 {
		return nil, nil
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	dec := cipher.NewCBCDecrypter(block, iv)
	out := make([]byte, len(ct))
	dec.CryptBlocks(out, ct)

	padLen := int(out[len(out)-1])
	if padLen <= 0 || padLen > 16 || padLen > len(out) {
		return out, nil // tolerate missing/invalid padding rather than failing the whole object
	}
	return out[:len(out)-padLen], nil
}

func md5HashPadID(id []byte) []byte {
	sum := md5.Sum(append(append([]byte{}, pad32...), id...))
	return sum[:]
}

func stringBytes(v model.Value) ([]byte, bool) {
	switch s := v.(type) {
	case model.StringLiteral:
		return []byte(s), true
	case model.HexString:
		return []byte(s), true
	default:
		return nil, false
	}
}
