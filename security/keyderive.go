package security

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/md5"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
)

// computeFileKeyR234 implements ISO 32000-1 §7.6.3.3 Algorithm 2: deriving
// the file encryption key for revisions 2-4 from the user (or owner, once
// translated to the user password by the caller) password, the /O entry,
// /P, the first /ID string, and (R>=4) /EncryptMetadata.
func computeFileKeyR234(password, o []byte, p int32, id []byte, r int, keyLenBytes int, encryptMetadata bool) []byte {
	h := md5.New()
	h.Write(padPassword(password))
	h.Write(o)
	var pBuf [4]byte
	binary.LittleEndian.PutUint32(pBuf[:], uint32(p))
	h.Write(pBuf[:])
	h.Write(id)
	if r >= 4 && !encryptMetadata {
		h.Write([]byte{0xFF, 0xFF, 0xFF, 0xFF})
	}
	sum := h.Sum(nil)

	if r >= 3 {
		for i := 0; i < 50; i++ {
			sum2 := md5.Sum(sum[:keyLenBytes])
			sum = sum2[:]
		}
	}
	if keyLenBytes > len(sum) {
		keyLenBytes = len(sum)
	}
	return append([]byte{}, sum[:keyLenBytes]...)
}

// objectKeyR234 implements Algorithm 1: deriving the per-object RC4/AESV2
// key from the file key and the object's (number, generation).
func objectKeyR234(fileKey []byte, objNum uint64, gen uint32, aesSalt bool) []byte {
	h := md5.New()
	h.Write(fileKey)
	h.Write([]byte{byte(objNum), byte(objNum >> 8), byte(objNum >> 16)})
	h.Write([]byte{byte(gen), byte(gen >> 8)})
	if aesSalt {
		h.Write([]byte("sAlT"))
	}
	sum := h.Sum(nil)
	n := len(fileKey) + 5
	if n > 16 {
		n = 16
	}
	return sum[:n]
}

// hardenedHash implements ISO 32000-2 Algorithm 2.B: the iterative
// SHA-256/384/512 + AES-128-CBC hash used to validate an R6 password and
// to derive the intermediate key that unwraps /UE or /OE.
func hardenedHash(password, salt, extra []byte) []byte {
	in := append(append(append([]byte{}, password...), salt...), extra...)
	k := sha256sum(in)

	round := 0
	for {
		k1 := bytes.Repeat(append(append(append([]byte{}, password...), k...), extra...), 64)

		block, err := aes.NewCipher(k[:16])
		if err != nil {
			return k[:32]
		}
		enc := cipher.NewCBCEncrypter(block, k[16:32])
		e := make([]byte, len(k1))
		enc.CryptBlocks(e, k1)

		var mod int
		for _, b := range e[:16] {
			mod += int(b)
		}
		mod %= 3

		switch mod {
		case 0:
			k = sha256sum(e)
		case 1:
			s := sha512.Sum384(e)
			k = s[:]
		default:
			s := sha512.Sum512(e)
			k = s[:]
		}

		round++
		if round >= 64 && int(e[len(e)-1]) <= round-32 {
			break
		}
	}
	return k[:32]
}

func sha256sum(b []byte) []byte {
	s := sha256.Sum256(b)
	return s[:]
}

// aesCBCDecryptNoPad decrypts ciphertext (a whole number of 16-byte
// blocks) under key with a zero IV and no padding removal, as Algorithm
// 2.A requires for unwrapping /UE and /OE.
func aesCBCDecryptNoPad(key, ciphertext []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	iv := make([]byte, 16)
	dec := cipher.NewCBCDecrypter(block, iv)
	out := make([]byte, len(ciphertext))
	dec.CryptBlocks(out, ciphertext)
	return out, nil
}
