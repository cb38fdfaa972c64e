package project

import (
	"crypto/sha256"
)

// Digest - фиксированный 256 битный хеш содержимого файла
type Digest [32]byte

// FileDigest hashes the content of one checked file.
func FileDigest(content []byte) Digest {
	return sha256.Sum256(content)
}

// Combine строит хеш прогона: H( config || file1 || file2 ... ).
// Порядок files должен быть детерминированным.
func Combine(first Digest, rest ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(first[:])
	for _, d := range rest {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}
