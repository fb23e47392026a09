package watcher

import (
	"crypto/sha256"
	"encoding/hex"
	"io/fs"
	"time"
)

// Fingerprint identifies one version of a file. Mod and Size are a cheap
// pre-check; Hash decides whether the content really changed.
type Fingerprint struct {
	Mod  time.Time
	Size int64
	Hash string
}

func fingerprint(info fs.FileInfo, data []byte) Fingerprint {
	fp := Fingerprint{Size: int64(len(data)), Hash: digest(data)}
	if info != nil {
		fp.Mod = info.ModTime()
	}
	return fp
}

// unchanged reports whether info still matches fp without reading the file.
func (fp Fingerprint) unchanged(info fs.FileInfo) bool {
	return info.ModTime().Equal(fp.Mod) && info.Size() == fp.Size
}

func digest(data []byte) string {
	sum := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(sum[:])
}

