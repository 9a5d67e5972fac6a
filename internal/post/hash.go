package post

import (
	"crypto/sha256"
	"encoding/hex"
)

// DomainRecord separates record fingerprints from any other hash that may
// share the same canonical bytes. The suffix allows algorithm migration.
const DomainRecord = "postsync/record/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint returns the content hash of r's field values.
//
// Two records with equal fields (after NFC normalization) share a
// fingerprint regardless of ID, so a record can be compared with its
// snapshot to tell whether it was modified.
func Fingerprint(r Record) string {
	return hashWithDomain(DomainRecord, MarshalCanonical(r))
}
