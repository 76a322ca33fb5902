// Package encryption streams files through AES under a per-file random IV or nonce.
//
// Every encrypted file starts with an envelope header naming the cipher suite and key length.
// Two suites exist: ctr-hmac (AES-CTR with an HMAC-SHA256 trailer, any AES key length) and
// gcm-stream (Tink streaming AEAD, AES-GCM-HKDF). Files are read and written in 4 KiB chunks
// and land at their destination through an atomic rename.
package encryption
