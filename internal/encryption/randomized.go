package encryption

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
)

// RandomizedOverhead is the number of bytes the ctr-hmac suite adds to a plaintext:
// header, IV and authentication tag.
const RandomizedOverhead = HeaderSize + aes.BlockSize + envelopeTagSize

func encryptRandomized(key []byte, reader io.Reader, writer io.Writer, header []byte) error {
	encKey, macKey, err := deriveRandomizedKeys(key)
	if err != nil {
		return err
	}

	defer wipe(encKey)
	defer wipe(macKey)

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return fmt.Errorf("%w: creating cipher: %w", ErrCipher, err)
	}

	mac := hmac.New(sha256.New, macKey)
	mac.Write(header)

	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return fmt.Errorf("%w: generating IV: %w", ErrCipher, err)
	}

	if _, err := writer.Write(iv); err != nil {
		return fmt.Errorf("%w: writing IV: %w", ErrIO, err)
	}

	mac.Write(iv)

	stream := cipher.NewCTR(block, iv)

	buf, _ := bufferPool.Get().([]byte) //nolint:errcheck // pool only holds []byte
	defer bufferPool.Put(buf)           //nolint:staticcheck

	encrypted := make([]byte, chunkSize)

	for {
		n, readErr := reader.Read(buf)
		if n > 0 {
			stream.XORKeyStream(encrypted[:n], buf[:n])
			mac.Write(encrypted[:n])

			if _, err := writer.Write(encrypted[:n]); err != nil {
				return fmt.Errorf("%w: writing ciphertext: %w", ErrIO, err)
			}
		}

		if errors.Is(readErr, io.EOF) {
			break
		}

		if readErr != nil {
			return fmt.Errorf("%w: reading plaintext: %w", ErrIO, readErr)
		}
	}

	if _, err := writer.Write(mac.Sum(nil)); err != nil {
		return fmt.Errorf("%w: writing authentication tag: %w", ErrIO, err)
	}

	return nil
}

// decryptRandomized holds back the trailing tag-sized window of the stream, so only bytes
// known to be ciphertext reach the cipher. Plaintext is written before the tag is checked;
// callers discard the output on error.
func decryptRandomized(key []byte, reader io.Reader, writer io.Writer, header []byte) error {
	encKey, macKey, err := deriveRandomizedKeys(key)
	if err != nil {
		return err
	}

	defer wipe(encKey)
	defer wipe(macKey)

	mac := hmac.New(sha256.New, macKey)
	mac.Write(header)

	iv := make([]byte, aes.BlockSize)
	if _, err := io.ReadFull(reader, iv); err != nil {
		return fmt.Errorf("%w: reading IV: %w", ErrCipher, err)
	}

	mac.Write(iv)

	block, err := aes.NewCipher(encKey)
	if err != nil {
		return fmt.Errorf("%w: creating cipher: %w", ErrCipher, err)
	}

	stream := cipher.NewCTR(block, iv)

	buf, _ := bufferPool.Get().([]byte) //nolint:errcheck // pool only holds []byte
	defer bufferPool.Put(buf)           //nolint:staticcheck

	pending := make([]byte, 0, chunkSize+envelopeTagSize)
	plain := make([]byte, chunkSize)

	for {
		n, readErr := reader.Read(buf)
		pending = append(pending, buf[:n]...)

		if len(pending) > envelopeTagSize {
			processLen := len(pending) - envelopeTagSize
			chunk := pending[:processLen]

			mac.Write(chunk)
			stream.XORKeyStream(plain[:processLen], chunk)

			if _, err := writer.Write(plain[:processLen]); err != nil {
				return fmt.Errorf("%w: writing plaintext: %w", ErrIO, err)
			}

			pending = append(pending[:0], pending[processLen:]...)
		}

		if errors.Is(readErr, io.EOF) {
			break
		}

		if readErr != nil {
			return fmt.Errorf("%w: reading ciphertext: %w", ErrIO, readErr)
		}
	}

	if len(pending) != envelopeTagSize {
		return fmt.Errorf("%w: authentication tag missing", ErrCipher)
	}

	if !hmac.Equal(mac.Sum(nil), pending) {
		return fmt.Errorf("%w: authentication failed", ErrCipher)
	}

	return nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
