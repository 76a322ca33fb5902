package encryption

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"github.com/tink-crypto/tink-go/v2/insecurecleartextkeyset"
	"github.com/tink-crypto/tink-go/v2/keyset"
	commonpb "github.com/tink-crypto/tink-go/v2/proto/common_go_proto"
	gcmhkdfpb "github.com/tink-crypto/tink-go/v2/proto/aes_gcm_hkdf_streaming_go_proto"
	tinkpb "github.com/tink-crypto/tink-go/v2/proto/tink_go_proto"
	"github.com/tink-crypto/tink-go/v2/streamingaead"
	"github.com/tink-crypto/tink-go/v2/tink"

	"golang.org/x/crypto/hkdf"
	"google.golang.org/protobuf/proto"
)

const gcmHkdfStreamingTypeURL = "type.googleapis.com/google.crypto.tink.AesGcmHkdfStreamingKey"

// streamingKeyValue returns the Tink key value for a raw AES key. Tink accepts 16 and 32 byte
// key values only, so 24 byte keys are expanded to 32 bytes with HKDF-SHA256.
// The returned slice is always a copy owned by the caller.
func streamingKeyValue(key []byte) ([]byte, error) {
	const (
		aes128KeySize = 16
		aes256KeySize = 32
	)

	if len(key) == aes128KeySize || len(key) == aes256KeySize {
		return bytes.Clone(key), nil
	}

	value := make([]byte, aes256KeySize)

	reader := hkdf.New(sha256.New, key, nil, []byte("treecrypt/gcm-stream"))
	if _, err := io.ReadFull(reader, value); err != nil {
		wipe(value)

		return nil, fmt.Errorf("%w: deriving streaming key: %w", ErrCipher, err)
	}

	return value, nil
}

// newStreamingAEAD builds a Tink streaming AEAD primitive from raw key bytes.
// Segment keys are as long as the Tink key value.
func newStreamingAEAD(key []byte) (tink.StreamingAEAD, error) {
	keyValue, err := streamingKeyValue(key)
	if err != nil {
		return nil, err
	}

	defer wipe(keyValue)

	derivedKeySize := uint32(len(keyValue)) //nolint:gosec // 16 or 32

	streamingKey := &gcmhkdfpb.AesGcmHkdfStreamingKey{
		Version: 0,
		Params: &gcmhkdfpb.AesGcmHkdfStreamingParams{
			CiphertextSegmentSize: chunkSize,
			DerivedKeySize:        derivedKeySize,
			HkdfHashType:          commonpb.HashType_SHA256,
		},
		KeyValue: keyValue,
	}

	serializedKey, err := proto.Marshal(streamingKey)
	if err != nil {
		return nil, fmt.Errorf("%w: serializing streaming key: %w", ErrCipher, err)
	}

	defer wipe(serializedKey)

	keySet := &tinkpb.Keyset{
		PrimaryKeyId: 1,
		Key: []*tinkpb.Keyset_Key{
			{
				KeyData: &tinkpb.KeyData{
					TypeUrl:         gcmHkdfStreamingTypeURL,
					Value:           serializedKey,
					KeyMaterialType: tinkpb.KeyData_SYMMETRIC,
				},
				Status:           tinkpb.KeyStatusType_ENABLED,
				KeyId:            1,
				OutputPrefixType: tinkpb.OutputPrefixType_RAW,
			},
		},
	}

	serializedKeyset, err := proto.Marshal(keySet)
	if err != nil {
		return nil, fmt.Errorf("%w: serializing keyset: %w", ErrCipher, err)
	}

	defer wipe(serializedKeyset)

	handle, err := insecurecleartextkeyset.Read(keyset.NewBinaryReader(bytes.NewReader(serializedKeyset)))
	if err != nil {
		return nil, fmt.Errorf("%w: creating keyset handle: %w", ErrCipher, err)
	}

	primitive, err := streamingaead.New(handle)
	if err != nil {
		return nil, fmt.Errorf("%w: creating streaming AEAD: %w", ErrCipher, err)
	}

	return primitive, nil
}

// encryptStreaming copies reader through a Tink encrypting writer; the header is bound as
// associated data.
func encryptStreaming(primitive tink.StreamingAEAD, reader io.Reader, writer io.Writer, header []byte) error {
	encWriter, err := primitive.NewEncryptingWriter(writer, header)
	if err != nil {
		return fmt.Errorf("%w: creating encrypting writer: %w", ErrCipher, err)
	}

	buf, _ := bufferPool.Get().([]byte) //nolint:errcheck // pool only holds []byte
	defer bufferPool.Put(buf)           //nolint:staticcheck

	if _, err := io.CopyBuffer(encWriter, onlyReader{reader}, buf); err != nil {
		encWriter.Close() //nolint:errcheck,gosec // the copy error is the one that matters

		return fmt.Errorf("%w: streaming ciphertext: %w", ErrIO, err)
	}

	if err := encWriter.Close(); err != nil {
		return fmt.Errorf("%w: finishing ciphertext: %w", ErrIO, err)
	}

	return nil
}

func decryptStreaming(primitive tink.StreamingAEAD, reader io.Reader, writer io.Writer, header []byte) error {
	decReader, err := primitive.NewDecryptingReader(reader, header)
	if err != nil {
		return fmt.Errorf("%w: creating decrypting reader: %w", ErrCipher, err)
	}

	buf, _ := bufferPool.Get().([]byte) //nolint:errcheck // pool only holds []byte
	defer bufferPool.Put(buf)           //nolint:staticcheck

	if _, err := io.CopyBuffer(onlyWriter{writer}, decReader, buf); err != nil {
		var writeErr *sinkError
		if errors.As(err, &writeErr) {
			return fmt.Errorf("%w: writing plaintext: %w", ErrIO, writeErr.err)
		}

		return fmt.Errorf("%w: decrypting stream: %w", ErrCipher, err)
	}

	return nil
}

// onlyReader hides WriterTo so io.CopyBuffer really uses the chunk buffer.
type onlyReader struct{ io.Reader }

// onlyWriter hides ReaderFrom and tags write failures, so they are told apart from
// authentication failures surfaced by the decrypting reader.
type onlyWriter struct{ w io.Writer }

type sinkError struct{ err error }

func (e *sinkError) Error() string { return e.err.Error() }

func (e *sinkError) Unwrap() error { return e.err }

func (o onlyWriter) Write(p []byte) (int, error) {
	n, err := o.w.Write(p)
	if err != nil {
		return n, &sinkError{err: err}
	}

	return n, nil
}
