package encryption

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tink-crypto/tink-go/v2/tink"

	"github.com/idelchi/treecrypt/internal/fileutil"
	"github.com/idelchi/treecrypt/internal/keys"
)

// Engine transforms single files with one key.
// It is not safe for concurrent use.
type Engine struct {
	key                *keys.Key
	suite              Suite
	preserveTimestamps bool

	// streaming is built on first use of the gcm-stream suite.
	streaming tink.StreamingAEAD
}

// Option configures an Engine.
type Option func(*Engine)

// WithSuite selects the cipher suite used for encryption. Decryption always follows the
// suite recorded in the file.
func WithSuite(suite Suite) Option {
	return func(e *Engine) {
		e.suite = suite
	}
}

// WithPreserveTimestamps copies the source modification time onto each output.
func WithPreserveTimestamps(preserve bool) Option {
	return func(e *Engine) {
		e.preserveTimestamps = preserve
	}
}

// NewEngine creates an Engine for key. The key is borrowed, not copied: erasing it
// invalidates the engine.
func NewEngine(key *keys.Key, opts ...Option) (*Engine, error) {
	if key == nil || key.Erased() {
		return nil, fmt.Errorf("%w: no usable key", ErrCipher)
	}

	if !keys.Supported(key.Bits()) || key.Algorithm() != keys.AlgorithmAES {
		return nil, fmt.Errorf("%w: unsupported key %s", ErrCipher, key)
	}

	engine := &Engine{key: key, suite: DefaultSuite}

	for _, opt := range opts {
		opt(engine)
	}

	switch engine.suite {
	case SuiteCTRHMAC, SuiteGCMStream:
	default:
		return nil, fmt.Errorf("%w: unsupported %s", ErrCipher, engine.suite)
	}

	return engine, nil
}

// Suite returns the suite used for encryption.
func (e *Engine) Suite() Suite {
	return e.suite
}

// Transform streams src through the cipher in the given mode and writes the result to dst,
// creating missing parent directories. The output appears at dst only once it is complete;
// on failure nothing is left at dst. It returns the size of the written file.
func (e *Engine) Transform(src, dst string, mode Mode) (size int64, err error) {
	tc, err := fileutil.NewTempContext(src, dst)
	if err != nil {
		return 0, fmt.Errorf("%w: preparing atomic write: %w", ErrIO, err)
	}

	defer tc.CleanupOnError(&err)

	inFile, err := os.Open(filepath.Clean(src))
	if err != nil {
		return 0, fmt.Errorf("%w: opening input file: %w", ErrIO, err)
	}
	defer inFile.Close()

	switch mode {
	case Encrypt:
		err = e.encrypt(inFile, tc.TmpFile, tc.IsExec)
	case Decrypt:
		var header Header

		header, err = e.decrypt(inFile, tc.TmpFile)
		tc.IsExec = header.Executable
	default:
		err = fmt.Errorf("%w: unknown %s", ErrCipher, mode)
	}

	if err != nil {
		return 0, fmt.Errorf("%sing %q: %w", mode, src, err)
	}

	if err = inFile.Close(); err != nil {
		return 0, fmt.Errorf("%w: closing input file: %w", ErrIO, err)
	}

	if err = tc.Commit(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrIO, err)
	}

	size, err = fileutil.FinalizeOutput(dst, e.preserveTimestamps, tc.SrcInfo.ModTime())
	if err != nil {
		return 0, fmt.Errorf("%w: finalizing output: %w", ErrIO, err)
	}

	return size, nil
}

// EncryptStream writes the envelope and the ciphertext of reader to writer.
func (e *Engine) EncryptStream(reader io.Reader, writer io.Writer) error {
	return e.encrypt(reader, writer, false)
}

// DecryptStream reads an envelope and writes the plaintext to writer.
func (e *Engine) DecryptStream(reader io.Reader, writer io.Writer) (Header, error) {
	return e.decrypt(reader, writer)
}

func (e *Engine) encrypt(reader io.Reader, writer io.Writer, isExec bool) error {
	if e.key.Erased() {
		return fmt.Errorf("%w: key has been erased", ErrCipher)
	}

	raw := e.key.Bytes()

	header := Header{Suite: e.suite, KeyBytes: len(raw), Executable: isExec}.marshal()
	if _, err := writer.Write(header); err != nil {
		return fmt.Errorf("%w: writing header: %w", ErrIO, err)
	}

	if e.suite == SuiteGCMStream {
		primitive, err := e.streamingAEAD()
		if err != nil {
			return err
		}

		return encryptStreaming(primitive, reader, writer, header)
	}

	return encryptRandomized(raw, reader, writer, header)
}

func (e *Engine) decrypt(reader io.Reader, writer io.Writer) (Header, error) {
	if e.key.Erased() {
		return Header{}, fmt.Errorf("%w: key has been erased", ErrCipher)
	}

	header, raw, err := ReadHeader(reader)
	if err != nil {
		return Header{}, err
	}

	if header.KeyBytes != len(e.key.Bytes()) {
		return Header{}, fmt.Errorf("%w: file was encrypted with a %d-bit key, got %s",
			ErrCipher, header.KeyBytes*8, e.key)
	}

	switch header.Suite {
	case SuiteGCMStream:
		primitive, err := e.streamingAEAD()
		if err != nil {
			return Header{}, err
		}

		err = decryptStreaming(primitive, reader, writer, raw)

		return header, err
	case SuiteCTRHMAC:
		return header, decryptRandomized(e.key.Bytes(), reader, writer, raw)
	default:
		return Header{}, fmt.Errorf("%w: unsupported %s", ErrCipher, header.Suite)
	}
}

func (e *Engine) streamingAEAD() (tink.StreamingAEAD, error) {
	if e.streaming != nil {
		return e.streaming, nil
	}

	primitive, err := newStreamingAEAD(e.key.Bytes())
	if err != nil {
		return nil, err
	}

	e.streaming = primitive

	return primitive, nil
}
