package filecrypt

import (
	"context"
	"crypto/rand"
	"fmt"
	"testing"
)

var benchSizes = []int{
	1024,             // 1 KB
	64 * 1024,        // 64 KB
	1024 * 1024,      // 1 MB
	10 * 1024 * 1024, // 10 MB
}

// Benchmark encryption throughput per cipher suite
func BenchmarkEncrypt(b *testing.B) {
	for _, suite := range []CipherSuite{CipherAES256GCM, CipherChaCha20Poly1305, CipherFernet} {
		for _, size := range benchSizes {
			b.Run(suite.String()+"/"+formatSize(size), func(b *testing.B) {
				benchmarkEncrypt(b, suite, size)
			})
		}
	}
}

func benchmarkEncrypt(b *testing.B, suite CipherSuite, size int) {
	data := make([]byte, size)
	if _, err := rand.Read(data); err != nil {
		b.Fatalf("failed to generate test data: %v", err)
	}

	key := make([]byte, KeySize)
	rand.Read(key)

	engine, err := NewCipherEngineWithKey(key, suite)
	if err != nil {
		b.Fatalf("failed to create engine: %v", err)
	}

	b.SetBytes(int64(size))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := engine.Encrypt(data); err != nil {
			b.Fatalf("encryption failed: %v", err)
		}
	}
}

// Benchmark decryption
func BenchmarkDecrypt(b *testing.B) {
	for _, suite := range []CipherSuite{CipherAES256GCM, CipherChaCha20Poly1305, CipherFernet} {
		for _, size := range benchSizes[:3] {
			b.Run(suite.String()+"/"+formatSize(size), func(b *testing.B) {
				benchmarkDecrypt(b, suite, size)
			})
		}
	}
}

func benchmarkDecrypt(b *testing.B, suite CipherSuite, size int) {
	data := make([]byte, size)
	rand.Read(data)

	key := make([]byte, KeySize)
	rand.Read(key)

	engine, err := NewCipherEngineWithKey(key, suite)
	if err != nil {
		b.Fatalf("failed to create engine: %v", err)
	}

	payload, err := engine.Encrypt(data)
	if err != nil {
		b.Fatalf("encryption failed: %v", err)
	}

	b.SetBytes(int64(size))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := engine.Decrypt(payload); err != nil {
			b.Fatalf("decryption failed: %v", err)
		}
	}
}

// Benchmark key derivation
func BenchmarkKeyDerivation(b *testing.B) {
	passphrase := []byte("benchmark-password")
	salt, _ := GenerateSalt(nil)

	b.Run("pbkdf2", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			DeriveKey(passphrase, salt)
		}
	})

	b.Run("unsalted", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			DeriveUnsaltedKey(passphrase)
		}
	})
}

func BenchmarkBatchWorkers(b *testing.B) {
	const (
		fileCount = 64
		fileSize  = 256 * 1024
	)

	for _, workers := range []int{1, 2, 4, 8, 16} {
		b.Run(fmt.Sprintf("%dworkers", workers), func(b *testing.B) {
			fm := newFaultyFM()
			names := make([]string, fileCount)
			data := make([]byte, fileSize)
			rand.Read(data)
			for i := range names {
				names[i] = fmt.Sprintf("/bench-%02d.bin", i)
				fm.Write(names[i], data)
			}

			key := make([]byte, KeySize)
			rand.Read(key)
			engine, err := NewCipherEngineWithKey(key, CipherAES256GCM)
			if err != nil {
				b.Fatalf("failed to create engine: %v", err)
			}
			enc, err := NewFileEncryptor(fm, engine, WithWorkers(workers))
			if err != nil {
				b.Fatalf("failed to create encryptor: %v", err)
			}

			b.SetBytes(int64(fileCount * fileSize))
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if _, err := enc.EncryptFiles(context.Background(), names); err != nil {
					b.Fatalf("batch failed: %v", err)
				}
			}
		})
	}
}

func formatSize(size int) string {
	if size < 1024 {
		return fmt.Sprintf("%dB", size)
	}
	if size < 1024*1024 {
		return fmt.Sprintf("%dKB", size/1024)
	}
	return fmt.Sprintf("%dMB", size/(1024*1024))
}
