package keystore_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"testing/fstest"

	"github.com/jcpaschoal/propman/foundation/keystore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()

	pk, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	return pk
}

func pkcs1(pk *rsa.PrivateKey) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(pk)})
}

func pkcs8(t *testing.T, pk *rsa.PrivateKey) []byte {
	t.Helper()

	der, err := x509.MarshalPKCS8PrivateKey(pk)
	require.NoError(t, err)

	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
}

func TestAdd(t *testing.T) {
	pk := newKey(t)

	tests := []struct {
		name string
		data []byte
	}{
		{"pkcs1", pkcs1(pk)},
		{"pkcs8", pkcs8(t, pk)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ks := keystore.New()
			require.NoError(t, ks.Add("k1", tt.data))

			private, err := ks.PrivateKey("k1")
			require.NoError(t, err)
			assert.Equal(t, string(tt.data), private)

			public, err := ks.PublicKey("k1")
			require.NoError(t, err)

			block, _ := pem.Decode([]byte(public))
			require.NotNil(t, block)
			assert.Equal(t, "PUBLIC KEY", block.Type)

			parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
			require.NoError(t, err)
			assert.True(t, pk.PublicKey.Equal(parsed))
		})
	}
}

func TestAdd_Invalid(t *testing.T) {
	ks := keystore.New()

	assert.Error(t, ks.Add("k1", []byte("not a pem")))

	garbage := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: []byte("garbage")})
	assert.Error(t, ks.Add("k1", garbage))

	_, err := ks.PublicKey("k1")
	assert.Error(t, err)
}

func TestLoadByFileSystem(t *testing.T) {
	fsys := fstest.MapFS{
		"first.pem":       {Data: pkcs1(newKey(t))},
		"keys/second.pem": {Data: pkcs8(t, newKey(t))},
		"README.md":       {Data: []byte("ignored")},
	}

	ks := keystore.New()

	n, err := ks.LoadByFileSystem(fsys)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	for _, kid := range []string{"first", "second"} {
		_, err := ks.PublicKey(kid)
		assert.NoError(t, err, kid)
	}

	_, err = ks.PrivateKey("README")
	assert.Error(t, err)
}
