package totp

import (
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrollAndVerifyAtCurrentCode(t *testing.T) {
	cfg, uri, err := Enroll("slasshy", "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, cfg.Secret)
	assert.Contains(t, uri, "otpauth://totp/")

	code, err := totp.GenerateCode(cfg.Secret, time.Now())
	require.NoError(t, err)
	assert.True(t, Verify(cfg, code))
}

func TestVerifyRejectsWrongCode(t *testing.T) {
	cfg, _, err := Enroll("slasshy", "bob@example.com")
	require.NoError(t, err)
	assert.False(t, Verify(cfg, "000000"))
}

func TestQRPNGProducesValidImage(t *testing.T) {
	cfg, _, err := Enroll("slasshy", "carol@example.com")
	require.NoError(t, err)

	img, err := QRPNG(cfg, 256)
	require.NoError(t, err)
	assert.Greater(t, len(img), 0)
	// PNG magic bytes.
	assert.Equal(t, []byte{0x89, 0x50, 0x4E, 0x47}, img[:4])
}
