package security

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/png"
	"net/url"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/shoplite/auth-service/internal/domain/service"
)

const qrImageSize = 256

// pquernaTOTPService implements service.TOTPService using pquerna/otp.
// Parameters are the authenticator-app defaults: HMAC-SHA1, 6 digits,
// 30-second step.
type pquernaTOTPService struct {
	issuerName string
}

func NewPquernaTOTPService(issuerName string) service.TOTPService {
	if strings.TrimSpace(issuerName) == "" {
		issuerName = "ShopLite"
	}
	return &pquernaTOTPService{issuerName: issuerName}
}

func (s *pquernaTOTPService) ProvisioningURI(accountName string, secretBase32 string) (string, error) {
	if strings.TrimSpace(accountName) == "" {
		return "", fmt.Errorf("account name cannot be empty")
	}
	if strings.Contains(accountName, ":") || strings.Contains(s.issuerName, ":") {
		return "", fmt.Errorf("account and issuer names cannot contain a colon")
	}
	if strings.TrimSpace(secretBase32) == "" {
		return "", fmt.Errorf("secret cannot be empty")
	}

	uri := fmt.Sprintf(
		"otpauth://totp/%s:%s?secret=%s&issuer=%s&algorithm=SHA1&digits=6&period=30",
		url.PathEscape(s.issuerName),
		url.PathEscape(accountName),
		secretBase32,
		url.QueryEscape(s.issuerName),
	)
	return uri, nil
}

func (s *pquernaTOTPService) QRCode(uri string) (string, error) {
	key, err := otp.NewKeyFromURL(uri)
	if err != nil {
		return "", fmt.Errorf("failed to parse provisioning URI: %w", err)
	}
	img, err := key.Image(qrImageSize, qrImageSize)
	if err != nil {
		return "", fmt.Errorf("failed to render QR image: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("failed to encode QR image: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func (s *pquernaTOTPService) ValidateCode(secretBase32 string, code string) (bool, error) {
	if strings.TrimSpace(secretBase32) == "" {
		return false, fmt.Errorf("secret cannot be empty")
	}
	if strings.TrimSpace(code) == "" {
		return false, fmt.Errorf("code cannot be empty")
	}

	valid, err := totp.ValidateCustom(code, secretBase32, time.Now().UTC(), totp.ValidateOpts{
		Period:    30,
		Skew:      1, // one step of clock drift on either side
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return false, fmt.Errorf("error during TOTP code validation: %w", err)
	}
	return valid, nil
}

var _ service.TOTPService = (*pquernaTOTPService)(nil)
