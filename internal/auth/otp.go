package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/hospital-management/internal"
)

const otpDigits = 6

// OTPIssuer issues stateless login challenges. The server keeps nothing: the
// client receives hex(hmac(secret, "phone.otp.expires")).expires and sends it
// back with the mailed code.
type OTPIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	random io.Reader
}

func NewOTPIssuer(secret string, ttl time.Duration) *OTPIssuer {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &OTPIssuer{
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
		random: rand.Reader,
	}
}

func (o *OTPIssuer) TTL() time.Duration {
	return o.ttl
}

func (o *OTPIssuer) Issue(phone string) (otp string, hash string, err error) {
	n, err := rand.Int(o.random, big.NewInt(1_000_000))
	if err != nil {
		return "", "", fmt.Errorf("generate otp: %w", err)
	}
	otp = fmt.Sprintf("%0*d", otpDigits, n.Int64())

	expires := o.now().Add(o.ttl).UnixMilli()
	return otp, o.sign(phone, otp, expires) + "." + strconv.FormatInt(expires, 10), nil
}

func (o *OTPIssuer) Verify(otp, hash, phone string) *internal.AppError {
	idx := strings.LastIndex(hash, ".")
	if idx <= 0 || idx == len(hash)-1 {
		return internal.ErrInvalidOTP
	}

	expires, err := strconv.ParseInt(hash[idx+1:], 10, 64)
	if err != nil {
		return internal.ErrInvalidOTP
	}
	if o.now().UnixMilli() > expires {
		return internal.ErrOTPExpired
	}

	expected := o.sign(phone, otp, expires)
	if !hmac.Equal([]byte(expected), []byte(hash[:idx])) {
		return internal.ErrInvalidOTP
	}
	return nil
}

func (o *OTPIssuer) sign(phone, otp string, expires int64) string {
	mac := hmac.New(sha256.New, o.secret)
	fmt.Fprintf(mac, "%s.%s.%d", phone, otp, expires)
	return hex.EncodeToString(mac.Sum(nil))
}
