package util

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"html/template"
	"math/big"
)

// GenerateVerificationCode generates a uniformly random decimal code of the given length
func GenerateVerificationCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid code length %d", length)
	}
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", length, n), nil
}

// VerificationEmail holds the strings rendered into the verification mail
type VerificationEmail struct {
	Title          string
	Greeting       string
	Instruction    string
	Code           string
	ExpireMinutes  int
	SecurityNotice string
	Footer         string
}

var verificationEmailTemplate = template.Must(template.New("verification").Parse(`
<html>
<body style="font-family: Arial, sans-serif; padding: 20px; background-color: #f5f5f5;">
	<div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 40px; border-radius: 10px; box-shadow: 0 2px 4px rgba(0,0,0,0.1);">
		<h1 style="color: #333; margin-bottom: 20px;">{{.Title}}</h1>
		<p style="color: #666; line-height: 1.6; margin-bottom: 30px;">
			{{.Greeting}}<br>
			{{.Instruction}}
		</p>
		<div style="background-color: #f8f9fa; padding: 30px; border-radius: 8px; text-align: center; margin-bottom: 30px;">
			<h2 style="color: #333; margin: 0; font-size: 36px; letter-spacing: 4px;">{{.Code}}</h2>
		</div>
		<p style="color: #999; font-size: 14px; margin-bottom: 10px;">
			* 인증코드 유효시간: {{.ExpireMinutes}}분
		</p>
		<p style="color: #999; font-size: 14px;">
			* {{.SecurityNotice}}
		</p>
		<p style="color: #bbb; font-size: 12px; margin-top: 30px;">{{.Footer}}</p>
	</div>
</body>
</html>
`))

// RenderVerificationEmail builds the HTML body of a verification mail
func RenderVerificationEmail(data VerificationEmail) (string, error) {
	var buf bytes.Buffer
	if err := verificationEmailTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
