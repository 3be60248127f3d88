package mail

import "fmt"

const otpBlock = `<div style="background: #f4f4f4; padding: 20px; text-align: center; margin: 20px 0;">
  <h1 style="color: #8B5CF6; font-size: 32px; letter-spacing: 5px; margin: 0;">%s</h1>
</div>`

// VerificationSubject is the subject line for signup verification mail.
const VerificationSubject = "Your FinConnect Verification Code"

// PasswordResetSubject is the subject line for password reset mail.
const PasswordResetSubject = "FinConnect Password Reset"

// VerificationBody renders the HTML body for an email verification code.
func VerificationBody(code string) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #8B5CF6;">Verification Code</h2>
  <p>Use the verification code below to verify your email address:</p>
  %s
  <p>This code will expire in 10 minutes.</p>
  <br>
  <p>Best regards,<br>The FinConnect Team</p>
</div>`, fmt.Sprintf(otpBlock, code))
}

// PasswordResetBody renders the HTML body for a password reset code.
func PasswordResetBody(code string) string {
	return fmt.Sprintf(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #8B5CF6;">Password Reset Request</h2>
  <p>We received a request to reset your FinConnect account password.</p>
  <p>Use the verification code below to reset your password:</p>
  %s
  <p>This code will expire in 10 minutes.</p>
  <p>If you didn't request a password reset, please ignore this email.</p>
  <br>
  <p>Best regards,<br>The FinConnect Team</p>
</div>`, fmt.Sprintf(otpBlock, code))
}
