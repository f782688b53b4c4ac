// Package qrcode renders strings as QR code images, primarily for TOTP
// provisioning URIs during MFA enrollment.
//
// Generation is delegated to github.com/skip2/go-qrcode with medium error
// correction. GenerateDataURL wraps the PNG output as a data URL so API
// responses can embed the image directly.
package qrcode
