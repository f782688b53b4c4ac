// Package secrets provides authenticated encryption for short secrets that
// must be persisted at rest, such as TOTP secret keys.
//
// The cipher is AES-256-GCM with a key derived deterministically from a
// configured master secret via SHA-256, so key material never has to be stored
// separately from configuration. Each encryption draws a fresh random 96-bit
// nonce, and the output encodes nonce, ciphertext and authentication tag as
// three hex segments joined by ":":
//
//	<nonce-hex>:<ciphertext-hex>:<tag-hex>
//
// Decrypt treats an empty payload as "no secret stored" and returns an empty
// string without error; every other malformed or tampered payload fails with
// ErrInvalidPayload or ErrDecryptionFailed and never yields partial plaintext.
//
// # Usage
//
//	c, err := secrets.New(cfg.EncryptionKey)
//	if err != nil {
//		// handle error
//	}
//	sealed, _ := c.Encrypt(totpSecret)
//	plain, _ := c.Decrypt(sealed)
//
// Inspect failures with errors.Is against the package sentinels.
package secrets
