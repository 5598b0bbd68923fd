// Package qrcode renders TOTP provisioning URIs as scannable images.
//
// PNG returns raw image bytes and DataURI wraps them for direct embedding in
// a browser or a JSON response:
//
//	uri := totp.GetTOTPURI(params)
//	img, err := qrcode.DataURI(uri, 0) // DefaultSize
//
// Encoding is delegated to github.com/skip2/go-qrcode.
package qrcode
