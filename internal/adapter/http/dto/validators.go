package dto

import (
	"html"
	"reflect"
	"regexp"
	"strings"

	"crux-escrow/internal/core/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	safeStringRe = regexp.MustCompile(`^[a-zA-Z0-9_\-\.]+$`)
	hexBlobRe    = regexp.MustCompile(`^[0-9A-Fa-f]+$`)
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("safe_id", validateSafeID)
		_ = v.RegisterValidation("ledger_address", validateLedgerAddress)
		_ = v.RegisterValidation("hex_blob", validateHexBlob)
	}
}

// validateSafeID allows alphanumeric, underscore, dash, and dot.
func validateSafeID(fl validator.FieldLevel) bool {
	return safeStringRe.MatchString(fl.Field().String())
}

// validateLedgerAddress checks the classic base58 address form. Checksum
// verification is left to the ledger itself.
func validateLedgerAddress(fl validator.FieldLevel) bool {
	return domain.IsValidAddress(fl.Field().String())
}

// validateHexBlob accepts non-empty even-length hex strings.
func validateHexBlob(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return len(s) > 0 && len(s)%2 == 0 && hexBlobRe.MatchString(s)
}

// SanitizeStruct trims whitespace and HTML-escapes every exported string
// field (including *string) of a struct pointer.
func SanitizeStruct(v interface{}) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return
	}
	sanitizeFields(rv.Elem())
}

func sanitizeFields(rv reflect.Value) {
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanSet() {
			continue
		}
		switch f.Kind() {
		case reflect.String:
			f.SetString(sanitize(f.String()))
		case reflect.Ptr:
			if f.IsNil() {
				continue
			}
			elem := f.Elem()
			if elem.Kind() == reflect.String {
				s := sanitize(elem.String())
				elem.SetString(s)
			}
		}
	}
}

func sanitize(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}
