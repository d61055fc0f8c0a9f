package validation

import (
	"regexp"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// Regex patterns
var (
	// Letters (accents included), spaces and the punctuation seen in Spanish names and company names
	nameRegex = regexp.MustCompile(`^[\p{L}0-9 .'/&(),-]+$`)

	// E164-like phone: optional +, digits 7-15 length
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

	// National ids are numeric; passports and PPT permits allow letters
	numericDocRegex  = regexp.MustCompile(`^[0-9]{5,15}$`)
	passportDocRegex = regexp.MustCompile(`^[A-Za-z0-9]{5,20}$`)
)

// New returns a validator reading the same "binding" tags gin uses, with the custom tags registered.
func New() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	RegisterValidators(v)
	return v
}

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("valid_name", ValidName)
	_ = v.RegisterValidation("valid_phone", ValidPhone)
	_ = v.RegisterValidation("no_emoji", NoEmoji)
	_ = v.RegisterValidation("document_number", ValidDocumentNumber)
	_ = v.RegisterValidation("nit", ValidNIT)
	_ = v.RegisterValidation("strong_password", StrongPassword)
}

// ValidName validates that a string contains only valid name characters
func ValidName(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true // Optional, use required if needed
	}
	return nameRegex.MatchString(val)
}

// ValidPhone validates a phone number structure
func ValidPhone(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return phoneRegex.MatchString(val)
}

// NoEmoji validates that a string does not contain emoji characters
func NoEmoji(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, r := range val {
		if r > 0x1F000 {
			return false
		}
		if unicode.In(r, unicode.So, unicode.Sk) {
			return false
		}
	}
	return true
}

// ValidDocumentNumber checks the number against the sibling DocumentKind field when present.
// CC, CE and TI are numeric; PA and PPT are alphanumeric.
func ValidDocumentNumber(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	kind := ""
	if f := fl.Parent().FieldByName("DocumentKind"); f.IsValid() {
		kind = f.String()
	}
	return IsValidDocumentNumber(kind, val)
}

// IsValidDocumentNumber is the plain-function form of the document_number tag
func IsValidDocumentNumber(kind, number string) bool {
	switch kind {
	case "PA", "PPT":
		return passportDocRegex.MatchString(number)
	default:
		return numericDocRegex.MatchString(number)
	}
}

// ValidNIT accepts a Colombian NIT with or without its "-d" verification digit.
// When the digit is present it must match the computed one.
func ValidNIT(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	number, digit, hasDigit, err := SplitNIT(val)
	if err != nil {
		return false
	}
	if !hasDigit {
		return true
	}
	want, _ := NITCheckDigit(number)
	return want == digit
}

// StrongPassword requires every password rule to be satisfied
func StrongPassword(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true
	}
	return EvaluatePassword(val).Score == MaxPasswordScore
}
