package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to the labels shown to users
var FieldLabels = map[string]string{
	// Candidates
	"CandidateTypeID": "Tipo de candidato",
	"DocumentKind":    "Tipo de documento",
	"DocumentNumber":  "Número de documento",
	"FirstName":       "Nombres",
	"LastName":        "Apellidos",
	"BirthDate":       "Fecha de nacimiento",
	"Gender":          "Género",
	"Position":        "Cargo",

	// Companies
	"Kind":              "Tipo",
	"NIT":               "NIT",
	"VerificationDigit": "Dígito de verificación",
	"LegalName":         "Razón social",
	"TradeName":         "Nombre comercial",
	"ContactName":       "Persona de contacto",

	// Shared
	"CompanyID":    "Empresa",
	"Email":        "Correo electrónico",
	"Phone":        "Teléfono",
	"Address":      "Dirección",
	"CountryID":    "País",
	"DepartmentID": "Departamento",
	"CityID":       "Ciudad",
	"Name":         "Nombre",
	"Code":         "Código",
	"Description":  "Descripción",
	"Notes":        "Observaciones",

	// Orders and certificates
	"ProviderID":       "Prestador",
	"CandidateID":      "Candidato",
	"ServiceIDs":       "Servicios",
	"ScheduledAt":      "Fecha programada",
	"Category":         "Categoría",
	"Price":            "Precio",
	"OrderID":          "Orden",
	"Concept":          "Concepto",
	"Restrictions":     "Restricciones",
	"PhysicianName":    "Nombre del médico",
	"PhysicianLicense": "Registro médico",
	"ValidUntil":       "Vigente hasta",

	// Solicitudes
	"Title":  "Título",
	"Status": "Estado",
	"Note":   "Nota",

	// Auth
	"Password": "Contraseña",
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
func FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}
	return messages
}

func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())
	param := e.Param()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s: es obligatorio", label)
	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s: mínimo %s caracteres", label, param)
		}
		return fmt.Sprintf("%s: mínimo %s", label, param)
	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s: máximo %s caracteres", label, param)
		}
		return fmt.Sprintf("%s: máximo %s", label, param)
	case "len":
		return fmt.Sprintf("%s: debe tener exactamente %s caracteres", label, param)
	case "oneof":
		return fmt.Sprintf("%s: debe ser uno de: %s", label, strings.ReplaceAll(param, " ", ", "))
	case "email":
		return fmt.Sprintf("%s: formato de correo inválido", label)
	case "datetime":
		return fmt.Sprintf("%s: formato de fecha inválido (%s)", label, param)
	case "valid_name":
		return fmt.Sprintf("%s: solo se permiten letras, números, espacios y . ' - / & ( ) ,", label)
	case "valid_phone":
		return fmt.Sprintf("%s: número de teléfono inválido (7-15 dígitos, con o sin +)", label)
	case "no_emoji":
		return fmt.Sprintf("%s: no puede contener emojis ni símbolos especiales", label)
	case "document_number":
		return fmt.Sprintf("%s: no corresponde al tipo de documento", label)
	case "nit":
		return fmt.Sprintf("%s: NIT inválido o dígito de verificación incorrecto", label)
	case "strong_password":
		return fmt.Sprintf("%s: debe tener 8 caracteres, mayúscula, minúscula, número y símbolo", label)
	case "gtfield":
		return fmt.Sprintf("%s: debe ser mayor que %s", label, getFieldLabel(param))
	case "dive", "unique":
		return fmt.Sprintf("%s: contiene valores inválidos o repetidos", label)
	default:
		return fmt.Sprintf("%s: validación fallida (%s)", label, e.Tag())
	}
}

// getFieldLabel returns the user-friendly label for a field
func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return formatCamelCase(fieldName)
}

// formatCamelCase converts CamelCase to spaced words
func formatCamelCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune(' ')
		}
		result.WriteRune(r)
	}
	return result.String()
}
