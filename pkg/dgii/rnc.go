// Package dgii contiene validaciones de identificadores tributarios de la
// República Dominicana: RNC (Registro Nacional del Contribuyente) y cédula.
// Solo valida estructura y dígito verificador; la existencia real del
// contribuyente se consulta en el padrón DGII, fuera de este paquete.
package dgii

import (
	"fmt"
	"unicode"
)

// pesos para el dígito verificador del RNC (módulo 11, DGII).
// Se aplican a los 8 primeros dígitos, de izquierda a derecha.
var rncWeights = [8]int{7, 9, 8, 6, 5, 4, 3, 2}

// ValidateRNC valida que el RNC (con o sin guiones/puntos) tenga 9 dígitos y
// un dígito verificador correcto según el algoritmo módulo 11 de la DGII.
// taxID puede ser "1-30-12345-6", "130123456", etc.
func ValidateRNC(taxID string) error {
	digits := extractDigits(taxID)
	if len(digits) != 9 {
		return fmt.Errorf("dgii: RNC debe tener 9 dígitos, se encontraron %d", len(digits))
	}
	expected, err := ComputeRNCVerificationDigit(taxID)
	if err != nil {
		return err
	}
	if digits[8] != expected {
		return fmt.Errorf("dgii: dígito verificador del RNC inválido: esperado %c, recibido %c", expected, digits[8])
	}
	return nil
}

// ComputeRNCVerificationDigit calcula el dígito verificador para los 8
// primeros dígitos del RNC.
func ComputeRNCVerificationDigit(taxID string) (byte, error) {
	digits := extractDigits(taxID)
	if len(digits) < 8 {
		return 0, fmt.Errorf("dgii: se requieren al menos 8 dígitos, se encontraron %d", len(digits))
	}
	var sum int
	for i, d := range digits[:8] {
		sum += int(d-'0') * rncWeights[i]
	}
	remainder := sum % 11
	switch remainder {
	case 0:
		return '2', nil
	case 1:
		return '1', nil
	default:
		return byte('0' + (11 - remainder)), nil
	}
}

// ValidateCedula valida una cédula dominicana de 11 dígitos con el algoritmo
// de Luhn (pesos alternados 1,2 sobre los 10 primeros dígitos).
func ValidateCedula(id string) error {
	digits := extractDigits(id)
	if len(digits) != 11 {
		return fmt.Errorf("dgii: cédula debe tener 11 dígitos, se encontraron %d", len(digits))
	}
	var sum int
	for i, d := range digits[:10] {
		n := int(d - '0')
		if i%2 == 1 {
			n *= 2
			if n > 9 {
				n -= 9
			}
		}
		sum += n
	}
	expected := byte('0' + (10-sum%10)%10)
	if digits[10] != expected {
		return fmt.Errorf("dgii: dígito verificador de la cédula inválido: esperado %c, recibido %c", expected, digits[10])
	}
	return nil
}

func extractDigits(s string) []byte {
	var out []byte
	for _, r := range s {
		if unicode.IsDigit(r) {
			out = append(out, byte(r))
		}
	}
	return out
}
