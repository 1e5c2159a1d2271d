// Package validation содержит функции валидации входных данных.
package validation

const maxAlertIDLength = 128

// IsValidAlertID проверяет синтаксис идентификатора уведомления.
// Идентификаторы перенесены из документного хранилища: непустые строки
// разумной длины из букв, цифр, дефисов и подчёркиваний.
func IsValidAlertID(id string) bool {
	if id == "" || len(id) > maxAlertIDLength {
		return false
	}

	for i := 0; i < len(id); i++ {
		c := id[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9':
		case c == '-' || c == '_':
		default:
			return false
		}
	}

	return true
}

// IsValidAlertLimit проверяет запрошенное количество уведомлений.
func IsValidAlertLimit(limit int) bool {
	return limit > 0 && limit <= 200
}
