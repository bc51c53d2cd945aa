package validator

import (
	"errors"
	"regexp"
)

var (
	ErrInvalidFullName     = errors.New("invalid full name")
	ErrInvalidPhoneNumber  = errors.New("invalid phone number")
	ErrInvalidIDType       = errors.New("invalid id type")
	ErrInvalidIDNumber     = errors.New("invalid id number")
	ErrInvalidServiceType  = errors.New("service type must be buy or sell")
	ErrInvalidCurrencyCode = errors.New("invalid currency code")
	ErrInvalidUsername     = errors.New("invalid username")
	ErrInvalidPassword     = errors.New("invalid password")
)

var (
	currencyCodeRegex = regexp.MustCompile(`^[A-Z]{3}$`)
	phoneRegex        = regexp.MustCompile(`^\+?[0-9 \-]{6,20}$`)
	idNumberRegex     = regexp.MustCompile(`^[A-Za-z0-9\-]{4,40}$`)
	usernameRegex     = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)
)

var idTypes = map[string]struct{}{
	"passport":       {},
	"national_id":    {},
	"driver_license": {},
	"residence_card": {},
}

func ValidateFullName(name string) error {
	if len(name) < 2 || len(name) > 120 {
		return ErrInvalidFullName
	}
	return nil
}

func ValidatePhoneNumber(phone string) error {
	if phone == "" {
		return nil
	}
	if !phoneRegex.MatchString(phone) {
		return ErrInvalidPhoneNumber
	}
	return nil
}

func ValidateIDType(idType string) error {
	if _, ok := idTypes[idType]; !ok {
		return ErrInvalidIDType
	}
	return nil
}

func ValidateIDNumber(idNumber string) error {
	if !idNumberRegex.MatchString(idNumber) {
		return ErrInvalidIDNumber
	}
	return nil
}

func ValidateServiceType(serviceType string) error {
	if serviceType != "buy" && serviceType != "sell" {
		return ErrInvalidServiceType
	}
	return nil
}

func ValidateCurrencyCode(code string) error {
	if !currencyCodeRegex.MatchString(code) {
		return ErrInvalidCurrencyCode
	}
	return nil
}

func ValidateUsername(username string) error {
	if !usernameRegex.MatchString(username) {
		return ErrInvalidUsername
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrInvalidPassword
	}
	return nil
}
