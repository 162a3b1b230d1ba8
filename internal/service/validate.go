package service

import (
	"path"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	minPasswordLen   = 6
	maxPasswordBytes = 72 // больше bcrypt не принимает
	maxNameLen       = 255
)

var usernameRe = regexp.MustCompile(`^[A-Za-z]{1,64}$`)

func validateSignUp(name, password, confirm string) error {
	v := &ValidationError{}
	if !usernameRe.MatchString(name) {
		v.add("username", "Please enter a username (letters only)")
	}
	switch {
	case utf8.RuneCountInString(password) < minPasswordLen:
		v.add("password", "Password must be a minimum of 6 characters")
	case len(password) > maxPasswordBytes:
		v.add("password", "Password is too long")
	}
	if confirm != password {
		v.add("confirmPassword", "Passwords must match")
	}
	return v.orNil()
}

// normalizeFolderName обрезает пробелы и проверяет длину.
func normalizeFolderName(field, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid(field, "Folder name is required")
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "", invalid(field, "Folder name is too long")
	}
	return name, nil
}

// normalizeFileName оставляет только базовое имя файла: оно станет частью ключа хранилища.
func normalizeFileName(name string) (string, error) {
	name = strings.ReplaceAll(name, "\\", "/")
	name = strings.TrimSpace(path.Base(name))
	switch {
	case name == "", name == ".", name == "..", name == "/":
		return "", invalid("newFile", "File name is required")
	case strings.ContainsRune(name, 0):
		return "", invalid("newFile", "File name is invalid")
	case utf8.RuneCountInString(name) > maxNameLen:
		return "", invalid("newFile", "File name is too long")
	}
	return name, nil
}
