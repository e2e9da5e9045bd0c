package rest

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
)

var (
	errEmptyArgument = errors.New("argument cannot be empty")
)

func validateBool(arg string) func(*http.Request) error {
	return func(req *http.Request) error {
		_, err := strconv.ParseBool(req.PostFormValue(arg))
		return err
	}
}

func validateFloat(arg string) func(*http.Request) error {
	return func(req *http.Request) error {
		_, err := strconv.ParseFloat(req.PostFormValue(arg), 64)
		return err
	}
}

func validateNotEmpty(arg string) func(*http.Request) error {
	return func(req *http.Request) error {
		if strings.TrimSpace(req.PostFormValue(arg)) == "" {
			return errEmptyArgument
		}

		return nil
	}
}
