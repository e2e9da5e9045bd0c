package common

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

const (
	methodsSeparator = ", "

	multiPartFormMaxMemory   = 32 << 20
	multiPartFormContentType = "multipart/form-data"

	accessControlAllowOriginHeader  = "Access-Control-Allow-Origin"
	accessControlAllowMethodsHeader = "Access-Control-Allow-Methods"
	accessControlAllowHeadersHeader = "Access-Control-Allow-Headers"
	contentTypeHeader               = "Content-Type"
	jsonContentType                 = "application/json"

	allowedOrigins = "*"
	allowedHeaders = "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, Method"
)

// FormArgumentHandler handles a single form argument. Returned payload, if not nil,
// is included in the response under the argument name.
type FormArgumentHandler func(*http.Request) (Payload, error)
type FormArgumentValidator func(*http.Request) error
type FormArgument struct {
	Handle   FormArgumentHandler
	Validate FormArgumentValidator
}
type FormResponse struct {
	HandlerErrors
	Payloads map[string]Payload `json:"payloads,omitempty"`
}

type HandlerErrors struct {
	ArgumentErrors map[string]string `json:"argumentErrors"`
	GeneralError   string            `json:"generalError"`
}

type Payload interface{}

// MethodHandlers specify map between http method and respective handler function.
type MethodHandlers map[string]http.HandlerFunc

// PathHandlerConfig specifies per-path behavior for path handling middleware.
type PathHandlerConfig struct {
	MethodHandlers
	AllowCORS bool
}

// PathHandler returns a function acting as a middleware before handling specified path.
func PathHandler(cfg PathHandlerConfig) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		if cfg.AllowCORS {
			res.Header().Set(accessControlAllowOriginHeader, allowedOrigins)
		}

		method := req.Method
		if method == http.MethodOptions {
			optionsHandler(allowedMethods(cfg.MethodHandlers), res, req)

			return
		}

		if method == http.MethodHead {
			_, ok := cfg.MethodHandlers[http.MethodGet]
			if !ok {
				res.WriteHeader(404)

				return
			}

			res.WriteHeader(200)
			return
		}

		handler, ok := cfg.MethodHandlers[method]
		if !ok {
			res.WriteHeader(404)

			return
		}

		handler(res, req)
	}
}

func optionsHandler(allowedMethods []string, res http.ResponseWriter, req *http.Request) {
	allowedMethods = append(allowedMethods, http.MethodOptions)

	res.Header().Set(accessControlAllowMethodsHeader, strings.Join(allowedMethods, methodsSeparator))
	res.Header().Set(accessControlAllowHeadersHeader, allowedHeaders)
}

func allowedMethods(handlers MethodHandlers) []string {
	var allowedMethods []string

	for method := range handlers {
		allowedMethods = append(allowedMethods, method)
	}

	return allowedMethods
}

// CreateFormHandler returns handler function responsible for correct validation and routing of arguments to their handlers.
// Arguments failing validation result in 400, errors returned by handlers result in 500.
func CreateFormHandler(allArgHandlers map[string]FormArgument) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		responsePayload := FormResponse{
			Payloads: map[string]Payload{},
		}

		selectedArgHandlers, errors := validateFormRequest(req, allArgHandlers)
		responsePayload.GeneralError = errors.GeneralError
		responsePayload.ArgumentErrors = errors.ArgumentErrors

		if responsePayload.GeneralError != "" || len(responsePayload.ArgumentErrors) != 0 {
			WriteJSON(res, 400, responsePayload)

			return
		}

		for _, argName := range selectedArgHandlers.names {
			payload, err := selectedArgHandlers.handlers[argName](req)
			if err != nil {
				responsePayload.GeneralError = err.Error()
				WriteJSON(res, 500, responsePayload)

				return
			}

			if payload != nil {
				responsePayload.Payloads[argName] = payload
			}
		}

		WriteJSON(res, 200, responsePayload)
	}
}

// WriteJSON marshals payload and writes it with the provided status.
// When marshalling fails, 500 is written instead.
func WriteJSON(res http.ResponseWriter, status int, payload interface{}) {
	out, err := json.Marshal(payload)
	if err != nil {
		res.WriteHeader(500)
		res.Write([]byte(fmt.Sprintf("could not encode json payload: %s", err)))

		return
	}

	res.Header().Set(contentTypeHeader, jsonContentType)
	res.WriteHeader(status)
	res.Write(out)
}

type selectedHandlers struct {
	names    []string
	handlers map[string]FormArgumentHandler
}

// validateFormRequest checks form body for arguments and their correctnes.
// Result of validation is a set of arguments that have handlers associated and handlerErrors (if any occured).
// Handlers are returned sorted by argument name, so the order of handling does not depend on the form encoding.
func validateFormRequest(req *http.Request, arguments map[string]FormArgument) (selectedHandlers, HandlerErrors) {
	correctHandlers := selectedHandlers{
		handlers: map[string]FormArgumentHandler{},
	}
	handlerErrors := HandlerErrors{
		ArgumentErrors: map[string]string{},
	}

	var err error
	if multipartFormRequest(req) {
		err = req.ParseMultipartForm(multiPartFormMaxMemory)
	} else {
		err = req.ParseForm()
	}

	if err != nil {
		handlerErrors.GeneralError = fmt.Sprintf("could not parse form data: %s", err)

		return correctHandlers, handlerErrors
	}

	for argName := range formArguments(req) {
		argument, ok := arguments[argName]
		if !ok {
			handlerErrors.ArgumentErrors[argName] = fmt.Sprintf("the %s argument handler is not defined", argName)
			continue
		}

		var validateErr error = nil
		if argument.Validate != nil {
			validateErr = argument.Validate(req)
		}

		if validateErr != nil {
			handlerErrors.ArgumentErrors[argName] = fmt.Sprintf("the %s argument is invalid: %s", argName, validateErr)
			continue
		}

		if argument.Handle == nil {
			continue
		}

		correctHandlers.names = append(correctHandlers.names, argName)
		correctHandlers.handlers[argName] = argument.Handle
	}
	sort.Strings(correctHandlers.names)

	return correctHandlers, handlerErrors
}

// formArguments returns names of all arguments in the body, including multipart files.
func formArguments(req *http.Request) map[string]struct{} {
	names := map[string]struct{}{}
	for argName := range req.PostForm {
		names[argName] = struct{}{}
	}

	if req.MultipartForm != nil {
		for argName := range req.MultipartForm.File {
			names[argName] = struct{}{}
		}
	}

	return names
}

func multipartFormRequest(req *http.Request) bool {
	contentType, ok := req.Header[contentTypeHeader]

	return ok && len(contentType) > 0 && strings.Contains(contentType[0], multiPartFormContentType)
}
