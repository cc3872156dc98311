package common

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

const (
	methodsSeparator = ", "

	accessControlAllowOriginHeader  = "Access-Control-Allow-Origin"
	accessControlAllowMethodsHeader = "Access-Control-Allow-Methods"
	accessControlAllowHeadersHeader = "Access-Control-Allow-Headers"

	allowedOrigins = "*"
	allowedHeaders = "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, Method"
)

type FormArgumentHandler func(http.ResponseWriter, *http.Request) error
type FormArgumentValidator func(*http.Request) error

// FormArgument ties an optional validator and a handler to a single form argument.
type FormArgument struct {
	Handle   FormArgumentHandler
	Validate FormArgumentValidator
}

// FormResponse is the JSON payload returned from form-argument handling.
// Arguments that were well-formed but refused by the session state (out-of-range
// loop bounds etc.) are not reported here - such rejections leave the previous
// state in effect and the request still succeeds.
type FormResponse struct {
	HandlerErrors
}

type HandlerErrors struct {
	ArgumentErrors map[string]string `json:"argumentErrors"`
	GeneralError   string            `json:"generalError"`
}

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
			optionsHandler(allowedMethods(cfg.MethodHandlers), res)

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

func optionsHandler(allowedMethods []string, res http.ResponseWriter) {
	allowedMethods = append(allowedMethods, http.MethodOptions)

	res.Header().Set(accessControlAllowMethodsHeader, strings.Join(allowedMethods, methodsSeparator))
	res.Header().Set(accessControlAllowHeadersHeader, allowedHeaders)
}

func allowedMethods(handlers MethodHandlers) []string {
	var methods []string

	for method := range handlers {
		methods = append(methods, method)
	}

	return methods
}

// CreateFormHandler returns handler function responsible for correct validation and routing of arguments to their handlers.
func CreateFormHandler(allArgHandlers map[string]FormArgument) http.HandlerFunc {
	return func(res http.ResponseWriter, req *http.Request) {
		responsePayload := FormResponse{}

		selectedArgHandlers, errors := validateFormRequest(req, allArgHandlers)
		responsePayload.GeneralError = errors.GeneralError
		responsePayload.ArgumentErrors = errors.ArgumentErrors

		if responsePayload.GeneralError != "" || len(responsePayload.ArgumentErrors) != 0 {
			out, err := prepareJSONOutput(responsePayload)
			if err != nil {
				res.WriteHeader(500)
			} else {
				res.WriteHeader(400)
			}
			res.Write(out)

			return
		}

		for _, handler := range selectedArgHandlers {
			err := handler(res, req)
			if err != nil {
				responsePayload.GeneralError = err.Error()
				out, _ := prepareJSONOutput(responsePayload)
				res.WriteHeader(500)
				res.Write(out)

				return
			}
		}

		out, err := prepareJSONOutput(responsePayload)
		if err != nil {
			res.WriteHeader(500)
			res.Write(out)

			return
		}

		res.WriteHeader(200)
		res.Write(out)
	}
}

// validateFormRequest checks form body for arguments and their correctness.
// Result of validation is an array of arguments that have handlers associated and handlerErrors (if any occured).
func validateFormRequest(req *http.Request, arguments map[string]FormArgument) ([]FormArgumentHandler, HandlerErrors) {
	correctHandlers := []FormArgumentHandler{}
	handlerErrors := HandlerErrors{
		ArgumentErrors: map[string]string{},
	}

	err := req.ParseForm()
	if err != nil {
		handlerErrors.GeneralError = fmt.Sprintf("could not parse form data: %s", err)

		return correctHandlers, handlerErrors
	}

	for argName := range req.PostForm {
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

		correctHandlers = append(correctHandlers, argument.Handle)
	}

	return correctHandlers, handlerErrors
}

func prepareJSONOutput(res FormResponse) ([]byte, error) {
	out, err := json.Marshal(res)
	if err != nil {
		return []byte(fmt.Sprintf("could not encode json payload: %s", err)), err
	}

	return out, nil
}
