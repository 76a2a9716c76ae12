package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// BindJSON decodes the body into out. Field rules are checked by the
// service layer, so only malformed JSON is reported here. An empty body
// decodes to the zero value.
func BindJSON(ctx *gin.Context, out interface{}) bool {
	err := ctx.ShouldBindJSON(out)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		RespondMessage(ctx, http.StatusRequestEntityTooLarge, "Request body too large")
		return false
	}

	RespondValidation(ctx, parseBindError(err))
	return false
}

func parseBindError(err error) map[string][]string {
	var syntaxError *json.SyntaxError
	if errors.As(err, &syntaxError) {
		return map[string][]string{"body": {"must be valid JSON"}}
	}

	var typeError *json.UnmarshalTypeError
	if errors.As(err, &typeError) {
		field := strings.TrimSpace(typeError.Field)
		if field == "" {
			field = "body"
		}

		return map[string][]string{
			field: {fmt.Sprintf("must be of type %s", jsonKind(typeError.Type.String()))},
		}
	}

	if errors.Is(err, io.ErrUnexpectedEOF) {
		return map[string][]string{"body": {"must be valid JSON"}}
	}

	return map[string][]string{"body": {err.Error()}}
}

// jsonKind names a Go type the way a JSON client would think of it.
func jsonKind(goType string) string {
	goType = strings.TrimPrefix(goType, "*")

	switch goType {
	case "string":
		return "string"
	case "bool":
		return "boolean"
	case "int", "int16", "int32", "int64", "float32", "float64":
		return "number"
	default:
		if strings.HasPrefix(goType, "[]") {
			return "array"
		}
		return "object"
	}
}
