package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"reflect"
	"strconv"

	"coop-pos/internal/ai"
	"coop-pos/internal/auth"
	"coop-pos/internal/pos"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler holds what the HTTP layer needs to serve the cooperative API.
type Handler struct {
	DB        *gorm.DB
	POS       *pos.Service
	Tokens    *auth.Tokens
	Agent     *ai.Agent
	UploadDir string
	BaseURL   string
}

func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return 0, false
	}
	return uint(id), true
}

// writeError maps service errors onto the API's error responses.
func writeError(c *gin.Context, err error) {
	var (
		validation *pos.ValidationError
		stock      *pos.StockError
	)
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "The given data was invalid", "fields": validation.Fields})
	case errors.As(err, &stock):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": stock.Error(), "product_id": stock.ProductID})
	case errors.Is(err, pos.ErrNoOperator):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Operator is not authenticated"})
	case errors.Is(err, pos.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
	default:
		log.Printf("[api] %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction failed"})
	}
}

// bindError turns a body that could not be decoded into field errors, so a
// wrongly typed value is reported like any other rejected field.
func bindError(err error) *pos.ValidationError {
	v := &pos.ValidationError{Err: err}
	var (
		typeErr   *json.UnmarshalTypeError
		syntaxErr *json.SyntaxError
	)
	switch {
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		v.Add(field, "must be "+kindName(typeErr.Type))
	case errors.As(err, &syntaxErr):
		v.Add("body", "request body must be valid JSON")
	default:
		v.Add("body", "request body could not be read")
	}
	return v
}

func kindName(t reflect.Type) string {
	if t == nil {
		return "a different type"
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "a whole number"
	case reflect.String:
		return "a string"
	case reflect.Slice, reflect.Array:
		return "a list"
	case reflect.Struct, reflect.Map:
		return "an object"
	case reflect.Ptr:
		return kindName(t.Elem())
	}
	return "a " + t.Kind().String()
}
