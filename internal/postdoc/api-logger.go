// Ответы API с ошибками и их логирование.
//
// Основные возможности:
//   - Единый JSON-формат ошибок (apierrors.DefinedError).
//   - Логирование непредвиденных ошибок с методом, URL и местом вызова.
//   - Перевод ошибок редактора в ошибки API.
package postdoc

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"runtime"

	"github.com/agencia-site/postdoc/internal/postdoc/apierrors"
	"github.com/agencia-site/postdoc/internal/postdoc/editor"
	stack_error "github.com/agencia-site/postdoc/internal/postdoc/stack-error"
	"github.com/labstack/echo/v4"
)

var editorErrors = []struct {
	err error
	api apierrors.DefinedError
}{
	{editor.ErrInvalidSelection, apierrors.ErrInvalidSelection},
	{editor.ErrInvalidAttribute, apierrors.ErrInvalidAttribute},
	{editor.ErrInvalidTableSize, apierrors.ErrInvalidTableSize},
	{editor.ErrEmptyHref, apierrors.ErrEmptyHref},
	{editor.ErrInvalidHref, apierrors.ErrInvalidHref},
	{editor.ErrNotAtomic, apierrors.ErrNotAtomic},
	{editor.ErrUnsupportedKind, apierrors.ErrUnsupportedKind},
	{editor.ErrUnknownOp, apierrors.ErrUnknownOp},
}

// commandError возвращает ошибку API для отказа редактора. Текст ошибки редактора сохраняется,
// в нем указано, какой аргумент команды неверен.
func commandError(err error) (apierrors.DefinedError, bool) {
	for _, e := range editorErrors {
		if errors.Is(err, e.err) {
			res := e.api
			res.Err = err.Error()
			return res, true
		}
	}
	return apierrors.DefinedError{}, false
}

// EError возвращает ошибку API. Неизвестные ошибки логируются и отдаются как ErrGeneric.
func EError(c echo.Context, err error) error {
	var definedErr apierrors.DefinedError
	if errors.As(err, &definedErr) {
		return EErrorDefined(c, definedErr)
	}
	if err == nil {
		slog.Error("Unknown API error",
			"method", c.Request().Method,
			"url", c.Request().URL,
			getCallerFile(),
		)
	} else {
		slog.Error("API error",
			"err", err,
			"method", c.Request().Method,
			"url", c.Request().URL,
			getCallerFile(),
		)
	}
	return EErrorDefined(c, apierrors.ErrGeneric)
}

// ETrackedError логирует ошибку с трассой и контекстом и возвращает клиенту apiErr.
func ETrackedError(c echo.Context, err error, apiErr apierrors.DefinedError) error {
	stack_error.LogError(c, err)
	return EErrorDefined(c, apiErr)
}

// EErrorDefined возвращает JSON-ответ с ошибкой. Если код статуса не определен, используется 400 Bad Request.
func EErrorDefined(c echo.Context, err apierrors.DefinedError) error {
	// If unknown code use 400 Bad Request
	if http.StatusText(err.StatusCode) == "" {
		err.StatusCode = http.StatusBadRequest
	}
	return c.JSON(err.StatusCode, err)
}

// httpErrorHandler обрабатывает ошибки, которые вернули обработчики и middleware.
func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var definedErr apierrors.DefinedError
	if errors.As(err, &definedErr) {
		EErrorDefined(c, definedErr)
		return
	}

	code := http.StatusInternalServerError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
	}

	switch code {
	case http.StatusNotFound, http.StatusMethodNotAllowed:
		c.NoContent(code)
		return
	case http.StatusRequestEntityTooLarge:
		EErrorDefined(c, apierrors.ErrEntityToLarge)
		return
	}

	stack_error.LogError(c, err)
	if code >= http.StatusInternalServerError {
		EErrorDefined(c, apierrors.ErrInternal)
		return
	}
	er := apierrors.ErrGeneric
	er.StatusCode = code
	EErrorDefined(c, er)
}

func getCallerFile() slog.Attr {
	_, path, no, ok := runtime.Caller(2)
	if !ok {
		return slog.Attr{}
	}
	_, file := filepath.Split(path)
	return slog.String("caller", fmt.Sprintf("%s:%d", file, no))
}
