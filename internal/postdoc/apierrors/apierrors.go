// Пакет содержит определения ошибок API сервиса постов. Каждая ошибка имеет код, статус HTTP
// и описание на английском и португальском, чтобы админка могла показать сообщение редактору.
//
// Основные возможности:
//   - Ошибки сессий редактирования, постов, команд редактора и выгрузки.
//   - Коды ошибок сгруппированы по тысячам: 1*** сессии, 2*** посты, 3*** команды, 4*** выгрузка, 5*** общие.
//   - Форматирование сообщений с аргументами.
package apierrors

import (
	"fmt"
	"net/http"
	"strings"
)

type DefinedError struct {
	Code       int    `json:"code"`
	StatusCode int    `json:"-"`
	Err        string `json:"error"`
	PtErr      string `json:"pt_error,omitempty"`
}

func (e DefinedError) Error() string {
	return e.Err
}

var (
	// 1*** - session errors
	ErrSessionNotFound  = DefinedError{Code: 1001, StatusCode: http.StatusNotFound, Err: "editing session not found", PtErr: "Sessão de edição não encontrada"}
	ErrSessionIDInvalid = DefinedError{Code: 1002, StatusCode: http.StatusBadRequest, Err: "invalid session id", PtErr: "Identificador de sessão inválido"}

	// 2*** - post errors
	ErrPostNotFound   = DefinedError{Code: 2001, StatusCode: http.StatusNotFound, Err: "post not found", PtErr: "Post não encontrado"}
	ErrInvalidSlug    = DefinedError{Code: 2002, StatusCode: http.StatusBadRequest, Err: "invalid slug", PtErr: "Slug inválido: use letras minúsculas, números e hífens"}
	ErrPostSaveFailed = DefinedError{Code: 2003, StatusCode: http.StatusInternalServerError, Err: "failed to save post", PtErr: "Não foi possível salvar o post"}

	// 3*** - editor command errors
	ErrInvalidSelection = DefinedError{Code: 3001, StatusCode: http.StatusUnprocessableEntity, Err: "selection does not address a valid position", PtErr: "Seleção inválida"}
	ErrInvalidAttribute = DefinedError{Code: 3002, StatusCode: http.StatusUnprocessableEntity, Err: "invalid node attribute", PtErr: "Atributo inválido"}
	ErrInvalidTableSize = DefinedError{Code: 3003, StatusCode: http.StatusUnprocessableEntity, Err: "table rows and cols must be positive", PtErr: "A tabela deve ter pelo menos uma linha e uma coluna"}
	ErrEmptyHref        = DefinedError{Code: 3004, StatusCode: http.StatusUnprocessableEntity, Err: "link href is empty", PtErr: "Informe o endereço do link"}
	ErrInvalidHref      = DefinedError{Code: 3005, StatusCode: http.StatusUnprocessableEntity, Err: "link href uses a forbidden protocol", PtErr: "O endereço do link usa um protocolo não permitido"}
	ErrNotAtomic        = DefinedError{Code: 3006, StatusCode: http.StatusUnprocessableEntity, Err: "node type is not atomic", PtErr: "Este tipo de bloco não pode ser inserido"}
	ErrUnsupportedKind  = DefinedError{Code: 3007, StatusCode: http.StatusUnprocessableEntity, Err: "unsupported node type", PtErr: "Tipo de bloco não suportado"}
	ErrUnknownOp        = DefinedError{Code: 3008, StatusCode: http.StatusBadRequest, Err: "unknown command op", PtErr: "Comando desconhecido"}

	// 4*** - export errors
	ErrUnsupportedExportFormat = DefinedError{Code: 4001, StatusCode: http.StatusBadRequest, Err: "unsupported export format %s", PtErr: "Formato de exportação não suportado"}
	ErrExportFailed            = DefinedError{Code: 4002, StatusCode: http.StatusInternalServerError, Err: "export failed", PtErr: "Falha ao exportar o post"}

	// 5*** - validation and other errors
	ErrGeneric        = DefinedError{Code: 5000, StatusCode: http.StatusBadRequest, Err: "Something went wrong. Please try again later or contact the support team.", PtErr: "Algo deu errado. Tente novamente mais tarde ou fale com o suporte"}
	ErrBadRequestBody = DefinedError{Code: 5001, StatusCode: http.StatusBadRequest, Err: "malformed request body", PtErr: "Corpo da requisição inválido"}
	ErrValidation     = DefinedError{Code: 5002, StatusCode: http.StatusBadRequest, Err: "validation failed: %s", PtErr: "Dados inválidos"}
	ErrEntityToLarge  = DefinedError{Code: 5010, StatusCode: http.StatusRequestEntityTooLarge, Err: "size exceeds the allowed limit", PtErr: "O conteúdo excede o tamanho permitido"}
	ErrInternal       = DefinedError{Code: 5500, StatusCode: http.StatusInternalServerError, Err: "internal server error", PtErr: "Erro interno do servidor"}
)

// WithFormattedMessage подставляет аргументы в английское сообщение. Без аргументов
// плейсхолдер удаляется.
func (e DefinedError) WithFormattedMessage(args ...interface{}) DefinedError {
	if len(args) > 0 {
		e.Err = fmt.Sprintf(e.Err, args...)
	} else {
		e.Err = strings.TrimSpace(strings.Replace(e.Err, "%s", "", -1))
	}
	return e
}
