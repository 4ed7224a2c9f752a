package postdoc

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"slices"

	"github.com/agencia-site/postdoc/internal/postdoc/apierrors"
	"github.com/agencia-site/postdoc/internal/postdoc/dao"
	"github.com/agencia-site/postdoc/internal/postdoc/editor"
	"github.com/agencia-site/postdoc/internal/postdoc/editor/tiptap"
	"github.com/agencia-site/postdoc/internal/postdoc/sessions"
	stack_error "github.com/agencia-site/postdoc/internal/postdoc/stack-error"
	"github.com/gofrs/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type SessionContext struct {
	echo.Context
	Session *sessions.Session
}

type openSessionRequest struct {
	Slug    string  `json:"slug" validate:"required,slug"`
	Content *string `json:"content"`
}

type saveSessionRequest struct {
	Title string `json:"title" validate:"max=150"`
}

// contentRequest заменяет документ сессии. Указывается ровно одно из полей.
type contentRequest struct {
	HTML   *string         `json:"html"`
	TipTap json.RawMessage `json:"tiptap"`
}

func (s *Services) AddSessionServices(g *echo.Group) {
	g.POST("sessions/", s.openSession)

	sessionGroup := g.Group("sessions/:sessionId/", s.SessionMiddleware)
	sessionGroup.GET("", s.getSession)
	sessionGroup.DELETE("", s.closeSession)
	sessionGroup.POST("commands/", s.execCommand)
	sessionGroup.PUT("content/", s.setSessionContent)
	sessionGroup.GET("tiptap/", s.getSessionTipTap)
	sessionGroup.POST("save/", s.saveSession)
}

func (s *Services) SessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := uuid.FromString(c.Param("sessionId"))
		if err != nil {
			return EErrorDefined(c, apierrors.ErrSessionIDInvalid)
		}
		session, ok := s.sessions.Get(id)
		if !ok {
			return EErrorDefined(c, apierrors.ErrSessionNotFound)
		}
		return next(SessionContext{c, session})
	}
}

// openSession открывает сессию. Без content документ загружается из сохраненного поста,
// для нового slug сессия начинается с пустого документа.
func (s *Services) openSession(c echo.Context) error {
	var req openSessionRequest
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrBadRequestBody)
	}
	if err := c.Validate(req); err != nil {
		return EErrorDefined(c, apierrors.ErrValidation.WithFormattedMessage(err.Error()))
	}

	content := ""
	if req.Content != nil && *req.Content != "" {
		content = *req.Content
	} else {
		post, err := dao.GetPostBySlug(s.db, req.Slug)
		switch {
		case err == nil:
			content = post.Content.Body
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return ETrackedError(c, stack_error.TrackErrorStack(err).AddContext("slug", req.Slug), apierrors.ErrInternal)
		}
	}

	session, err := s.sessions.Open(req.Slug, content)
	if err != nil {
		return ETrackedError(c, stack_error.TrackErrorStack(err).AddContext("slug", req.Slug), apierrors.ErrInternal)
	}
	return c.JSON(http.StatusCreated, session.Snapshot())
}

func (s *Services) getSession(c echo.Context) error {
	session := c.(SessionContext).Session
	return c.JSON(http.StatusOK, session.Snapshot())
}

func (s *Services) closeSession(c echo.Context) error {
	session := c.(SessionContext).Session
	if !s.sessions.Close(session.ID) {
		return EErrorDefined(c, apierrors.ErrSessionNotFound)
	}
	return c.NoContent(http.StatusNoContent)
}

// execCommand применяет одну команду редактора. Отказ редактора возвращается как 422,
// документ при этом не меняется.
func (s *Services) execCommand(c echo.Context) error {
	session := c.(SessionContext).Session

	var cmd editor.Command
	if err := c.Bind(&cmd); err != nil {
		return EErrorDefined(c, apierrors.ErrBadRequestBody)
	}
	if err := c.Validate(cmd); err != nil {
		return EErrorDefined(c, apierrors.ErrValidation.WithFormattedMessage(err.Error()))
	}

	op := cmd.Op
	if !slices.Contains(editor.Ops, op) {
		op = "unknown"
	}

	err := session.Do(func(e *editor.Editor) error {
		return e.Exec(cmd)
	})
	if err != nil {
		if errors.Is(err, sessions.ErrSessionClosed) {
			s.transforms.WithLabelValues(op, "error").Inc()
			return EErrorDefined(c, apierrors.ErrSessionNotFound)
		}
		if apiErr, ok := commandError(err); ok {
			s.transforms.WithLabelValues(op, "rejected").Inc()
			return EErrorDefined(c, apiErr)
		}
		s.transforms.WithLabelValues(op, "error").Inc()
		return ETrackedError(c, stack_error.TrackErrorStack(err).AddContext("op", cmd.Op).AddContext("session", session.ID), apierrors.ErrInternal)
	}

	s.transforms.WithLabelValues(op, "ok").Inc()
	return c.JSON(http.StatusOK, session.Snapshot())
}

func (s *Services) setSessionContent(c echo.Context) error {
	session := c.(SessionContext).Session

	var req contentRequest
	if err := c.Bind(&req); err != nil {
		return EErrorDefined(c, apierrors.ErrBadRequestBody)
	}

	var markup string
	switch {
	case req.HTML != nil && len(req.TipTap) == 0:
		markup = *req.HTML
	case req.HTML == nil && len(req.TipTap) > 0:
		doc, err := tiptap.ParseJSON(bytes.NewReader(req.TipTap))
		if err != nil {
			return EErrorDefined(c, apierrors.ErrValidation.WithFormattedMessage(err.Error()))
		}
		markup = editor.RenderHTML(doc)
	default:
		return EErrorDefined(c, apierrors.ErrValidation.WithFormattedMessage("exactly one of html or tiptap is required"))
	}

	if err := session.Do(func(e *editor.Editor) error {
		e.SetContent(markup)
		return nil
	}); err != nil {
		return EErrorDefined(c, apierrors.ErrSessionNotFound)
	}
	s.transforms.WithLabelValues("setContent", "ok").Inc()
	return c.JSON(http.StatusOK, session.Snapshot())
}

func (s *Services) getSessionTipTap(c echo.Context) error {
	session := c.(SessionContext).Session

	var data []byte
	err := session.Do(func(e *editor.Editor) error {
		var err error
		data, err = tiptap.Serialize(e.Document())
		return err
	})
	if errors.Is(err, sessions.ErrSessionClosed) {
		return EErrorDefined(c, apierrors.ErrSessionNotFound)
	}
	if err != nil {
		return ETrackedError(c, stack_error.TrackErrorStack(err).AddContext("session", session.ID), apierrors.ErrExportFailed)
	}
	return c.JSONBlob(http.StatusOK, data)
}

// saveSession сохраняет текущую разметку сессии в пост. Разметка очищается перед записью.
func (s *Services) saveSession(c echo.Context) error {
	session := c.(SessionContext).Session

	var req saveSessionRequest
	if c.Request().ContentLength != 0 {
		if err := c.Bind(&req); err != nil {
			return EErrorDefined(c, apierrors.ErrBadRequestBody)
		}
	}
	if err := c.Validate(req); err != nil {
		return EErrorDefined(c, apierrors.ErrValidation.WithFormattedMessage(err.Error()))
	}

	snapshot := session.Snapshot()
	post, err := dao.SavePostContent(s.db, snapshot.Slug, req.Title, snapshot.Content)
	if err != nil {
		return ETrackedError(c, stack_error.TrackErrorStack(err).AddContext("slug", snapshot.Slug).AddContext("session", snapshot.ID), apierrors.ErrPostSaveFailed)
	}
	session.MarkSaved(snapshot.Content)

	return c.JSON(http.StatusOK, post)
}
