package postdoc

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/agencia-site/postdoc/internal/postdoc/apierrors"
	"github.com/agencia-site/postdoc/internal/postdoc/dao"
	"github.com/agencia-site/postdoc/internal/postdoc/editor"
	"github.com/agencia-site/postdoc/internal/postdoc/editor/tiptap"
	"github.com/agencia-site/postdoc/internal/postdoc/export"
	stack_error "github.com/agencia-site/postdoc/internal/postdoc/stack-error"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type PostContext struct {
	echo.Context
	Post *dao.Post
}

func (s *Services) AddPostServices(g *echo.Group) {
	postGroup := g.Group("posts/:slug/", s.PostMiddleware)
	postGroup.GET("", s.getPost)
	postGroup.GET("export/", s.exportPost)
	postGroup.DELETE("", s.deletePost)
}

func (s *Services) PostMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		slug := c.Param("slug")
		if !slugRegexp.MatchString(slug) {
			return EErrorDefined(c, apierrors.ErrInvalidSlug)
		}
		post, err := dao.GetPostBySlug(s.db, slug)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return EErrorDefined(c, apierrors.ErrPostNotFound)
			}
			return ETrackedError(c, stack_error.TrackErrorStack(err).AddContext("slug", slug), apierrors.ErrInternal)
		}
		return next(PostContext{c, post})
	}
}

func (s *Services) getPost(c echo.Context) error {
	return c.JSON(http.StatusOK, c.(PostContext).Post)
}

func (s *Services) deletePost(c echo.Context) error {
	post := c.(PostContext).Post
	if err := dao.DeletePost(s.db, post.Slug); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return EErrorDefined(c, apierrors.ErrPostNotFound)
		}
		return ETrackedError(c, stack_error.TrackErrorStack(err).AddContext("slug", post.Slug), apierrors.ErrInternal)
	}
	slog.Info("Post deleted", "slug", post.Slug)
	return c.NoContent(http.StatusNoContent)
}

// exportPost выгружает пост в формате format: md, pdf, html (по умолчанию) или json (TipTap).
func (s *Services) exportPost(c echo.Context) error {
	post := c.(PostContext).Post
	format := c.QueryParam("format")
	if format == "" {
		format = "html"
	}

	doc := editor.ParseHTML(post.Content.Body)

	var buf bytes.Buffer
	var contentType string
	var err error
	switch format {
	case "md":
		contentType = "text/markdown; charset=UTF-8"
		err = export.Markdown(doc, &buf)
	case "pdf":
		contentType = "application/pdf"
		err = export.PDF(doc, post.Title, &buf)
		c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", post.Slug+".pdf"))
	case "html":
		contentType = echo.MIMETextHTMLCharsetUTF8
		err = export.Preview(export.PreviewPost{
			Title:     post.Title,
			Content:   post.Content.Body,
			UpdatedAt: post.UpdatedAt,
		}, &buf)
	case "json":
		contentType = echo.MIMEApplicationJSON
		var data []byte
		data, err = tiptap.Serialize(doc)
		buf.Write(data)
	default:
		return EErrorDefined(c, apierrors.ErrUnsupportedExportFormat.WithFormattedMessage(format))
	}
	if err != nil {
		c.Response().Header().Del(echo.HeaderContentDisposition)
		return ETrackedError(c, stack_error.TrackErrorStack(err).AddContext("slug", post.Slug).AddContext("format", format), apierrors.ErrExportFailed)
	}

	return c.Blob(http.StatusOK, contentType, buf.Bytes())
}
