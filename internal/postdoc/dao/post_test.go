package dao

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormLog "gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name), false, gormLog.Default.LogMode(gormLog.Silent))
	require.NoError(t, err)
	require.NoError(t, Migrate(db))
	return db
}

func TestSavePostContent(t *testing.T) {
	db := openTestDB(t)

	created, err := SavePostContent(db, "ola-mundo", "", "<p>Olá <strong>mundo</strong></p>")
	require.NoError(t, err)
	assert.False(t, created.ID.IsNil())
	assert.Equal(t, "ola-mundo", created.Title)

	updated, err := SavePostContent(db, "ola-mundo", "Olá mundo", `<p>novo<script>alert(1)</script></p>`)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)

	post, err := GetPostBySlug(db, "ola-mundo")
	require.NoError(t, err)
	assert.Equal(t, "Olá mundo", post.Title)
	assert.Equal(t, "<p>novo</p>", post.Content.Body)
	assert.False(t, post.UpdatedAt.Before(created.UpdatedAt))

	var count int64
	require.NoError(t, db.Model(&Post{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSavePostKeepsTitle(t *testing.T) {
	db := openTestDB(t)

	_, err := SavePostContent(db, "vagas", "Vagas abertas", "<p>a</p>")
	require.NoError(t, err)
	_, err = SavePostContent(db, "vagas", "", "<p>b</p>")
	require.NoError(t, err)

	post, err := GetPostBySlug(db, "vagas")
	require.NoError(t, err)
	assert.Equal(t, "Vagas abertas", post.Title)
	assert.Equal(t, "<p>b</p>", post.Content.Body)
}

func TestGetPostBySlugNotFound(t *testing.T) {
	db := openTestDB(t)

	_, err := GetPostBySlug(db, "missing")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestDeletePost(t *testing.T) {
	db := openTestDB(t)

	_, err := SavePostContent(db, "temp", "", "<p>x</p>")
	require.NoError(t, err)
	require.NoError(t, DeletePost(db, "temp"))
	assert.ErrorIs(t, DeletePost(db, "temp"), gorm.ErrRecordNotFound)
}
