// Хранение постов блога. Содержимое поста хранится как канонический HTML редактора,
// очищенный политикой постов.
//
// Основные возможности:
//   - Модель Post (таблица posts) с уникальным slug.
//   - Поиск поста по slug и сохранение содержимого с созданием поста при первом сохранении.
//   - Открытие базы по DSN: PostgreSQL или файл SQLite.
package dao

import (
	"errors"
	"fmt"
	"time"

	"github.com/agencia-site/postdoc/internal/postdoc/types"
	"github.com/glebarez/sqlite"
	"github.com/gofrs/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLog "gorm.io/gorm/logger"
)

type Post struct {
	ID uuid.UUID `gorm:"column:id;primaryKey;type:uuid" json:"id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Slug    string             `json:"slug" gorm:"uniqueIndex;not null" validate:"required,slug"`
	Title   string             `json:"title" validate:"max=150"`
	Content types.RedactorHTML `json:"content"`
}

func (Post) TableName() string { return "posts" }

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID.IsNil() {
		id, err := uuid.NewV4()
		if err != nil {
			return err
		}
		p.ID = id
	}
	return nil
}

// Migrate создает или обновляет таблицы сервиса.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Post{})
}

// Open открывает базу: при postgres DSN передается драйверу PostgreSQL, иначе это путь к файлу SQLite.
func Open(dsn string, postgresDSN bool, logger gormLog.Interface) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if postgresDSN {
		dialector = postgres.New(postgres.Config{DSN: dsn})
	} else {
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialector.Name(), err)
	}
	return db, nil
}

// GetPostBySlug возвращает пост. Если поста нет, ошибка gorm.ErrRecordNotFound.
func GetPostBySlug(db *gorm.DB, slug string) (*Post, error) {
	var post Post
	if err := db.Where("slug = ?", slug).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// SavePostContent сохраняет содержимое поста, создавая пост при первом сохранении.
// Пустой title не меняет заголовок существующего поста, новый пост получает slug в качестве заголовка.
func SavePostContent(db *gorm.DB, slug, title, content string) (*Post, error) {
	var post Post
	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("slug = ?", slug).First(&post).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			post = Post{Slug: slug, Title: title, Content: types.NewRedactorHTML(content)}
			if post.Title == "" {
				post.Title = slug
			}
			return tx.Create(&post).Error
		case err != nil:
			return err
		}

		post.Content = types.NewRedactorHTML(content)
		if title != "" {
			post.Title = title
		}
		return tx.Save(&post).Error
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost удаляет пост по slug.
func DeletePost(db *gorm.DB, slug string) error {
	res := db.Where("slug = ?", slug).Delete(&Post{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
