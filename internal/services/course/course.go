// Package course реализует бизнес-логику каталога курсов, включая
// кеширование списка курсов.
package course

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/course-platform/internal/lib/slug"
	"github.com/magabrotheeeer/course-platform/internal/models"
	"github.com/magabrotheeeer/course-platform/internal/storage/repository"
)

// ErrCourseNotFound — курс не найден в каталоге.
var ErrCourseNotFound = errors.New("course not found")

// listCacheKey — ключ кеша списка курсов. Кеш сбрасывается при любом
// изменении каталога.
const (
	listCacheKey = "courses:list"
	listCacheTTL = time.Hour
)

// CourseRepository определяет методы хранилища для каталога.
type CourseRepository interface {
	CreateCourse(ctx context.Context, course models.Course) (string, error)
	GetCourse(ctx context.Context, courseUID string) (*models.Course, error)
	ListCourses(ctx context.Context) ([]*models.Course, error)
	RateCourse(ctx context.Context, rating models.Rating) (float64, error)
	ListCoursesByCreator(ctx context.Context, creatorEmail string) ([]*models.Course, error)
}

// Cache описывает методы для кеширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// CourseService реализует операции каталога курсов.
type CourseService struct {
	repo  CourseRepository
	cache Cache
	log   *slog.Logger
}

// NewCourseService создает новый экземпляр CourseService.
func NewCourseService(repo CourseRepository, cache Cache, log *slog.Logger) *CourseService {
	return &CourseService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// List возвращает все курсы каталога. Результат кешируется на час,
// ошибки кеша не прерывают запрос.
func (s *CourseService) List(ctx context.Context) ([]*models.Course, error) {
	const op = "course.List"

	var cached []*models.Course
	found, err := s.cache.Get(listCacheKey, &cached)
	if err != nil {
		s.log.Warn("failed to read courses cache", slog.Any("err", err))
	}
	if found {
		return cached, nil
	}

	courses, err := s.repo.ListCourses(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.Set(listCacheKey, courses, listCacheTTL); err != nil {
		s.log.Warn("failed to cache courses", slog.Any("err", err))
	}
	return courses, nil
}

// Get возвращает курс с лекциями.
func (s *CourseService) Get(ctx context.Context, courseUID string) (*models.Course, error) {
	const op = "course.Get"

	course, err := s.repo.GetCourse(ctx, courseUID)
	if err != nil {
		if errors.Is(err, repository.ErrCourseNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrCourseNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return course, nil
}

// Create добавляет курс в каталог. Категория нормализуется в слаг.
// Кеш списка сбрасывается.
func (s *CourseService) Create(ctx context.Context, creator *models.User, course models.Course) (string, error) {
	const op = "course.Create"

	course.Category = slug.Make(course.Category)
	course.CreatedBy = creator.FullName
	course.CreatorEmail = creator.Email

	uid, err := s.repo.CreateCourse(ctx, course)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.Invalidate(listCacheKey); err != nil {
		s.log.Warn("failed to invalidate courses cache", slog.Any("err", err))
	}

	s.log.Info("course created", "course_uid", uid, "creator", creator.Email)
	return uid, nil
}

// Rate сохраняет оценку пользователя и возвращает пересчитанный
// средний рейтинг курса. Кеш списка сбрасывается.
func (s *CourseService) Rate(ctx context.Context, user *models.User, courseUID string, value int) (float64, error) {
	const op = "course.Rate"

	rating, err := s.repo.RateCourse(ctx, models.Rating{
		CourseUID: courseUID,
		UserUID:   user.UID,
		Value:     value,
	})
	if err != nil {
		if errors.Is(err, repository.ErrCourseNotFound) {
			return 0, fmt.Errorf("%s: %w", op, ErrCourseNotFound)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.Invalidate(listCacheKey); err != nil {
		s.log.Warn("failed to invalidate courses cache", slog.Any("err", err))
	}

	s.log.Info("course rated", "course_uid", courseUID, "user_uid", user.UID,
		"value", value, "rating", rating)
	return rating, nil
}

// ListByCreator возвращает курсы, созданные автором.
func (s *CourseService) ListByCreator(ctx context.Context, creatorEmail string) ([]*models.Course, error) {
	const op = "course.ListByCreator"

	courses, err := s.repo.ListCoursesByCreator(ctx, creatorEmail)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return courses, nil
}
