package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/course-platform/internal/models"
)

// ErrCourseNotFound возвращается, когда курс не найден в каталоге.
var ErrCourseNotFound = errors.New("course not found")

// CreateCourse сохраняет курс вместе с лекциями и возвращает его UID.
// Категория должна быть нормализована до вызова.
func (s *Storage) CreateCourse(ctx context.Context, course models.Course) (string, error) {
	const op = "storage.CreateCourse"
	select {
	case <-ctx.Done():
		return "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var uid string
	query := `INSERT INTO courses (topic, description, category, price, discount,
			      level, language, created_by, creator_email)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			  RETURNING uid`
	if err = tx.QueryRowContext(ctx, query,
		course.Topic, course.Description, course.Category, course.Price,
		course.Discount, course.Level, course.Language,
		course.CreatedBy, course.CreatorEmail).Scan(&uid); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	for i, lecture := range course.Lectures {
		_, err = tx.ExecContext(ctx, `INSERT INTO lectures
				(course_uid, title, description, video_url, youtube_link, position)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			uid, lecture.Title, lecture.Description, lecture.VideoURL,
			lecture.YoutubeLink, i+1)
		if err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return uid, nil
}

// GetCourse возвращает курс каталога вместе с лекциями.
func (s *Storage) GetCourse(ctx context.Context, courseUID string) (*models.Course, error) {
	const op = "storage.GetCourse"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, topic, description, category, price, discount, rating,
			      level, language, created_by, creator_email, created_at
			  FROM courses
			  WHERE uid = $1`
	course := &models.Course{}
	if err := s.DB.QueryRowContext(ctx, query, courseUID).Scan(
		&course.UID, &course.Topic, &course.Description, &course.Category,
		&course.Price, &course.Discount, &course.Rating, &course.Level,
		&course.Language, &course.CreatedBy, &course.CreatorEmail,
		&course.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrCourseNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT id, title, description, video_url, youtube_link, position
		FROM lectures WHERE course_uid = $1 ORDER BY position`, courseUID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()
	for rows.Next() {
		var lecture models.Lecture
		if err = rows.Scan(&lecture.ID, &lecture.Title, &lecture.Description,
			&lecture.VideoURL, &lecture.YoutubeLink, &lecture.Position); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		course.Lectures = append(course.Lectures, lecture)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return course, nil
}

// ListCourses возвращает курсы каталога без лекций.
func (s *Storage) ListCourses(ctx context.Context) ([]*models.Course, error) {
	const op = "storage.ListCourses"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, topic, description, category, price, discount, rating,
			      level, language, created_by, creator_email, created_at
			  FROM courses
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Course
	for rows.Next() {
		course := &models.Course{}
		if err = rows.Scan(&course.UID, &course.Topic, &course.Description,
			&course.Category, &course.Price, &course.Discount, &course.Rating,
			&course.Level, &course.Language, &course.CreatedBy,
			&course.CreatorEmail, &course.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, course)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// RateCourse сохраняет оценку пользователя (не более одной на курс)
// и в той же транзакции пересчитывает среднюю оценку курса с округлением
// до одного знака. Возвращает новую среднюю оценку.
func (s *Storage) RateCourse(ctx context.Context, rating models.Rating) (float64, error) {
	const op = "storage.RateCourse"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.ExecContext(ctx, `INSERT INTO course_ratings (course_uid, user_uid, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (course_uid, user_uid) DO UPDATE SET value = EXCLUDED.value`,
		rating.CourseUID, rating.UserUID, rating.Value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	var newRating float64
	err = tx.QueryRowContext(ctx, `UPDATE courses
		SET rating = COALESCE((
			SELECT ROUND(AVG(value)::numeric, 1)
			FROM course_ratings
			WHERE course_uid = $1), 0)
		WHERE uid = $1
		RETURNING rating`, rating.CourseUID).Scan(&newRating)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%s: %w", op, ErrCourseNotFound)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return newRating, nil
}

// ListCoursesByCreator возвращает курсы, созданные указанным автором.
func (s *Storage) ListCoursesByCreator(ctx context.Context, creatorEmail string) ([]*models.Course, error) {
	const op = "storage.ListCoursesByCreator"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT uid, topic, description, category, price, discount, rating,
			      level, language, created_by, creator_email, created_at
			  FROM courses
			  WHERE creator_email = $1
			  ORDER BY created_at DESC`
	rows, err := s.DB.QueryContext(ctx, query, creatorEmail)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Course
	for rows.Next() {
		course := &models.Course{}
		if err = rows.Scan(&course.UID, &course.Topic, &course.Description,
			&course.Category, &course.Price, &course.Discount, &course.Rating,
			&course.Level, &course.Language, &course.CreatedBy,
			&course.CreatorEmail, &course.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, course)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
